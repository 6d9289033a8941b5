package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// RoomImageKey returns the object key for an image of a room:
// rooms/<roomID>/<unix millis>_<file name>.
func RoomImageKey(roomID, fileName string, at time.Time) string {
	return fmt.Sprintf("rooms/%s/%d_%s", roomID, at.UnixMilli(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		}
		return -1
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "image"
	}
	return name
}
