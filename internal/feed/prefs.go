package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"locationapp-backend/internal/domain"
)

// LoadFilter reads the filter set saved by SaveFilter. A missing file yields
// an empty filter set.
func LoadFilter(path string) (domain.RawListingFilter, error) {
	var raw domain.RawListingFilter
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return raw, err
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return raw, fmt.Errorf("failed to read saved filters %s: %w", path, err)
	}
	return raw, nil
}

// SaveFilter persists raw so the next session starts from it.
func SaveFilter(path string, raw domain.RawListingFilter) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
