package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"locationapp-backend/internal/logger"
)

// Upload is one file of a fan-out upload.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileProgressFunc reports progress for the index-th file of a batch.
type FileProgressFunc func(index int, name string, written, total int64)

// UploadAll uploads every file under rooms/<roomID>/ concurrently and returns
// the URLs in input order. It fails if any upload fails; the objects that did
// land are then deleted so a failed save leaves nothing behind.
func UploadAll(ctx context.Context, store StorageInterface, roomID string, files []Upload, progress FileProgressFunc) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, len(files))
	keys := make([]string, len(files))
	now := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		keys[i] = RoomImageKey(roomID, fmt.Sprintf("%d_%s", i, f.Name), now)
		g.Go(func() error {
			var fileProgress ProgressFunc
			if progress != nil {
				fileProgress = func(written, total int64) { progress(i, f.Name, written, total) }
			}
			u, err := store.Upload(gctx, keys[i], f.ContentType, f.Body, f.Size, fileProgress)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			urls[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, u := range urls {
			if u == "" {
				continue
			}
			if derr := store.DeleteFile(context.WithoutCancel(ctx), keys[i]); derr != nil {
				logger.Warn("Failed to remove orphaned upload", "key", keys[i], "error", derr)
			}
		}
		return nil, err
	}
	return urls, nil
}

// DeleteURLs removes every stored object referenced by urls, skipping links
// the store did not produce. Failures are logged and counted, never returned.
func DeleteURLs(ctx context.Context, store StorageInterface, urls []string) (failed int) {
	for _, u := range urls {
		key, ok := store.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := store.DeleteFile(ctx, key); err != nil {
			logger.Warn("Failed to delete stored image", "key", key, "error", err)
			failed++
		}
	}
	return failed
}
