package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MockStorageService stores objects on the local filesystem and serves
// them through the API's download route.
type MockStorageService struct {
	baseURL   string // Server URL (e.g., "http://localhost:8080")
	imagesDir string
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	imagesDir := filepath.Join(uploadsDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &MockStorageService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		imagesDir: imagesDir,
	}, nil
}

func (m *MockStorageService) downloadPrefix() string {
	return m.baseURL + "/api/v1/download/"
}

// Upload writes the object to disk, reporting progress as bytes are copied.
func (m *MockStorageService) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	src := &progressReader{ctx: ctx, r: r, total: size, progress: progress}
	if _, err := io.Copy(file, src); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s%s?key=%s", m.downloadPrefix(), encodeKey(key), url.QueryEscape(key)), nil
}

// DeleteFile deletes file from local filesystem
func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *MockStorageService) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, m.downloadPrefix()) {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	key := u.Query().Get("key")
	return key, key != ""
}

// ReadFile opens a stored object for the download handler.
func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// localPath maps a key into imagesDir, refusing keys that escape it.
func (m *MockStorageService) localPath(key string) (string, error) {
	fullPath := filepath.Join(m.imagesDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(m.imagesDir, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return fullPath, nil
}

// encodeKey creates a URL-safe hash of the key
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}

type progressReader struct {
	ctx      context.Context
	r        io.Reader
	written  int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		if p.progress != nil {
			p.progress(p.written, p.total)
		}
	}
	return n, err
}
