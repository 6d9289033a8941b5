package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"

	"locationapp-backend/internal/logger"
)

const (
	firebaseDownloadHost = "https://firebasestorage.googleapis.com/v0/b/"
	downloadTokenKey     = "firebaseStorageDownloadTokens"

	// resumableChunkSize makes the writer upload in resumable chunks and
	// invoke ProgressFunc after each one.
	resumableChunkSize = 256 * 1024
)

// FirebaseStorageService stores room images in a Firebase Storage bucket and
// hands out token download URLs, the form the web client renders directly.
type FirebaseStorageService struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStorageService(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStorageService, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketName, err)
	}
	return &FirebaseStorageService{bucket: bucket, bucketName: bucketName}, nil
}

func (s *FirebaseStorageService) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	logger.ExternalServiceCall("FirebaseStorage", "Upload", "key", key, "size", size)

	token := uuid.NewString()
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}
	w.ChunkSize = resumableChunkSize
	if progress != nil {
		w.ProgressFunc = func(written int64) { progress(written, size) }
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		logger.ExternalServiceResult("FirebaseStorage", "Upload", err, "key", key)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		logger.ExternalServiceResult("FirebaseStorage", "Upload", err, "key", key)
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}
	if progress != nil {
		progress(w.Attrs().Size, size)
	}

	logger.ExternalServiceResult("FirebaseStorage", "Upload", nil, "key", key)
	return s.downloadURL(key, token), nil
}

func (s *FirebaseStorageService) downloadURL(key, token string) string {
	return fmt.Sprintf("%s%s/o/%s?alt=media&token=%s", firebaseDownloadHost, s.bucketName, url.PathEscape(key), token)
}

func (s *FirebaseStorageService) DeleteFile(ctx context.Context, key string) error {
	logger.ExternalServiceCall("FirebaseStorage", "Delete", "key", key)
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		err = nil
	}
	logger.ExternalServiceResult("FirebaseStorage", "Delete", err, "key", key)
	return err
}

// KeyFromURL extracts the object path between "/o/" and the query string of
// a Firebase download URL.
func (s *FirebaseStorageService) KeyFromURL(rawURL string) (string, bool) {
	return firebaseKeyFromURL(rawURL)
}

func firebaseKeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, firebaseDownloadHost) {
		return "", false
	}
	_, rest, found := strings.Cut(rawURL, "/o/")
	if !found {
		return "", false
	}
	escaped, _, _ := strings.Cut(rest, "?")
	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
