package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
	"locationapp-backend/internal/storage"
)

// MockRoomRepo
type MockRoomRepo struct {
	mock.Mock
}

func (m *MockRoomRepo) NewID() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
func (m *MockRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}
func (m *MockRoomRepo) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}
func (m *MockRoomRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRoomRepo) Query(ctx context.Context, q repository.RoomQuery) (*repository.RoomPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.RoomPage), args.Error(1)
}
func (m *MockRoomRepo) ReleaseExpired(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockInquiryRepo
type MockInquiryRepo struct {
	mock.Mock
}

func (m *MockInquiryRepo) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	args := m.Called(ctx, inquiry)
	return args.Error(0)
}
func (m *MockInquiryRepo) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}
func (m *MockInquiryRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error) {
	args := m.Called(ctx, roomID, limit)
	return args.Get(0).([]domain.Inquiry), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInquiryNotice(ctx context.Context, to string, inquiry *domain.Inquiry, room *domain.Room, replyLink string) error {
	args := m.Called(ctx, to, inquiry, room, replyLink)
	return args.Error(0)
}

const fakeStorageBase = "https://cdn.test/"

// fakeStorage keeps objects in memory. Uploads whose key contains failOn
// fail; deletes fail when deleteErr is set.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string]string
	deleted   []string
	failOn    string
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress storage.ProgressFunc) (string, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("upload rejected")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if progress != nil {
		progress(int64(len(b)), size)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = string(b)
	return fakeStorageBase + key, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, fakeStorageBase) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, fakeStorageBase), true
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func uploads(names ...string) []storage.Upload {
	out := make([]storage.Upload, len(names))
	for i, n := range names {
		body := fmt.Sprintf("image-%d", i)
		out[i] = storage.Upload{Name: n, ContentType: "image/jpeg", Size: int64(len(body)), Body: strings.NewReader(body)}
	}
	return out
}

// tickingClock returns a strictly increasing clock.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
