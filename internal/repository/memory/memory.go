// Package memory is a process-local store with the same query and
// reconciliation semantics as the Firestore and Postgres backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

type Store struct {
	repository.RoomRepository
	repository.InquiryRepository
}

// NewStore returns an empty store. now stands in for the server clock.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		RoomRepository:    NewRoomRepository(now),
		InquiryRepository: NewInquiryRepository(now),
	}
}

type roomRepository struct {
	mu    sync.RWMutex
	now   func() time.Time
	rooms map[string]domain.Room
}

func NewRoomRepository(now func() time.Time) repository.RoomRepository {
	if now == nil {
		now = time.Now
	}
	return &roomRepository{now: now, rooms: make(map[string]domain.Room)}
}

func (r *roomRepository) NewID() string {
	return uuid.NewString()
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == "" {
		room.ID = r.NewID()
	}
	ts := r.now().UTC()
	room.CreatedAt = ts
	room.UpdatedAt = ts
	r.rooms[room.ID] = clone(*room)
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(room)
	return &out, nil
}

func (r *roomRepository) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	room = patch.Apply(room)
	room.UpdatedAt = r.now().UTC()
	r.rooms[id] = clone(room)
	out := clone(room)
	return &out, nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rooms, id)
	return nil
}

func (r *roomRepository) Query(ctx context.Context, q repository.RoomQuery) (*repository.RoomPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if q.Filter.Matches(&room) {
			matched = append(matched, clone(room))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return precedes(repository.PositionOf(&matched[i], q.SortBy), repository.PositionOf(&matched[j], q.SortBy))
	})

	start := 0
	if q.After != nil {
		start = sort.Search(len(matched), func(i int) bool {
			return precedes(*q.After, repository.PositionOf(&matched[i], q.SortBy))
		})
	}
	matched = matched[start:]

	page := &repository.RoomPage{}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
		last := repository.PositionOf(&matched[len(matched)-1], q.SortBy)
		page.Next = &last
	}
	page.Rooms = matched
	return page, nil
}

func (r *roomRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var released []string
	ts := r.now().UTC()
	for id, room := range r.rooms {
		if room.Availability.Overdue(now) {
			room.Availability = domain.Available()
			room.UpdatedAt = ts
			r.rooms[id] = room
			released = append(released, id)
		}
	}
	sort.Strings(released)
	return released, nil
}

// precedes reports whether a sorts ahead of b: greater sort value first,
// then greater id.
func precedes(a, b repository.Position) bool {
	if !a.SortValue.Equal(b.SortValue) {
		return a.SortValue.After(b.SortValue)
	}
	return a.ID > b.ID
}

func clone(r domain.Room) domain.Room {
	r.Images = append([]string(nil), r.Images...)
	r.Amenities = append([]string(nil), r.Amenities...)
	return r
}

type inquiryRepository struct {
	mu        sync.RWMutex
	now       func() time.Time
	inquiries map[string]domain.Inquiry
}

func NewInquiryRepository(now func() time.Time) repository.InquiryRepository {
	if now == nil {
		now = time.Now
	}
	return &inquiryRepository{now: now, inquiries: make(map[string]domain.Inquiry)}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	inquiry.CreatedAt = r.now().UTC()
	r.inquiries[inquiry.ID] = *inquiry
	return nil
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	inq, ok := r.inquiries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inq, nil
}

func (r *inquiryRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []domain.Inquiry
	for _, inq := range r.inquiries {
		if inq.RoomID == roomID {
			out = append(out, inq)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
