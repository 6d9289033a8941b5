package repository

import (
	"context"
	"time"

	"locationapp-backend/internal/domain"
)

// SortField is the recency key a room listing is ordered by, descending.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// Position is the resume point of a forward-only page: the sort value and id
// of the last room already returned.
type Position struct {
	SortValue time.Time
	ID        string
}

// PositionOf returns the position of room r under sort field f.
func PositionOf(r *domain.Room, f SortField) Position {
	if f == SortByUpdatedAt {
		return Position{SortValue: r.UpdatedAt, ID: r.ID}
	}
	return Position{SortValue: r.CreatedAt, ID: r.ID}
}

type RoomQuery struct {
	Filter domain.ListingFilter
	SortBy SortField
	Limit  int
	After  *Position
}

// RoomPage is one page of results. Next is nil on the last page.
type RoomPage struct {
	Rooms []domain.Room
	Next  *Position
}

type RoomRepository interface {
	// NewID pre-allocates an id so images can be stored under it before the
	// room document exists.
	NewID() string
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q RoomQuery) (*RoomPage, error)

	// ReleaseExpired flips every en_location room whose release date is at or
	// before now to libre in one atomic write and returns the affected ids.
	ReleaseExpired(ctx context.Context, now time.Time) ([]string, error)
}

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)
	ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error)
}
