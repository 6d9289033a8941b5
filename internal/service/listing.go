package service

import (
	"context"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
)

// Surface is a listing consumer with its own page size and ordering.
type Surface string

const (
	SurfaceBrowse Surface = "browse"
	SurfaceAdmin  Surface = "admin"
)

const (
	DefaultBrowsePageSize = 12
	DefaultAdminPageSize  = 20
)

// ListingPage is one page of rooms. NextCursor is empty on the last page.
type ListingPage struct {
	Rooms      []domain.Room
	NextCursor string
}

type listingService struct {
	roomRepo  repository.RoomRepository
	pageSizes map[Surface]int
}

func NewListingService(roomRepo repository.RoomRepository, browsePageSize, adminPageSize int) ListingService {
	if browsePageSize <= 0 {
		browsePageSize = DefaultBrowsePageSize
	}
	if adminPageSize <= 0 {
		adminPageSize = DefaultAdminPageSize
	}
	return &listingService{
		roomRepo: roomRepo,
		pageSizes: map[Surface]int{
			SurfaceBrowse: browsePageSize,
			SurfaceAdmin:  adminPageSize,
		},
	}
}

func (s *listingService) Browse(ctx context.Context, filter domain.ListingFilter, cursor string) (*ListingPage, error) {
	return s.list(ctx, SurfaceBrowse, filter, cursor)
}

func (s *listingService) AdminList(ctx context.Context, filter domain.ListingFilter, cursor string) (*ListingPage, error) {
	return s.list(ctx, SurfaceAdmin, filter, cursor)
}

func (s *listingService) list(ctx context.Context, surface Surface, filter domain.ListingFilter, cursor string) (*ListingPage, error) {
	q, err := BuildRoomQuery(surface, s.pageSizes[surface], filter, cursor)
	if err != nil {
		return nil, err
	}

	logger.Debug("Listing rooms", "surface", surface, "filter", filter.Fingerprint(), "resume", q.After != nil)
	page, err := s.roomRepo.Query(ctx, q)
	if err != nil {
		logger.Warn("Room listing failed", "surface", surface, "filter", filter.Fingerprint(), "error", err)
		return nil, err
	}

	out := &ListingPage{Rooms: page.Rooms}
	if out.Rooms == nil {
		out.Rooms = []domain.Room{}
	}
	if page.Next != nil {
		if out.NextCursor, err = EncodeCursor(surface, filter, *page.Next); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BuildRoomQuery composes the store query for one page of surface. Browsing
// is ordered by creation time and the admin listing by last update, both
// newest first.
func BuildRoomQuery(surface Surface, pageSize int, filter domain.ListingFilter, cursor string) (repository.RoomQuery, error) {
	q := repository.RoomQuery{
		Filter: filter,
		SortBy: repository.SortByCreatedAt,
		Limit:  pageSize,
	}
	if surface == SurfaceAdmin {
		q.SortBy = repository.SortByUpdatedAt
	}
	if cursor != "" {
		pos, err := DecodeCursor(cursor, surface, filter)
		if err != nil {
			return repository.RoomQuery{}, err
		}
		q.After = pos
	}
	return q, nil
}
