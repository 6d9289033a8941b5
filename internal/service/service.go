package service

import (
	"context"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/security"
	"locationapp-backend/internal/storage"
	"locationapp-backend/internal/utils"
)

type RoomService interface {
	// CreateRoom validates room, uploads files under a freshly allocated id and
	// writes the document once every upload has succeeded. room.Images holds
	// manually entered URLs; uploaded URLs are placed before them.
	CreateRoom(ctx context.Context, room *domain.Room, files []storage.Upload, progress storage.FileProgressFunc) (*domain.Room, error)
	// UpdateRoom merge-writes patch. Uploaded files are appended after the
	// resulting image list.
	UpdateRoom(ctx context.Context, id string, patch domain.RoomPatch, files []storage.Upload, progress storage.FileProgressFunc) (*domain.Room, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	// QuickToggle flips libre to en_location and anything else to libre.
	QuickToggle(ctx context.Context, id string, releaseDate *time.Time) (*domain.Room, error)
	RemoveImage(ctx context.Context, id, imageURL string) (*domain.Room, error)
}

type AvailabilityService interface {
	ReleaseExpiredRooms(ctx context.Context) ([]string, error)
}

type ListingService interface {
	Browse(ctx context.Context, filter domain.ListingFilter, cursor string) (*ListingPage, error)
	AdminList(ctx context.Context, filter domain.ListingFilter, cursor string) (*ListingPage, error)
}

type InquiryService interface {
	SubmitInquiry(ctx context.Context, inquiry *domain.Inquiry) (*InquiryReceipt, error)
	GetReceipt(ctx context.Context, id string) (*InquiryReceipt, error)
	ListForRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error)
	EstimatePrice(ctx context.Context, roomID string, start, end time.Time) (*utils.PriceEstimate, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*security.AdminClaims, error)
}

type EmailService interface {
	SendInquiryNotice(ctx context.Context, to string, inquiry *domain.Inquiry, room *domain.Room, replyLink string) error
}
