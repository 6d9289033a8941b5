package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
	"locationapp-backend/internal/storage"
)

type roomService struct {
	roomRepo         repository.RoomRepository
	store            storage.StorageInterface
	loc              *time.Location
	defaultOccupancy time.Duration
	now              func() time.Time
}

// NewRoomService wires the admin mutations. defaultOccupancy is the release
// delay applied when QuickToggle enters en_location without a date.
func NewRoomService(roomRepo repository.RoomRepository, store storage.StorageInterface, loc *time.Location, defaultOccupancy time.Duration) RoomService {
	if loc == nil {
		loc = time.UTC
	}
	return &roomService{
		roomRepo:         roomRepo,
		store:            store,
		loc:              loc,
		defaultOccupancy: defaultOccupancy,
		now:              time.Now,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, room *domain.Room, files []storage.Upload, progress storage.FileProgressFunc) (*domain.Room, error) {
	logger.EnterMethod("roomService.CreateRoom", "title", room.Title, "files", len(files))

	draft := *room
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := domain.Available().Transition(draft.Availability, s.now(), s.loc); err != nil {
		return nil, err
	}
	if err := validateUploads(files); err != nil {
		return nil, err
	}

	draft.ID = s.roomRepo.NewID()
	uploaded, err := s.upload(ctx, draft.ID, files, progress)
	if err != nil {
		logger.ExitMethodWithError("roomService.CreateRoom", err, "roomID", draft.ID)
		return nil, err
	}
	draft.Images = append(uploaded, draft.Images...)

	if err := s.roomRepo.Create(ctx, &draft); err != nil {
		s.discard(ctx, uploaded)
		logger.ExitMethodWithError("roomService.CreateRoom", err, "roomID", draft.ID)
		return nil, err
	}

	logger.ExitMethod("roomService.CreateRoom", "roomID", draft.ID, "images", len(draft.Images))
	return &draft, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, id string, patch domain.RoomPatch, files []storage.Upload, progress storage.FileProgressFunc) (*domain.Room, error) {
	logger.EnterMethod("roomService.UpdateRoom", "roomID", id, "files", len(files))

	if err := validateUploads(files); err != nil {
		return nil, err
	}
	current, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(*current)
	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := current.Availability.Transition(next.Availability, s.now(), s.loc); err != nil {
		return nil, err
	}
	if patch.Empty() && len(files) == 0 {
		return current, nil
	}

	uploaded, err := s.upload(ctx, id, files, progress)
	if err != nil {
		logger.ExitMethodWithError("roomService.UpdateRoom", err, "roomID", id)
		return nil, err
	}

	write := normalizedPatch(patch, &next)
	if len(uploaded) > 0 {
		images := append(slices.Clone(next.Images), uploaded...)
		write.Images = &images
	}

	updated, err := s.roomRepo.Update(ctx, id, write)
	if err != nil {
		s.discard(ctx, uploaded)
		logger.ExitMethodWithError("roomService.UpdateRoom", err, "roomID", id)
		return nil, err
	}

	if removed := removedImages(current.Images, updated.Images); len(removed) > 0 {
		s.discard(ctx, removed)
	}

	logger.ExitMethod("roomService.UpdateRoom", "roomID", id)
	return updated, nil
}

func (s *roomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

// DeleteRoom removes the document, then its stored images. Image cleanup
// failures are logged and never fail the deletion.
func (s *roomService) DeleteRoom(ctx context.Context, id string) error {
	logger.EnterMethod("roomService.DeleteRoom", "roomID", id)

	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		logger.ExitMethodWithError("roomService.DeleteRoom", err, "roomID", id)
		return err
	}
	s.discard(ctx, room.Images)

	logger.ExitMethod("roomService.DeleteRoom", "roomID", id)
	return nil
}

func (s *roomService) QuickToggle(ctx context.Context, id string, releaseDate *time.Time) (*domain.Room, error) {
	current, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := domain.Available()
	if current.Availability.Status() == domain.RoomStatusAvailable {
		until := now.Add(s.defaultOccupancy)
		if releaseDate != nil {
			until = *releaseDate
		}
		if next, err = domain.Occupied(until); err != nil {
			return nil, err
		}
		if err := current.Availability.Transition(next, now, s.loc); err != nil {
			return nil, err
		}
	}

	logger.Info("Toggling room availability", "roomID", id, "from", current.Availability.String(), "to", next.String())
	return s.roomRepo.Update(ctx, id, domain.RoomPatch{Availability: &next})
}

// RemoveImage detaches imageURL from the room, then deletes the stored object
// best-effort.
func (s *roomService) RemoveImage(ctx context.Context, id, imageURL string) (*domain.Room, error) {
	current, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(current.Images, imageURL) {
		return nil, domain.NewValidationError("image", "image is not attached to this room")
	}

	images := slices.DeleteFunc(slices.Clone(current.Images), func(u string) bool { return u == imageURL })
	updated, err := s.roomRepo.Update(ctx, id, domain.RoomPatch{Images: &images})
	if err != nil {
		return nil, err
	}
	s.discard(ctx, []string{imageURL})
	return updated, nil
}

func (s *roomService) upload(ctx context.Context, roomID string, files []storage.Upload, progress storage.FileProgressFunc) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	logger.ExternalServiceCall("storage", "UploadAll", "roomID", roomID, "files", len(files))
	urls, err := storage.UploadAll(ctx, s.store, roomID, files, progress)
	logger.ExternalServiceResult("storage", "UploadAll", err, "roomID", roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: image upload failed: %w", domain.ErrUnavailable, err)
	}
	return urls, nil
}

func (s *roomService) discard(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if failed := storage.DeleteURLs(context.WithoutCancel(ctx), s.store, urls); failed > 0 {
		logger.Warn("Some room images could not be deleted", "failed", failed, "total", len(urls))
	}
}

func validateUploads(files []storage.Upload) error {
	for _, f := range files {
		if f.Body == nil {
			return domain.NewValidationError("images", fmt.Sprintf("file %q has no content", f.Name))
		}
	}
	return nil
}

// normalizedPatch keeps the fields patch sets, taking their values from the
// normalized room so trimmed text is what gets written.
func normalizedPatch(patch domain.RoomPatch, next *domain.Room) domain.RoomPatch {
	var out domain.RoomPatch
	if patch.Title != nil {
		out.Title = &next.Title
	}
	if patch.Description != nil {
		out.Description = &next.Description
	}
	if patch.Address != nil {
		out.Address = &next.Address
	}
	if patch.PricePerMonth != nil {
		out.PricePerMonth = &next.PricePerMonth
	}
	if patch.Images != nil {
		out.Images = &next.Images
	}
	if patch.Amenities != nil {
		out.Amenities = &next.Amenities
	}
	if patch.Availability != nil {
		out.Availability = &next.Availability
	}
	return out
}

func removedImages(before, after []string) []string {
	var removed []string
	for _, u := range before {
		if !slices.Contains(after, u) {
			removed = append(removed, u)
		}
	}
	return removed
}
