package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/repository"
)

type roomDoc struct {
	Title         string     `firestore:"title"`
	Description   string     `firestore:"description"`
	Country       string     `firestore:"country"`
	Region        string     `firestore:"region"`
	City          string     `firestore:"city"`
	Area          string     `firestore:"area"`
	Address       string     `firestore:"address"`
	PricePerMonth int64      `firestore:"pricePerMonth"`
	Currency      string     `firestore:"currency"`
	Images        []string   `firestore:"images"`
	Amenities     []string   `firestore:"amenities"`
	Status        string     `firestore:"status"`
	ReleaseDate   *time.Time `firestore:"releaseDate"`
	CreatedAt     time.Time  `firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time  `firestore:"updatedAt,serverTimestamp"`
}

func toRoomDoc(r *domain.Room) roomDoc {
	return roomDoc{
		Title:         r.Title,
		Description:   r.Description,
		Country:       r.Address.Country,
		Region:        r.Address.Region,
		City:          r.Address.City,
		Area:          r.Address.Area,
		Address:       r.Address.Street,
		PricePerMonth: r.PricePerMonth,
		Currency:      r.Currency,
		Images:        nonNil(r.Images),
		Amenities:     nonNil(r.Amenities),
		Status:        string(r.Availability.Status()),
		ReleaseDate:   r.Availability.ReleaseDatePtr(),
	}
}

func (d roomDoc) toRoom(id string) (*domain.Room, error) {
	availability, err := domain.ParseAvailability(d.Status, d.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	return &domain.Room{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Address: domain.Address{
			Country: d.Country,
			Region:  d.Region,
			City:    d.City,
			Area:    d.Area,
			Street:  d.Address,
		},
		PricePerMonth: d.PricePerMonth,
		Currency:      d.Currency,
		Images:        d.Images,
		Amenities:     d.Amenities,
		Availability:  availability,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func snapshotToRoom(snap *firestore.DocumentSnapshot) (*domain.Room, error) {
	var d roomDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("room %s: %w", snap.Ref.ID, err)
	}
	return d.toRoom(snap.Ref.ID)
}

// patchUpdates converts a merge-write into field paths. updatedAt is always
// rewritten with the server timestamp.
func patchUpdates(p domain.RoomPatch) []firestore.Update {
	var ups []firestore.Update
	if p.Title != nil {
		ups = append(ups, firestore.Update{Path: "title", Value: *p.Title})
	}
	if p.Description != nil {
		ups = append(ups, firestore.Update{Path: "description", Value: *p.Description})
	}
	if p.Address != nil {
		ups = append(ups,
			firestore.Update{Path: "country", Value: p.Address.Country},
			firestore.Update{Path: "region", Value: p.Address.Region},
			firestore.Update{Path: "city", Value: p.Address.City},
			firestore.Update{Path: "area", Value: p.Address.Area},
			firestore.Update{Path: "address", Value: p.Address.Street},
		)
	}
	if p.PricePerMonth != nil {
		ups = append(ups, firestore.Update{Path: "pricePerMonth", Value: *p.PricePerMonth})
	}
	if p.Images != nil {
		ups = append(ups, firestore.Update{Path: "images", Value: nonNil(*p.Images)})
	}
	if p.Amenities != nil {
		ups = append(ups, firestore.Update{Path: "amenities", Value: nonNil(*p.Amenities)})
	}
	if p.Availability != nil {
		ups = append(ups,
			firestore.Update{Path: "status", Value: string(p.Availability.Status())},
			firestore.Update{Path: "releaseDate", Value: p.Availability.ReleaseDatePtr()},
		)
	}
	return append(ups, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
}

type roomRepository struct {
	client *firestore.Client
}

func NewRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &roomRepository{client: client}
}

func (r *roomRepository) rooms() *firestore.CollectionRef {
	return r.client.Collection(roomsCollection)
}

func (r *roomRepository) NewID() string {
	return r.rooms().NewDoc().ID
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		room.ID = r.NewID()
	}
	wr, err := r.rooms().Doc(room.ID).Create(ctx, toRoomDoc(room))
	if err != nil {
		return mapError(err)
	}
	room.CreatedAt = wr.UpdateTime
	room.UpdatedAt = wr.UpdateTime
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	snap, err := r.rooms().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotToRoom(snap)
}

func (r *roomRepository) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	ref := r.rooms().Doc(id)
	if _, err := ref.Update(ctx, patchUpdates(patch)); err != nil {
		return nil, mapError(err)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotToRoom(snap)
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	_, err := r.rooms().Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

func sortFieldOf(q repository.RoomQuery) string {
	if q.SortBy == "" {
		return string(repository.SortByCreatedAt)
	}
	return string(q.SortBy)
}

// buildQuery composes the equality filters, the optional price bound and the
// descending (sort field, document id) ordering that keyset paging relies on.
func (r *roomRepository) buildQuery(q repository.RoomQuery) firestore.Query {
	fq := r.rooms().Query
	if q.Filter.City != "" {
		fq = fq.Where("city", "==", q.Filter.City)
	}
	if q.Filter.Status != "" {
		fq = fq.Where("status", "==", string(q.Filter.Status))
	}
	if q.Filter.BudgetMax != nil {
		fq = fq.Where("pricePerMonth", "<=", *q.Filter.BudgetMax)
	}
	fq = fq.OrderBy(sortFieldOf(q), firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
	if q.After != nil {
		fq = fq.StartAfter(q.After.SortValue, q.After.ID)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit + 1)
	}
	return fq
}

func (r *roomRepository) Query(ctx context.Context, q repository.RoomQuery) (*repository.RoomPage, error) {
	snaps, err := r.buildQuery(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}

	page := &repository.RoomPage{}
	if q.Limit > 0 && len(snaps) > q.Limit {
		snaps = snaps[:q.Limit]
		last := snaps[q.Limit-1]
		v, err := last.DataAt(sortFieldOf(q))
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", last.Ref.ID, err)
		}
		ts, _ := v.(time.Time)
		page.Next = &repository.Position{SortValue: ts, ID: last.Ref.ID}
	}
	for _, snap := range snaps {
		room, err := snapshotToRoom(snap)
		if err != nil {
			logger.Warn("Skipping unreadable room document", "id", snap.Ref.ID, "error", err)
			continue
		}
		page.Rooms = append(page.Rooms, *room)
	}
	return page, nil
}

// ReleaseExpired runs the overdue query and the status flips inside one
// transaction per chunk of maxBatchWrites documents. A concurrent run
// contends on the same documents, retries, and finds nothing left to flip.
func (r *roomRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]string, error) {
	overdue := r.rooms().
		Where("status", "==", string(domain.RoomStatusOccupied)).
		Where("releaseDate", "<=", now).
		Limit(maxBatchWrites)

	var released []string
	for {
		var chunk []string
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			chunk = chunk[:0]
			snaps, err := tx.Documents(overdue).GetAll()
			if err != nil {
				return err
			}
			for _, snap := range snaps {
				err := tx.Update(snap.Ref, []firestore.Update{
					{Path: "status", Value: string(domain.RoomStatusAvailable)},
					{Path: "releaseDate", Value: nil},
					{Path: "updatedAt", Value: firestore.ServerTimestamp},
				})
				if err != nil {
					return err
				}
				chunk = append(chunk, snap.Ref.ID)
			}
			return nil
		})
		if err != nil {
			return released, mapError(err)
		}
		released = append(released, chunk...)
		if len(chunk) < maxBatchWrites {
			return released, nil
		}
	}
}
