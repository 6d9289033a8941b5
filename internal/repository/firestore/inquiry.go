package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

type inquiryDoc struct {
	RoomID    string     `firestore:"roomId"`
	Name      string     `firestore:"name"`
	Phone     string     `firestore:"phone"`
	Message   string     `firestore:"message"`
	DateStart *time.Time `firestore:"dateStart"`
	DateEnd   *time.Time `firestore:"dateEnd"`
	CreatedAt time.Time  `firestore:"createdAt,serverTimestamp"`
}

type inquiryRepository struct {
	client *firestore.Client
}

func NewInquiryRepository(client *firestore.Client) repository.InquiryRepository {
	return &inquiryRepository{client: client}
}

func (r *inquiryRepository) inquiries() *firestore.CollectionRef {
	return r.client.Collection(inquiriesCollection)
}

func (r *inquiryRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	ref := r.inquiries().NewDoc()
	if inq.ID != "" {
		ref = r.inquiries().Doc(inq.ID)
	}
	wr, err := ref.Create(ctx, inquiryDoc{
		RoomID:    inq.RoomID,
		Name:      inq.Name,
		Phone:     inq.Phone,
		Message:   inq.Message,
		DateStart: inq.DateStart,
		DateEnd:   inq.DateEnd,
	})
	if err != nil {
		return mapError(err)
	}
	inq.ID = ref.ID
	inq.CreatedAt = wr.UpdateTime
	return nil
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	snap, err := r.inquiries().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotToInquiry(snap)
}

func (r *inquiryRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error) {
	q := r.inquiries().Where("roomId", "==", roomID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]domain.Inquiry, 0, len(snaps))
	for _, snap := range snaps {
		inq, err := snapshotToInquiry(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *inq)
	}
	return out, nil
}

func snapshotToInquiry(snap *firestore.DocumentSnapshot) (*domain.Inquiry, error) {
	var d inquiryDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return &domain.Inquiry{
		ID:        snap.Ref.ID,
		RoomID:    d.RoomID,
		Name:      d.Name,
		Phone:     d.Phone,
		Message:   d.Message,
		DateStart: d.DateStart,
		DateEnd:   d.DateEnd,
		CreatedAt: d.CreatedAt,
	}, nil
}
