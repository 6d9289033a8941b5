package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

type inquiryRepository struct {
	db *sql.DB
}

func NewInquiryRepository(db *sql.DB) repository.InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	if inq.ID == "" {
		inq.ID = uuid.NewString()
	}
	query := `INSERT INTO inquiries (id, room_id, name, phone, message, date_start, date_end, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, inq.ID, inq.RoomID, inq.Name, inq.Phone, inq.Message, inq.DateStart, inq.DateEnd).
		Scan(&inq.CreatedAt)
	return mapError(err)
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	query := `SELECT id, room_id, name, phone, message, date_start, date_end, created_at FROM inquiries WHERE id = $1`
	inq, err := scanInquiry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return inq, nil
}

func (r *inquiryRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error) {
	query := `SELECT id, room_id, name, phone, message, date_start, date_end, created_at
	          FROM inquiries WHERE room_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *inq)
	}
	return out, mapError(rows.Err())
}

func scanInquiry(s scanner) (*domain.Inquiry, error) {
	var (
		inq        domain.Inquiry
		start, end sql.NullTime
	)
	if err := s.Scan(&inq.ID, &inq.RoomID, &inq.Name, &inq.Phone, &inq.Message, &start, &end, &inq.CreatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		inq.DateStart = &start.Time
	}
	if end.Valid {
		inq.DateEnd = &end.Time
	}
	return &inq, nil
}
