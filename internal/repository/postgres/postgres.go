package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.RoomRepository
	repository.InquiryRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		RoomRepository:    NewRoomRepository(db),
		InquiryRepository: NewInquiryRepository(db),
	}
}

// Schema creates the tables if they are missing. The check constraint keeps
// the status and release date pairing true at rest.
const Schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	region          TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL,
	area            TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	price_per_month BIGINT NOT NULL CHECK (price_per_month > 0),
	currency        TEXT NOT NULL DEFAULT 'XOF',
	images          TEXT[] NOT NULL DEFAULT '{}',
	amenities       TEXT[] NOT NULL DEFAULT '{}',
	status          TEXT NOT NULL DEFAULT 'libre',
	release_date    TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT rooms_release_date_pairing CHECK ((status = 'en_location') = (release_date IS NOT NULL))
);
CREATE INDEX IF NOT EXISTS rooms_created_at_idx ON rooms (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS rooms_updated_at_idx ON rooms (updated_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS rooms_release_idx ON rooms (release_date) WHERE status = 'en_location';

CREATE TABLE IF NOT EXISTS inquiries (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	date_start TIMESTAMPTZ,
	date_end   TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS inquiries_room_idx ON inquiries (room_id, created_at DESC);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", mapError(err))
	}
	return nil
}

// mapError folds driver failures into the domain error categories.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "57":
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		case "23":
			return fmt.Errorf("%w: %s", domain.ErrValidation, pqErr.Message)
		}
	}
	return err
}
