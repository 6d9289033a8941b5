package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

const roomColumns = `id, title, description, country, region, city, area, address, price_per_month, currency, images, amenities, status, release_date, created_at, updated_at`

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) NewID() string {
	return uuid.NewString()
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		room.ID = r.NewID()
	}
	query := `INSERT INTO rooms (id, title, description, country, region, city, area, address, price_per_month, currency, images, amenities, status, release_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		room.ID, room.Title, room.Description,
		room.Address.Country, room.Address.Region, room.Address.City, room.Address.Area, room.Address.Street,
		room.PricePerMonth, room.Currency, pq.Array(room.Images), pq.Array(room.Amenities),
		string(room.Availability.Status()), room.Availability.ReleaseDatePtr(),
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	return mapError(err)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return room, nil
}

func (r *roomRepository) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Address != nil {
		set("country", patch.Address.Country)
		set("region", patch.Address.Region)
		set("city", patch.Address.City)
		set("area", patch.Address.Area)
		set("address", patch.Address.Street)
	}
	if patch.PricePerMonth != nil {
		set("price_per_month", *patch.PricePerMonth)
	}
	if patch.Images != nil {
		set("images", pq.Array(*patch.Images))
	}
	if patch.Amenities != nil {
		set("amenities", pq.Array(*patch.Amenities))
	}
	if patch.Availability != nil {
		set("status", string(patch.Availability.Status()))
		set("release_date", patch.Availability.ReleaseDatePtr())
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE rooms SET %s WHERE id = $%d RETURNING `+roomColumns, strings.Join(sets, ", "), len(args))
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return room, nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func sortColumn(f repository.SortField) string {
	if f == repository.SortByUpdatedAt {
		return "updated_at"
	}
	return "created_at"
}

func (r *roomRepository) Query(ctx context.Context, q repository.RoomQuery) (*repository.RoomPage, error) {
	sql := `SELECT ` + roomColumns + ` FROM rooms WHERE TRUE`
	var args []interface{}
	argIdx := 1

	if q.Filter.City != "" {
		sql += fmt.Sprintf(" AND city = $%d", argIdx)
		args = append(args, q.Filter.City)
		argIdx++
	}
	if q.Filter.Status != "" {
		sql += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(q.Filter.Status))
		argIdx++
	}
	if q.Filter.BudgetMax != nil {
		sql += fmt.Sprintf(" AND price_per_month <= $%d", argIdx)
		args = append(args, *q.Filter.BudgetMax)
		argIdx++
	}
	column := sortColumn(q.SortBy)
	if q.After != nil {
		sql += fmt.Sprintf(" AND (%s, id) < ($%d, $%d)", column, argIdx, argIdx+1)
		args = append(args, q.After.SortValue, q.After.ID)
		argIdx += 2
	}
	sql += fmt.Sprintf(" ORDER BY %s DESC, id DESC", column)
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, q.Limit+1)
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	page := &repository.RoomPage{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		page.Rooms = append(page.Rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	if q.Limit > 0 && len(page.Rooms) > q.Limit {
		page.Rooms = page.Rooms[:q.Limit]
		last := repository.PositionOf(&page.Rooms[q.Limit-1], q.SortBy)
		page.Next = &last
	}
	return page, nil
}

// ReleaseExpired is a single statement, so the flip is all-or-nothing and a
// concurrent run finds nothing left to release.
func (r *roomRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]string, error) {
	query := `UPDATE rooms SET status = 'libre', release_date = NULL, updated_at = NOW()
	          WHERE status = 'en_location' AND release_date <= $1 RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s scanner) (*domain.Room, error) {
	var (
		room        domain.Room
		status      string
		releaseDate sql.NullTime
	)
	err := s.Scan(&room.ID, &room.Title, &room.Description,
		&room.Address.Country, &room.Address.Region, &room.Address.City, &room.Address.Area, &room.Address.Street,
		&room.PricePerMonth, &room.Currency, pq.Array(&room.Images), pq.Array(&room.Amenities),
		&status, &releaseDate, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, err
	}
	var rd *time.Time
	if releaseDate.Valid {
		rd = &releaseDate.Time
	}
	room.Availability, err = domain.ParseAvailability(status, rd)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", room.ID, err)
	}
	return &room, nil
}
