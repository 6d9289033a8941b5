package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/domain"
)

func TestInquiryRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInquiryRepository(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	inq := &domain.Inquiry{RoomID: "r1", Name: "Ama", Phone: "+22890000000", DateStart: &start}
	mock.ExpectQuery("INSERT INTO inquiries").
		WithArgs(sqlmock.AnyArg(), "r1", "Ama", "+22890000000", "", &start, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Create(context.Background(), inq))
	assert.NotEmpty(t, inq.ID)
	assert.Equal(t, created, inq.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryRepository_ListByRoom(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInquiryRepository(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "room_id", "name", "phone", "message", "date_start", "date_end", "created_at"}).
		AddRow("i2", "r1", "Kofi", "+22891111111", "Disponible ?", nil, nil, created).
		AddRow("i1", "r1", "Ama", "+22890000000", "", nil, nil, created.Add(-time.Hour))

	mock.ExpectQuery(`SELECT (.+) FROM inquiries WHERE room_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`).
		WithArgs("r1", 10).
		WillReturnRows(rows)

	out, err := repo.ListByRoom(context.Background(), "r1", 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "i2", out[0].ID)
	assert.Nil(t, out[0].DateStart)
}
