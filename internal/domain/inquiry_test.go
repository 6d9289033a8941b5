package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInquiry_Validate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)
	day := func(offset int) *time.Time {
		d := time.Date(2026, 3, 10+offset, 0, 0, 0, 0, loc)
		return &d
	}
	base := func() Inquiry {
		return Inquiry{RoomID: "r1", Name: "Ama", Phone: "+228 90 00 00 00"}
	}

	t.Run("NoDates", func(t *testing.T) {
		inq := base()
		assert.NoError(t, inq.Validate(now, loc))
	})

	t.Run("StartToday", func(t *testing.T) {
		inq := base()
		inq.DateStart = day(0)
		assert.NoError(t, inq.Validate(now, loc))
	})

	t.Run("StartYesterdayRejected", func(t *testing.T) {
		inq := base()
		inq.DateStart = day(-1)
		err := inq.Validate(now, loc)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "dateStart")
	})

	t.Run("EndBeforeStartRejected", func(t *testing.T) {
		inq := base()
		inq.DateStart = day(3)
		inq.DateEnd = day(2)
		assert.ErrorIs(t, inq.Validate(now, loc), ErrValidation)
	})

	t.Run("EndEqualsStart", func(t *testing.T) {
		inq := base()
		inq.DateStart = day(3)
		inq.DateEnd = day(3)
		assert.NoError(t, inq.Validate(now, loc))
	})

	t.Run("EndWithoutStartRejected", func(t *testing.T) {
		inq := base()
		inq.DateEnd = day(3)
		assert.ErrorIs(t, inq.Validate(now, loc), ErrValidation)
	})

	t.Run("MissingPhone", func(t *testing.T) {
		inq := base()
		inq.Phone = "  "
		var verr *ValidationError
		assert.ErrorAs(t, inq.Validate(now, loc), &verr)
		assert.Equal(t, "phone", verr.Field)
	})
}
