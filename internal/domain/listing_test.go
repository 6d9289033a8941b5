package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		nil  bool
	}{
		{"60000", 60000, false},
		{" 60 000 ", 60000, false},
		{"60000.9", 60000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"-5", 0, true},
		{"0", 0, true},
		{"0.4", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseBudget(tt.in)
			if tt.nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestRawListingFilter_Normalize(t *testing.T) {
	f, err := RawListingFilter{City: " Lomé ", BudgetMax: "NaN", Status: "all"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Lomé", f.City)
	assert.Nil(t, f.BudgetMax)
	assert.Equal(t, RoomStatus(""), f.Status)

	f, err = RawListingFilter{Status: "en_location", BudgetMax: "45000"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, RoomStatusOccupied, f.Status)
	assert.Equal(t, int64(45000), *f.BudgetMax)

	_, err = RawListingFilter{Status: "occupied"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListingFilter_Fingerprint(t *testing.T) {
	b1, b2 := int64(50000), int64(50000)
	a := ListingFilter{City: "Lomé", BudgetMax: &b1}
	b := ListingFilter{City: "Lomé", BudgetMax: &b2}
	assert.True(t, a.Equal(b))

	b.Status = RoomStatusAvailable
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, ListingFilter{}.Fingerprint(), ListingFilter{City: ";s="}.Fingerprint())
}

func TestListingFilter_Matches(t *testing.T) {
	budget := int64(60000)
	room := &Room{Address: Address{City: "Lomé"}, PricePerMonth: 50000, Availability: Available()}

	assert.True(t, ListingFilter{City: "Lomé", BudgetMax: &budget}.Matches(room))
	assert.True(t, ListingFilter{Status: RoomStatusAvailable}.Matches(room))
	assert.False(t, ListingFilter{Status: RoomStatusOccupied}.Matches(room))

	budget = 50000
	assert.True(t, ListingFilter{BudgetMax: &budget}.Matches(room), "budget is inclusive")
	budget = 40000
	assert.False(t, ListingFilter{BudgetMax: &budget}.Matches(room))
}
