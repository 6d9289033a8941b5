package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// StatusFilterAll disables the status predicate.
const StatusFilterAll = "all"

// ListingFilter is the normalized filter set of the listing query builder.
// Zero values mean "no predicate" for City and BudgetMax.
type ListingFilter struct {
	City      string     `json:"city"`
	BudgetMax *int64     `json:"budgetMax,omitempty"`
	Status    RoomStatus `json:"status,omitempty"`
}

// RawListingFilter is the filter set as typed by a user.
type RawListingFilter struct {
	City      string `json:"city"`
	BudgetMax string `json:"budgetMax"`
	Status    string `json:"status"`
}

// Normalize turns raw input into a ListingFilter. A budget that is not a
// positive finite number is dropped rather than reported.
func (raw RawListingFilter) Normalize() (ListingFilter, error) {
	f := ListingFilter{City: strings.TrimSpace(raw.City)}
	f.BudgetMax = ParseBudget(raw.BudgetMax)

	status := strings.TrimSpace(raw.Status)
	if status != "" && status != StatusFilterAll {
		s := RoomStatus(status)
		if !s.Valid() {
			return ListingFilter{}, NewValidationError("status", "unknown status filter "+strconv.Quote(status))
		}
		f.Status = s
	}
	return f, nil
}

// ParseBudget accepts "60000", "60 000" or "60000.0"; anything else yields nil.
func ParseBudget(s string) *int64 {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > math.MaxInt64/2 {
		return nil
	}
	b := int64(math.Floor(v))
	if b <= 0 {
		return nil
	}
	return &b
}

// Matches reports whether r satisfies every active predicate.
func (f ListingFilter) Matches(r *Room) bool {
	if f.City != "" && r.Address.City != f.City {
		return false
	}
	if f.Status != "" && r.Availability.Status() != f.Status {
		return false
	}
	if f.BudgetMax != nil && r.PricePerMonth > *f.BudgetMax {
		return false
	}
	return true
}

// Fingerprint identifies the filter set; cursors are bound to it.
func (f ListingFilter) Fingerprint() string {
	var b strings.Builder
	b.WriteString("c=")
	b.WriteString(strconv.Quote(f.City))
	b.WriteString(";s=")
	b.WriteString(string(f.Status))
	b.WriteString(";b=")
	if f.BudgetMax != nil {
		b.WriteString(strconv.FormatInt(*f.BudgetMax, 10))
	}
	return b.String()
}

func (f ListingFilter) Equal(g ListingFilter) bool {
	return f.Fingerprint() == g.Fingerprint()
}
