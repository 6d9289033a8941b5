package domain

import (
	"strings"
	"time"
)

const DefaultCurrency = "XOF"

type Address struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Area    string `json:"area"`
	Street  string `json:"address"`
}

type Room struct {
	ID            string
	Title         string
	Description   string
	Address       Address
	PricePerMonth int64
	Currency      string
	Images        []string
	Amenities     []string
	Availability  Availability
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the fields an admin must supply before any write.
func (r *Room) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if r.PricePerMonth <= 0 {
		return NewValidationError("pricePerMonth", "price per month must be a positive amount")
	}
	if strings.TrimSpace(r.Address.City) == "" {
		return NewValidationError("city", "city is required")
	}
	return nil
}

// Normalize trims the free-text fields the way the admin form submits them.
func (r *Room) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Address.Country = strings.TrimSpace(r.Address.Country)
	r.Address.Region = strings.TrimSpace(r.Address.Region)
	r.Address.City = strings.TrimSpace(r.Address.City)
	r.Address.Area = strings.TrimSpace(r.Address.Area)
	r.Address.Street = strings.TrimSpace(r.Address.Street)
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	r.Images = compact(r.Images)
	r.Amenities = compact(r.Amenities)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RoomPatch carries a merge-write: nil fields are left untouched.
type RoomPatch struct {
	Title         *string
	Description   *string
	Address       *Address
	PricePerMonth *int64
	Images        *[]string
	Amenities     *[]string
	Availability  *Availability
}

func (p RoomPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Address == nil && p.PricePerMonth == nil &&
		p.Images == nil && p.Amenities == nil && p.Availability == nil
}

// Apply returns a copy of r with the patch merged in.
func (p RoomPatch) Apply(r Room) Room {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.PricePerMonth != nil {
		r.PricePerMonth = *p.PricePerMonth
	}
	if p.Images != nil {
		r.Images = append([]string(nil), (*p.Images)...)
	}
	if p.Amenities != nil {
		r.Amenities = append([]string(nil), (*p.Amenities)...)
	}
	if p.Availability != nil {
		r.Availability = *p.Availability
	}
	return r
}
