package domain

import (
	"strings"
	"time"
)

// Inquiry is a lead captured from the room detail page. It holds a weak
// reference to its room and never locks or reserves it.
type Inquiry struct {
	ID        string
	RoomID    string
	Name      string
	Phone     string
	Message   string
	DateStart *time.Time
	DateEnd   *time.Time
	CreatedAt time.Time
}

// Validate applies the lead-capture rules relative to now in loc: the start
// date cannot precede the creation day and the end cannot precede the start.
func (i *Inquiry) Validate(now time.Time, loc *time.Location) error {
	if strings.TrimSpace(i.RoomID) == "" {
		return NewValidationError("roomId", "room is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(i.Phone) == "" {
		return NewValidationError("phone", "phone is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if i.DateStart != nil && i.DateStart.Before(StartOfDay(now, loc)) {
		return NewValidationError("dateStart", "start date cannot be in the past")
	}
	if i.DateEnd != nil {
		if i.DateStart == nil {
			return NewValidationError("dateStart", "start date is required when an end date is given")
		}
		if i.DateEnd.Before(*i.DateStart) {
			return NewValidationError("dateEnd", "end date cannot precede start date")
		}
	}
	return nil
}

func (i *Inquiry) Normalize() {
	i.RoomID = strings.TrimSpace(i.RoomID)
	i.Name = strings.TrimSpace(i.Name)
	i.Phone = strings.TrimSpace(i.Phone)
	i.Message = strings.TrimSpace(i.Message)
}
