package domain

import (
	"fmt"
	"time"
)

// RoomStatus is the persisted form of a room's availability.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "libre"
	RoomStatusOccupied    RoomStatus = "en_location"
	RoomStatusReservation RoomStatus = "reservation"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusReservation:
		return true
	}
	return false
}

// Availability is one of Available, Occupied{until} or Reserved.
// The release date only exists on the Occupied variant, so a status and
// release date that disagree cannot be constructed.
type Availability struct {
	status RoomStatus
	until  time.Time
}

func Available() Availability {
	return Availability{status: RoomStatusAvailable}
}

func Reserved() Availability {
	return Availability{status: RoomStatusReservation}
}

// Occupied returns the en_location variant. A zero release date is rejected.
func Occupied(until time.Time) (Availability, error) {
	if until.IsZero() {
		return Availability{}, NewValidationError("releaseDate", "release date is required when status is en_location")
	}
	return Availability{status: RoomStatusOccupied, until: until.UTC()}, nil
}

// ParseAvailability rebuilds an Availability from its stored pair.
// A stray release date on libre/reservation is dropped.
func ParseAvailability(status string, releaseDate *time.Time) (Availability, error) {
	switch RoomStatus(status) {
	case RoomStatusAvailable, "":
		return Available(), nil
	case RoomStatusReservation:
		return Reserved(), nil
	case RoomStatusOccupied:
		if releaseDate == nil {
			return Occupied(time.Time{})
		}
		return Occupied(*releaseDate)
	default:
		return Availability{}, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
}

func (a Availability) Status() RoomStatus {
	if a.status == "" {
		return RoomStatusAvailable
	}
	return a.status
}

// ReleaseDate reports the release timestamp; ok is false unless Occupied.
func (a Availability) ReleaseDate() (time.Time, bool) {
	if a.status != RoomStatusOccupied {
		return time.Time{}, false
	}
	return a.until, true
}

// ReleaseDatePtr is the storage form of the release date: nil unless Occupied.
func (a Availability) ReleaseDatePtr() *time.Time {
	if t, ok := a.ReleaseDate(); ok {
		return &t
	}
	return nil
}

// Overdue reports whether an occupied room should have reverted to libre by now.
func (a Availability) Overdue(now time.Time) bool {
	t, ok := a.ReleaseDate()
	return ok && !t.After(now)
}

func (a Availability) Equal(b Availability) bool {
	return a.Status() == b.Status() && a.until.Equal(b.until)
}

func (a Availability) String() string {
	if t, ok := a.ReleaseDate(); ok {
		return fmt.Sprintf("%s until %s", a.Status(), t.Format(time.RFC3339))
	}
	return string(a.Status())
}

// Transition validates an admin-driven change from a to next.
// Entering or re-dating en_location requires a release date on or after the
// start of today in loc.
func (a Availability) Transition(next Availability, now time.Time, loc *time.Location) error {
	until, occupied := next.ReleaseDate()
	if !occupied {
		return nil
	}
	if prev, ok := a.ReleaseDate(); ok && prev.Equal(until) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if until.Before(StartOfDay(now, loc)) {
		return NewValidationError("releaseDate", "release date cannot be in the past")
	}
	return nil
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
