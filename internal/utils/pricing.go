package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

func (d Date) before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// DateDifference is a span in whole months plus remaining days.
type DateDifference struct {
	Months int
	Days   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(dateStr), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date component %q: %v", p, err)
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}

	if d.Month < 1 || d.Month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return Date{}, fmt.Errorf("day %d does not exist in %04d-%02d", d.Day, d.Year, d.Month)
	}
	return d, nil
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

// CalculateDateDifference computes the occupancy span from start up to,
// but excluding, end as whole months plus remaining days.
func CalculateDateDifference(start, end Date) (DateDifference, error) {
	if end.before(start) {
		return DateDifference{}, fmt.Errorf("end date must be >= start date")
	}

	months := (end.Year-start.Year)*12 + end.Month - start.Month
	days := end.Day - start.Day
	if days < 0 {
		months--
		prevYear, prevMonth := end.Year, end.Month-1
		if prevMonth < 1 {
			prevYear, prevMonth = prevYear-1, 12
		}
		days += DaysInMonth(prevYear, prevMonth)
	}
	return DateDifference{Months: months, Days: days}, nil
}

// daysPerBillingMonth prorates partial months.
const daysPerBillingMonth = 30

// PriceEstimate is the booking widget's quote for a requested stay.
type PriceEstimate struct {
	Months     int    `json:"months"`
	Days       int    `json:"days"`
	MonthsCost int64  `json:"monthsCost"`
	DaysCost   int64  `json:"daysCost"`
	Total      int64  `json:"total"`
	Currency   string `json:"currency"`
}

// EstimateRent quotes a stay at pricePerMonth: full months at the monthly
// price and leftover days prorated over a 30-day month, rounded to the
// nearest unit. A same-day stay is billed as one day.
func EstimateRent(pricePerMonth int64, currency string, start, end time.Time) (PriceEstimate, error) {
	if pricePerMonth <= 0 {
		return PriceEstimate{}, fmt.Errorf("price per month must be positive")
	}
	diff, err := CalculateDateDifference(DateOf(start), DateOf(end))
	if err != nil {
		return PriceEstimate{}, err
	}
	if diff.Months == 0 && diff.Days == 0 {
		diff.Days = 1
	}

	est := PriceEstimate{
		Months:     diff.Months,
		Days:       diff.Days,
		MonthsCost: int64(diff.Months) * pricePerMonth,
		DaysCost:   (int64(diff.Days)*pricePerMonth + daysPerBillingMonth/2) / daysPerBillingMonth,
		Currency:   currency,
	}
	est.Total = est.MonthsCost + est.DaysCost
	return est, nil
}

// FormatAmount renders an amount with thin grouping, e.g. "45 000 XOF".
func FormatAmount(amount int64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}
