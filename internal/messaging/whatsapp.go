package messaging

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/utils"
)

const deepLinkBase = "https://wa.me/"

var ErrNoPhoneDigits = errors.New("phone number has no digits")

// PhoneDigits keeps only the digits of a phone number as typed.
func PhoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// DeepLink builds a wa.me link to phone with an optional pre-filled text.
func DeepLink(phone, text string) (string, error) {
	digits := PhoneDigits(phone)
	if digits == "" {
		return "", ErrNoPhoneDigits
	}
	link := deepLinkBase + digits
	if text = strings.TrimSpace(text); text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link, nil
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDate renders t as "2 mars 2026" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// InquiryText is the message pre-filled in the operator link after an
// inquiry is captured. room and est may be nil.
func InquiryText(inq *domain.Inquiry, room *domain.Room, est *utils.PriceEstimate, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(inq.Message)

	if room != nil {
		fmt.Fprintf(&b, "\nChambre : %s (%s)", room.Title, room.Address.City)
		fmt.Fprintf(&b, "\nLoyer : %s / mois", utils.FormatAmount(room.PricePerMonth, room.Currency))
	} else {
		fmt.Fprintf(&b, "\nRéférence : %s", inq.RoomID)
	}

	if inq.DateStart != nil {
		fmt.Fprintf(&b, "\nDu %s", FormatDate(*inq.DateStart, loc))
		if inq.DateEnd != nil {
			fmt.Fprintf(&b, " au %s", FormatDate(*inq.DateEnd, loc))
		}
	}
	if est != nil {
		fmt.Fprintf(&b, "\nEstimation : %s", utils.FormatAmount(est.Total, est.Currency))
	}

	fmt.Fprintf(&b, "\n%s", signature(inq))
	return b.String()
}

func signature(inq *domain.Inquiry) string {
	name := strings.TrimFunc(inq.Name, unicode.IsSpace)
	if inq.Phone == "" {
		return name
	}
	return name + " - " + inq.Phone
}
