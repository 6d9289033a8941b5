package http

import (
	"strings"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/service"
	"locationapp-backend/internal/utils"
)

type listingResponse struct {
	Rooms      []domain.RoomRecord `json:"rooms"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

func toListingResponse(page *service.ListingPage) listingResponse {
	out := listingResponse{Rooms: make([]domain.RoomRecord, len(page.Rooms)), NextCursor: page.NextCursor}
	for i := range page.Rooms {
		out.Rooms[i] = page.Rooms[i].Record()
	}
	return out
}

// roomInput is the admin create form.
type roomInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Country       string   `json:"country"`
	Region        string   `json:"region"`
	City          string   `json:"city"`
	Area          string   `json:"area"`
	Address       string   `json:"address"`
	PricePerMonth int64    `json:"pricePerMonth"`
	Images        []string `json:"images"`
	Amenities     []string `json:"amenities"`
	Status        string   `json:"status"`
	ReleaseDate   string   `json:"releaseDate"`
}

func (in roomInput) toRoom(loc *time.Location) (*domain.Room, error) {
	release, err := parseDay("releaseDate", in.ReleaseDate, loc)
	if err != nil {
		return nil, err
	}
	availability, err := domain.ParseAvailability(in.Status, release)
	if err != nil {
		return nil, err
	}
	return &domain.Room{
		Title:       in.Title,
		Description: in.Description,
		Address: domain.Address{
			Country: in.Country,
			Region:  in.Region,
			City:    in.City,
			Area:    in.Area,
			Street:  in.Address,
		},
		PricePerMonth: in.PricePerMonth,
		Images:        in.Images,
		Amenities:     in.Amenities,
		Availability:  availability,
	}, nil
}

// roomPatchInput is the admin edit form; absent fields are left untouched.
type roomPatchInput struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Country       *string   `json:"country"`
	Region        *string   `json:"region"`
	City          *string   `json:"city"`
	Area          *string   `json:"area"`
	Address       *string   `json:"address"`
	PricePerMonth *int64    `json:"pricePerMonth"`
	Images        *[]string `json:"images"`
	Amenities     *[]string `json:"amenities"`
	Status        *string   `json:"status"`
	ReleaseDate   *string   `json:"releaseDate"`
}

func (in roomPatchInput) touchesAddress() bool {
	return in.Country != nil || in.Region != nil || in.City != nil || in.Area != nil || in.Address != nil
}

// toPatch builds the merge-write. current supplies the address fields the
// form did not send, since the address is written as a whole.
func (in roomPatchInput) toPatch(current *domain.Room, loc *time.Location) (domain.RoomPatch, error) {
	patch := domain.RoomPatch{
		Title:         in.Title,
		Description:   in.Description,
		PricePerMonth: in.PricePerMonth,
		Images:        in.Images,
		Amenities:     in.Amenities,
	}

	if in.touchesAddress() {
		addr := current.Address
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&addr.Country, in.Country)
		set(&addr.Region, in.Region)
		set(&addr.City, in.City)
		set(&addr.Area, in.Area)
		set(&addr.Street, in.Address)
		patch.Address = &addr
	}

	switch {
	case in.Status != nil:
		var raw string
		if in.ReleaseDate != nil {
			raw = *in.ReleaseDate
		}
		release, err := parseDay("releaseDate", raw, loc)
		if err != nil {
			return patch, err
		}
		availability, err := domain.ParseAvailability(*in.Status, release)
		if err != nil {
			return patch, err
		}
		patch.Availability = &availability
	case in.ReleaseDate != nil:
		return patch, domain.NewValidationError("status", "status is required when changing the release date")
	}
	return patch, nil
}

type toggleInput struct {
	ReleaseDate string `json:"releaseDate"`
}

type inquiryInput struct {
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

func (in inquiryInput) toInquiry(loc *time.Location) (*domain.Inquiry, error) {
	start, err := parseDay("dateStart", in.DateStart, loc)
	if err != nil {
		return nil, err
	}
	end, err := parseDay("dateEnd", in.DateEnd, loc)
	if err != nil {
		return nil, err
	}
	return &domain.Inquiry{
		RoomID:    in.RoomID,
		Name:      in.Name,
		Phone:     in.Phone,
		Message:   in.Message,
		DateStart: start,
		DateEnd:   end,
	}, nil
}

type receiptResponse struct {
	Inquiry         domain.InquiryRecord `json:"inquiry"`
	Room            *domain.RoomRecord   `json:"room"`
	RoomUnavailable bool                 `json:"roomUnavailable"`
	Estimate        *utils.PriceEstimate `json:"estimate,omitempty"`
	OperatorLink    string               `json:"operatorLink,omitempty"`
	RequesterLink   string               `json:"requesterLink,omitempty"`
}

func toReceiptResponse(r *service.InquiryReceipt) receiptResponse {
	out := receiptResponse{
		Inquiry:         r.Inquiry.Record(),
		RoomUnavailable: r.RoomUnavailable,
		Estimate:        r.Estimate,
		OperatorLink:    r.OperatorLink,
		RequesterLink:   r.RequesterLink,
	}
	if r.Room != nil {
		rec := r.Room.Record()
		out.Room = &rec
	}
	return out
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// parseDay accepts yyyy-mm-dd (midnight in loc) or RFC 3339. Empty input
// yields nil.
func parseDay(field, s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := utils.ParseDate(s); err == nil {
		t := d.Time(loc)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.NewValidationError(field, "expected a date as yyyy-mm-dd")
	}
	return &t, nil
}
