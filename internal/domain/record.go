package domain

import "time"

// RoomRecord is the flat wire form of a Room, using the collection's field names.
type RoomRecord struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Country       string     `json:"country"`
	Region        string     `json:"region"`
	City          string     `json:"city"`
	Area          string     `json:"area"`
	Address       string     `json:"address"`
	PricePerMonth int64      `json:"pricePerMonth"`
	Currency      string     `json:"currency"`
	Images        []string   `json:"images"`
	Amenities     []string   `json:"amenities"`
	Status        string     `json:"status"`
	ReleaseDate   *time.Time `json:"releaseDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (r *Room) Record() RoomRecord {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return RoomRecord{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Country:       r.Address.Country,
		Region:        r.Address.Region,
		City:          r.Address.City,
		Area:          r.Address.Area,
		Address:       r.Address.Street,
		PricePerMonth: r.PricePerMonth,
		Currency:      r.Currency,
		Images:        images,
		Amenities:     amenities,
		Status:        string(r.Availability.Status()),
		ReleaseDate:   r.Availability.ReleaseDatePtr(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Room rebuilds the domain value, enforcing the status/release date pairing.
func (rec RoomRecord) Room() (*Room, error) {
	availability, err := ParseAvailability(rec.Status, rec.ReleaseDate)
	if err != nil {
		return nil, err
	}
	return &Room{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Address: Address{
			Country: rec.Country,
			Region:  rec.Region,
			City:    rec.City,
			Area:    rec.Area,
			Street:  rec.Address,
		},
		PricePerMonth: rec.PricePerMonth,
		Currency:      rec.Currency,
		Images:        rec.Images,
		Amenities:     rec.Amenities,
		Availability:  availability,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

// InquiryRecord is the wire form of an Inquiry.
type InquiryRecord struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"roomId"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Message   string     `json:"message"`
	DateStart *time.Time `json:"dateStart"`
	DateEnd   *time.Time `json:"dateEnd"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (i *Inquiry) Record() InquiryRecord {
	return InquiryRecord{
		ID:        i.ID,
		RoomID:    i.RoomID,
		Name:      i.Name,
		Phone:     i.Phone,
		Message:   i.Message,
		DateStart: i.DateStart,
		DateEnd:   i.DateEnd,
		CreatedAt: i.CreatedAt,
	}
}
