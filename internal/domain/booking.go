package domain

import "time"

// Booking is the append-only persistence record written when a booking form
// is confirmed.
type Booking struct {
	BookingID      string
	ConversationID string
	HotelID        string
	HotelName      string
	HotelCity      string
	HotelPrice     float64
	CheckIn        string
	CheckOut       string
	Guests         int
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Status         BookingStatus
	CreatedAt      time.Time
}

// NewBooking builds the persistence record for a confirmed booking.
func NewBooking(conversationID string, d BookingDetails, now time.Time) Booking {
	b := Booking{
		BookingID:      d.BookingID,
		ConversationID: conversationID,
		CheckIn:        d.CheckIn,
		CheckOut:       d.CheckOut,
		Guests:         d.Guests,
		CustomerName:   d.Name,
		CustomerEmail:  d.Email,
		CustomerPhone:  d.Phone,
		Status:         d.Status,
		CreatedAt:      now.UTC(),
	}
	if d.Hotel != nil {
		h := d.Hotel.Hotel()
		b.HotelID = h.ID
		b.HotelName = h.Name
		b.HotelCity = h.City
		b.HotelPrice = h.Price
	}
	return b
}
