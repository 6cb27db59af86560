package dialogue

import (
	"regexp"
	"strings"

	"hotel-agent/internal/domain"
)

// LastHotelInFocus returns the hotel of the newest message that shows exactly
// one hotel. Lists of several suggestions do not move the focus.
func LastHotelInFocus(history []domain.Message) (domain.Hotel, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if len(history[i].HotelData) == 1 {
			return history[i].HotelData[0].Hotel(), true
		}
	}
	return domain.Hotel{}, false
}

// confirmedBooking returns the booking an assistant confirmation carries.
// User messages only echo form input and never count as bookings.
func confirmedBooking(m domain.Message) *domain.BookingDetails {
	if m.Role != domain.RoleAssistant || m.BookingDetails == nil || m.BookingDetails.BookingID == "" {
		return nil
	}
	return m.BookingDetails
}

// ActiveBooking finds the message holding an active booking. With an id it
// looks for that booking only; without one it returns the newest active
// booking.
func ActiveBooking(history []domain.Message, bookingID string) (domain.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		d := confirmedBooking(history[i])
		if d == nil || d.Status != domain.BookingActive {
			continue
		}
		if bookingID == "" || strings.EqualFold(d.BookingID, bookingID) {
			return history[i], true
		}
	}
	return domain.Message{}, false
}

// LatestBooking returns the newest message carrying a booking id in any
// status, optionally restricted to one id.
func LatestBooking(history []domain.Message, bookingID string) (domain.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		d := confirmedBooking(history[i])
		if d == nil {
			continue
		}
		if bookingID == "" || strings.EqualFold(d.BookingID, bookingID) {
			return history[i], true
		}
	}
	return domain.Message{}, false
}

// PendingBookingForm returns the newest booking form the assistant showed,
// unless a confirmed booking follows it.
func PendingBookingForm(history []domain.Message) (domain.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if confirmedBooking(m) != nil {
			return domain.Message{}, false
		}
		if m.Role == domain.RoleAssistant && m.IsBookingForm && len(m.HotelData) > 0 {
			return m, true
		}
	}
	return domain.Message{}, false
}

var bookingIDPattern = regexp.MustCompile(`(?i)\bMK-[A-Z0-9]+`)

// ParseBookingID extracts the first booking id in text, upper-cased.
func ParseBookingID(text string) string {
	return strings.ToUpper(bookingIDPattern.FindString(text))
}

// bookingIDs collects every booking id already issued in history.
func bookingIDs(history []domain.Message) map[string]struct{} {
	ids := map[string]struct{}{}
	for _, m := range history {
		if m.BookingDetails != nil && m.BookingDetails.BookingID != "" {
			ids[m.BookingDetails.BookingID] = struct{}{}
		}
	}
	return ids
}
