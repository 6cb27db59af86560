package domain

import "fmt"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// BookingStatus moves from active to cancelled exactly once.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingDetails is the booking form payload plus the generated id and status.
type BookingDetails struct {
	Hotel     *HotelRef     `json:"hotel,omitempty"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Guests    int           `json:"guests"`
	CheckIn   string        `json:"checkIn"`
	CheckOut  string        `json:"checkOut"`
	RoomType  string        `json:"roomType,omitempty"`
	BedSize   string        `json:"bedSize,omitempty"`
	Smoking   bool          `json:"smoking"`
	BookingID string        `json:"bookingId,omitempty"`
	Status    BookingStatus `json:"bookingStatus,omitempty"`
}

// HotelName returns the name of the booked hotel, or "" when none is attached.
func (d BookingDetails) HotelName() string {
	if d.Hotel == nil {
		return ""
	}
	return d.Hotel.Hotel().Name
}

// Message is a single conversation turn. History is append-only; the only
// retroactive change is a booking status patch applied by the caller.
type Message struct {
	ID             string          `json:"id"`
	Role           Role            `json:"role"`
	Content        string          `json:"content"`
	HotelData      []HotelRef      `json:"hotelData,omitempty"`
	IsBookingForm  bool            `json:"isBookingForm,omitempty"`
	QuickReplies   []string        `json:"quickReplies,omitempty"`
	BookingDetails *BookingDetails `json:"bookingDetails,omitempty"`
}

// MessagePatch replaces the booking details of an earlier message.
type MessagePatch struct {
	TargetID       string
	BookingDetails BookingDetails
}

// Reply is the router output: a message without id and role, plus an
// optional patch command for an earlier message.
type Reply struct {
	Content        string
	HotelData      []HotelRef
	IsBookingForm  bool
	QuickReplies   []string
	BookingDetails *BookingDetails
	Patch          *MessagePatch
}

// Message materializes the reply as an assistant message with the given id.
func (r Reply) Message(id string) Message {
	return Message{
		ID:             id,
		Role:           RoleAssistant,
		Content:        r.Content,
		HotelData:      r.HotelData,
		IsBookingForm:  r.IsBookingForm,
		QuickReplies:   r.QuickReplies,
		BookingDetails: r.BookingDetails,
	}
}

// ConversationMeta stores aggregate conversation state. Messages is the
// number of stored messages and seeds the next message id.
type ConversationMeta struct {
	ConversationID string
	LastActivity   string
	Turns          int
	Messages       int
	TTL            int64
}

// Turn is everything one chat turn writes: the new messages in arrival
// order, an optional booking patch on an earlier message and the updated
// metadata. PrevTurns is the turn count read before routing; the write must
// fail if another turn landed in between.
type Turn struct {
	ConversationID string
	Messages       []Message
	Patch          *MessagePatch
	Meta           ConversationMeta
	PrevTurns      int
}

// MessageID renders a message sequence number so that lexical order is
// arrival order.
func MessageID(seq int) string {
	return fmt.Sprintf("%06d", seq)
}
