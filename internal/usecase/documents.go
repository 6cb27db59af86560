package usecase

import (
	"context"
	"fmt"
	"strings"

	"hotel-agent/internal/dialogue"
	"hotel-agent/internal/domain"
)

// Receipt renders the plain-text receipt of a booking in the conversation.
// An empty bookingID selects the most recent booking.
func (s *ChatService) Receipt(ctx context.Context, conversationID, bookingID string) (string, error) {
	history, err := s.fullHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}
	msg, ok := dialogue.LatestBooking(history, strings.TrimSpace(bookingID))
	if !ok {
		return "", newError(ErrorNotFound, "booking_not_found", nil)
	}
	d := msg.BookingDetails

	var hotel domain.Hotel
	if d.Hotel != nil {
		hotel = d.Hotel.Hotel()
	}
	status := "Active"
	if d.Status == domain.BookingCancelled {
		status = "Cancelled"
	}

	return strings.Join([]string{
		"Booking Receipt",
		"---------------",
		"",
		"Booking ID: " + d.BookingID,
		"Status: " + status,
		"Hotel: " + hotel.Name,
		"Address: " + hotel.Address,
		"",
		"Guest Name: " + d.Name,
		"Guest Email: " + d.Email,
		"",
		"Check-in: " + dialogue.FormatDate(d.CheckIn),
		"Check-out: " + dialogue.FormatDate(d.CheckOut),
		fmt.Sprintf("Number of Guests: %d", d.Guests),
		"",
		"Thank you for booking with MK Hotel Chatbot!",
	}, "\n"), nil
}

// Transcript renders the conversation as "You:"/"Bot:" paragraphs with
// markdown emphasis removed.
func (s *ChatService) Transcript(ctx context.Context, conversationID string) (string, error) {
	history, err := s.fullHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "Bot"
		if m.Role == domain.RoleUser {
			speaker = "You"
		}
		parts = append(parts, speaker+": "+strings.ReplaceAll(m.Content, "**", ""))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *ChatService) fullHistory(ctx context.Context, conversationID string) ([]domain.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, newError(ErrorInvalidInput, "missing_conversation_id", nil)
	}
	history, err := s.state.GetHistory(ctx, conversationID, 0)
	if err != nil {
		return nil, storeError("dynamodb_history_error", err)
	}
	if len(history) == 0 {
		return nil, newError(ErrorNotFound, "conversation_not_found", nil)
	}
	return history, nil
}
