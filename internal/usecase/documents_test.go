package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel-agent/internal/domain"
)

func bookedHistory() []domain.Message {
	first := *bookingForm()
	first.BookingID = "MK-FIRST0001"
	first.Status = domain.BookingCancelled
	second := *bookingForm()
	second.BookingID = "MK-SECOND002"
	second.Status = domain.BookingActive
	second.CheckIn, second.CheckOut = "2025-02-01", "2025-02-03"
	return []domain.Message{
		{ID: "000001", Role: domain.RoleAssistant, Content: "Welcome"},
		{ID: "000002", Role: domain.RoleUser, Content: "I'd like to book Sunrise Inn."},
		{ID: "000003", Role: domain.RoleAssistant, Content: "Booking **confirmed**", BookingDetails: &first},
		{ID: "000004", Role: domain.RoleUser, Content: "book again"},
		{ID: "000005", Role: domain.RoleAssistant, Content: "Booking confirmed again", BookingDetails: &second},
	}
}

func TestReceipt_LatestBooking(t *testing.T) {
	store := &fakeStore{history: bookedHistory()}
	svc := newTestService(t, &stubRouter{}, store)

	got, err := svc.Receipt(context.Background(), "conv-1", "")
	require.NoError(t, err)
	require.Equal(t, 0, store.limit)
	require.Equal(t, "Booking Receipt\n"+
		"---------------\n"+
		"\n"+
		"Booking ID: MK-SECOND002\n"+
		"Status: Active\n"+
		"Hotel: Sunrise Inn\n"+
		"Address: 12 Main Road, Salem\n"+
		"\n"+
		"Guest Name: Asha\n"+
		"Guest Email: asha@example.com\n"+
		"\n"+
		"Check-in: Feb 1, 2025\n"+
		"Check-out: Feb 3, 2025\n"+
		"Number of Guests: 2\n"+
		"\n"+
		"Thank you for booking with MK Hotel Chatbot!", got)
}

func TestReceipt_ByIDIncludesCancelled(t *testing.T) {
	svc := newTestService(t, &stubRouter{}, &fakeStore{history: bookedHistory()})

	got, err := svc.Receipt(context.Background(), "conv-1", "mk-first0001")
	require.NoError(t, err)
	require.Contains(t, got, "Booking ID: MK-FIRST0001")
	require.Contains(t, got, "Status: Cancelled")
}

func TestReceipt_Errors(t *testing.T) {
	svc := newTestService(t, &stubRouter{}, &fakeStore{history: bookedHistory()})
	_, err := svc.Receipt(context.Background(), "conv-1", "MK-NOPE")
	requireCode(t, err, ErrorNotFound, "booking_not_found")

	_, err = svc.Receipt(context.Background(), " ", "")
	requireCode(t, err, ErrorInvalidInput, "missing_conversation_id")

	svc = newTestService(t, &stubRouter{}, &fakeStore{})
	_, err = svc.Receipt(context.Background(), "conv-1", "")
	requireCode(t, err, ErrorNotFound, "conversation_not_found")

	svc = newTestService(t, &stubRouter{}, &fakeStore{histErr: errors.New("boom")})
	_, err = svc.Receipt(context.Background(), "conv-1", "")
	requireCode(t, err, ErrorInternal, "dynamodb_history_error")
}

func TestTranscript(t *testing.T) {
	svc := newTestService(t, &stubRouter{}, &fakeStore{history: bookedHistory()[:3]})

	got, err := svc.Transcript(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Equal(t, "Bot: Welcome\n\nYou: I'd like to book Sunrise Inn.\n\nBot: Booking confirmed", got)
}

func TestTranscript_EmptyConversation(t *testing.T) {
	svc := newTestService(t, &stubRouter{}, &fakeStore{})
	_, err := svc.Transcript(context.Background(), "conv-1")
	requireCode(t, err, ErrorNotFound, "conversation_not_found")
}
