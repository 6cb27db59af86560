package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"hotel-agent/internal/dialogue"
	"hotel-agent/internal/domain"
	"hotel-agent/internal/repository"
)

const (
	defaultMaxHistory    = 200
	defaultMaxMessage    = 500
	defaultMaxTurns      = 100
	bookingSaveFailed    = "booking_persistence_failed"
	isoDate              = "2006-01-02"
	bookingRetryTemplate = "Sorry, I couldn't save your booking for **%s**. Nothing was reserved. Please submit the form again."
)

// Router produces the assistant reply for one user message.
type Router interface {
	Route(ctx context.Context, history []domain.Message, msg domain.Message) domain.Reply
}

type StateStore interface {
	GetConversationMeta(ctx context.Context, conversationID string) (domain.ConversationMeta, bool, error)
	GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
	SaveTurn(ctx context.Context, turn domain.Turn) error
	SaveBooking(ctx context.Context, b domain.Booking) error
}

type Limits struct {
	MaxHistoryItems  int
	MaxMessageLength int
	MaxTurns         int
}

type ChatService struct {
	router Router
	state  StateStore
	limits Limits
	logger *slog.Logger
	now    func() time.Time
}

type SendInput struct {
	ConversationID string
	Message        string
	IsBookingForm  bool
	BookingDetails *domain.BookingDetails
}

// BookingResult reports whether a confirmed booking was persisted.
type BookingResult struct {
	Success bool
	Error   string
}

type SendOutput struct {
	ConversationID string
	Message        domain.Message
	Patch          *domain.MessagePatch
	Booking        *BookingResult
}

func NewChatService(r Router, s StateStore, limits Limits, logger *slog.Logger) (*ChatService, error) {
	if r == nil {
		return nil, errors.New("usecase: router must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if limits.MaxHistoryItems <= 0 {
		limits.MaxHistoryItems = defaultMaxHistory
	}
	if limits.MaxMessageLength <= 0 {
		limits.MaxMessageLength = defaultMaxMessage
	}
	if limits.MaxTurns <= 0 {
		limits.MaxTurns = defaultMaxTurns
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		router: r,
		state:  s,
		limits: limits,
		logger: logger.With("component", "usecase"),
		now:    time.Now,
	}, nil
}

// Send runs one chat turn: it loads the conversation, routes the message,
// persists any confirmed booking and stores the turn.
func (s *ChatService) Send(ctx context.Context, in SendInput) (SendOutput, error) {
	text := strings.TrimSpace(in.Message)
	if err := s.validate(text, in); err != nil {
		return SendOutput{}, err
	}
	if in.IsBookingForm && text == "" {
		text = fmt.Sprintf("I'd like to book %s.", in.BookingDetails.HotelName())
	}

	convID := strings.TrimSpace(in.ConversationID)
	var (
		meta  domain.ConversationMeta
		found bool
	)
	if convID == "" {
		convID = newUUID()
	} else {
		var err error
		meta, found, err = s.state.GetConversationMeta(ctx, convID)
		if err != nil {
			return SendOutput{}, storeError("dynamodb_meta_error", err)
		}
		if found && meta.Turns >= s.limits.MaxTurns {
			return SendOutput{}, newError(ErrorInvalidInput, "conversation_turn_limit", nil)
		}
	}

	var history, fresh []domain.Message
	seq := meta.Messages
	if found {
		var err error
		history, err = s.state.GetHistory(ctx, convID, s.limits.MaxHistoryItems)
		if err != nil {
			return SendOutput{}, storeError("dynamodb_history_error", err)
		}
	} else {
		seq = 1
		welcome := dialogue.Welcome().Message(domain.MessageID(seq))
		history = []domain.Message{welcome}
		fresh = append(fresh, welcome)
	}

	userMsg := domain.Message{
		ID:             domain.MessageID(seq + 1),
		Role:           domain.RoleUser,
		Content:        text,
		IsBookingForm:  in.IsBookingForm,
		BookingDetails: in.BookingDetails,
	}

	reply := s.router.Route(ctx, history, userMsg)

	var booking *BookingResult
	if d := reply.BookingDetails; d != nil && d.BookingID != "" && d.Status == domain.BookingActive {
		booking = &BookingResult{Success: true}
		if err := s.state.SaveBooking(ctx, domain.NewBooking(convID, *d, s.now())); err != nil {
			s.logger.ErrorContext(ctx, "booking persistence failed",
				"conversation_id", convID, "booking_id", d.BookingID, "err", err)
			booking = &BookingResult{Success: false, Error: bookingSaveFailed}
			reply = bookingRetry(*d)
		}
	}

	assistant := reply.Message(domain.MessageID(seq + 2))
	turn := domain.Turn{
		ConversationID: convID,
		Messages:       append(fresh, userMsg, assistant),
		Patch:          reply.Patch,
		Meta: domain.ConversationMeta{
			Turns:        meta.Turns + 1,
			Messages:     seq + 2,
			LastActivity: s.now().UTC().Format(time.RFC3339),
		},
		PrevTurns: meta.Turns,
	}
	if err := s.state.SaveTurn(ctx, turn); err != nil {
		return SendOutput{}, storeError("dynamodb_write_error", err)
	}

	return SendOutput{
		ConversationID: convID,
		Message:        assistant,
		Patch:          reply.Patch,
		Booking:        booking,
	}, nil
}

func (s *ChatService) validate(text string, in SendInput) error {
	if utf8.RuneCountInString(text) > s.limits.MaxMessageLength {
		return newError(ErrorInvalidInput, "message_too_long", nil)
	}
	if !in.IsBookingForm {
		if text == "" {
			return newError(ErrorInvalidInput, "empty_message", nil)
		}
		return nil
	}

	d := in.BookingDetails
	if d == nil || d.Hotel == nil {
		return newError(ErrorInvalidInput, "missing_booking_details", nil)
	}
	if d.BookingID != "" || d.Status != "" {
		return newError(ErrorInvalidInput, "unexpected_booking_id", nil)
	}
	if d.Guests < 1 {
		return newError(ErrorInvalidInput, "invalid_guests", nil)
	}
	if strings.TrimSpace(d.CheckIn) == "" || strings.TrimSpace(d.CheckOut) == "" {
		return newError(ErrorInvalidInput, "missing_dates", nil)
	}
	checkIn, errIn := time.Parse(isoDate, d.CheckIn)
	checkOut, errOut := time.Parse(isoDate, d.CheckOut)
	if errIn == nil && errOut == nil && !checkOut.After(checkIn) {
		return newError(ErrorInvalidInput, "invalid_dates", nil)
	}
	return nil
}

// bookingRetry re-opens the form for the same hotel without a booking id.
func bookingRetry(d domain.BookingDetails) domain.Reply {
	reply := domain.Reply{
		Content:       fmt.Sprintf(bookingRetryTemplate, d.HotelName()),
		IsBookingForm: true,
	}
	if d.Hotel != nil {
		reply.HotelData = []domain.HotelRef{domain.Direct(d.Hotel.Hotel())}
	}
	return reply
}

func storeError(reason string, err error) *Error {
	switch {
	case errors.Is(err, repository.ErrThrottled):
		return newError(ErrorRateLimited, reason, err)
	case errors.Is(err, repository.ErrConflict):
		return newError(ErrorConflict, reason, err)
	}
	return newError(ErrorInternal, reason, err)
}

var newUUID = func() string {
	return uuid.NewString()
}
