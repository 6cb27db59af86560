// Package dialogue turns a classified user message and the conversation
// history into the assistant's reply.
package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"hotel-agent/internal/catalog"
	"hotel-agent/internal/completion"
	"hotel-agent/internal/domain"
	"hotel-agent/internal/intent"
)

// Gateway is the subset of the completion gateway the router calls.
type Gateway interface {
	SuggestHotels(ctx context.Context, in completion.SuggestHotelsInput) ([]completion.HotelSuggestion, error)
	AnswerHotelQuestion(ctx context.Context, in completion.HotelQuestionInput) (string, error)
	SuggestAttractions(ctx context.Context, in completion.AttractionsInput) (completion.Attractions, error)
	WeatherForecast(ctx context.Context, in completion.WeatherInput) (completion.WeatherForecast, error)
	SuggestUpsell(ctx context.Context, in completion.UpsellInput) (completion.Upsell, error)
}

type Router struct {
	catalog    *catalog.Catalog
	gateway    Gateway
	classifier *intent.Classifier
	logger     *slog.Logger
}

type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithClassifier(c *intent.Classifier) Option {
	return func(r *Router) {
		if c != nil {
			r.classifier = c
		}
	}
}

func New(cat *catalog.Catalog, gw Gateway, opts ...Option) (*Router, error) {
	if cat == nil {
		return nil, errors.New("dialogue: catalog must not be nil")
	}
	if gw == nil {
		return nil, errors.New("dialogue: gateway must not be nil")
	}
	r := &Router{
		catalog:    cat,
		gateway:    gw,
		classifier: intent.NewClassifier(intent.DefaultRules, cat.Cities()),
		logger:     slog.Default().With("component", "dialogue"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Route produces the reply to msg given the prior history. It never fails:
// gateway errors are logged and answered with an apology.
func (r *Router) Route(ctx context.Context, history []domain.Message, msg domain.Message) domain.Reply {
	if msg.IsBookingForm && msg.BookingDetails != nil {
		return r.confirmBooking(history, *msg.BookingDetails)
	}

	m := r.classifier.Match(msg.Content)
	r.logger.DebugContext(ctx, "intent classified", "intent", m.Intent, "pattern", m.Pattern)

	switch m.Intent {
	case intent.Greeting:
		return domain.Reply{Content: greetingText}
	case intent.FindHotels, intent.SuggestHotel:
		return r.suggestHotels(ctx, msg.Content)
	case intent.ViewDetails:
		return r.viewDetails(m.Rest)
	case intent.BookHotel:
		return r.bookHotel(ctx, m.Rest)
	case intent.BookingProcedure:
		return r.bookingProcedure(ctx, history, m.Rest)
	case intent.AskQuestion:
		return r.askQuestion(ctx, history, msg.Content)
	case intent.CancelBooking:
		return r.cancelBooking(history, msg.Content)
	case intent.NearbyAttractions:
		return r.nearbyAttractions(ctx, history, m.Rest)
	case intent.GetWeather:
		return r.weather(ctx, history, m.Rest)
	case intent.RateExperience:
		return rateExperience(msg.Content)
	case intent.SubmitFeedback:
		return domain.Reply{Content: feedbackThanksText}
	case intent.BookTaxi:
		return domain.Reply{Content: taxiText, QuickReplies: []string{"Explore Sightseeing", "Reserve a Table"}}
	case intent.BookSightseeing:
		return domain.Reply{Content: sightseeingText, QuickReplies: []string{"Book a Taxi", "Reserve a Table"}}
	case intent.BookRestaurant:
		return domain.Reply{Content: restaurantText, QuickReplies: []string{"Book a Taxi", "Explore Sightseeing"}}
	case intent.LoyaltyProgram:
		return domain.Reply{Content: loyaltyText, QuickReplies: []string{"Find hotels in Salem", "Suggest a hotel"}}
	default:
		return domain.Reply{Content: fallbackText}
	}
}

// Welcome is the assistant message that opens every conversation.
func Welcome() domain.Reply {
	return domain.Reply{
		Content:      welcomeText,
		QuickReplies: []string{"Give me a suggestion", "Salem", "Chennai", "Ooty", "Loyalty Program"},
	}
}
