package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotel-agent/internal/domain"
)

type SuggestHotelsInput struct {
	Preferences string
	// HotelData is the catalog rendered as JSON.
	HotelData string
}

type HotelSuggestion struct {
	HotelID string `json:"hotel_id"`
	Reason  string `json:"reason"`
}

type suggestionsResponse struct {
	Suggestions []HotelSuggestion `json:"suggestions"`
}

// SuggestHotels returns catalog ids in the provider's order of preference.
// Ids are not checked against the catalog here.
func (g *Gateway) SuggestHotels(ctx context.Context, in SuggestHotelsInput) ([]HotelSuggestion, error) {
	if strings.TrimSpace(in.HotelData) == "" {
		return nil, errors.New("completion: suggest hotels: hotel data is empty")
	}
	out, err := complete(ctx, g, "suggest hotels", suggestHotelsSchema, suggestHotelsPrompt(in), func(r *suggestionsResponse) error {
		for i, s := range r.Suggestions {
			if err := requireString(fmt.Sprintf("suggestions[%d].hotel_id", i), s.HotelID); err != nil {
				return err
			}
			if err := requireString(fmt.Sprintf("suggestions[%d].reason", i), s.Reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

type HotelQuestionInput struct {
	Question  string
	HotelData string
}

type answerResponse struct {
	Answer string `json:"answer"`
}

func (g *Gateway) AnswerHotelQuestion(ctx context.Context, in HotelQuestionInput) (string, error) {
	if strings.TrimSpace(in.Question) == "" {
		return "", errors.New("completion: answer question: question is empty")
	}
	out, err := complete(ctx, g, "answer question", hotelAnswerSchema, hotelQuestionPrompt(in), func(r *answerResponse) error {
		return requireString("answer", r.Answer)
	})
	if err != nil {
		return "", err
	}
	return out.Answer, nil
}

type AttractionsInput struct {
	HotelName string
	City      string
}

type AttractionType string

const (
	TouristSpot AttractionType = "tourist_spot"
	Restaurant  AttractionType = "restaurant"
	Shopping    AttractionType = "shopping"
)

func (t AttractionType) valid() bool {
	switch t {
	case TouristSpot, Restaurant, Shopping:
		return true
	}
	return false
}

type Attraction struct {
	Name        string         `json:"name"`
	Type        AttractionType `json:"type"`
	Description string         `json:"description"`
}

type Attractions struct {
	Attractions []Attraction `json:"attractions"`
}

func (g *Gateway) SuggestAttractions(ctx context.Context, in AttractionsInput) (Attractions, error) {
	if strings.TrimSpace(in.City) == "" {
		return Attractions{}, errors.New("completion: suggest attractions: city is empty")
	}
	return complete(ctx, g, "suggest attractions", attractionsSchema, attractionsPrompt(in), func(r *Attractions) error {
		for i, a := range r.Attractions {
			if err := requireString(fmt.Sprintf("attractions[%d].name", i), a.Name); err != nil {
				return err
			}
			if !a.Type.valid() {
				return fmt.Errorf("attractions[%d].type %q is not allowed", i, a.Type)
			}
			if err := requireString(fmt.Sprintf("attractions[%d].description", i), a.Description); err != nil {
				return err
			}
		}
		return nil
	})
}

type WeatherInput struct {
	City string
}

type Forecast struct {
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Summary     string `json:"summary"`
}

type WeatherForecast struct {
	Forecast Forecast `json:"forecast"`
}

func (g *Gateway) WeatherForecast(ctx context.Context, in WeatherInput) (WeatherForecast, error) {
	if strings.TrimSpace(in.City) == "" {
		return WeatherForecast{}, errors.New("completion: weather forecast: city is empty")
	}
	return complete(ctx, g, "weather forecast", weatherSchema, weatherPrompt(in), func(r *WeatherForecast) error {
		if err := requireString("forecast.temperature", r.Forecast.Temperature); err != nil {
			return err
		}
		if err := requireString("forecast.condition", r.Forecast.Condition); err != nil {
			return err
		}
		return requireString("forecast.summary", r.Forecast.Summary)
	})
}

type UpsellInput struct {
	Hotel         domain.Hotel
	CurrentChoice string
}

type Upsell struct {
	Suggestion string `json:"suggestion"`
	NewChoice  string `json:"newChoice"`
}

func (g *Gateway) SuggestUpsell(ctx context.Context, in UpsellInput) (Upsell, error) {
	hotelJSON, err := json.Marshal(in.Hotel)
	if err != nil {
		return Upsell{}, fmt.Errorf("completion: suggest upsell: marshal hotel: %w", err)
	}
	return complete(ctx, g, "suggest upsell", upsellSchema, upsellPrompt(in, string(hotelJSON)), func(r *Upsell) error {
		if err := requireString("suggestion", r.Suggestion); err != nil {
			return err
		}
		return requireString("newChoice", r.NewChoice)
	})
}
