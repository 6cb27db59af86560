package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel-agent/internal/domain"
)

func TestSuggestHotels(t *testing.T) {
	llm := &fakeCompleter{out: `{"suggestions":[{"hotel_id":"HTL004","reason":"beachfront"},{"hotel_id":"HTL999","reason":"made up"}]}`}
	g := newTestGateway(t, llm)

	got, err := g.SuggestHotels(context.Background(), SuggestHotelsInput{Preferences: "  hotels   in Chennai ", HotelData: `[{"id":"HTL004"}]`})
	require.NoError(t, err)
	require.Equal(t, []HotelSuggestion{{HotelID: "HTL004", Reason: "beachfront"}, {HotelID: "HTL999", Reason: "made up"}}, got)

	require.Equal(t, "hotel_suggestions", llm.sch.Name)
	require.Len(t, llm.msgs, 2)
	require.Equal(t, "system", llm.msgs[0].Role)
	require.Contains(t, llm.msgs[0].Content, `[{"id":"HTL004"}]`)
	require.Equal(t, "Preferences: hotels in Chennai", llm.msgs[1].Content)
}

func TestSuggestHotels_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing reason":  `{"suggestions":[{"hotel_id":"HTL001","reason":" "}]}`,
		"missing id":      `{"suggestions":[{"hotel_id":"","reason":"x"}]}`,
		"bare array":      `[{"hotel_id":"HTL001","reason":"x"}]`,
		"unknown field":   `{"suggestions":[],"note":"x"}`,
		"trailing values": `{"suggestions":[]} {}`,
	}
	for name, raw := range cases {
		g := newTestGateway(t, &fakeCompleter{out: raw})
		_, err := g.SuggestHotels(context.Background(), SuggestHotelsInput{Preferences: "x", HotelData: "[]"})
		require.Error(t, err, name)
	}
}

func TestSuggestHotels_EmptyListIsNotAnError(t *testing.T) {
	g := newTestGateway(t, &fakeCompleter{out: `{"suggestions":[]}`})
	got, err := g.SuggestHotels(context.Background(), SuggestHotelsInput{Preferences: "x", HotelData: "[]"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSuggestHotels_RequiresHotelData(t *testing.T) {
	llm := &fakeCompleter{}
	g := newTestGateway(t, llm)
	_, err := g.SuggestHotels(context.Background(), SuggestHotelsInput{Preferences: "x"})
	require.Error(t, err)
	require.Zero(t, llm.calls)
}

func TestAnswerHotelQuestion(t *testing.T) {
	llm := &fakeCompleter{out: `{"answer":"Yes, it has a rooftop pool."}`}
	g := newTestGateway(t, llm)

	got, err := g.AnswerHotelQuestion(context.Background(), HotelQuestionInput{Question: "does it have a pool", HotelData: `{"id":"HTL001"}`})
	require.NoError(t, err)
	require.Equal(t, "Yes, it has a rooftop pool.", got)
	require.Contains(t, llm.msgs[0].Content, `{"id":"HTL001"}`)
	require.Equal(t, "does it have a pool", llm.msgs[1].Content)

	g = newTestGateway(t, &fakeCompleter{out: `{"answer":""}`})
	_, err = g.AnswerHotelQuestion(context.Background(), HotelQuestionInput{Question: "q"})
	require.ErrorContains(t, err, "missing answer")
}

func TestSuggestAttractions(t *testing.T) {
	llm := &fakeCompleter{out: `{"attractions":[
		{"name":"Yercaud","type":"tourist_spot","description":"Hill station."},
		{"name":"Hotel Saravana Bhavan","type":"restaurant","description":"South Indian meals."}
	]}`}
	g := newTestGateway(t, llm)

	got, err := g.SuggestAttractions(context.Background(), AttractionsInput{HotelName: "Grand Palace", City: "Salem"})
	require.NoError(t, err)
	require.Len(t, got.Attractions, 2)
	require.Equal(t, TouristSpot, got.Attractions[0].Type)
	require.Contains(t, llm.msgs[1].Content, "Grand Palace in Salem")

	_, err = g.SuggestAttractions(context.Background(), AttractionsInput{City: "Ooty"})
	require.NoError(t, err)
	require.Equal(t, "I am visiting Ooty.", llm.msgs[1].Content)
}

func TestSuggestAttractions_EnumViolation(t *testing.T) {
	g := newTestGateway(t, &fakeCompleter{out: `{"attractions":[{"name":"Club","type":"nightlife","description":"x"}]}`})
	_, err := g.SuggestAttractions(context.Background(), AttractionsInput{HotelName: "h", City: "Ooty"})
	require.ErrorContains(t, err, "not allowed")
}

func TestWeatherForecast(t *testing.T) {
	llm := &fakeCompleter{out: `{"forecast":{"temperature":"18°C","condition":"Misty","summary":"Cool morning."}}`}
	g := newTestGateway(t, llm)

	got, err := g.WeatherForecast(context.Background(), WeatherInput{City: "Ooty"})
	require.NoError(t, err)
	require.Equal(t, Forecast{Temperature: "18°C", Condition: "Misty", Summary: "Cool morning."}, got.Forecast)
	require.Equal(t, "City: Ooty", llm.msgs[1].Content)

	g = newTestGateway(t, &fakeCompleter{out: `{"forecast":{"temperature":"18°C","condition":"","summary":"x"}}`})
	_, err = g.WeatherForecast(context.Background(), WeatherInput{City: "Ooty"})
	require.ErrorContains(t, err, "forecast.condition")

	_, err = g.WeatherForecast(context.Background(), WeatherInput{})
	require.ErrorContains(t, err, "city is empty")
}

func TestSuggestUpsell(t *testing.T) {
	llm := &fakeCompleter{out: `{"suggestion":"Upgrade to a deluxe room with a lake view.","newChoice":"Deluxe Room"}`}
	g := newTestGateway(t, llm)

	got, err := g.SuggestUpsell(context.Background(), UpsellInput{
		Hotel:         domain.Hotel{ID: "HTL007", Name: "Lakeview Inn", City: "Ooty"},
		CurrentChoice: "a standard room",
	})
	require.NoError(t, err)
	require.Equal(t, "Deluxe Room", got.NewChoice)
	require.True(t, strings.Contains(llm.msgs[0].Content, `"id":"HTL007"`))
	require.Equal(t, "My current choice is: a standard room", llm.msgs[1].Content)

	g = newTestGateway(t, &fakeCompleter{out: `{"suggestion":"x"}`})
	_, err = g.SuggestUpsell(context.Background(), UpsellInput{CurrentChoice: "a standard room"})
	require.ErrorContains(t, err, "newChoice")
}
