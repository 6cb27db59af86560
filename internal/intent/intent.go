// Package intent maps free-text chat messages to a symbolic intent using an
// ordered pattern table.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"hotel-agent/internal/textnorm"
)

// Intent is the symbolic purpose of a user message.
type Intent string

const (
	Greeting          Intent = "greeting"
	FindHotels        Intent = "find_hotels"
	ViewDetails       Intent = "view_details"
	SuggestHotel      Intent = "suggest_hotel"
	BookHotel         Intent = "book_hotel"
	BookingProcedure  Intent = "booking_procedure"
	AskQuestion       Intent = "ask_question"
	RateExperience    Intent = "rate_experience"
	SubmitFeedback    Intent = "submit_feedback"
	CancelBooking     Intent = "cancel_booking"
	BookTaxi          Intent = "book_taxi"
	BookSightseeing   Intent = "book_sightseeing"
	BookRestaurant    Intent = "book_restaurant"
	LoyaltyProgram    Intent = "loyalty_program"
	NearbyAttractions Intent = "nearby_attractions"
	GetWeather        Intent = "get_weather"
	Fallback          Intent = "fallback"
)

// Rule lists the patterns of one intent. Exact rules match only when the
// whole normalized message equals a pattern.
type Rule struct {
	Intent   Intent
	Patterns []string
	Exact    bool
}

// DefaultRules is the production table. Order is the tie-break: among
// non-exact rules the first declared rule that matches wins. Patterns match
// as word prefixes, so a short pattern shadows every longer one that starts
// with it: the "book a taxi"/"book a restaurant" rules must stay above
// book_hotel's "book", and the "what is the ..." weather and nearby patterns
// above ask_question's "what is". Reordering the table changes routing.
var DefaultRules = []Rule{
	{Intent: Greeting, Patterns: []string{"hi", "hello", "hey", "greetings"}},
	{Intent: CancelBooking, Patterns: []string{"cancel booking", "cancel my booking"}},
	{Intent: BookingProcedure, Patterns: []string{"how to book", "booking procedure", "what is the booking process", "how do i book a hotel", "procedure"}},
	{Intent: BookTaxi, Patterns: []string{"book a taxi", "taxi service", "airport transfer"}},
	{Intent: NearbyAttractions, Patterns: []string{"what's nearby", "what is nearby", "nearby attractions", "tourist spots near", "restaurants near", "shopping near"}},
	{Intent: BookSightseeing, Patterns: []string{"explore sightseeing", "sightseeing tours", "tourist spots"}},
	{Intent: BookRestaurant, Patterns: []string{"reserve a table", "restaurant booking", "book a restaurant"}},
	{Intent: GetWeather, Patterns: []string{"what's the weather", "what is the weather", "weather forecast", "how is the weather", "weather in", "weather at"}},
	{Intent: FindHotels, Patterns: []string{"show me hotels in", "find me hotels in", "find hotels in", "hotels in", "looking for a hotel in", "want a room in", "cheap hotel", "luxury hotel", "high-rated hotel"}},
	{Intent: ViewDetails, Patterns: []string{"tell me more about", "more details on"}},
	{Intent: BookHotel, Patterns: []string{"book a room", "book the hotel", "i want to book", "yes proceed to book", "proceed to book", "booking", "book"}},
	{Intent: AskQuestion, Patterns: []string{"what is", "what are", "do you have", "does it have", "can you tell me", "is there a", "how much"}},
	{Intent: RateExperience, Patterns: []string{"rate my experience", "rate your experience", "submit feedback"}},
	{Intent: SubmitFeedback, Patterns: []string{"⭐"}},
	{Intent: LoyaltyProgram, Patterns: []string{"loyalty program", "rewards", "points", "membership benefits"}, Exact: true},
	{Intent: SuggestHotel, Patterns: []string{"suggest a hotel", "what do you recommend", "cheap and best", "recommend a hotel", "best hotels", "suggestion", "give me a suggestion"}, Exact: true},
}

// Match is the outcome of classifying one message.
type Match struct {
	Intent Intent
	// Pattern is the normalized pattern that matched; empty for the city
	// fallback and for Fallback.
	Pattern string
	// Text is the normalized message.
	Text string
	// Rest is the normalized text after Pattern, trimmed.
	Rest string
}

type compiledRule struct {
	intent   Intent
	patterns []string
}

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	exact   []compiledRule
	partial []compiledRule
	cities  []string
}

// NewClassifier compiles rules in order. cities are the names that route an
// otherwise unmatched message to find_hotels.
func NewClassifier(rules []Rule, cities []string) *Classifier {
	c := &Classifier{}
	for _, r := range rules {
		cr := compiledRule{intent: r.Intent}
		for _, p := range r.Patterns {
			if n := textnorm.Normalize(p); n != "" {
				cr.patterns = append(cr.patterns, n)
			}
		}
		if r.Exact {
			c.exact = append(c.exact, cr)
		} else {
			c.partial = append(c.partial, cr)
		}
	}
	for _, city := range cities {
		if n := textnorm.Normalize(city); n != "" {
			c.cities = append(c.cities, n)
		}
	}
	return c
}

func (c *Classifier) Classify(text string) Intent {
	return c.Match(text).Intent
}

func (c *Classifier) Match(text string) Match {
	norm := textnorm.Normalize(text)

	for _, r := range c.exact {
		for _, p := range r.patterns {
			if norm == p {
				return Match{Intent: r.intent, Pattern: p, Text: norm}
			}
		}
	}

	for _, r := range c.partial {
		for _, p := range r.patterns {
			if hasWordPrefix(norm, p) {
				return Match{
					Intent:  r.intent,
					Pattern: p,
					Text:    norm,
					Rest:    strings.TrimSpace(norm[len(p):]),
				}
			}
		}
	}

	for _, city := range c.cities {
		if strings.Contains(norm, city) {
			return Match{Intent: FindHotels, Text: norm, Rest: norm}
		}
	}
	if strings.Contains(norm, "hotel") {
		return Match{Intent: FindHotels, Text: norm, Rest: norm}
	}
	return Match{Intent: Fallback, Text: norm, Rest: norm}
}

// hasWordPrefix reports whether s starts with p and p ends on a word
// boundary, so "hi" matches "hi there" but not "hiking trails".
func hasWordPrefix(s, p string) bool {
	if !strings.HasPrefix(s, p) {
		return false
	}
	if len(s) == len(p) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[len(p):])
	return !unicode.IsLetter(next) && !unicode.IsDigit(next)
}
