package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel-agent/internal/completion"
	"hotel-agent/internal/domain"
	"hotel-agent/internal/textnorm"
)

const defaultRoomChoice = "a standard room"

var newBookingID = func() string {
	id := uuid.New()
	s := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36))
	if len(s) < 9 {
		s = strings.Repeat("0", 9-len(s)) + s
	}
	return "MK-" + s[len(s)-9:]
}

func uniqueBookingID(history []domain.Message) string {
	taken := bookingIDs(history)
	for {
		id := newBookingID()
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

func (r *Router) confirmBooking(history []domain.Message, d domain.BookingDetails) domain.Reply {
	if d.Hotel == nil {
		return domain.Reply{Content: unknownBookingHotel}
	}
	h, ok := r.catalog.ByID(d.Hotel.Hotel().ID)
	if !ok {
		return domain.Reply{Content: unknownBookingHotel}
	}
	// Re-anchor on catalog data so the stored booking never carries client edits.
	ref := domain.Direct(h)
	if reason, ok := d.Hotel.Reason(); ok {
		ref = domain.Suggested(h, reason)
	}
	d.Hotel = &ref
	d.BookingID = uniqueBookingID(history)
	d.Status = domain.BookingActive

	smoking := "No"
	if d.Smoking {
		smoking = "Yes"
	}
	content := strings.Join([]string{
		fmt.Sprintf("Thank you! Your booking for **%s** is confirmed.", h.Name),
		"",
		fmt.Sprintf("**Booking ID:** %s", d.BookingID),
		fmt.Sprintf("**Guests:** %d", d.Guests),
		fmt.Sprintf("**Check-in:** %s", FormatDate(d.CheckIn)),
		fmt.Sprintf("**Check-out:** %s", FormatDate(d.CheckOut)),
		"",
		"**Preferences:**",
		fmt.Sprintf("- Room Type: %s", orDash(d.RoomType)),
		fmt.Sprintf("- Bed Size: %s", orDash(d.BedSize)),
		fmt.Sprintf("- Smoking: %s", smoking),
		"",
		"A confirmation email has been sent. You can cancel or download your booking at any time.",
		"",
		"While you're here, would you like help with any travel add-ons? I can also help you rate your experience.",
	}, "\n")

	return domain.Reply{
		Content:        content,
		BookingDetails: &d,
		QuickReplies:   []string{"Book a Taxi", "Explore Sightseeing", "Reserve a Table", "Rate my experience"},
	}
}

func (r *Router) suggestHotels(ctx context.Context, preferences string) domain.Reply {
	suggestions, err := r.gateway.SuggestHotels(ctx, completion.SuggestHotelsInput{
		Preferences: preferences,
		HotelData:   r.catalog.JSON(),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "hotel suggestion failed", "err", err)
		return domain.Reply{Content: suggestionsErrorText}
	}
	if len(suggestions) == 0 {
		return domain.Reply{Content: noSuggestionsText}
	}

	seen := make(map[string]struct{}, len(suggestions))
	refs := make([]domain.HotelRef, 0, len(suggestions))
	for _, s := range suggestions {
		h, ok := r.catalog.ByID(s.HotelID)
		if !ok {
			r.logger.WarnContext(ctx, "dropping unknown hotel suggestion", "hotel_id", s.HotelID)
			continue
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		refs = append(refs, domain.Suggested(h, s.Reason))
	}
	if len(refs) == 0 {
		return domain.Reply{Content: noKnownHotelsText}
	}
	return domain.Reply{Content: suggestionsIntroText, HotelData: refs}
}

func (r *Router) viewDetails(name string) domain.Reply {
	h, ok := r.catalog.ByName(name)
	if !ok {
		return domain.Reply{Content: hotelNotFoundText}
	}
	return domain.Reply{
		Content:   fmt.Sprintf("Here are the details for %s:", h.Name),
		HotelData: []domain.HotelRef{domain.Direct(h)},
	}
}

func (r *Router) bookHotel(ctx context.Context, phrase string) domain.Reply {
	h, ok := r.resolveHotel(phrase)
	if !ok {
		return domain.Reply{Content: specifyHotelText}
	}
	return r.bookingForm(ctx, h)
}

func (r *Router) bookingForm(ctx context.Context, h domain.Hotel) domain.Reply {
	content := fmt.Sprintf("Please fill out the form below to book your stay at **%s**.", h.Name)
	upsell, err := r.gateway.SuggestUpsell(ctx, completion.UpsellInput{Hotel: h, CurrentChoice: defaultRoomChoice})
	if err != nil {
		r.logger.WarnContext(ctx, "upsell suggestion failed", "hotel_id", h.ID, "err", err)
	} else {
		content = upsell.Suggestion + "\n\n" + content
	}
	return domain.Reply{
		Content:       content,
		IsBookingForm: true,
		HotelData:     []domain.HotelRef{domain.Direct(h)},
	}
}

func (r *Router) bookingProcedure(ctx context.Context, history []domain.Message, phrase string) domain.Reply {
	if h, ok := r.resolveHotel(phrase); ok {
		return r.bookingForm(ctx, h)
	}
	if form, ok := PendingBookingForm(history); ok {
		name := form.HotelData[0].Hotel().Name
		return domain.Reply{
			Content:      fmt.Sprintf("You were about to book the **%s**. Do you want to proceed?", name),
			QuickReplies: []string{"Yes, proceed to book " + name},
		}
	}
	return domain.Reply{Content: procedureText, QuickReplies: []string{"Find hotels in Chennai", "Suggest a hotel"}}
}

func (r *Router) askQuestion(ctx context.Context, history []domain.Message, question string) domain.Reply {
	h, ok := LastHotelInFocus(history)
	if !ok {
		return domain.Reply{Content: noHotelInFocusText}
	}
	hotelJSON, err := json.Marshal(h)
	if err != nil {
		r.logger.ErrorContext(ctx, "marshal hotel for question", "hotel_id", h.ID, "err", err)
		return domain.Reply{Content: questionErrorText}
	}
	answer, err := r.gateway.AnswerHotelQuestion(ctx, completion.HotelQuestionInput{
		Question:  question,
		HotelData: string(hotelJSON),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "hotel question failed", "hotel_id", h.ID, "err", err)
		return domain.Reply{Content: questionErrorText}
	}
	return domain.Reply{Content: answer}
}

func (r *Router) cancelBooking(history []domain.Message, text string) domain.Reply {
	target, ok := ActiveBooking(history, ParseBookingID(text))
	if !ok {
		return domain.Reply{Content: noActiveBookingText}
	}
	details := *target.BookingDetails
	details.Status = domain.BookingCancelled
	return domain.Reply{
		Content: fmt.Sprintf("Your booking with ID **%s** has been successfully cancelled.", details.BookingID),
		Patch:   &domain.MessagePatch{TargetID: target.ID, BookingDetails: details},
	}
}

func (r *Router) nearbyAttractions(ctx context.Context, history []domain.Message, phrase string) domain.Reply {
	hotel, city, ok := r.resolvePlace(phrase, history)
	if !ok {
		return domain.Reply{Content: noHotelInFocusText}
	}
	in := completion.AttractionsInput{City: city}
	label := city
	if hotel != nil {
		in.HotelName = hotel.Name
		label = hotel.Name
	}
	result, err := r.gateway.SuggestAttractions(ctx, in)
	if err != nil {
		r.logger.ErrorContext(ctx, "attraction suggestion failed", "city", city, "err", err)
		return domain.Reply{Content: attractionsErrorText}
	}
	if len(result.Attractions) == 0 {
		return domain.Reply{Content: noAttractionsText}
	}

	lines := make([]string, 0, len(result.Attractions))
	for _, a := range result.Attractions {
		lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", a.Name, strings.ReplaceAll(string(a.Type), "_", " "), a.Description))
	}
	return domain.Reply{
		Content: fmt.Sprintf("Here are some popular spots near **%s**:\n\n%s", label, strings.Join(lines, "\n")),
	}
}

func (r *Router) weather(ctx context.Context, history []domain.Message, phrase string) domain.Reply {
	_, city, ok := r.resolvePlace(phrase, history)
	if !ok {
		return domain.Reply{Content: weatherWhichCityText, QuickReplies: r.catalog.Cities()}
	}
	result, err := r.gateway.WeatherForecast(ctx, completion.WeatherInput{City: city})
	if err != nil {
		r.logger.ErrorContext(ctx, "weather forecast failed", "city", city, "err", err)
		return domain.Reply{Content: weatherErrorText}
	}
	f := result.Forecast
	return domain.Reply{
		Content: fmt.Sprintf("Here's the weather forecast for **%s**:\n\n- **Condition:** %s\n- **Temperature:** %s\n\n%s",
			city, f.Condition, f.Temperature, f.Summary),
	}
}

func rateExperience(text string) domain.Reply {
	if strings.Contains(text, "⭐") {
		return domain.Reply{Content: feedbackThanksText}
	}
	return domain.Reply{Content: rateText, QuickReplies: ratingReplies}
}

// leadingFillers are dropped one at a time from the front of a phrase until
// it names a hotel or a city.
var leadingFillers = map[string]bool{
	"a": true, "an": true, "room": true, "stay": true, "at": true, "in": true, "for": true,
	"of": true, "to": true, "near": true, "nearby": true, "around": true, "like": true,
	"attractions": true, "spots": true, "please": true, "me": true, "today": true,
	"tomorrow": true, "there": true,
}

// phraseCandidates lists phrase and its filler-stripped suffixes. named is
// false when nothing but fillers was left.
func phraseCandidates(phrase string) (candidates []string, named bool) {
	words := strings.Fields(textnorm.Normalize(phrase))
	for len(words) > 0 {
		candidates = append(candidates, strings.Join(words, " "))
		if !leadingFillers[words[0]] {
			return candidates, true
		}
		words = words[1:]
	}
	return candidates, false
}

func (r *Router) resolveHotel(phrase string) (domain.Hotel, bool) {
	candidates, _ := phraseCandidates(phrase)
	for _, c := range candidates {
		if h, ok := r.catalog.ByName(c); ok {
			return h, true
		}
	}
	return domain.Hotel{}, false
}

// resolvePlace finds a hotel or city named in phrase. A phrase that is empty
// once fillers are removed falls back to the hotel in focus; a phrase naming
// something unknown does not.
func (r *Router) resolvePlace(phrase string, history []domain.Message) (*domain.Hotel, string, bool) {
	candidates, named := phraseCandidates(phrase)
	for _, c := range candidates {
		if h, ok := r.catalog.ByName(c); ok {
			return &h, h.City, true
		}
		if city, ok := r.catalog.City(c); ok {
			return nil, city, true
		}
	}
	if named {
		return nil, "", false
	}
	h, ok := LastHotelInFocus(history)
	if !ok {
		return nil, "", false
	}
	return &h, h.City, true
}

// FormatDate renders an ISO date for display and returns anything it cannot
// parse unchanged.
func FormatDate(s string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
