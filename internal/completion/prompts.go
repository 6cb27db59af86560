package completion

import (
	"fmt"
	"strings"

	"hotel-agent/internal/domain"
)

func messages(system, user string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func suggestHotelsPrompt(in SuggestHotelsInput) []domain.ChatMessage {
	system := strings.Join([]string{
		"Role:",
		"You are a hotel booking assistant.",
		"",
		"Task:",
		"Recommend hotels from the provided hotel data that match the user's preferences.",
		"",
		"Rules:",
		"1) Only recommend hotels that appear in the hotel data.",
		"2) Use the exact hotel id from the data in hotel_id.",
		"3) Order suggestions from best to weakest match.",
		"4) Give one short reason per hotel tied to the preferences (price, rating, location, amenities).",
		"5) Return an empty list when nothing matches.",
		"",
		"Hotel Data:",
		in.HotelData,
	}, "\n")
	return messages(system, fmt.Sprintf("Preferences: %s", normalizePromptInput(in.Preferences)))
}

func hotelQuestionPrompt(in HotelQuestionInput) []domain.ChatMessage {
	system := strings.Join([]string{
		"Role:",
		"You are a helpful hotel assistant.",
		"",
		"Task:",
		"Answer the user's question using only the provided hotel data.",
		"If the information is not in the data, say you don't have that information.",
		"",
		"Hotel Data:",
		in.HotelData,
	}, "\n")
	return messages(system, normalizePromptInput(in.Question))
}

func attractionsPrompt(in AttractionsInput) []domain.ChatMessage {
	system := strings.Join([]string{
		"Role:",
		"You are an expert local guide.",
		"",
		"Task:",
		"Suggest 3-4 nearby attractions, mixing tourist spots, restaurants and shopping areas.",
		"For each attraction give its name, type and a short, engaging description.",
	}, "\n")
	if in.HotelName == "" {
		return messages(system, fmt.Sprintf("I am visiting %s.", in.City))
	}
	return messages(system, fmt.Sprintf("I am staying at %s in %s.", in.HotelName, in.City))
}

func weatherPrompt(in WeatherInput) []domain.ChatMessage {
	system := strings.Join([]string{
		"Role:",
		"You are a helpful weather bot.",
		"",
		"Task:",
		"Generate a realistic forecast for the requested city.",
		"Give the current temperature in Celsius, the weather condition and a short, friendly summary.",
		"Do not mention that the data is fictional.",
	}, "\n")
	return messages(system, fmt.Sprintf("City: %s", in.City))
}

func upsellPrompt(in UpsellInput, hotelJSON string) []domain.ChatMessage {
	system := strings.Join([]string{
		"Role:",
		"You are a hotel concierge trying to provide the best experience for a guest.",
		"",
		"Task:",
		"Offer a simple, compelling upsell for the room the guest is booking.",
		"A standard room upgrades to a deluxe room; a deluxe room upgrades to a suite.",
		"Keep the suggestion concise and appealing.",
		"",
		"Hotel:",
		hotelJSON,
	}, "\n")
	return messages(system, fmt.Sprintf("My current choice is: %s", in.CurrentChoice))
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
