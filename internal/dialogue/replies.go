package dialogue

const (
	welcomeText  = "👋 Hello! I'm your hotel booking assistant. Tell me what you're looking for, or choose an option below."
	greetingText = "Hello there! How can I help you with your hotel search today?"
	fallbackText = "I'm sorry, I can't help with that. I can help find, book, or suggest hotels in Salem, Chennai, and Ooty. How can I help?"

	suggestionsIntroText = "Here are a few suggestions I think you might like:"
	noSuggestionsText    = "I couldn't find any hotels matching your criteria. I can only search in Salem, Chennai, or Ooty. Please try a different search."
	noKnownHotelsText    = "I couldn't find any hotels matching your preferences in my data. Perhaps try a different preference?"
	suggestionsErrorText = "Sorry, I am having trouble getting suggestions right now. Please try again later."

	hotelNotFoundText   = "I couldn't find that hotel. Please select one from a list."
	specifyHotelText    = "Please specify which hotel you'd like to book."
	unknownBookingHotel = "I couldn't tell which hotel this booking is for. Please choose a hotel and fill out the form again."
	noHotelInFocusText  = "I'm not sure which hotel you're asking about. Please view the details of a hotel first."
	questionErrorText   = "Sorry, I am having trouble answering that question right now."
	noActiveBookingText = "Sorry, I couldn't find an active booking to cancel."

	attractionsErrorText = "Sorry, I am having trouble finding nearby attractions right now."
	noAttractionsText    = "I couldn't find any attractions nearby right now."
	weatherErrorText     = "Sorry, I am having trouble getting the weather forecast right now."
	weatherWhichCityText = "Which city's weather would you like to know? I can fetch forecasts for Salem, Chennai, or Ooty."

	rateText           = "How would you rate your experience?"
	feedbackThanksText = "Thanks for your feedback! I'm glad I could help. Is there anything else you need?"

	taxiText        = "Your taxi has been booked! The driver will meet you at the hotel lobby at your requested time. You will receive a confirmation SMS shortly.\n\nWould you like to explore sightseeing or book a restaurant?"
	sightseeingText = "Great! We have a partnership with local tour guides. A representative will contact you shortly to arrange a personalized sightseeing tour.\n\nWould you like to book a taxi or reserve a table?"
	restaurantText  = "Excellent choice! Your table has been reserved. You will receive a confirmation from the restaurant soon.\n\nCan I help with a taxi or sightseeing?"

	loyaltyText = `Our loyalty program, **MK Hotel Rewards**, offers exclusive benefits!

- **Earn Points:** Earn points on every booking.
- **Exclusive Discounts:** Get member-only rates.
- **Free Upgrades:** Enjoy complimentary room upgrades (subject to availability).
- **Late Check-out:** Get more flexibility with late check-out.

What would you like to do next?`

	procedureText = `Of course! Here is the booking procedure:
1. **Find a hotel:** Ask me to find hotels in a specific city (Salem, Chennai, or Ooty) or ask for a suggestion.
2. **View Details:** Click the "View Details" button on any hotel card to see more information about it.
3. **Book Now:** On the details page, click the "Book Now" button.
4. **Fill the Form:** I will show you a booking form. Please fill in your details.
5. **Confirm:** Once you submit the form, your booking will be confirmed!`
)

var ratingReplies = []string{"⭐", "⭐⭐", "⭐⭐⭐", "⭐⭐⭐⭐", "⭐⭐⭐⭐⭐"}
