package kb

// TechnicalDifficulty is returned by free-text mode when the city's knowledge
// base cannot be read.
const TechnicalDifficulty = "I apologize, but I'm experiencing technical difficulties. Please try again later."

var greetingPhrases = []string{
	"Hello! Welcome to Barbeque Nation. How can I assist you today?",
	"Hi there! I'm your Barbeque Nation assistant. What information do you need?",
	"Greetings! I'm here to help with all your Barbeque Nation queries.",
}

var fallbackPhrases = []string{
	"I'm not sure I understand. Could you please rephrase your question?",
	"I don't have specific information about that. Would you like to know about our menu, locations, or make a reservation?",
	"I'm sorry, I don't have that information right now. Is there something else I can help you with?",
}

// GreetingPhrases returns the greeting variants free-text mode chooses from.
func GreetingPhrases() []string {
	return append([]string(nil), greetingPhrases...)
}

// FallbackPhrases returns the phrases used when nothing matches.
func FallbackPhrases() []string {
	return append([]string(nil), fallbackPhrases...)
}

// topic is one free-text keyword bucket. Buckets are tried in declaration
// order and only the first whose keywords hit the query is consulted.
type topic struct {
	name     string
	keywords []string
	markers  []string // lowercase fragments of the FAQ question to pick
}

const (
	topicHours      = "hours"
	topicPrice      = "price"
	topicLocation   = "location"
	topicVegetarian = "vegetarian"
	topicBooking    = "booking"
	topicGreeting   = "greeting"
)

var topics = []topic{
	{name: topicHours, keywords: []string{"hour", "open", "time", "timing", "when"}, markers: []string{"opening hours", "timing"}},
	{name: topicPrice, keywords: []string{"price", "cost", "buffet", "menu", "charge", "fee", "expensive"}, markers: []string{"price", "cost"}},
	{name: topicLocation, keywords: []string{"location", "address", "where", "place", "situated", "located"}, markers: []string{"located", "address"}},
	{name: topicVegetarian, keywords: []string{"veg", "vegetarian", "plant", "non-meat"}, markers: []string{"vegetarian"}},
	{name: topicBooking, keywords: []string{"book", "reservation", "table", "reserve", "seat"}},
	{name: topicGreeting, keywords: []string{"hello", "hi", "hey", "greetings"}},
}

const bookingInfoMarker = "Booking Information"
