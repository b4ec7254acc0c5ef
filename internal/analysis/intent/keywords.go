// Package intent classifies chat messages by keyword and drives the
// conversation state machine.
package intent

import (
	"regexp"
	"strings"
)

var (
	goodbyeKeywords = []string{"bye", "goodbye", "thank", "thanks", "exit", "quit", "end"}
	bookingKeywords = []string{"book", "reservation", "reserve", "table", "seat", "dinner", "lunch"}
	cancelKeywords  = []string{"cancel", "reschedule", "change reservation"}
	faqKeywords     = []string{"hour", "open", "menu", "price", "cost", "location", "address", "buffet", "veg", "non-veg"}
)

var (
	datePattern      = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}`)
	timePattern      = regexp.MustCompile(`\d{1,2}(?::\d{2})?\s*(?:am|pm)`)
	guestsPattern    = regexp.MustCompile(`(\d+)\s*(?:people|persons|guests)`)
	// applied to lowercased text, so only long digit runs qualify
	bookingIDPattern = regexp.MustCompile(`[A-Z0-9]{6,}`)
)

// cityAliases maps lowercase mentions to the canonical city name, checked in order.
var cityAliases = []struct {
	mention string
	city    string
}{
	{"new delhi", "Delhi"},
	{"delhi", "Delhi"},
	{"bangalore", "Bangalore"},
}

func containsAny(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	return strings.ToLower(text)
}

// IsGoodbye reports whether text contains any goodbye keyword.
func IsGoodbye(text string) bool {
	return containsAny(normalize(text), goodbyeKeywords)
}

// DetectCity returns the canonical city mentioned in text.
func DetectCity(text string) (string, bool) {
	normalized := normalize(text)
	for _, alias := range cityAliases {
		if strings.Contains(normalized, alias.mention) {
			return alias.city, true
		}
	}
	return "", false
}
