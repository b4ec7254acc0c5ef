package intent

import (
	"strings"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

// Transition computes the next state and the intent detected in text.
// It never mutates slots; callers record extracted values themselves.
func Transition(current chat.State, text string, slots map[string]string) (chat.State, chat.Intent) {
	normalized := normalize(text)

	// goodbye wins in every state
	if containsAny(normalized, goodbyeKeywords) {
		return chat.StateGoodbye, chat.IntentGoodbye
	}

	switch current {
	case chat.StateGreeting:
		return chat.StateIntentDetection, chat.IntentNone

	case chat.StateIntentDetection, chat.StateFallback:
		return Detect(normalized)

	case chat.StateBooking:
		return bookingStep(normalized, slots)

	case chat.StateCancellation:
		if !hasSlot(slots, chat.SlotBookingID) && bookingIDPattern.MatchString(normalized) {
			return chat.StateCancellationConfirmation, chat.IntentCancellationConfirmed
		}
		return chat.StateCancellation, chat.IntentCancellation

	case chat.StateFAQ:
		return chat.StateFAQ, chat.IntentFAQ

	case chat.StateBookingConfirmation, chat.StateCancellationConfirmation:
		return chat.StateGoodbye, chat.IntentGoodbye
	}

	return current, chat.IntentNone
}

// Detect classifies free text into booking, cancellation or faq, in that
// priority, falling back to the fallback state.
func Detect(text string) (chat.State, chat.Intent) {
	normalized := normalize(text)
	switch {
	case containsAny(normalized, bookingKeywords):
		return chat.StateBooking, chat.IntentBooking
	case containsAny(normalized, cancelKeywords):
		return chat.StateCancellation, chat.IntentCancellation
	case containsAny(normalized, faqKeywords):
		return chat.StateFAQ, chat.IntentFAQ
	default:
		return chat.StateFallback, chat.IntentNone
	}
}

// bookingStep fills at most one slot per message, in date, time, guests,
// confirmation order.
func bookingStep(normalized string, slots map[string]string) (chat.State, chat.Intent) {
	switch {
	case !hasSlot(slots, chat.SlotDate) && mentionsDate(normalized):
		return chat.StateBooking, chat.IntentBookingDate
	case !hasSlot(slots, chat.SlotTime) && timePattern.MatchString(normalized):
		return chat.StateBooking, chat.IntentBookingTime
	case !hasSlot(slots, chat.SlotGuests) && guestsPattern.MatchString(normalized):
		return chat.StateBooking, chat.IntentBookingGuests
	case !hasSlot(slots, chat.SlotConfirmation) && (strings.Contains(normalized, "yes") || strings.Contains(normalized, "confirm")):
		return chat.StateBookingConfirmation, chat.IntentBookingConfirmed
	default:
		return chat.StateBooking, chat.IntentBooking
	}
}

func mentionsDate(normalized string) bool {
	return strings.Contains(normalized, "today") ||
		strings.Contains(normalized, "tomorrow") ||
		datePattern.MatchString(normalized)
}

func hasSlot(slots map[string]string, key string) bool {
	_, ok := slots[key]
	return ok
}
