package intent

import (
	"strings"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

// ExtractSlot returns the context slot and raw value carried by text for a
// slot-filling intent reported by Transition. Values are the matched text,
// not parsed dates or numbers.
func ExtractSlot(detected chat.Intent, text string) (string, string, bool) {
	normalized := normalize(text)

	switch detected {
	case chat.IntentBookingDate:
		switch {
		case strings.Contains(normalized, "today"):
			return chat.SlotDate, "today", true
		case strings.Contains(normalized, "tomorrow"):
			return chat.SlotDate, "tomorrow", true
		}
		if m := datePattern.FindString(normalized); m != "" {
			return chat.SlotDate, m, true
		}
	case chat.IntentBookingTime:
		if m := timePattern.FindString(normalized); m != "" {
			return chat.SlotTime, m, true
		}
	case chat.IntentBookingGuests:
		if m := guestsPattern.FindStringSubmatch(normalized); len(m) == 2 {
			return chat.SlotGuests, m[1], true
		}
	case chat.IntentBookingConfirmed:
		return chat.SlotConfirmation, "yes", true
	case chat.IntentCancellationConfirmed:
		if m := bookingIDPattern.FindString(normalized); m != "" {
			return chat.SlotBookingID, m, true
		}
	}
	return "", "", false
}
