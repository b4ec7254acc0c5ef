package chat

// State is a node of the conversation state machine.
type State string

const (
	StateGreeting                 State = "greeting"
	StateIntentDetection          State = "intent_detection"
	StateBooking                  State = "booking"
	StateCancellation             State = "cancellation"
	StateFAQ                      State = "faq"
	StateFallback                 State = "fallback"
	StateBookingConfirmation      State = "booking_confirmation"
	StateCancellationConfirmation State = "cancellation_confirmation"
	StateGoodbye                  State = "goodbye"
)

var allStates = []State{
	StateGreeting,
	StateIntentDetection,
	StateBooking,
	StateCancellation,
	StateFAQ,
	StateFallback,
	StateBookingConfirmation,
	StateCancellationConfirmation,
	StateGoodbye,
}

// States returns every state in declaration order.
func States() []State {
	return append([]State(nil), allStates...)
}

// Valid reports whether s belongs to the closed state set.
func (s State) Valid() bool {
	for _, candidate := range allStates {
		if s == candidate {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateGoodbye
}

// Intent tags what the user asked for on a single turn. The zero value means none.
type Intent string

const (
	IntentNone                  Intent = ""
	IntentBooking               Intent = "booking"
	IntentBookingDate           Intent = "booking_date"
	IntentBookingTime           Intent = "booking_time"
	IntentBookingGuests         Intent = "booking_guests"
	IntentBookingConfirmed      Intent = "booking_confirmed"
	IntentCancellation          Intent = "cancellation"
	IntentCancellationConfirmed Intent = "cancellation_confirmed"
	IntentFAQ                   Intent = "faq"
	IntentGoodbye               Intent = "goodbye"
)

// Context slot names.
const (
	SlotCity         = "city"
	SlotDate         = "date"
	SlotTime         = "time"
	SlotGuests       = "guests"
	SlotConfirmation = "confirmation"
	SlotBookingID    = "booking_id"
)
