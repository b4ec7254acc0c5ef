package render

// SessionEnded is the template key used once a conversation has reached goodbye.
const SessionEnded = "session_ended"

// builtinTemplates are Go text/template sources keyed by state name. Context
// values are read with index so absent slots render empty.
var builtinTemplates = map[string]string{
	"greeting": `Hello! Welcome to Barbeque Nation. I'm your virtual assistant and I'm here to help you with reservations, menu questions, and more. How can I assist you today?`,

	"intent_detection": `I can help you book a table, cancel or change a reservation, or answer questions about our timings, prices, menu and locations. What would you like to do?`,

	"booking": `
{{- $date := index .context "date" -}}
{{- $time := index .context "time" -}}
{{- $guests := index .context "guests" -}}
{{- if not $date -}}
Great, let's book a table{{with index .context "city"}} in {{.}}{{end}}! Which date would you like to visit? You can say today, tomorrow or a date like 12/08.
{{- else if not $time -}}
Got it, {{$date}}. What time should we reserve? For example 7pm or 8:30 pm.
{{- else if not $guests -}}
{{$date}} at {{$time}} it is. How many guests will be joining?
{{- else -}}
Here is your booking: {{$guests}} guests on {{$date}} at {{$time}}. Shall I confirm it? Reply yes to confirm.
{{- end -}}`,

	"booking_confirmation": `Your table is booked for {{with index .context "guests"}}{{.}} guests {{end}}{{with index .context "date"}}on {{.}} {{end}}{{with index .context "time"}}at {{.}}{{end}}. We look forward to hosting you! Anything else I can help with?`,

	"cancellation": `I can help you cancel your reservation. Please share your booking ID, it has at least 6 letters or digits.`,

	"cancellation_confirmation": `Your reservation {{index .context "booking_id"}} has been cancelled. Is there anything else I can help you with?`,

	"faq": `I can answer questions about our timings, buffet prices, menu and locations. Which city are you asking about, Delhi or Bangalore?`,

	"fallback": `I'm sorry, I didn't quite get {{with .query}}"{{.}}"{{else}}that{{end}}. I can help with table bookings, cancellations, or questions about our menu, timings and locations.`,

	"goodbye": `Thank you for chatting with Barbeque Nation! Have a great day.`,

	SessionEnded: `This conversation has ended. Please start a new chat if you need anything else.`,
}
