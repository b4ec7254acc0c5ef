// Package kb models the per-city FAQ knowledge base.
package kb

// Entry is one knowledge-base record. FAQ records carry Question and Answer;
// booking information records carry Info and Details.
type Entry struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Info     string `json:"info,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Collection groups a city's entries by intent category ("faq", "booking", ...).
type Collection map[string][]Entry

// Intent categories present in the shipped data files.
const (
	CategoryFAQ     = "faq"
	CategoryBooking = "booking"
)
