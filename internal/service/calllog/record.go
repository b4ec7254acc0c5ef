// Package calllog appends finished conversation turns to external logs.
package calllog

import (
	"time"
)

// NotAvailable fills the city column when no city is known.
const NotAvailable = "N/A"

// TimestampLayout is the layout of the first column.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one logged exchange.
type Record struct {
	Timestamp   time.Time
	SessionID   string
	UserQuery   string
	BotResponse string
	Intent      string
	City        string
	// Duration is the session length at the time of logging.
	Duration time.Duration
}

// Row renders the record as the seven spreadsheet columns
// timestamp, session, query, response, intent, city, duration in whole seconds.
func (r Record) Row() []any {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	city := r.City
	if city == "" {
		city = NotAvailable
	}
	return []any{
		ts.Format(TimestampLayout),
		r.SessionID,
		r.UserQuery,
		r.BotResponse,
		r.Intent,
		city,
		r.seconds(),
	}
}

// seconds truncates to whole seconds.
func (r Record) seconds() int64 {
	if r.Duration <= 0 {
		return 0
	}
	return int64(r.Duration / time.Second)
}
