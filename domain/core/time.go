package core

import (
	"fmt"
	"time"
)

// DateLayout is the canonical day-key format for dated samples.
const DateLayout = "2006-01-02"

// Date is a calendar day key (ISO YYYY-MM-DD). Samples are unique per Date
// within a series, and pairing between series is done on Date arithmetic.
type Date string

// NewDate creates a Date from a time.Time, truncating to the calendar day.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate parses an ISO YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return NewDate(t), nil
}

// Time returns the Date as a time.Time at midnight UTC.
// A zero time is returned for malformed dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the Date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return NewDate(d.Time().AddDate(0, 0, days))
}

// String returns the ISO representation.
func (d Date) String() string {
	return string(d)
}

// IsZero checks if the date is empty
func (d Date) IsZero() bool {
	return d == ""
}

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}
