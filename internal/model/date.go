// Package model defines the data structures used throughout the application.
//
// JSON field names are camelCase to match the public REST contract
// (releaseDate, isPositive, eventType, ...).
package model

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component.
//
// WHY A CUSTOM TYPE?
// time.Time marshals to RFC 3339 ("2006-01-02T15:04:05Z07:00"), but the API
// exchanges plain dates ("1999-03-31"). Wrapping time.Time lets us implement
// json.Marshaler/Unmarshaler once and reuse the comparison helpers of
// time.Time everywhere else.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("date must be in %s format: %w", DateLayout, err)
	}
	*d = parsed
	return nil
}
