// Package loan implements the checks a loan must pass before it is sent to
// the backend and the normalization of loosely shaped loan payloads.
//
// Validate is a pure function: it performs no I/O and depends only on its
// argument. Whether the referenced client and game exist is left to the
// backend, which rejects unknown references at submission time.
package loan

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

// MaxDays is the longest span, in whole days, a loan may cover.
const MaxDays = 14

const dateLayout = "2006-01-02"

var (
	// ErrMissingFields is returned when an identifier is empty or a date
	// cannot be parsed. Views use it to keep the submit control disabled.
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidRange is returned when the end date is not after the start date.
	ErrInvalidRange = errors.New("end date must be after start date")

	// ErrDurationExceeded is returned when the loan spans more than MaxDays days.
	ErrDurationExceeded = errors.New("loan cannot last more than 14 days")
)

// Validate checks a candidate loan. Rules run in order and the first
// failure is returned:
//
//	ErrMissingFields    client, game, start or end missing / unparseable
//	ErrInvalidRange     end <= start
//	ErrDurationExceeded ceil((end - start) / 1 day) > MaxDays
func Validate(in model.LoanInput) error {
	if strings.TrimSpace(in.ClientID) == "" || strings.TrimSpace(in.GameID) == "" {
		return ErrMissingFields
	}
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return ErrMissingFields
	}
	end, err := ParseDate(in.EndDate)
	if err != nil {
		return ErrMissingFields
	}

	if !end.After(start) {
		return ErrInvalidRange
	}
	if SpanDays(start, end) > MaxDays {
		return ErrDurationExceeded
	}
	return nil
}

// SpanDays is the number of whole days between start and end, rounded up.
func SpanDays(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// ParseDate reads a calendar date. A trailing time component is dropped,
// so "2024-01-05" and "2024-01-05T10:00:00Z" are the same day. Dates are
// interpreted in UTC.
func ParseDate(s string) (time.Time, error) {
	s = model.DatePart(s)
	if s == "" {
		return time.Time{}, ErrMissingFields
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// Reason maps a validation error to a stable machine-readable code. It
// returns "" for nil and for errors that did not come from Validate.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrDurationExceeded):
		return "duration_exceeded"
	}
	return ""
}
