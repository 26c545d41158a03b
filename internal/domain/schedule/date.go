package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
)

const (
	// DateLayout is the canonical wire format of a calendar date.
	DateLayout = "2006-01-02"
	// DisplayDateLayout renders dates for people, e.g. "May 20, 2025".
	DisplayDateLayout = "January 2, 2006"
)

// Date is a calendar date with no time-of-day component.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, domain.NewValidationError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", s))
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// Display formats the date for confirmation messages.
func (d Date) Display() string {
	return d.midnight().Format(DisplayDateLayout)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.midnight().Weekday() }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// IsPast reports whether d is strictly before today.
func (d Date) IsPast(today Date) bool { return d.Before(today) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return DateOf(d.midnight().AddDate(0, 0, n)) }

// At returns the instant timeOfDay ("09:00 AM" or "09:00") starts on d in loc.
func (d Date) At(timeOfDay string, loc *time.Location) (time.Time, error) {
	hhmm, err := To24Hour(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse("15:04", hhmm)
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time { return d.midnight() }

func (d Date) midnight() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
