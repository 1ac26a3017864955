package domain

import (
	"fmt"
	"time"

	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time of day or zone. The zero value is not a valid day.
type Date struct {
	t time.Time // midnight UTC
}

// NewDate returns the given calendar day, normalizing overflow like time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in loc. A nil loc means UTC.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return NewDate(y, m, d)
}

// Today is the calendar day of clock.Now() in loc.
func Today(clock sharedDomain.Clock, loc *time.Location) Date {
	return DateOf(clock.Now(), loc)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) AddDays(n int) Date     { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Time() time.Time        { return d.t }
func (d Date) String() string         { return d.t.Format(dateLayout) }
func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

const secondsPerDay = 24 * 60 * 60

// DaysSince returns the number of calendar days from other to d. Negative when
// d is earlier. Both days sit at midnight UTC, so the division is exact for any
// year time.Time can hold.
func (d Date) DaysSince(other Date) int {
	return int((d.t.Unix() - other.t.Unix()) / secondsPerDay)
}

// Between reports whether d lies in [start, end].
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
