package features

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	dateRegex  = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})$`)
	clockRegex = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})$`)
)

// Date is a civil calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	var d Date
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return Date{}, err
	}
	return d, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// IsValid reports whether the date exists in the proleptic Gregorian calendar.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	// time.Date normalizes overflowing days into the next month.
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
	return t.Day() == d.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	s := string(text)
	m := dateRegex.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("invalid date %q", s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	parsed := Date{Year: year, Month: time.Month(month), Day: day}
	if !parsed.IsValid() {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

// Clock is a wall-clock time of day with minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an HH:MM string.
func ParseClock(s string) (Clock, error) {
	var c Clock
	if err := c.UnmarshalText([]byte(s)); err != nil {
		return Clock{}, err
	}
	return c, nil
}

// IsValid reports whether the clock lies within 00:00–23:59.
func (c Clock) IsValid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	s := string(text)
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("invalid time %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	parsed := Clock{Hour: hour, Minute: minute}
	if !parsed.IsValid() {
		return fmt.Errorf("invalid time %q", s)
	}
	*c = parsed
	return nil
}

// combine joins a date and a clock into a zone-less instant (UTC is used
// only as a neutral carrier; no conversion takes place).
func combine(d Date, c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// mondayBasedWeekday maps time.Weekday (Sunday=0) onto Monday=0 … Sunday=6.
func mondayBasedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
