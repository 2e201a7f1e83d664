package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the on-disk layout for shift dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the on-disk layout for start and end times.
	ClockLayout = "15:04"
	// MonthLayout is the textual form of a Month key.
	MonthLayout = "01-2006"
)

// Month identifies one calendar month; it is the partition key of the
// record store.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a key like "03-2024".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want MM-YYYY): %w", s, err)
	}
	return MonthOf(t), nil
}

// String formats the month as "MM-YYYY".
func (m Month) String() string {
	return fmt.Sprintf("%02d-%04d", int(m.Month), m.Year)
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month, rolling over into January.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month, rolling back into December.
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Contains reports whether the calendar date of t falls in m.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Name returns the English month name, e.g. "March".
func (m Month) Name() string {
	return m.Month.String()
}

// Label returns a display label like "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// ParseDate parses a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q (want HH:MM): %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// HoursBetween returns the fractional hours from start to end on the same day.
// The result is negative when end is before start.
func HoursBetween(start, end Clock) float64 {
	return float64(end.Minutes()-start.Minutes()) / 60
}

// FormatHours formats fractional hours with two decimals, e.g. "8.50".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
