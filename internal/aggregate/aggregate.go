// Package aggregate derives month views from a list of shifts. Everything
// here is pure and allocation-light so callers can recompute on every render.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

// FilterByMonth returns the shifts whose date falls in m, preserving order.
// Shifts with an unparsable date are dropped.
func FilterByMonth(shifts []model.Shift, m timecalc.Month) []model.Shift {
	out := make([]model.Shift, 0, len(shifts))
	for _, s := range shifts {
		d, err := timecalc.ParseDate(s.Date)
		if err != nil {
			continue
		}
		if m.Contains(d) {
			out = append(out, s)
		}
	}
	return out
}

// SortByDate returns a copy of shifts in ascending date order. Shifts on the
// same date keep their relative order.
func SortByDate(shifts []model.Shift) []model.Shift {
	out := make([]model.Shift, len(shifts))
	copy(out, shifts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// Hours parses the precomputed duration of s. Malformed values count as zero.
func Hours(s model.Shift) float64 {
	h, err := strconv.ParseFloat(strings.TrimSpace(s.Duration), 64)
	if err != nil {
		return 0
	}
	return h
}

// TotalHours sums the durations of shifts.
func TotalHours(shifts []model.Shift) float64 {
	var total float64
	for _, s := range shifts {
		total += Hours(s)
	}
	return total
}

// FormatHours formats a total the way durations are stored, e.g. "16.50".
func FormatHours(h float64) string {
	return timecalc.FormatHours(h)
}
