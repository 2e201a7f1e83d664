package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elevatic20/worktime-app/internal/aggregate"
	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var march2024 = timecalc.Month{Year: 2024, Month: time.March}

func shift(date, duration string) model.Shift {
	return model.Shift{Date: date, Duration: duration}
}

func sample() []model.Shift {
	return []model.Shift{
		shift("2024-03-10", "8.00"),
		shift("2024-02-29", "4.25"),
		shift("2024-03-05", "8.50"),
		shift("2025-03-05", "1.00"),
		shift("not a date", "2.00"),
		shift("2024-04-01", "3.75"),
	}
}

func TestFilterByMonth(t *testing.T) {
	got := aggregate.FilterByMonth(sample(), march2024)
	assert.Equal(t, []model.Shift{
		shift("2024-03-10", "8.00"),
		shift("2024-03-05", "8.50"),
	}, got)
}

func TestFilterByMonth_Idempotent(t *testing.T) {
	for _, m := range []timecalc.Month{march2024, march2024.Next(), march2024.Prev(), {Year: 1999, Month: time.May}} {
		once := aggregate.FilterByMonth(sample(), m)
		twice := aggregate.FilterByMonth(once, m)
		assert.Equal(t, once, twice, "month %s", m)
	}
}

func TestSortByDate(t *testing.T) {
	in := []model.Shift{
		{ID: "b", Date: "2024-03-10"},
		{ID: "a", Date: "2024-03-05"},
		{ID: "c", Date: "2024-03-10"},
	}
	got := aggregate.SortByDate(in)

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "b", in[0].ID, "input must not be reordered")
}

func TestTotalHours(t *testing.T) {
	assert.Zero(t, aggregate.TotalHours(nil))

	march := aggregate.FilterByMonth(sample(), march2024)
	assert.Equal(t, "16.50", aggregate.FormatHours(aggregate.TotalHours(march)))

	// Malformed durations contribute nothing.
	assert.Equal(t, 1.5, aggregate.TotalHours([]model.Shift{shift("2024-03-01", "x"), shift("2024-03-01", "1.50")}))
}

func TestTotalHours_Additive(t *testing.T) {
	a := []model.Shift{shift("2024-03-01", "8.50"), shift("2024-03-02", "0.33")}
	b := []model.Shift{shift("2024-03-03", "7.25"), shift("2024-03-04", "12.00"), shift("2024-03-05", "0.02")}

	joined := append(append([]model.Shift{}, a...), b...)
	assert.InDelta(t,
		aggregate.TotalHours(a)+aggregate.TotalHours(b),
		aggregate.TotalHours(joined),
		1e-9)
}
