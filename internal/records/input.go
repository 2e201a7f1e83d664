package records

import (
	"time"

	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

// Input holds the user-supplied fields of a shift. Everything else on
// model.Shift is derived from it.
type Input struct {
	Date  time.Time
	Start timecalc.Clock
	End   timecalc.Clock
}

// ParseInput builds an Input from its textual form ("2024-03-05", "08:00", "16:30").
func ParseInput(date, start, end string) (Input, error) {
	d, err := timecalc.ParseDate(date)
	if err != nil {
		return Input{}, &ValidationError{Field: "date", Reason: err.Error()}
	}
	s, err := timecalc.ParseClock(start)
	if err != nil {
		return Input{}, &ValidationError{Field: "start", Reason: err.Error()}
	}
	e, err := timecalc.ParseClock(end)
	if err != nil {
		return Input{}, &ValidationError{Field: "end", Reason: err.Error()}
	}
	return Input{Date: d, Start: s, End: e}, nil
}

// InputOf recovers the Input of a stored shift, e.g. to edit some fields.
func InputOf(s model.Shift) (Input, error) {
	return ParseInput(s.Date, s.StartTime, s.EndTime)
}

// Validate checks that the end time is strictly after the start time.
func (in Input) Validate() error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "date is required"}
	}
	if in.End.Minutes() <= in.Start.Minutes() {
		return &ValidationError{Field: "end", Reason: "end time must be later than start time"}
	}
	return nil
}

// Shift validates in and returns the shift it describes under id.
func (in Input) Shift(id string) (model.Shift, error) {
	if err := in.Validate(); err != nil {
		return model.Shift{}, err
	}
	return model.Shift{
		ID:        id,
		Day:       in.Date.Weekday().String(),
		Date:      in.Date.Format(timecalc.DateLayout),
		StartTime: in.Start.String(),
		EndTime:   in.End.String(),
		Duration:  timecalc.FormatHours(timecalc.HoursBetween(in.Start, in.End)),
	}, nil
}
