// Package report turns a month of shifts into a spreadsheet.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/elevatic20/worktime-app/internal/aggregate"
	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

const (
	// DefaultSheetName names the only sheet of the workbook.
	DefaultSheetName = "Work hours"
	// DefaultTotalLabel labels the summary row.
	DefaultTotalLabel = "Total hours"

	// Fixed document timestamp so equal input yields equal workbooks.
	docTimestamp = "2000-01-01T00:00:00Z"
)

// Header lists the column names, in row order.
var Header = []string{"day", "date", "startTime", "endTime", "duration"}

// Options controls the workbook layout.
type Options struct {
	SheetName  string
	TotalLabel string
	// Header adds a column-name row above the data rows.
	Header bool
}

func (o Options) withDefaults() Options {
	if o.SheetName == "" {
		o.SheetName = DefaultSheetName
	}
	if o.TotalLabel == "" {
		o.TotalLabel = DefaultTotalLabel
	}
	return o
}

// Report is one month of shifts ready for export.
type Report struct {
	Month  timecalc.Month
	Shifts []model.Shift
	Hours  float64
}

// Build filters shifts to month, sorts them by date and sums their hours.
func Build(shifts []model.Shift, month timecalc.Month) Report {
	filtered := aggregate.SortByDate(aggregate.FilterByMonth(shifts, month))
	return Report{
		Month:  month,
		Shifts: filtered,
		Hours:  aggregate.TotalHours(filtered),
	}
}

// Total returns the summed hours formatted like a duration, e.g. "16.50".
func (r Report) Total() string {
	return aggregate.FormatHours(r.Hours)
}

// Table returns every row of the sheet: the optional header, one row per
// shift and the trailing summary row.
func (r Report) Table(opts Options) [][]string {
	opts = opts.withDefaults()
	rows := make([][]string, 0, len(r.Shifts)+2)
	if opts.Header {
		rows = append(rows, append([]string(nil), Header...))
	}
	for _, s := range r.Shifts {
		rows = append(rows, []string{s.Day, s.Date, s.StartTime, s.EndTime, s.Duration})
	}
	return append(rows, []string{opts.TotalLabel, r.Total()})
}

// Workbook encodes the report as a single-sheet .xlsx file.
func (r Report) Workbook(opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), opts.SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet %q: %w", opts.SheetName, err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Created:  docTimestamp,
		Modified: docTimestamp,
		Creator:  "wt",
		Title:    r.Month.Label(),
	}); err != nil {
		return nil, fmt.Errorf("setting document properties: %w", err)
	}

	for i, row := range r.Table(opts) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(opts.SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName suggests a name for the exported workbook, e.g. "Toni_March.xlsx".
func FileName(user string, month timecalc.Month) string {
	return fmt.Sprintf("%s_%s.xlsx", user, month.Name())
}
