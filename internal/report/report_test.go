package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/report"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var march2024 = timecalc.Month{Year: 2024, Month: time.March}

var (
	fifth = model.Shift{ID: "a", Day: "Tuesday", Date: "2024-03-05", StartTime: "08:00", EndTime: "16:30", Duration: "8.50"}
	tenth = model.Shift{ID: "b", Day: "Sunday", Date: "2024-03-10", StartTime: "09:00", EndTime: "17:00", Duration: "8.00"}
	april = model.Shift{ID: "c", Day: "Monday", Date: "2024-04-01", StartTime: "09:00", EndTime: "10:00", Duration: "1.00"}
)

func readRows(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return sheets[0], rows
}

func TestBuild_FiltersAndSorts(t *testing.T) {
	r := report.Build([]model.Shift{tenth, april, fifth}, march2024)
	assert.Equal(t, []model.Shift{fifth, tenth}, r.Shifts)
	assert.Equal(t, "16.50", r.Total())
}

func TestWorkbook(t *testing.T) {
	data, err := report.Build([]model.Shift{tenth, fifth}, march2024).Workbook(report.Options{})
	require.NoError(t, err)

	sheet, rows := readRows(t, data)
	assert.Equal(t, report.DefaultSheetName, sheet)
	assert.Equal(t, [][]string{
		{"Tuesday", "2024-03-05", "08:00", "16:30", "8.50"},
		{"Sunday", "2024-03-10", "09:00", "17:00", "8.00"},
		{"Total hours", "16.50"},
	}, rows)
}

func TestWorkbook_AfterDeletingFirst(t *testing.T) {
	data, err := report.Build([]model.Shift{tenth}, march2024).Workbook(report.Options{})
	require.NoError(t, err)

	_, rows := readRows(t, data)
	assert.Equal(t, [][]string{
		{"Sunday", "2024-03-10", "09:00", "17:00", "8.00"},
		{"Total hours", "8.00"},
	}, rows)
}

func TestWorkbook_HeaderAndLabels(t *testing.T) {
	opts := report.Options{SheetName: "Radni sati", TotalLabel: "Ukupno sati", Header: true}
	data, err := report.Build([]model.Shift{fifth}, march2024).Workbook(opts)
	require.NoError(t, err)

	sheet, rows := readRows(t, data)
	assert.Equal(t, "Radni sati", sheet)
	assert.Equal(t, [][]string{
		report.Header,
		{"Tuesday", "2024-03-05", "08:00", "16:30", "8.50"},
		{"Ukupno sati", "8.50"},
	}, rows)
}

func TestWorkbook_EmptyMonth(t *testing.T) {
	data, err := report.Build([]model.Shift{april}, march2024).Workbook(report.Options{})
	require.NoError(t, err)

	_, rows := readRows(t, data)
	assert.Equal(t, [][]string{{"Total hours", "0.00"}}, rows)
}

func TestWorkbook_Deterministic(t *testing.T) {
	r := report.Build([]model.Shift{tenth, fifth}, march2024)
	a, err := r.Workbook(report.Options{})
	require.NoError(t, err)
	b, err := r.Workbook(report.Options{})
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a, b), "workbooks for the same month differ")
}

func TestWorkbook_InvalidSheetName(t *testing.T) {
	_, err := report.Build(nil, march2024).Workbook(report.Options{SheetName: "bad/name"})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Toni_March.xlsx", report.FileName("Toni", march2024))
	assert.Equal(t, "Toni_December.xlsx", report.FileName("Toni", timecalc.Month{Year: 2024, Month: time.December}))
}
