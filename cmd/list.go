package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/report"
)

var (
	listMonth  string
	listPrev   bool
	listNext   bool
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the shifts of a month with their total",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month to show (MM-YYYY); defaults to the current month")
	listCmd.Flags().BoolVar(&listPrev, "prev", false, "Show the month before --month")
	listCmd.Flags().BoolVar(&listNext, "next", false, "Show the month after --month")
	listCmd.Flags().StringVar(&listFormat, "format", "md", "Output format: md, csv, json")
}

// monthView is the JSON form of a listed month.
type monthView struct {
	User   string        `json:"user"`
	Month  string        `json:"month"`
	Shifts []model.Shift `json:"shifts"`
	Total  string        `json:"total"`
}

func runList(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	month, err := env.month(listMonth)
	if err != nil {
		return err
	}
	switch {
	case listPrev && listNext:
		return errors.New("--prev and --next are mutually exclusive")
	case listPrev:
		month = month.Prev()
	case listNext:
		month = month.Next()
	}

	rep := report.Build(records.Load(cmd.Context(), env.blobs, user, month), month)
	out := cmd.OutOrStdout()

	switch listFormat {
	case "json":
		shifts := rep.Shifts
		if shifts == nil {
			shifts = []model.Shift{}
		}
		data, err := json.MarshalIndent(monthView{User: user, Month: month.String(), Shifts: shifts, Total: rep.Total()}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "csv":
		printCSV(out, rep)
	case "md":
		printList(out, rep)
	default:
		return fmt.Errorf("unknown format %q: must be md, csv or json", listFormat)
	}
	return nil
}

// printList prints the month as a numbered table followed by its total.
func printList(w io.Writer, rep report.Report) {
	fmt.Fprintf(w, "%s (%s)\n", rep.Month.Label(), rep.Month)
	if len(rep.Shifts) == 0 {
		fmt.Fprintln(w, "No shifts recorded.")
	} else {
		fmt.Fprintf(w, "%3s  %-8s  %-9s  %-10s  %-5s  %-5s  %s\n", "#", "ID", "Day", "Date", "Start", "End", "Hours")
		for i, s := range rep.Shifts {
			fmt.Fprintf(w, "%3d  %-8s  %-9s  %-10s  %-5s  %-5s  %s\n",
				i+1, shortID(s.ID), s.Day, s.Date, s.StartTime, s.EndTime, s.Duration)
		}
	}
	fmt.Fprintf(w, "TOTAL: %s h\n", rep.Total())
}

func printCSV(w io.Writer, rep report.Report) {
	fmt.Fprintln(w, "id,day,date,start_time,end_time,duration")
	for _, s := range rep.Shifts {
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s\n",
			csvEscape(s.ID),
			csvEscape(s.Day),
			csvEscape(s.Date),
			csvEscape(s.StartTime),
			csvEscape(s.EndTime),
			csvEscape(s.Duration),
		)
	}
	fmt.Fprintf(w, "TOTAL,,,,,%s\n", rep.Total())
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
