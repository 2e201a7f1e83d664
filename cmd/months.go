package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/aggregate"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/report"
	"github.com/elevatic20/worktime-app/internal/storage"
)

var monthsFormat string

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "List the months that have shifts, with their totals",
	Args:  cobra.NoArgs,
	RunE:  runMonths,
}

func init() {
	monthsCmd.Flags().StringVar(&monthsFormat, "format", "md", "Output format: md, csv, json")
}

type monthTotal struct {
	Month  string `json:"month"`
	Shifts int    `json:"shifts"`
	Hours  string `json:"hours"`
}

func runMonths(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	months, err := storage.Months(ctx, env.blobs, user)
	if err != nil {
		return fmt.Errorf("listing months: %w", err)
	}

	totals := make([]monthTotal, 0, len(months))
	labels := make([]string, 0, len(months))
	var grandTotal float64
	for _, m := range months {
		rep := report.Build(records.Load(ctx, env.blobs, user, m), m)
		totals = append(totals, monthTotal{Month: m.String(), Shifts: len(rep.Shifts), Hours: rep.Total()})
		labels = append(labels, m.Label())
		grandTotal += rep.Hours
	}

	out := cmd.OutOrStdout()
	switch monthsFormat {
	case "csv":
		fmt.Fprintln(out, "month,shifts,hours")
		for _, t := range totals {
			fmt.Fprintf(out, "%s,%d,%s\n", t.Month, t.Shifts, t.Hours)
		}
	case "json":
		data, err := json.MarshalIndent(totals, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "md":
		if len(totals) == 0 {
			fmt.Fprintf(out, "No shifts recorded for %s.\n", user)
			return nil
		}
		fmt.Fprintf(out, "Months for %s\n", user)
		fmt.Fprintln(out, "--------------------------------------")
		for i, t := range totals {
			fmt.Fprintf(out, "%-9s %-15s %3d  %8s h\n", t.Month, labels[i], t.Shifts, t.Hours)
		}
		fmt.Fprintln(out, "--------------------------------------")
		fmt.Fprintf(out, "%-29s %8s h\n", "Total", aggregate.FormatHours(grandTotal))
	default:
		return fmt.Errorf("unknown format %q: must be md, csv or json", monthsFormat)
	}
	return nil
}
