package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/aggregate"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var (
	addDate  string
	addStart string
	addEnd   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a shift",
	Example: `  wt add --start 08:00 --end 16:30
  wt add --date 2024-03-05 --start 08:00 --end 16:30`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Shift date (YYYY-MM-DD); defaults to today")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start time (HH:MM)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "End time (HH:MM)")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")
}

func runAdd(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}

	date := addDate
	if date == "" {
		date = env.now.Format(timecalc.DateLayout)
	}
	in, err := records.ParseInput(date, addStart, addEnd)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	// Shifts live in the partition of their own month.
	st, err := env.open(cmd, user, timecalc.MonthOf(in.Date))
	if err != nil {
		return err
	}
	shifts, err := st.Append(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %s–%s on %s (%s h)\n",
		in.Start, in.End, describeDay(in), timecalc.FormatHours(timecalc.HoursBetween(in.Start, in.End)))
	fmt.Fprintf(out, "%s: %s h in %d shifts\n",
		st.Month().Label(), aggregate.FormatHours(aggregate.TotalHours(shifts)), len(shifts))
	return nil
}

// describeDay names the shift's day, e.g. "today" or "Tuesday 2024-03-05".
func describeDay(in records.Input) string {
	if timecalc.SameDay(in.Date, env.today()) {
		return "today"
	}
	return fmt.Sprintf("%s %s", in.Date.Weekday(), in.Date.Format(timecalc.DateLayout))
}
