package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var (
	editIndex int
	editMonth string
	editDate  string
	editStart string
	editEnd   string
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the date or times of a shift",
	Long: `Select the shift by id (any unique prefix works) or by its position in
"wt list" with --index. Fields you do not pass keep their value. A date in
another month moves the shift to that month.`,
	Example: `  wt edit 3f2a --end 17:00
  wt edit --index 2 --month 03-2024 --date 2024-04-01`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().IntVar(&editIndex, "index", 0, "Position of the shift in the month list (1-based)")
	editCmd.Flags().StringVar(&editMonth, "month", "", "Month holding the shift (MM-YYYY); defaults to the current month")
	editCmd.Flags().StringVar(&editDate, "date", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editStart, "start", "", "New start time (HH:MM)")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end time (HH:MM)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	month, err := env.month(editMonth)
	if err != nil {
		return err
	}
	st, err := env.open(cmd, user, month)
	if err != nil {
		return err
	}
	target, index, err := pickShift(st, args, cmd.Flags().Changed("index"), editIndex)
	if err != nil {
		return err
	}

	in, err := records.ParseInput(
		valueOr(editDate, target.Date),
		valueOr(editStart, target.StartTime),
		valueOr(editEnd, target.EndTime),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dest := timecalc.MonthOf(in.Date)
	if dest != st.Month() {
		to, err := env.open(cmd, user, dest)
		if err != nil {
			return err
		}
		if err := records.Move(ctx, st, to, target.ID, in); err != nil {
			return err
		}
		fmt.Fprintf(out, "Moved shift %s to %s: %s %s–%s\n", shortID(target.ID), dest.Label(), in.Date.Format(timecalc.DateLayout), in.Start, in.End)
		return nil
	}

	if index >= 0 {
		_, err = st.UpdateAt(ctx, index, in)
	} else {
		_, err = st.Update(ctx, target.ID, in)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated shift %s: %s %s–%s (%s h)\n",
		shortID(target.ID), in.Date.Format(timecalc.DateLayout), in.Start, in.End,
		timecalc.FormatHours(timecalc.HoursBetween(in.Start, in.End)))
	return nil
}

// pickShift selects a shift by id argument or by 1-based list position. The
// returned index is the 0-based position, or -1 when selected by id.
func pickShift(st *records.Store, args []string, byIndex bool, index int) (model.Shift, int, error) {
	switch {
	case len(args) == 1 && byIndex:
		return model.Shift{}, -1, errors.New("give either a shift id or --index, not both")
	case len(args) == 1:
		sh, err := st.Resolve(args[0])
		return sh, -1, err
	case byIndex:
		shifts := st.Shifts()
		if index < 1 || index > len(shifts) {
			return model.Shift{}, -1, fmt.Errorf("%w: %d (%s has %d shifts)", records.ErrIndexOutOfRange, index, st.Month().Label(), len(shifts))
		}
		return shifts[index-1], index - 1, nil
	default:
		return model.Shift{}, -1, errors.New("specify a shift id or --index")
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// shortID abbreviates an id for display; any unique prefix selects a shift.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
