package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/aggregate"
)

var (
	deleteIndex int
	deleteMonth string
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a shift",
	Example: `  wt delete 3f2a
  wt delete --index 1 --month 03-2024`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().IntVar(&deleteIndex, "index", 0, "Position of the shift in the month list (1-based)")
	deleteCmd.Flags().StringVar(&deleteMonth, "month", "", "Month holding the shift (MM-YYYY); defaults to the current month")
}

func runDelete(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	month, err := env.month(deleteMonth)
	if err != nil {
		return err
	}
	st, err := env.open(cmd, user, month)
	if err != nil {
		return err
	}
	target, index, err := pickShift(st, args, cmd.Flags().Changed("index"), deleteIndex)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if index >= 0 {
		_, err = st.DeleteAt(ctx, index)
	} else {
		_, err = st.Delete(ctx, target.ID)
	}
	if err != nil {
		return err
	}

	remaining := st.Shifts()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deleted shift %s (%s %s–%s)\n", shortID(target.ID), target.Date, target.StartTime, target.EndTime)
	fmt.Fprintf(out, "%s: %s h in %d shifts\n", month.Label(), aggregate.FormatHours(aggregate.TotalHours(remaining)), len(remaining))
	return nil
}
