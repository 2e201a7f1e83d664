package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var monthCmd = &cobra.Command{
	Use:       "month next|prev [MM-YYYY]",
	Short:     "Print the month key after or before a month",
	Long:      `Prints the neighbouring month key, e.g. "wt month next 12-2024" prints 01-2025.`,
	Args:      cobra.MatchAll(cobra.RangeArgs(1, 2), validMonthDirection),
	ValidArgs: []string{"next", "prev"},
	RunE:      runMonth,
}

func validMonthDirection(cmd *cobra.Command, args []string) error {
	if args[0] != "next" && args[0] != "prev" {
		return fmt.Errorf("invalid direction %q: must be next or prev", args[0])
	}
	return nil
}

func runMonth(cmd *cobra.Command, args []string) error {
	m := timecalc.MonthOf(env.now)
	if len(args) == 2 {
		var err error
		if m, err = timecalc.ParseMonth(args[1]); err != nil {
			return err
		}
	}
	if args[0] == "next" {
		m = m.Next()
	} else {
		m = m.Prev()
	}
	fmt.Fprintln(cmd.OutOrStdout(), m)
	return nil
}
