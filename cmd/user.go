package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/session"
)

var userCmd = &cobra.Command{
	Use:   "user [name]",
	Short: "Show or set the current user",
	Long: `Without an argument, prints the user wt acts as. With a name, remembers
that user for later commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUser,
}

func runUser(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		if env.user == "" {
			return errNoUser
		}
		fmt.Fprintln(out, env.user)
		return nil
	}

	name := strings.TrimSpace(args[0])
	if err := session.Save(cmd.Context(), env.blobs, session.State{User: name}); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	env.user = name
	fmt.Fprintf(out, "Current user: %s\n", name)
	return nil
}
