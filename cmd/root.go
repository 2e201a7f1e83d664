package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/config"
	"github.com/elevatic20/worktime-app/internal/logging"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/session"
	"github.com/elevatic20/worktime-app/internal/storage"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var (
	flagUser    string
	flagConfig  string
	flagVerbose bool
)

// now is read once per command; tests replace it.
var now = time.Now

var errNoUser = errors.New("no user selected: run `wt user <name>` first")

// app is the per-invocation state shared by all commands.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	blobs storage.Blobs
	close func() error
	user  string
	now   time.Time
}

var env *app

var rootCmd = &cobra.Command{
	Use:   "wt",
	Short: "wt – log daily work shifts and export monthly timesheets",
	Long: `wt records the shifts you work (date, start and end time), totals the
hours per month and exports a monthly timesheet as an .xlsx workbook.
Data is stored as JSON files (or a SQLite database) in ~/.wt/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User to act as (overrides config and the remembered user)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.wt/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(monthsCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(exportCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	log := logging.New(cmd.ErrOrStderr(), flagVerbose)

	blobs, closer, err := openBlobs(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	env = &app{cfg: cfg, log: log, blobs: blobs, close: closer, now: now()}
	env.user = env.resolveUser(cmd.Context())
	log.Debug("ready", "config", cfg.Root, "backend", cfg.Storage.Backend, "user", env.user)
	return nil
}

// teardown releases what setup opened.
func teardown() {
	if env == nil {
		return
	}
	if env.close != nil {
		if err := env.close(); err != nil {
			env.log.Warn("closing storage failed", "error", err)
		}
	}
	env = nil
}

func openBlobs(ctx context.Context, cfg config.Config) (storage.Blobs, func() error, error) {
	if cfg.Storage.Backend == config.BackendSQLite {
		db, err := storage.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return storage.NewFiles(cfg.DataDir), nil, nil
}

// resolveUser picks the --user flag, then WT_USER or the config file, then
// the remembered session user.
func (a *app) resolveUser(ctx context.Context) string {
	if u := strings.TrimSpace(flagUser); u != "" {
		return u
	}
	if u := strings.TrimSpace(a.cfg.User); u != "" {
		return u
	}
	st, err := session.Load(ctx, a.blobs)
	if err != nil {
		a.log.Warn("ignoring session state", "error", err)
		return ""
	}
	return st.User
}

func (a *app) requireUser() (string, error) {
	if a.user == "" {
		return "", errNoUser
	}
	if err := storage.ValidateUser(a.user); err != nil {
		return "", err
	}
	return a.user, nil
}

// month parses an MM-yyyy flag value, defaulting to the current month.
func (a *app) month(value string) (timecalc.Month, error) {
	if value == "" {
		return timecalc.MonthOf(a.now), nil
	}
	return timecalc.ParseMonth(value)
}

// today is the current calendar date with no clock part.
func (a *app) today() time.Time {
	y, m, d := a.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// open loads the partition of user and month for editing and warns when a
// corrupt partition had to be set aside.
func (a *app) open(cmd *cobra.Command, user string, m timecalc.Month) (*records.Store, error) {
	st, err := records.Open(cmd.Context(), a.blobs, user, m, records.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	if st.Recovered() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: data for %s was unreadable and has been set aside; starting with an empty month\n", m.Label())
	}
	return st, nil
}
