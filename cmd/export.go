package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/elevatic20/worktime-app/internal/config"
	"github.com/elevatic20/worktime-app/internal/msgraph"
	"github.com/elevatic20/worktime-app/internal/records"
	"github.com/elevatic20/worktime-app/internal/report"
	"github.com/elevatic20/worktime-app/internal/share"
)

var (
	exportMonth  string
	exportTarget string
	exportOut    string
	exportHeader bool
)

var _ share.Sharer = (*msgraph.OneDrive)(nil)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month as an .xlsx timesheet",
	Long: `Builds an .xlsx workbook with one row per shift and a total row, then
delivers it to the configured target: a local directory, an S3 bucket (the
output is a presigned link) or OneDrive (the output is a sharing link).`,
	Example: `  wt export
  wt export --month 03-2024 --out ./timesheets --header
  wt export --target onedrive`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month to export (MM-YYYY); defaults to the current month")
	exportCmd.Flags().StringVar(&exportTarget, "target", "", "Delivery target: dir, s3, onedrive (default from config)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory for the dir target")
	exportCmd.Flags().BoolVar(&exportHeader, "header", false, "Add a column-name row")
}

func runExport(cmd *cobra.Command, args []string) error {
	user, err := env.requireUser()
	if err != nil {
		return err
	}
	month, err := env.month(exportMonth)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rep := report.Build(records.Load(ctx, env.blobs, user, month), month)
	data, err := rep.Workbook(report.Options{
		SheetName:  env.cfg.Export.SheetName,
		TotalLabel: env.cfg.Export.TotalLabel,
		Header:     exportHeader || env.cfg.Export.Header,
	})
	if err != nil {
		return err
	}

	target := exportTarget
	if target == "" {
		target = env.cfg.Export.Target
	}
	sharer, err := newSharer(env.cfg, target, exportOut, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	name := report.FileName(user, month)
	env.log.Debug("exporting", "file", name, "target", target, "shifts", len(rep.Shifts), "bytes", len(data))
	location, err := sharer.Share(ctx, name, data)
	if err != nil {
		return fmt.Errorf("exporting %s to %s: %w", name, target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d shifts, %s h) to %s\n", month.Label(), len(rep.Shifts), rep.Total(), location)
	return nil
}

// newSharer builds the delivery target named by target. prompt receives
// OneDrive sign-in instructions.
func newSharer(cfg config.Config, target, outDir string, prompt io.Writer) (share.Sharer, error) {
	switch target {
	case config.TargetDir:
		return share.Dir{Path: valueOr(outDir, cfg.Export.Dir)}, nil
	case config.TargetS3:
		if cfg.S3.Bucket == "" {
			return nil, errors.New("the s3 target needs s3.bucket in the config (or WT_S3_BUCKET)")
		}
		ttl, err := cfg.S3.TTL()
		if err != nil {
			return nil, err
		}
		return share.S3{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			LinkTTL:   ttl,
		}, nil
	case config.TargetOneDrive:
		return &msgraph.OneDrive{
			TenantID:  cfg.OneDrive.TenantID,
			ClientID:  cfg.OneDrive.ClientID,
			Folder:    cfg.OneDrive.Folder,
			LinkScope: cfg.OneDrive.LinkScope,
			TokenPath: msgraph.TokenPath(cfg.Root),
			Prompt:    prompt,
		}, nil
	default:
		return nil, fmt.Errorf("unknown export target %q: must be dir, s3 or onedrive", target)
	}
}
