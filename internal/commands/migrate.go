package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/runner"
)

func newMigrateCommand(repoDir *string) *cobra.Command {
	var dryRun bool
	var userID string
	var workers int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Split legacy travel amounts into international and domestic spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()
			if !cmd.Flags().Changed("workers") {
				workers = ws.cfg.Migration.Workers
			}
			return runMigrate(cmd, ws, runner.Options{
				DryRun:  dryRun,
				UserID:  userID,
				Workers: workers,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().StringVar(&userID, "user", "", "migrate a single profile")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent migrations")

	return cmd
}

func runMigrate(cmd *cobra.Command, ws *workspace, opts runner.Options) error {
	ctx := ws.context(cmd.Context())
	out := cmd.OutOrStdout()

	opts.Store = ws.store
	opts.Queue = ws.queue
	opts.RepoRoot = ws.root
	opts.RunID = ws.runID

	sum, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	for _, o := range sum.Outcomes {
		switch o.Action {
		case migrationlog.ActionMigrated:
			fmt.Fprintf(out, "migrated  %s: %s\n", o.UserID, o.Details)
		case migrationlog.ActionClarificationRequested:
			fmt.Fprintf(out, "ambiguous %s: %s\n", o.UserID, o.Details)
		case migrationlog.ActionInvalid:
			fmt.Fprintf(out, "invalid   %s: %s\n", o.UserID, o.Details)
		}
	}

	prefix := ""
	if opts.DryRun {
		prefix = "[dry run] "
	}
	fmt.Fprintf(out, "%s%d profiles: %d migrated, %d unchanged, %d need clarification, %d invalid\n",
		prefix, sum.Total, sum.Migrated, sum.Unchanged, sum.Ambiguous, sum.Invalid)

	if opts.DryRun {
		return nil
	}
	_, err = ws.commit(ctx, fmt.Sprintf("migrate: %d migrated, %d need clarification", sum.Migrated, sum.Queued))
	return err
}
