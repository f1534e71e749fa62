package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/dashboard"
)

func newStatusCommand(repoDir *string) *cobra.Command {
	var width, days, recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration progress, daily throughput and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			v, err := dashboard.Build(ws.context(cmd.Context()), ws.store, ws.queue, ws.root, dashboard.BuildOptions{
				Workspace: ws.cfg.Workspace.Name,
				Days:      days,
				Recent:    recent,
				Width:     width,
				Now:       time.Now(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dashboard.Render(v))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "render width in columns")
	cmd.Flags().IntVar(&days, "days", 14, "days of history in the trend")
	cmd.Flags().IntVar(&recent, "recent", 8, "activity rows to show")

	return cmd
}
