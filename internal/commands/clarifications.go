package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

func newClarificationsCommand(repoDir *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "clarifications",
		Aliases: []string{"queue"},
		Short:   "List profiles waiting for a travel clarification",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			var rows []model.Clarification
			if all {
				rows, err = ws.queue.All()
			} else {
				rows, err = ws.queue.Pending()
			}
			if err != nil {
				return err
			}
			return printClarifications(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include resolved clarifications")

	return cmd
}

func printClarifications(out io.Writer, rows []model.Clarification) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No clarifications pending.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "USER", "TRAVEL", "INTERNATIONAL", "DOMESTIC", "STATUS", "CREATED")
	for _, c := range rows {
		status := string(c.Status)
		if c.Resolution != "" {
			status += " (" + c.Resolution + ")"
		}
		t.Row(c.ID, c.UserID, c.Legacy.String(), nullString(c.International), nullString(c.Domestic),
			status, c.CreatedAt.Format("2006-01-02"))
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}
