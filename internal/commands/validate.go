package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/categories"
	"github.com/cleared-dev/spendmigrate/internal/profile"
)

func newValidateCommand(repoDir *string) *cobra.Command {
	var warnings bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check stored profiles for invalid amounts and unmigrated categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()
			return runValidate(cmd, ws, warnings)
		},
	}

	cmd.Flags().BoolVar(&warnings, "warnings", true, "also print warnings")

	return cmd
}

func runValidate(cmd *cobra.Command, ws *workspace, warnings bool) error {
	out := cmd.OutOrStdout()

	catalog, err := categories.Load(ws.root)
	if err != nil {
		return err
	}

	profiles, err := ws.store.List(ws.context(cmd.Context()))
	if err != nil {
		return err
	}

	blocking, warned := 0, 0
	for _, p := range profiles {
		for _, e := range profile.Validate(p, catalog) {
			if e.Warning {
				warned++
				if !warnings {
					continue
				}
			} else {
				blocking++
			}
			fmt.Fprintln(out, e.Error())
		}
	}

	fmt.Fprintf(out, "%d profiles checked: %d errors, %d warnings\n", len(profiles), blocking, warned)
	if blocking > 0 {
		return fmt.Errorf("%d validation errors", blocking)
	}
	return nil
}
