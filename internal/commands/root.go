package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repoDir string

	rootCmd := &cobra.Command{
		Use:     "spendmigrate",
		Short:   "Migrate spend profiles off the legacy travel category",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(&repoDir),
		newMigrateCommand(&repoDir),
		newConvertCommand(),
		newResolveCommand(&repoDir),
		newClarificationsCommand(&repoDir),
		newValidateCommand(&repoDir),
		newStatusCommand(&repoDir),
	)

	return rootCmd
}
