package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/spendmigrate/internal/importer"
	"github.com/cleared-dev/spendmigrate/internal/logger"
	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

func newImportCommand(repoDir *string) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load legacy profile exports from import/ into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()
			return runImport(cmd, ws, overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace profiles that already exist in the store")

	return cmd
}

func runImport(cmd *cobra.Command, ws *workspace, overwrite bool) error {
	ctx := ws.context(cmd.Context())
	out := cmd.OutOrStdout()
	reg := importer.DefaultRegistry()

	files, err := importer.Scan(ws.root, reg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import.")
		return nil
	}

	var entries []migrationlog.Entry
	imported, skipped := 0, 0
	for _, f := range files {
		profiles, err := importer.ParseFile(reg, f.Path)
		if err != nil {
			return err
		}

		fileImported := 0
		for _, p := range profiles {
			if !overwrite {
				_, err := ws.store.Get(ctx, p.UserID)
				if err == nil {
					skipped++
					continue
				}
				if !errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("checking profile %s: %w", p.UserID, err)
				}
			}
			if err := ws.store.Put(ctx, p); err != nil {
				return fmt.Errorf("storing profile %s: %w", p.UserID, err)
			}
			fileImported++
			entries = append(entries, migrationlog.Entry{
				Timestamp: time.Now(),
				RunID:     ws.runID,
				UserID:    p.UserID,
				Action:    migrationlog.ActionImported,
				Details:   f.Name,
			})
		}

		if err := importer.MarkProcessed(ws.root, f.Name); err != nil {
			return err
		}
		imported += fileImported
		logger.Info(ctx, "Imported export", zap.String("file", f.Name), zap.Int("profiles", fileImported))
		fmt.Fprintf(out, "%s: %d profiles\n", f.Name, fileImported)
	}

	hash, err := ws.commit(ctx, fmt.Sprintf("import: %d profiles from %d files", imported, len(files)))
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].CommitHash = hash
	}
	if err := migrationlog.Append(ws.root, entries); err != nil {
		return fmt.Errorf("writing migration log: %w", err)
	}

	fmt.Fprintf(out, "Imported %d profiles", imported)
	if skipped > 0 {
		fmt.Fprintf(out, " (%d already present, skipped)", skipped)
	}
	fmt.Fprintln(out)
	return nil
}
