package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/profile"
)

func newConvertCommand() *cobra.Command {
	var document bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Migrate one spend object read from stdin and write it to stdout",
		Long: `Reads a flat spend object such as {"travel": 2000, "dining": 1500} from
stdin, migrates it and writes the result to stdout. With --profile the input is
a whole profile document and only its spend object is migrated.

Exits non-zero without output when the record is ambiguous or holds an
invalid amount.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.InOrStdin(), cmd.OutOrStdout(), document)
		},
	}

	cmd.Flags().BoolVar(&document, "profile", false, "input is a full profile document")

	return cmd
}

func runConvert(in io.Reader, out io.Writer, document bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if !document {
		s, err := profile.DecodeSpend(data)
		if err != nil {
			return err
		}
		res, err := migrate.Migrate(s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", profile.EncodeSpend(res.Spend))
		return err
	}

	p, err := profile.DecodeProfile(data)
	if err != nil {
		return err
	}
	res, err := migrate.Migrate(p.Spend)
	if err != nil {
		return fmt.Errorf("%s: %w", p.UserID, err)
	}
	p.Spend = res.Spend
	_, err = fmt.Fprintf(out, "%s\n", profile.EncodeProfile(p))
	return err
}
