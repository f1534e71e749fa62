package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/runner"
)

type resolveFlags struct {
	keepExisting  bool
	addTo         string
	split         bool
	international string
	domestic      string
	interactive   bool
}

func newResolveCommand(repoDir *string) *cobra.Command {
	var f resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <clarification-id>",
		Short: "Answer a travel clarification and finish migrating the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			c, err := ws.queue.Get(args[0])
			if err != nil {
				return err
			}

			var r migrate.Resolution
			if f.interactive {
				r, err = askResolution(c)
			} else {
				r, err = f.resolution()
			}
			if err != nil {
				return err
			}
			return runResolve(cmd, ws, c, r)
		},
	}

	cmd.Flags().BoolVar(&f.keepExisting, "keep-existing", false, "discard the legacy travel amount")
	cmd.Flags().StringVar(&f.addTo, "add-to", "", "add the legacy amount to one category (international or domestic)")
	cmd.Flags().BoolVar(&f.split, "split", false, "split the legacy amount 70/30 onto the existing amounts")
	cmd.Flags().StringVar(&f.international, "international", "", "explicit international_travel amount")
	cmd.Flags().StringVar(&f.domestic, "domestic", "", "explicit domestic_transport amount")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "choose the resolution in a form")

	return cmd
}

// resolution turns the flags into exactly one resolution.
func (f resolveFlags) resolution() (migrate.Resolution, error) {
	var picked []migrate.Resolution

	if f.keepExisting {
		picked = append(picked, migrate.Resolution{Kind: migrate.ResolveKeepExisting})
	}
	if f.addTo != "" {
		switch strings.ToLower(f.addTo) {
		case "international", model.CategoryInternationalTravel:
			picked = append(picked, migrate.Resolution{Kind: migrate.ResolveAddToInternational})
		case "domestic", model.CategoryDomesticTransport:
			picked = append(picked, migrate.Resolution{Kind: migrate.ResolveAddToDomestic})
		default:
			return migrate.Resolution{}, fmt.Errorf("--add-to must be international or domestic, got %q", f.addTo)
		}
	}
	if f.split {
		picked = append(picked, migrate.Resolution{Kind: migrate.ResolveSplitAndAdd})
	}
	if f.international != "" || f.domestic != "" {
		if f.international == "" || f.domestic == "" {
			return migrate.Resolution{}, errors.New("--international and --domestic must be given together")
		}
		intl, err := parseAmount("--international", f.international)
		if err != nil {
			return migrate.Resolution{}, err
		}
		dom, err := parseAmount("--domestic", f.domestic)
		if err != nil {
			return migrate.Resolution{}, err
		}
		picked = append(picked, migrate.Resolution{Kind: migrate.ResolveExplicit, International: intl, Domestic: dom})
	}

	switch len(picked) {
	case 0:
		return migrate.Resolution{}, errors.New("choose a resolution: --keep-existing, --add-to, --split, --international/--domestic or --interactive")
	case 1:
		return picked[0], nil
	default:
		return migrate.Resolution{}, errors.New("only one resolution may be given")
	}
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %q is not a number", name, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s: amount %s is negative", name, d)
	}
	return d, nil
}

// askResolution shows the clarification and lets the user pick a resolution.
func askResolution(c model.Clarification) (migrate.Resolution, error) {
	var (
		kind = string(migrate.ResolveSplitAndAdd)
		intl = nullString(c.International)
		dom  = nullString(c.Domestic)
	)
	if intl == "-" {
		intl = "0"
	}
	if dom == "-" {
		dom = "0"
	}

	validate := func(s string) error {
		_, err := parseAmount("amount", s)
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("%s  %s", c.ID, c.UserID)).
				Description(fmt.Sprintf("travel: %s\ninternational_travel: %s\ndomestic_transport: %s",
					c.Legacy, nullString(c.International), nullString(c.Domestic))),
			huh.NewSelect[string]().
				Title("How should the legacy travel amount be applied?").
				Options(
					huh.NewOption("Keep existing amounts, drop travel", string(migrate.ResolveKeepExisting)),
					huh.NewOption("Add travel to international_travel", string(migrate.ResolveAddToInternational)),
					huh.NewOption("Add travel to domestic_transport", string(migrate.ResolveAddToDomestic)),
					huh.NewOption("Split travel 70/30 and add", string(migrate.ResolveSplitAndAdd)),
					huh.NewOption("Enter both amounts", string(migrate.ResolveExplicit)),
				).
				Value(&kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("international_travel").Value(&intl).Validate(validate),
			huh.NewInput().Title("domestic_transport").Value(&dom).Validate(validate),
		).WithHideFunc(func() bool { return kind != string(migrate.ResolveExplicit) }),
	)
	if err := form.Run(); err != nil {
		return migrate.Resolution{}, fmt.Errorf("resolution form: %w", err)
	}

	k, err := migrate.ParseResolutionKind(kind)
	if err != nil {
		return migrate.Resolution{}, err
	}
	r := migrate.Resolution{Kind: k}
	if k == migrate.ResolveExplicit {
		if r.International, err = parseAmount("international_travel", intl); err != nil {
			return migrate.Resolution{}, err
		}
		if r.Domestic, err = parseAmount("domestic_transport", dom); err != nil {
			return migrate.Resolution{}, err
		}
	}
	return r, nil
}

func runResolve(cmd *cobra.Command, ws *workspace, c model.Clarification, r migrate.Resolution) error {
	ctx := ws.context(cmd.Context())

	p, err := runner.Resolve(ctx, runner.ResolveOptions{
		Store:           ws.store,
		Queue:           ws.queue,
		RepoRoot:        ws.root,
		RunID:           ws.runID,
		ClarificationID: c.ID,
		Resolution:      r,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s for %s (%s): international_travel %s, domestic_transport %s\n",
		c.ID, c.UserID, r,
		p.Spend.Amount(model.CategoryInternationalTravel),
		p.Spend.Amount(model.CategoryDomesticTransport))

	_, err = ws.commit(ctx, fmt.Sprintf("resolve: %s %s", c.ID, r))
	return err
}
