package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/factors"
)

// factorOutput is the JSON shape of one factor row.
type factorOutput struct {
	factors.Factor
	Tier             factors.Tier `json:"tier"`
	ReducesEmissions bool         `json:"reduces_emissions"`
	Alternatives     []string     `json:"alternatives,omitempty"`
}

// NewFactorsCmd creates the factors command, which lists emission factors.
func NewFactorsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "factors",
		Short: "List emission factors",
		Example: `  # Every factor
  footprint factors

  # Only transportation
  footprint factors --category transportation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFactors(cmd, factors.Category(strings.ToLower(category)))
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "",
		"only list one category (transportation, energy, food, waste)")

	return cmd
}

func runFactors(cmd *cobra.Command, category factors.Category) error {
	if category != "" && !category.IsValid() {
		return fmt.Errorf("unknown category %q", category)
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	table := a.svc.Table()
	list := table.Factors(category)

	if format == config.FormatJSON {
		out := make([]factorOutput, 0, len(list))
		for _, f := range list {
			out = append(out, factorOutput{
				Factor:           f,
				Tier:             table.TierOf(f.Activity),
				ReducesEmissions: f.IsReduction(),
				Alternatives:     table.Alternatives(f.Activity),
			})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(w, "Category\tActivity\tkg CO₂e/unit\tUnit\tImpact")
	fmt.Fprintln(w, "--------\t--------\t------------\t----\t------")
	for _, f := range list {
		impact := table.TierOf(f.Activity).Label()
		if f.IsReduction() {
			impact = "reduces emissions"
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\n", f.Category, f.Activity, f.PerUnit, f.Unit, impact)
	}
	if err = w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nFactor table version %s\n", table.Version())
	return nil
}
