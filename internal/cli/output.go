package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/greenops"
	"github.com/rshade/footprint/internal/tracker"
)

// outputFormat returns --output when set, otherwise the configured default.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = config.GetDefaultOutputFormat()
	}
	switch format {
	case config.FormatTable, config.FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use %q or %q)", format, config.FormatTable, config.FormatJSON)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// renderResult prints a calculated activity as labelled lines.
func renderResult(w io.Writer, r *tracker.Result, precision int) {
	labelStyle := lipgloss.NewStyle().Bold(true)
	styled := isWriterTerminal(w)
	label := func(s string) string {
		if styled {
			return labelStyle.Render(s)
		}
		return s
	}

	fmt.Fprintf(w, "%s %s (%s)\n", label("Activity:  "), r.Activity, r.Category)
	fmt.Fprintf(w, "%s %s %s\n", label("Amount:    "), greenops.FormatFloat(r.Amount, precision), r.Unit)
	if r.IsSaving {
		fmt.Fprintf(w, "%s %s saved\n", label("Emissions: "), greenops.FormatKg(r.AbsoluteEmission, precision))
	} else {
		fmt.Fprintf(w, "%s %s\n", label("Emissions: "), greenops.FormatKg(r.TotalEmission, precision))
	}
	fmt.Fprintf(w, "%s %s\n", label("Impact:    "), r.ImpactTier.Label())
	fmt.Fprintf(w, "%s %.2f (%s)\n", label("Confidence:"), r.Confidence, r.Source)

	for _, c := range r.Comparisons {
		fmt.Fprintf(w, "  • %s\n", c)
	}
	if r.SuggestionText != "" {
		fmt.Fprintf(w, "\n%s\n", r.SuggestionText)
	}
}

// printSuggestions lists example phrasings for text that could not be read.
func printSuggestions(w io.Writer, suggestions []string) {
	fmt.Fprintln(w, "Could not recognize an activity. Try something like:")
	for _, s := range suggestions {
		fmt.Fprintf(w, "  %s\n", quote(s))
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
