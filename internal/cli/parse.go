package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/config"
)

// NewParseCmd creates the parse command, which calculates the footprint of
// a phrase without recording it.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <text...>",
		Short: "Calculate the footprint of an activity without recording it",
		Example: `  # Parse a trip
  footprint parse "I drove 10 km to work today"

  # Machine-readable output
  footprint parse --output json I ate a beef burger`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, strings.Join(args, " "))
		},
	}
	return cmd
}

func runParse(cmd *cobra.Command, text string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.svc.Parse(cmd.Context(), text)
	if err != nil {
		return pipelineError(cmd.ErrOrStderr(), text, err)
	}

	if format == config.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	renderResult(cmd.OutOrStdout(), res, a.cfg.Output.Precision)
	return nil
}
