package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/activitylog"
	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/greenops"
)

const dateLayout = "2006-01-02"

// NewHistoryCmd creates the history command, which lists a user's log.
func NewHistoryCmd() *cobra.Command {
	var user, since, until string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's recorded activities",
		Example: `  # Everything alice has logged
  footprint history --user alice

  # One week, inclusive
  footprint history --user alice --since 2026-03-09 --until 2026-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, user, since, until)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose log to show (default $FOOTPRINT_USER)")
	cmd.Flags().StringVar(&since, "since", "", "first day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&until, "until", "", "last day to include, YYYY-MM-DD")

	return cmd
}

// parseRange reads inclusive calendar days in loc into a half-open Range.
func parseRange(since, until string, loc *time.Location) (activitylog.Range, error) {
	var rng activitylog.Range
	if since != "" {
		t, err := time.ParseInLocation(dateLayout, since, loc)
		if err != nil {
			return rng, fmt.Errorf("invalid --since %q: expected YYYY-MM-DD", since)
		}
		rng.Since = t
	}
	if until != "" {
		t, err := time.ParseInLocation(dateLayout, until, loc)
		if err != nil {
			return rng, fmt.Errorf("invalid --until %q: expected YYYY-MM-DD", until)
		}
		rng.Until = t.AddDate(0, 0, 1)
	}
	if !rng.Since.IsZero() && !rng.Until.IsZero() && !rng.Since.Before(rng.Until) {
		return rng, fmt.Errorf("--since %s is after --until %s", since, until)
	}
	return rng, nil
}

func runHistory(cmd *cobra.Command, user, since, until string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	userID, err := requireUser(user)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	rng, err := parseRange(since, until, loc)
	if err != nil {
		return err
	}

	entries, err := a.svc.History(cmd.Context(), userID, rng)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if format == config.FormatJSON {
		if entries == nil {
			entries = []activitylog.Entry{}
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No activities logged for %s.\n", userID)
		return nil
	}

	precision := a.cfg.Output.Precision
	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(w, "When\tActivity\tAmount\tkg CO₂e\tText")
	fmt.Fprintln(w, "----\t--------\t------\t-------\t----")

	var emitted, saved float64
	for _, e := range entries {
		if e.SignedEmission < 0 {
			saved -= e.SignedEmission
		} else {
			emitted += e.SignedEmission
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n",
			e.Timestamp.In(loc).Format("2006-01-02 15:04"),
			e.Activity,
			greenops.FormatFloat(e.Quantity, precision), e.Unit,
			greenops.FormatFloat(e.SignedEmission, precision),
			e.Text)
	}
	if err = w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d activities, %s emitted, %s saved\n",
		len(entries), greenops.FormatKg(emitted, precision), greenops.FormatKg(saved, precision))
	return nil
}
