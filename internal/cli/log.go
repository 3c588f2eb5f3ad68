package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/activitylog"
	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/tracker"
)

// logOutput is the JSON shape of a logged activity.
type logOutput struct {
	Result   *tracker.Result   `json:"result"`
	Entry    activitylog.Entry `json:"entry"`
	Unlocked []badgeOutput     `json:"unlocked"`
}

// NewLogCmd creates the log command, which records an activity and updates
// badge progress.
func NewLogCmd() *cobra.Command {
	var (
		user string
		at   string
	)

	cmd := &cobra.Command{
		Use:   "log <text...>",
		Short: "Record an activity and update badge progress",
		Example: `  # Record a bike ride
  footprint log --user alice "I cycled 8 km"

  # Record something from yesterday
  footprint log --user alice --at 2026-03-14T08:30:00Z "I took the bus 5 km"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, user, at, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user the activity belongs to (default $FOOTPRINT_USER)")
	cmd.Flags().StringVar(&at, "at", "", "when the activity happened, RFC 3339 (default now)")

	return cmd
}

func runLog(cmd *cobra.Command, user, at, text string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	userID, err := requireUser(user)
	if err != nil {
		return err
	}

	var when time.Time
	if at != "" {
		when, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at %q: expected RFC 3339 such as 2026-03-14T08:30:00Z", at)
		}
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.svc.Log(cmd.Context(), userID, text, when)
	if err != nil {
		return pipelineError(cmd.ErrOrStderr(), text, err)
	}

	if format == config.FormatJSON {
		out := logOutput{Result: res.Result, Entry: res.Entry, Unlocked: []badgeOutput{}}
		for _, b := range res.Unlocked {
			out.Unlocked = append(out.Unlocked, badgeOutput{ID: b.ID, Name: b.Name, Icon: b.Icon, Description: b.Description})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	renderResult(w, res.Result, a.cfg.Output.Precision)
	fmt.Fprintf(w, "\nLogged for %s (entry %s)\n", userID, res.Entry.ID)
	for _, b := range res.Unlocked {
		fmt.Fprintf(w, "%s Badge unlocked: %s\n", b.Icon, b.Name)
	}
	return nil
}
