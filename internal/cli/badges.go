package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/greenops"
	"github.com/rshade/footprint/internal/tracker"
)

const (
	progressBarWidth   = 20
	progressFilledChar = "█"
	progressEmptyChar  = "░"
	maxPercentage      = 100.0
	nearlyThere        = 75.0
)

// badgeOutput is the JSON shape of a badge and, when known, its progress.
type badgeOutput struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Icon        string                    `json:"icon,omitempty"`
	Type        string                    `json:"type,omitempty"`
	Criteria    *achievement.CriteriaSpec `json:"criteria,omitempty"`
	Progress    *achievement.Progress     `json:"progress,omitempty"`
}

func toBadgeOutput(st tracker.BadgeStatus) badgeOutput {
	p := st.Progress
	spec := st.Badge.Criteria.Spec()
	return badgeOutput{
		ID:          st.Badge.ID,
		Name:        st.Badge.Name,
		Description: st.Badge.Description,
		Icon:        st.Badge.Icon,
		Type:        string(st.Badge.Criteria.Type()),
		Criteria:    &spec,
		Progress:    &p,
	}
}

// newBadgesCmd creates the badges command group.
func newBadgesCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Show a user's badge progress",
		Example: `  # Progress on every badge
  footprint badges --user alice

  # Recompute every user's badges after editing the catalogue
  footprint badges recompute --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBadges(cmd, user)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose badges to show (default $FOOTPRINT_USER)")
	cmd.AddCommand(NewBadgesRecomputeCmd())

	return cmd
}

func runBadges(cmd *cobra.Command, user string) error {
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

	statuses, err := a.svc.Recompute(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("evaluating badges: %w", err)
	}

	if format == config.FormatJSON {
		out := make([]badgeOutput, 0, len(statuses))
		for _, st := range statuses {
			out = append(out, toBadgeOutput(st))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if isWriterTerminal(w) {
		renderStyledBadges(w, userID, statuses)
		return nil
	}
	return renderPlainBadges(w, statuses)
}

// renderPlainBadges writes one tab-aligned row per badge.
func renderPlainBadges(w io.Writer, statuses []tracker.BadgeStatus) error {
	const tabPadding = 2
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "Badge\tProgress\tPercent\tStatus")
	fmt.Fprintln(tw, "-----\t--------\t-------\t------")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\n",
			st.Badge.Name, progressText(st), st.Progress.Percentage, statusText(st.Progress))
	}
	return tw.Flush()
}

// renderStyledBadges writes a bordered box with a progress bar per badge.
func renderStyledBadges(w io.Writer, userID string, statuses []tracker.BadgeStatus) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	nameStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	unlockedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	borderStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	unlocked := 0
	for _, st := range statuses {
		if st.Progress.Unlocked {
			unlocked++
		}
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(fmt.Sprintf("BADGES · %s · %d/%d unlocked", userID, unlocked, len(statuses))))
	content.WriteString("\n")

	for _, st := range statuses {
		content.WriteString("\n")
		icon := st.Badge.Icon
		if icon == "" {
			icon = "•"
		}
		content.WriteString(icon + " " + nameStyle.Render(st.Badge.Name))
		if st.Progress.Unlocked {
			content.WriteString("  " + unlockedStyle.Render("✓ unlocked"))
		}
		content.WriteString("\n")
		content.WriteString("  " + dimStyle.Render(st.Badge.Description) + "\n")
		content.WriteString(fmt.Sprintf("  %s %3.0f%%  %s\n",
			renderProgressBar(st.Progress.Percentage, progressBarWidth),
			st.Progress.Percentage, progressText(st)))
	}

	fmt.Fprintln(w, borderStyle.Render(strings.TrimRight(content.String(), "\n")))
}

// renderProgressBar renders a horizontal bar for a 0-100 percentage.
func renderProgressBar(percentage float64, width int) string {
	capped := min(max(percentage, 0), maxPercentage)
	filledWidth := int(capped / maxPercentage * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(progressBarColor(percentage))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return filledStyle.Render(strings.Repeat(progressFilledChar, filledWidth)) +
		emptyStyle.Render(strings.Repeat(progressEmptyChar, width-filledWidth))
}

func progressBarColor(percentage float64) lipgloss.Color {
	switch {
	case percentage >= maxPercentage:
		return lipgloss.Color("42") // Green
	case percentage >= nearlyThere:
		return lipgloss.Color("214") // Amber
	default:
		return lipgloss.Color("33") // Blue
	}
}

// progressText describes current against target in the badge's own units.
func progressText(st tracker.BadgeStatus) string {
	p := st.Progress
	c := st.Badge.Criteria
	switch c.Rule.(type) {
	case achievement.StreakRule:
		return fmt.Sprintf("%s / %s days (best %d)",
			greenops.FormatFloat(p.Current, 0), greenops.FormatFloat(p.Target, 0), p.Longest)
	case achievement.ReductionRule:
		return fmt.Sprintf("%s%% / %s%% less than last %s",
			greenops.FormatFloat(p.Current, 1), greenops.FormatFloat(p.Target, 0), c.Period)
	case achievement.TotalRule:
		return fmt.Sprintf("%s / %s", greenops.FormatFloat(p.Current, 1), greenops.FormatFloat(p.Target, 0))
	default:
		return fmt.Sprintf("%s / %s", greenops.FormatFloat(p.Current, 0), greenops.FormatFloat(p.Target, 0))
	}
}

func statusText(p achievement.Progress) string {
	if !p.Unlocked {
		return "locked"
	}
	if p.UnlockedAt != nil {
		return "unlocked " + p.UnlockedAt.Format(dateLayout)
	}
	return "unlocked"
}

// NewBadgesRecomputeCmd creates the badges recompute command.
func NewBadgesRecomputeCmd() *cobra.Command {
	var (
		user string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Re-evaluate badge progress from the full activity log",
		Example: `  # One user
  footprint badges recompute --user alice

  # Every user, in parallel
  footprint badges recompute --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBadgesRecompute(cmd, user, all)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user to recompute (default $FOOTPRINT_USER)")
	cmd.Flags().BoolVar(&all, "all", false, "recompute every user with logged activities")
	cmd.MarkFlagsMutuallyExclusive("user", "all")

	return cmd
}

func runBadgesRecompute(cmd *cobra.Command, user string, all bool) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	var userID string
	if !all {
		if userID, err = requireUser(user); err != nil {
			return err
		}
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	unlocked := make(map[string][]achievement.Badge)
	if all {
		if unlocked, err = a.svc.RecomputeAll(cmd.Context()); err != nil {
			return fmt.Errorf("recomputing badges: %w", err)
		}
	} else {
		statuses, rerr := a.svc.Recompute(cmd.Context(), userID)
		if rerr != nil {
			return fmt.Errorf("recomputing badges: %w", rerr)
		}
		for _, st := range statuses {
			if st.NewlyUnlocked {
				unlocked[userID] = append(unlocked[userID], st.Badge)
			}
		}
		if _, ok := unlocked[userID]; !ok {
			unlocked[userID] = nil
		}
	}

	users := make([]string, 0, len(unlocked))
	for u := range unlocked {
		users = append(users, u)
	}
	sort.Strings(users)

	if format == config.FormatJSON {
		out := make(map[string][]string, len(unlocked))
		for _, u := range users {
			ids := make([]string, 0, len(unlocked[u]))
			for _, b := range unlocked[u] {
				ids = append(ids, b.ID)
			}
			out[u] = ids
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{"users": len(users), "newly_unlocked": out})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recomputed badges for %d user(s)\n", len(users))
	for _, u := range users {
		for _, b := range unlocked[u] {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s unlocked\n", u, b.Name)
		}
	}
	return nil
}
