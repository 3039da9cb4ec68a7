package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keepwell-care/keepwell/internal/daemon"
	"github.com/keepwell-care/keepwell/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show a user's milestone badges and progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	status, err := d.Milestones.Status(context.Background(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTIER\tNEXT\tWEEKS\tPROGRESS")
	for _, p := range status.ProgressByCategory {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Category,
			tierLabel(p.CurrentTier),
			tierLabel(p.NextTier),
			weeksLabel(p),
			progressBar(p.ProgressPercent),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(status.EarnedBadges) > 0 {
		fmt.Println()
		fmt.Println("Badges:")
		for _, b := range status.EarnedBadges {
			fmt.Printf("  %s %s (awarded %s)\n", b.Category, b.Tier, b.AwardedAt.Format("2006-01-02"))
		}
	}
	if status.NewlyAwardedBadge != nil {
		fmt.Printf("\nNew badge: %s %s!\n",
			status.NewlyAwardedBadge.Category, status.NewlyAwardedBadge.Tier)
	}

	return nil
}

func tierLabel(t domain.Tier) string {
	if t == domain.TierNone {
		return "-"
	}
	return string(t)
}

func weeksLabel(p domain.ProgressSnapshot) string {
	if p.NextTier == domain.TierNone {
		return "-"
	}
	return fmt.Sprintf("%d/%d", p.WeeksCompleted, p.WeeksRequired)
}

// progressBar renders a percentage as a fixed-width ASCII bar:
// [=====>..............]  25%
func progressBar(pct int) string {
	const width = 20

	filled := pct * width / 100
	if filled > width {
		filled = width
	}

	var bar string
	switch {
	case filled == width:
		bar = strings.Repeat("=", width)
	case filled > 0:
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", width-filled)
	default:
		bar = strings.Repeat(".", width)
	}

	return fmt.Sprintf("[%s] %3d%%", bar, pct)
}
