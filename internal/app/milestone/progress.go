package milestone

import "github.com/keepwell-care/keepwell/internal/domain"

// Progress reports how far a category has advanced toward its next tier.
// WeeksCompleted is the longest qualifying streak at the NEXT tier's
// threshold, so earning a badge immediately restates progress against
// the harder bar. The percentage clamps at 100 even when the streak has
// outgrown the requirement.
func Progress(cat domain.Category, highest domain.Tier, stats []domain.WeekStat) domain.ProgressSnapshot {
	snap := domain.ProgressSnapshot{
		Category:    cat,
		CurrentTier: highest,
	}

	next, ok := domain.NextTier(highest)
	if !ok {
		// Every tier earned; nothing left to chase.
		snap.ProgressPercent = 100
		return snap
	}

	rule, _ := domain.RuleFor(next)
	completed := StreakAtThreshold(stats, rule.ScoreThreshold)
	pct := completed * 100 / rule.WeeksRequired
	if pct > 100 {
		pct = 100
	}

	snap.NextTier = next
	snap.WeeksCompleted = completed
	snap.WeeksRequired = rule.WeeksRequired
	snap.ProgressPercent = pct
	return snap
}
