// Package milestone implements the badge progression engine.
// Daily wellbeing scores roll up into weekly compliance, compliant weeks
// chain into streaks, and streaks earn tiered badges per category.
package milestone

import "github.com/keepwell-care/keepwell/internal/domain"

// Compliance evaluates each reported week against a score threshold.
// A week is compliant when it has at least one daily entry and its
// minimum score meets the threshold. One bad day sinks the whole week.
// Weeks keep their input order; weeks without entries never appear.
func Compliance(stats []domain.WeekStat, threshold int) []domain.WeekCompliance {
	out := make([]domain.WeekCompliance, 0, len(stats))
	for _, ws := range stats {
		out = append(out, domain.WeekCompliance{
			WeekStart: ws.WeekStart,
			Compliant: ws.Entries > 0 && ws.MinScore >= threshold,
		})
	}
	return out
}
