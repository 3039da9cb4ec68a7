package milestone

import (
	"time"

	"github.com/keepwell-care/keepwell/internal/domain"
)

// LongestStreak returns the length in weeks of the longest run of
// calendar-consecutive compliant weeks. A run survives only while each
// compliant week starts exactly seven days after the previous one;
// non-compliant or missing weeks break it. The answer is the historical
// maximum, not the run touching the most recent week.
func LongestStreak(weeks []domain.WeekCompliance) int {
	var longest, run int
	var prev time.Time

	for _, w := range weeks {
		if !w.Compliant {
			run = 0
			continue
		}
		if run > 0 && w.WeekStart.Equal(prev.AddDate(0, 0, 7)) {
			run++
		} else {
			run = 1
		}
		prev = w.WeekStart
		if run > longest {
			longest = run
		}
	}
	return longest
}

// StreakAtThreshold rolls compliance and streak into one step: the
// longest run of consecutive weeks whose minimum score meets threshold.
func StreakAtThreshold(stats []domain.WeekStat, threshold int) int {
	return LongestStreak(Compliance(stats, threshold))
}
