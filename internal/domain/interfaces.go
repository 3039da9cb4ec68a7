package domain

import "context"

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them, so
// the progression engine stays testable without a database.

// ScoreSource abstracts read access to the daily score store. The engine
// consumes weekly rollups only, never raw daily rows.
type ScoreSource interface {
	// WeeklyStats returns one rollup per reported week for the user and
	// category, ordered by week start ascending. Weeks without entries
	// are absent from the result.
	WeeklyStats(ctx context.Context, userID string, cat Category) ([]WeekStat, error)
}

// ScoreRecorder abstracts the score intake write path. The progression
// engine itself never writes scores.
type ScoreRecorder interface {
	// UpsertDailyScore inserts the entry or replaces the existing row
	// for the same (user, date).
	UpsertDailyScore(ctx context.Context, entry DailyScoreEntry) error
}

// BadgeStore abstracts persistent badge storage.
type BadgeStore interface {
	// ListBadges returns every badge the user has earned, oldest first.
	ListBadges(ctx context.Context, userID string) ([]BadgeRecord, error)

	// ListCategoryBadges returns the user's badges for one category.
	ListCategoryBadges(ctx context.Context, userID string, cat Category) ([]BadgeRecord, error)

	// InsertBadge records an award. It reports false when the badge row
	// already exists; concurrent evaluations make that a normal outcome.
	InsertBadge(ctx context.Context, rec BadgeRecord) (inserted bool, err error)
}
