package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/keepwell-care/keepwell/internal/domain"
)

// ─── Daily Score Store ──────────────────────────────────────────────────────

// UpsertDailyScore inserts the entry or replaces the existing row for
// the same (user, date). The score date is stored as a UTC calendar day.
func (d *DB) UpsertDailyScore(ctx context.Context, e domain.DailyScoreEntry) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO daily_scores (user_id, score_date, diet_score, exercise_score, medication_score, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, score_date) DO UPDATE SET
			diet_score=excluded.diet_score,
			exercise_score=excluded.exercise_score,
			medication_score=excluded.medication_score,
			recorded_at=excluded.recorded_at`,
		e.UserID, e.Date.UTC().Format(dateLayout),
		e.DietScore, e.ExerciseScore, e.MedicationScore,
		time.Now().Unix(),
	)
	if err != nil {
		return wrapStorage("upsert daily score", err)
	}
	return nil
}

// WeeklyStats returns one rollup per reported week for the user and
// category, ordered by week start ascending. Weeks start Monday:
// 'weekday 0' advances to the following Sunday, and minus six days
// lands on the Monday that opens the week.
func (d *DB) WeeklyStats(ctx context.Context, userID string, cat domain.Category) ([]domain.WeekStat, error) {
	col, err := scoreColumn(cat)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT date(score_date, 'weekday 0', '-6 days') AS week_start,
		        MIN(%s) AS min_score,
		        COUNT(*) AS entries
		 FROM daily_scores
		 WHERE user_id = ?
		 GROUP BY week_start
		 ORDER BY week_start ASC`, col), userID)
	if err != nil {
		return nil, wrapStorage("query weekly stats", err)
	}
	defer rows.Close()

	var stats []domain.WeekStat
	for rows.Next() {
		var ws domain.WeekStat
		var weekStart string
		if err := rows.Scan(&weekStart, &ws.MinScore, &ws.Entries); err != nil {
			return nil, wrapStorage("scan weekly stat", err)
		}
		start, err := time.ParseInLocation(dateLayout, weekStart, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse week start %q: %w", weekStart, err)
		}
		ws.WeekStart = start
		stats = append(stats, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("iterate weekly stats", err)
	}
	return stats, nil
}

// scoreColumn maps a category to its column. The result is always one
// of three fixed literals, never user input.
func scoreColumn(cat domain.Category) (string, error) {
	switch cat {
	case domain.CategoryDiet:
		return "diet_score", nil
	case domain.CategoryExercise:
		return "exercise_score", nil
	case domain.CategoryMedication:
		return "medication_score", nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, cat)
}
