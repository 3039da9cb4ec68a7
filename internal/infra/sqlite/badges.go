package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/keepwell-care/keepwell/internal/domain"
)

// ─── Badge Store ────────────────────────────────────────────────────────────

// InsertBadge records a badge award exactly once. INSERT OR IGNORE
// rides the (user_id, category, tier) UNIQUE constraint: when another
// evaluation already awarded the badge, zero rows change and inserted
// is false.
func (d *DB) InsertBadge(ctx context.Context, rec domain.BadgeRecord) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO badges (id, user_id, category, tier, awarded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.Category), string(rec.Tier), rec.AwardedAt.Unix(),
	)
	if err != nil {
		return false, wrapStorage("insert badge", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListBadges returns every badge the user has earned, oldest first.
func (d *DB) ListBadges(ctx context.Context, userID string) ([]domain.BadgeRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, category, tier, awarded_at
		 FROM badges
		 WHERE user_id = ?
		 ORDER BY awarded_at ASC, id ASC`, userID)
	if err != nil {
		return nil, wrapStorage("query badges", err)
	}
	return scanBadges(rows)
}

// ListCategoryBadges returns the user's badges for one category.
func (d *DB) ListCategoryBadges(ctx context.Context, userID string, cat domain.Category) ([]domain.BadgeRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, category, tier, awarded_at
		 FROM badges
		 WHERE user_id = ? AND category = ?
		 ORDER BY awarded_at ASC, id ASC`, userID, string(cat))
	if err != nil {
		return nil, wrapStorage("query category badges", err)
	}
	return scanBadges(rows)
}

func scanBadges(rows *sql.Rows) ([]domain.BadgeRecord, error) {
	defer rows.Close()

	var records []domain.BadgeRecord
	for rows.Next() {
		var rec domain.BadgeRecord
		var awardedAt int64
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Category, &rec.Tier, &awardedAt); err != nil {
			return nil, wrapStorage("scan badge", err)
		}
		rec.AwardedAt = time.Unix(awardedAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("iterate badges", err)
	}
	return records, nil
}
