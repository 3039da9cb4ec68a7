package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keepwell-care/keepwell/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func entry(userID string, date time.Time, diet, exercise, medication int) domain.DailyScoreEntry {
	return domain.DailyScoreEntry{
		UserID:          userID,
		Date:            date,
		DietScore:       diet,
		ExerciseScore:   exercise,
		MedicationScore: medication,
	}
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	// Check file exists
	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

// ─── Daily Scores ───────────────────────────────────────────────────────────

func TestUpsertDailyScore_Insert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if err := db.UpsertDailyScore(ctx, entry("user-1", monday, 8, 6, 9)); err != nil {
		t.Fatalf("UpsertDailyScore() error: %v", err)
	}

	stats, err := db.WeeklyStats(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].MinScore != 8 || stats[0].Entries != 1 {
		t.Errorf("stats[0] = %+v, want min 8 / 1 entry", stats[0])
	}
}

func TestUpsertDailyScore_ReplacesSameDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if err := db.UpsertDailyScore(ctx, entry("user-1", monday, 3, 3, 3)); err != nil {
		t.Fatalf("first UpsertDailyScore() error: %v", err)
	}

	// Resubmission for the same day replaces, never duplicates.
	if err := db.UpsertDailyScore(ctx, entry("user-1", monday, 9, 9, 9)); err != nil {
		t.Fatalf("second UpsertDailyScore() error: %v", err)
	}

	stats, err := db.WeeklyStats(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Entries != 1 {
		t.Errorf("Entries = %d, want 1 (row replaced, not added)", stats[0].Entries)
	}
	if stats[0].MinScore != 9 {
		t.Errorf("MinScore = %d, want 9 (old value gone)", stats[0].MinScore)
	}
}

func TestWeeklyStats_GroupsByWeek(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	// Week one: Monday, Wednesday, Sunday. Week two: Tuesday only.
	for _, e := range []domain.DailyScoreEntry{
		entry("user-1", monday, 8, 5, 5),
		entry("user-1", monday.AddDate(0, 0, 2), 6, 5, 5),
		entry("user-1", monday.AddDate(0, 0, 6), 9, 5, 5),
		entry("user-1", monday.AddDate(0, 0, 8), 4, 5, 5),
	} {
		if err := db.UpsertDailyScore(ctx, e); err != nil {
			t.Fatalf("UpsertDailyScore(%s) error: %v", e.Date.Format("2006-01-02"), err)
		}
	}

	stats, err := db.WeeklyStats(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	if !stats[0].WeekStart.Equal(monday) {
		t.Errorf("stats[0].WeekStart = %v, want %v", stats[0].WeekStart, monday)
	}
	if stats[0].MinScore != 6 || stats[0].Entries != 3 {
		t.Errorf("week one = %+v, want min 6 / 3 entries", stats[0])
	}

	nextMonday := monday.AddDate(0, 0, 7)
	if !stats[1].WeekStart.Equal(nextMonday) {
		t.Errorf("stats[1].WeekStart = %v, want %v", stats[1].WeekStart, nextMonday)
	}
	if stats[1].MinScore != 4 || stats[1].Entries != 1 {
		t.Errorf("week two = %+v, want min 4 / 1 entry", stats[1])
	}
}

func TestWeeklyStats_SundayBelongsToPriorMonday(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sunday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if err := db.UpsertDailyScore(ctx, entry("user-1", sunday, 7, 7, 7)); err != nil {
		t.Fatalf("UpsertDailyScore() error: %v", err)
	}

	stats, err := db.WeeklyStats(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}

	wantMonday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if !stats[0].WeekStart.Equal(wantMonday) {
		t.Errorf("WeekStart = %v, want %v", stats[0].WeekStart, wantMonday)
	}
	if !stats[0].WeekStart.Equal(domain.WeekStart(sunday)) {
		t.Error("SQL week bucketing disagrees with domain.WeekStart")
	}
}

func TestWeeklyStats_PerCategoryColumns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if err := db.UpsertDailyScore(ctx, entry("user-1", monday, 9, 5, 3)); err != nil {
		t.Fatalf("UpsertDailyScore() error: %v", err)
	}

	tests := []struct {
		cat  domain.Category
		want int
	}{
		{domain.CategoryDiet, 9},
		{domain.CategoryExercise, 5},
		{domain.CategoryMedication, 3},
	}
	for _, tt := range tests {
		stats, err := db.WeeklyStats(ctx, "user-1", tt.cat)
		if err != nil {
			t.Fatalf("WeeklyStats(%s) error: %v", tt.cat, err)
		}
		if len(stats) != 1 || stats[0].MinScore != tt.want {
			t.Errorf("%s min = %+v, want %d", tt.cat, stats, tt.want)
		}
	}
}

func TestWeeklyStats_UnknownCategory(t *testing.T) {
	db := newTestDB(t)

	_, err := db.WeeklyStats(context.Background(), "user-1", domain.Category("sleep"))
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestWeeklyStats_Empty(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.WeeklyStats(context.Background(), "nobody", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("len(stats) = %d, want 0", len(stats))
	}
}

func TestWeeklyStats_IsolatesUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if err := db.UpsertDailyScore(ctx, entry("user-1", monday, 9, 9, 9)); err != nil {
		t.Fatalf("UpsertDailyScore() error: %v", err)
	}
	if err := db.UpsertDailyScore(ctx, entry("user-2", monday, 2, 2, 2)); err != nil {
		t.Fatalf("UpsertDailyScore() error: %v", err)
	}

	stats, err := db.WeeklyStats(ctx, "user-2", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("WeeklyStats() error: %v", err)
	}
	if len(stats) != 1 || stats[0].MinScore != 2 {
		t.Errorf("user-2 stats = %+v, want only its own row", stats)
	}
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func TestInsertBadge_New(t *testing.T) {
	db := newTestDB(t)

	inserted, err := db.InsertBadge(context.Background(), domain.BadgeRecord{
		ID:        "badge-1",
		UserID:    "user-1",
		Category:  domain.CategoryDiet,
		Tier:      domain.TierBronze,
		AwardedAt: time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InsertBadge() error: %v", err)
	}
	if !inserted {
		t.Error("InsertBadge() = false, want true for a new badge")
	}
}

func TestInsertBadge_DuplicateTierIgnored(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := domain.BadgeRecord{
		ID:        "badge-1",
		UserID:    "user-1",
		Category:  domain.CategoryDiet,
		Tier:      domain.TierBronze,
		AwardedAt: time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC),
	}
	if _, err := db.InsertBadge(ctx, rec); err != nil {
		t.Fatalf("first InsertBadge() error: %v", err)
	}

	// Same user+category+tier under a fresh ID: the unique index wins.
	rec.ID = "badge-2"
	inserted, err := db.InsertBadge(ctx, rec)
	if err != nil {
		t.Fatalf("second InsertBadge() error: %v", err)
	}
	if inserted {
		t.Error("InsertBadge() = true, want false for a duplicate tier")
	}

	badges, err := db.ListCategoryBadges(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("ListCategoryBadges() error: %v", err)
	}
	if len(badges) != 1 {
		t.Errorf("len(badges) = %d, want 1", len(badges))
	}
	if badges[0].ID != "badge-1" {
		t.Errorf("surviving ID = %q, want the first insert", badges[0].ID)
	}
}

func TestInsertBadge_SameTierAcrossCategories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, cat := range domain.Categories() {
		inserted, err := db.InsertBadge(ctx, domain.BadgeRecord{
			ID:        "badge-" + string(cat),
			UserID:    "user-1",
			Category:  cat,
			Tier:      domain.TierBronze,
			AwardedAt: time.Date(2025, 3, 17, 12, i, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("InsertBadge(%s) error: %v", cat, err)
		}
		if !inserted {
			t.Errorf("InsertBadge(%s) = false, want true (tiers are per category)", cat)
		}
	}
}

func TestListBadges_OrderedByAwardTime(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	records := []domain.BadgeRecord{
		{ID: "b-silver", UserID: "user-1", Category: domain.CategoryDiet, Tier: domain.TierSilver, AwardedAt: base.Add(2 * time.Hour)},
		{ID: "b-bronze", UserID: "user-1", Category: domain.CategoryDiet, Tier: domain.TierBronze, AwardedAt: base},
		{ID: "b-gold", UserID: "user-1", Category: domain.CategoryDiet, Tier: domain.TierGold, AwardedAt: base.Add(4 * time.Hour)},
	}
	for _, rec := range records {
		if _, err := db.InsertBadge(ctx, rec); err != nil {
			t.Fatalf("InsertBadge(%s) error: %v", rec.ID, err)
		}
	}

	badges, err := db.ListBadges(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBadges() error: %v", err)
	}
	if len(badges) != 3 {
		t.Fatalf("len(badges) = %d, want 3", len(badges))
	}

	want := []domain.Tier{domain.TierBronze, domain.TierSilver, domain.TierGold}
	for i, tier := range want {
		if badges[i].Tier != tier {
			t.Errorf("badges[%d].Tier = %q, want %q", i, badges[i].Tier, tier)
		}
	}
	if !badges[0].AwardedAt.Equal(base) {
		t.Errorf("AwardedAt = %v, want %v (round-trips in UTC)", badges[0].AwardedAt, base)
	}
}

func TestListCategoryBadges_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	for _, rec := range []domain.BadgeRecord{
		{ID: "b-1", UserID: "user-1", Category: domain.CategoryDiet, Tier: domain.TierBronze, AwardedAt: at},
		{ID: "b-2", UserID: "user-1", Category: domain.CategoryExercise, Tier: domain.TierBronze, AwardedAt: at},
		{ID: "b-3", UserID: "user-2", Category: domain.CategoryDiet, Tier: domain.TierBronze, AwardedAt: at},
	} {
		if _, err := db.InsertBadge(ctx, rec); err != nil {
			t.Fatalf("InsertBadge(%s) error: %v", rec.ID, err)
		}
	}

	badges, err := db.ListCategoryBadges(ctx, "user-1", domain.CategoryDiet)
	if err != nil {
		t.Fatalf("ListCategoryBadges() error: %v", err)
	}
	if len(badges) != 1 || badges[0].ID != "b-1" {
		t.Errorf("badges = %+v, want only b-1", badges)
	}
}

func TestListBadges_Empty(t *testing.T) {
	db := newTestDB(t)

	badges, err := db.ListBadges(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListBadges() error: %v", err)
	}
	if len(badges) != 0 {
		t.Errorf("len(badges) = %d, want 0", len(badges))
	}
}
