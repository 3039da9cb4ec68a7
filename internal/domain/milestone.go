// Package domain holds the core types of the milestone progression engine.
// Daily self-reported wellbeing scores roll up into weekly compliance,
// compliant weeks chain into streaks, and streaks earn tiered badges.
package domain

import (
	"fmt"
	"time"
)

// ─── Categories ─────────────────────────────────────────────────────────────

// Category is a wellbeing dimension scored once per day.
type Category string

const (
	CategoryDiet       Category = "diet"
	CategoryExercise   Category = "exercise"
	CategoryMedication Category = "medication"
)

// Categories returns all categories in canonical order. Status responses
// and award sweeps always walk them in this order.
func Categories() []Category {
	return []Category{CategoryDiet, CategoryExercise, CategoryMedication}
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryDiet, CategoryExercise, CategoryMedication:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ─── Tiers ──────────────────────────────────────────────────────────────────

// Tier is a badge rank. Tiers are earned strictly in ascending order,
// one at a time, and are never revoked.
type Tier string

const (
	TierNone     Tier = ""
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Rank returns the tier's position on the ladder, bronze=1 through
// platinum=4. TierNone ranks 0.
func (t Tier) Rank() int {
	switch t {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	case TierPlatinum:
		return 4
	}
	return 0
}

// NextTier returns the tier above t, or false when t is already platinum.
func NextTier(t Tier) (Tier, bool) {
	switch t {
	case TierNone:
		return TierBronze, true
	case TierBronze:
		return TierSilver, true
	case TierSilver:
		return TierGold, true
	case TierGold:
		return TierPlatinum, true
	}
	return TierNone, false
}

// ─── Tier Rules ─────────────────────────────────────────────────────────────

// TierRule states what a tier demands: a streak of WeeksRequired
// consecutive compliant weeks, where every daily score in a compliant
// week is at least ScoreThreshold.
type TierRule struct {
	Tier           Tier `json:"tier"`
	ScoreThreshold int  `json:"score_threshold"`
	WeeksRequired  int  `json:"weeks_required"`
}

// TierRules returns the badge ladder in ascending order. The table is
// fixed for all users; thresholds never vary per user.
func TierRules() []TierRule {
	return []TierRule{
		{Tier: TierBronze, ScoreThreshold: 5, WeeksRequired: 2},
		{Tier: TierSilver, ScoreThreshold: 7, WeeksRequired: 4},
		{Tier: TierGold, ScoreThreshold: 8, WeeksRequired: 16},
		{Tier: TierPlatinum, ScoreThreshold: 9, WeeksRequired: 24},
	}
}

// RuleFor returns the ladder rule for a single tier.
func RuleFor(t Tier) (TierRule, bool) {
	for _, r := range TierRules() {
		if r.Tier == t {
			return r, true
		}
	}
	return TierRule{}, false
}

// ─── Daily Scores ───────────────────────────────────────────────────────────

// Score bounds for every category.
const (
	MinScore = 1
	MaxScore = 10
)

// DailyScoreEntry is one user's self-reported scores for one calendar day.
// At most one entry exists per (user, date); a later submission for the
// same day replaces the earlier one.
type DailyScoreEntry struct {
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"` // calendar day, UTC midnight
	DietScore       int       `json:"diet_score"`
	ExerciseScore   int       `json:"exercise_score"`
	MedicationScore int       `json:"medication_score"`
}

// Score returns the entry's score for the given category.
func (e DailyScoreEntry) Score(cat Category) int {
	switch cat {
	case CategoryDiet:
		return e.DietScore
	case CategoryExercise:
		return e.ExerciseScore
	case CategoryMedication:
		return e.MedicationScore
	}
	return 0
}

// Validate checks the user id, the date and all three score ranges.
func (e DailyScoreEntry) Validate() error {
	if e.UserID == "" {
		return ErrInvalidUserID
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	for _, cat := range Categories() {
		if s := e.Score(cat); s < MinScore || s > MaxScore {
			return fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, cat, s)
		}
	}
	return nil
}

// ─── Weekly Rollups ─────────────────────────────────────────────────────────

// WeekStat is the per-week rollup the engine consumes: the Monday the
// week starts on, the minimum score reported that week, and how many
// daily entries the week holds. Weeks with no entries never appear.
type WeekStat struct {
	WeekStart time.Time `json:"week_start"`
	MinScore  int       `json:"min_score"`
	Entries   int       `json:"entries"`
}

// WeekCompliance marks one reported week as compliant or not against a
// specific score threshold.
type WeekCompliance struct {
	WeekStart time.Time `json:"week_start"`
	Compliant bool      `json:"compliant"`
}

// WeekStart returns the Monday 00:00 UTC opening the week that holds t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7 // Monday is 0, Sunday is 6
	y, m, d := t.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeRecord is one earned badge. (UserID, Category, Tier) is unique:
// a badge is awarded at most once, forever.
type BadgeRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  Category  `json:"category"`
	Tier      Tier      `json:"tier"`
	AwardedAt time.Time `json:"awarded_at"`
}

// HighestTier returns the highest-ranked tier among the records, or
// TierNone for an empty slice.
func HighestTier(records []BadgeRecord) Tier {
	highest := TierNone
	for _, r := range records {
		if r.Tier.Rank() > highest.Rank() {
			highest = r.Tier
		}
	}
	return highest
}

// CheckTierOrder verifies that one category's records form an unbroken
// prefix of the ladder: a tier may only be present when every lower
// tier is present too.
func CheckTierOrder(records []BadgeRecord) error {
	present := make(map[Tier]bool, len(records))
	highest := TierNone
	for _, r := range records {
		present[r.Tier] = true
		if r.Tier.Rank() > highest.Rank() {
			highest = r.Tier
		}
	}
	for _, rule := range TierRules() {
		if rule.Tier.Rank() > highest.Rank() {
			break
		}
		if !present[rule.Tier] {
			return fmt.Errorf("%w: %s missing below %s", ErrTierOrderViolation, rule.Tier, highest)
		}
	}
	return nil
}

// ─── Progress & Status ──────────────────────────────────────────────────────

// ProgressSnapshot reports one category's standing: the tier held now
// and how far the streak has advanced toward the next one. When the
// category has every tier, NextTier is empty and the week counters are
// zero.
type ProgressSnapshot struct {
	Category        Category `json:"category"`
	CurrentTier     Tier     `json:"current_tier,omitempty"`
	NextTier        Tier     `json:"next_tier,omitempty"`
	WeeksCompleted  int      `json:"weeks_completed"`
	WeeksRequired   int      `json:"weeks_required"`
	ProgressPercent int      `json:"progress_percent"`
}

// MilestoneStatus is the full progression picture for one user.
// NewlyAwardedBadge is set only on the computation that performed the
// award; cached reads never carry it.
type MilestoneStatus struct {
	UserID             string             `json:"user_id"`
	EarnedBadges       []BadgeRecord      `json:"earned_badges"`
	ProgressByCategory []ProgressSnapshot `json:"progress_by_category"`
	NewlyAwardedBadge  *BadgeRecord       `json:"newly_awarded_badge,omitempty"`
}

// Clone returns a deep copy. Cached statuses are cloned on the way in
// and out so callers can never mutate shared state. Empty non-nil
// slices stay non-nil so JSON rendering is stable across the cache.
func (m MilestoneStatus) Clone() MilestoneStatus {
	out := m
	if m.EarnedBadges != nil {
		out.EarnedBadges = make([]BadgeRecord, len(m.EarnedBadges))
		copy(out.EarnedBadges, m.EarnedBadges)
	}
	if m.ProgressByCategory != nil {
		out.ProgressByCategory = make([]ProgressSnapshot, len(m.ProgressByCategory))
		copy(out.ProgressByCategory, m.ProgressByCategory)
	}
	if m.NewlyAwardedBadge != nil {
		rec := *m.NewlyAwardedBadge
		out.NewlyAwardedBadge = &rec
	}
	return out
}
