package milestone

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keepwell-care/keepwell/internal/domain"
	"github.com/keepwell-care/keepwell/internal/infra/metrics"
)

// Awarder walks a user's category up the badge ladder.
// Tiers are strictly ascending: evaluation starts above the highest
// earned tier and stops at the first unmet requirement. Several tiers
// can land in a single evaluation when old data already satisfies them.
type Awarder struct {
	badges domain.BadgeStore
	log    zerolog.Logger
}

// NewAwarder creates an awarder backed by the given badge store.
func NewAwarder(badges domain.BadgeStore, log zerolog.Logger) *Awarder {
	return &Awarder{badges: badges, log: log}
}

// Evaluate checks one (user, category) against the ladder and persists
// any tiers the weekly stats now satisfy. It returns the badges awarded
// by this call and the highest tier held afterwards. An award lost to a
// concurrent evaluation is skipped, not an error.
func (a *Awarder) Evaluate(ctx context.Context, userID string, cat domain.Category, stats []domain.WeekStat) ([]domain.BadgeRecord, domain.Tier, error) {
	existing, err := a.badges.ListCategoryBadges(ctx, userID, cat)
	if err != nil {
		return nil, domain.TierNone, fmt.Errorf("list %s badges: %w", cat, err)
	}

	// A broken ladder is logged, never repaired: awards are permanent.
	if err := domain.CheckTierOrder(existing); err != nil {
		a.log.Error().
			Str("user_id", userID).
			Str("category", string(cat)).
			Err(err).
			Msg("badge ladder violates tier order")
	}

	highest := domain.HighestTier(existing)
	var awarded []domain.BadgeRecord

	for _, rule := range domain.TierRules() {
		if rule.Tier.Rank() <= highest.Rank() {
			continue // already earned
		}
		if StreakAtThreshold(stats, rule.ScoreThreshold) < rule.WeeksRequired {
			break // first unmet tier ends the walk
		}

		rec := domain.BadgeRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Category:  cat,
			Tier:      rule.Tier,
			AwardedAt: time.Now().UTC(),
		}
		inserted, err := a.badges.InsertBadge(ctx, rec)
		if err != nil {
			return awarded, highest, fmt.Errorf("award %s %s: %w", cat, rule.Tier, err)
		}
		if inserted {
			awarded = append(awarded, rec)
			metrics.BadgesAwarded.WithLabelValues(string(cat), string(rule.Tier)).Inc()
			a.log.Info().
				Str("user_id", userID).
				Str("category", string(cat)).
				Str("tier", string(rule.Tier)).
				Msg("badge awarded")
		}
		// A lost insert race still advances the tier: someone awarded it.
		highest = rule.Tier
	}

	return awarded, highest, nil
}
