package milestone

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keepwell-care/keepwell/internal/domain"
	"github.com/keepwell-care/keepwell/internal/infra/metrics"
)

// Service is the engine's front door: cached status reads, full
// recomputation on miss, and cache invalidation when new scores arrive.
type Service struct {
	scores  domain.ScoreSource
	badges  domain.BadgeStore
	awarder *Awarder
	cache   *StatusCache
	log     zerolog.Logger
}

// NewService wires the engine. A non-positive cacheTTL falls back to
// DefaultStatusTTL.
func NewService(scores domain.ScoreSource, badges domain.BadgeStore, cacheTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		scores:  scores,
		badges:  badges,
		awarder: NewAwarder(badges, log),
		cache:   NewStatusCache(cacheTTL),
		log:     log,
	}
}

// Status returns the user's milestone status, serving from cache when
// fresh. A miss recomputes everything: award sweep across all
// categories, earned badge list, per-category progress. A failed
// recomputation is never cached.
func (s *Service) Status(ctx context.Context, userID string) (domain.MilestoneStatus, error) {
	if userID == "" {
		return domain.MilestoneStatus{}, domain.ErrInvalidUserID
	}

	if st, ok := s.cache.Get(userID); ok {
		metrics.StatusRequests.WithLabelValues("hit").Inc()
		return st, nil
	}

	st, err := s.compute(ctx, userID)
	if err != nil {
		metrics.StatusRequests.WithLabelValues("error").Inc()
		return domain.MilestoneStatus{}, err
	}

	s.cache.Put(userID, st)
	metrics.CacheEntries.Set(float64(s.cache.Len()))
	metrics.StatusRequests.WithLabelValues("miss").Inc()
	return st, nil
}

// Invalidate drops the user's cached status. Call it whenever new
// scores land so the next read reflects them immediately.
func (s *Service) Invalidate(userID string) {
	s.cache.Invalidate(userID)
	metrics.CacheInvalidations.Inc()
	metrics.CacheEntries.Set(float64(s.cache.Len()))
}

// SweepCache drops expired cache entries and returns how many went.
func (s *Service) SweepCache() int {
	dropped := s.cache.Sweep()
	metrics.CacheEntries.Set(float64(s.cache.Len()))
	return dropped
}

// compute runs the full pipeline for one user. Each category fetches
// its weekly rollup once and reuses it for both awarding and progress.
func (s *Service) compute(ctx context.Context, userID string) (domain.MilestoneStatus, error) {
	start := time.Now()

	var newly []domain.BadgeRecord
	progress := make([]domain.ProgressSnapshot, 0, len(domain.Categories()))

	for _, cat := range domain.Categories() {
		stats, err := s.scores.WeeklyStats(ctx, userID, cat)
		if err != nil {
			return domain.MilestoneStatus{}, fmt.Errorf("weekly stats for %s: %w", cat, err)
		}

		awarded, highest, err := s.awarder.Evaluate(ctx, userID, cat, stats)
		if err != nil {
			return domain.MilestoneStatus{}, err
		}
		newly = append(newly, awarded...)
		progress = append(progress, Progress(cat, highest, stats))
	}

	earned, err := s.badges.ListBadges(ctx, userID)
	if err != nil {
		return domain.MilestoneStatus{}, fmt.Errorf("list badges: %w", err)
	}
	if earned == nil {
		earned = []domain.BadgeRecord{} // renders as an empty JSON list, not null
	}

	st := domain.MilestoneStatus{
		UserID:             userID,
		EarnedBadges:       earned,
		ProgressByCategory: progress,
		NewlyAwardedBadge:  pickNewlyAwarded(newly),
	}

	metrics.ComputeLatency.Observe(time.Since(start).Seconds())
	return st, nil
}

// pickNewlyAwarded selects the single badge worth announcing: the
// highest tier awarded by this computation. Rank ties go to the earlier
// category in canonical order.
func pickNewlyAwarded(awarded []domain.BadgeRecord) *domain.BadgeRecord {
	best := -1
	for i, rec := range awarded {
		if best < 0 || rec.Tier.Rank() > awarded[best].Tier.Rank() {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	rec := awarded[best]
	return &rec
}
