package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keepwell-care/keepwell/internal/domain"
	"github.com/keepwell-care/keepwell/internal/infra/metrics"
)

// ─── Milestone REST API (/api/v1/*) ──────────────────────────────────────────
// Client apps poll the milestone status after each score submission; the
// service answers from its cache unless an invalidation forced a recompute.

// --- GET /api/v1/users/{userID}/milestones ---

func (s *Server) handleGetMilestones(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	status, err := s.milestones.Status(r.Context(), userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("milestone status failed")
		writeError(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// --- POST /api/v1/users/{userID}/milestones/invalidate ---

func (s *Server) handleInvalidateMilestones(w http.ResponseWriter, r *http.Request) {
	s.milestones.Invalidate(chi.URLParam(r, "userID"))
	w.WriteHeader(http.StatusNoContent)
}

// --- POST /api/v1/scores ---

type recordScoreRequest struct {
	UserID          string `json:"user_id"`
	Date            string `json:"date"`
	DietScore       int    `json:"diet_score"`
	ExerciseScore   int    `json:"exercise_score"`
	MedicationScore int    `json:"medication_score"`
}

func (s *Server) handleRecordScore(w http.ResponseWriter, r *http.Request) {
	var req recordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	entry := domain.DailyScoreEntry{
		UserID:          req.UserID,
		Date:            date,
		DietScore:       req.DietScore,
		ExerciseScore:   req.ExerciseScore,
		MedicationScore: req.MedicationScore,
	}
	if err := entry.Validate(); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	// Days are date-granular, so only tomorrow onward is "future".
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if entry.Date.After(today) {
		writeError(w, errStatus(domain.ErrFutureDate), domain.ErrFutureDate.Error())
		return
	}

	if err := s.scores.UpsertDailyScore(r.Context(), entry); err != nil {
		s.log.Error().Err(err).Str("user_id", entry.UserID).Msg("record score failed")
		writeError(w, errStatus(err), err.Error())
		return
	}

	// The cached status is stale the moment a new score lands.
	s.milestones.Invalidate(entry.UserID)
	metrics.ScoresRecorded.Inc()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"user_id": entry.UserID,
		"date":    req.Date,
	})
}

// --- GET /api/v1/users/{userID}/scores?category=diet&weeks=12 ---

const defaultScoreWeeks = 12

func (s *Server) handleGetScores(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	category, err := domain.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	weeks := defaultScoreWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		weeks, err = strconv.Atoi(raw)
		if err != nil || weeks < 1 {
			writeError(w, http.StatusBadRequest, "weeks must be a positive integer")
			return
		}
	}

	stats, err := s.scores.WeeklyStats(r.Context(), userID, category)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}

	// Most recent N weeks; rollups arrive oldest first.
	if len(stats) > weeks {
		stats = stats[len(stats)-weeks:]
	}
	if stats == nil {
		stats = []domain.WeekStat{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"category": category,
		"weeks":    stats,
	})
}
