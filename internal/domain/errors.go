package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. Layers wrap
// them with fmt.Errorf("...: %w", err) so callers classify with errors.Is.

var (
	// Score intake errors
	ErrInvalidUserID   = errors.New("user id must not be empty")
	ErrInvalidDate     = errors.New("score date must be set")
	ErrFutureDate      = errors.New("score date is in the future")
	ErrScoreOutOfRange = errors.New("score outside the 1-10 range")

	// Category errors
	ErrUnknownCategory = errors.New("unknown category")

	// Badge ladder errors
	ErrTierOrderViolation = errors.New("badge ladder out of order")

	// Storage errors
	ErrStorageUnavailable = errors.New("milestone storage unavailable")
)
