package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Expected gameplay outcomes, not faults.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrAlreadyClaimed    = errors.New("cell already claimed")
	ErrQuotaExceeded     = errors.New("claim limit reached")
	ErrGameLocked        = errors.New("game is locked")

	// ErrFeedUnavailable degrades quarter resolution to a no-op cycle.
	ErrFeedUnavailable = errors.New("score feed unavailable")
)
