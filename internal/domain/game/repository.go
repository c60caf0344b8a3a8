package game

import "context"

// Repository describes game persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, g Game) error
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	List(ctx context.Context) ([]Game, error)
	Delete(ctx context.Context, gameID string) error

	// SetNumbers stores both digit assignments together, but only when the
	// game has none yet. It reports false when another writer already won.
	SetNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (bool, error)

	SetComplete(ctx context.Context, gameID string, complete bool) error
	SetNumbersReleased(ctx context.Context, gameID string) error

	// SetLocked persists the lock flag; clearLockAt additionally drops the
	// scheduled auto-lock instant (used on unlock).
	SetLocked(ctx context.Context, gameID string, locked bool, clearLockAt bool) error

	// NotifiedPeriods returns the ascending set of period indices already
	// resolved and reported for the game.
	NotifiedPeriods(ctx context.Context, gameID string) ([]int, error)

	// AddNotifiedPeriods unions periods into the notified set atomically.
	// Replaying an already-known period is a no-op.
	AddNotifiedPeriods(ctx context.Context, gameID string, periods []int) error
}
