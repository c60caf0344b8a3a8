package grid

import "context"

// Repository is the claim store. Insert is the single atomic
// conditional-write primitive every claim and fill goes through: at most
// one caller observes true for a given (game, row, col).
type Repository interface {
	// Insert binds owner to the cell iff it currently has no owner.
	// It reports false, without effect, when the cell is already owned.
	Insert(ctx context.Context, gameID string, row, col int, owner string) (bool, error)

	// Delete idempotently clears the cell.
	Delete(ctx context.Context, gameID string, row, col int) error

	// DeleteByOwner removes every cell owned by owner in the game and
	// returns how many were removed.
	DeleteByOwner(ctx context.Context, gameID, owner string) (int, error)

	DeleteByGame(ctx context.Context, gameID string) error

	Get(ctx context.Context, gameID string, row, col int) (Cell, bool, error)
	List(ctx context.Context, gameID string) ([]Cell, error)
	Count(ctx context.Context, gameID string) (int, error)
	CountByOwner(ctx context.Context, gameID, owner string) (int, error)
}
