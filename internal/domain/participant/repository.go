package participant

import "context"

// Repository describes participant persistence needs from use cases.
type Repository interface {
	// Create inserts the participant and reports false when the
	// (game, name) pair already exists.
	Create(ctx context.Context, p Participant) (bool, error)

	Get(ctx context.Context, gameID, name string) (Participant, bool, error)
	List(ctx context.Context, gameID string) ([]Participant, error)
	SetBanned(ctx context.Context, gameID, name string, banned bool) error
	AddBonusClaims(ctx context.Context, gameID, name string, bonus int) error
	DeleteByGame(ctx context.Context, gameID string) error
}

// RequestRepository stores extra-squares requests.
type RequestRepository interface {
	// CreatePending files a request and reports false if the participant
	// already has one pending.
	CreatePending(ctx context.Context, gameID, name string) (bool, error)

	HasPending(ctx context.Context, gameID, name string) (bool, error)
	ListPending(ctx context.Context, gameID string) ([]SquareRequest, error)
	ResolvePending(ctx context.Context, gameID, name string, status RequestStatus) error
	DeleteByGame(ctx context.Context, gameID string) error
}
