package message

import "context"

// Repository describes message persistence needs from use cases.
type Repository interface {
	Append(ctx context.Context, m Message) error
	ListThread(ctx context.Context, gameID, playerName string) ([]Message, error)
	ListByGame(ctx context.Context, gameID string) ([]Message, error)
	DeleteByGame(ctx context.Context, gameID string) error
}
