package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mlooney/gridpool/internal/domain/message"
	qb "github.com/mlooney/gridpool/internal/platform/querybuilder"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, m message.Message) error {
	query, args, err := qb.InsertInto("messages").
		Columns("game_id", "player_name", "body", "sender", "sent_at").
		Values(m.GameID, m.PlayerName, m.Body, string(m.Sender), m.SentAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert message query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListThread(ctx context.Context, gameID, playerName string) ([]message.Message, error) {
	query, args, err := qb.Select("*").From("messages").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", playerName),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list thread query: %w", err)
	}
	return r.selectMessages(ctx, query, args)
}

func (r *MessageRepository) ListByGame(ctx context.Context, gameID string) ([]message.Message, error) {
	query, args, err := qb.Select("*").From("messages").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("player_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list messages query: %w", err)
	}
	return r.selectMessages(ctx, query, args)
}

func (r *MessageRepository) DeleteByGame(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("messages").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete messages query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) selectMessages(ctx context.Context, query string, args []any) ([]message.Message, error) {
	var rows []messageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}

	out := make([]message.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
