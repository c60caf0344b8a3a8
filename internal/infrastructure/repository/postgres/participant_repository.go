package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mlooney/gridpool/internal/domain/participant"
	qb "github.com/mlooney/gridpool/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p participant.Participant) (bool, error) {
	query, args, err := qb.InsertInto("participants").
		Columns("game_id", "player_name", "is_banned", "bonus_claims", "joined_at").
		Values(p.GameID, p.Name, p.IsBanned, p.BonusClaims, p.JoinedAt).
		Suffix("ON CONFLICT (game_id, player_name) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert participant query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert participant rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ParticipantRepository) Get(ctx context.Context, gameID, name string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", name),
		).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var model participantTableModel
	if err := r.db.GetContext(ctx, &model, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}
	return model.toDomain(), true, nil
}

func (r *ParticipantRepository) List(ctx context.Context, gameID string) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("joined_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ParticipantRepository) SetBanned(ctx context.Context, gameID, name string, banned bool) error {
	query, args, err := qb.Update("participants").
		Set("is_banned", banned).
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", name),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set banned query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) AddBonusClaims(ctx context.Context, gameID, name string, bonus int) error {
	query, args, err := qb.Update("participants").
		SetExpr("bonus_claims", "bonus_claims + ?", bonus).
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", name),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add bonus query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add bonus claims: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) DeleteByGame(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("participants").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete participants query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}

type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CreatePending files a request unless one is already pending. The
// partial unique index on (game_id, player_name) WHERE status =
// 'pending' is the arbiter.
func (r *RequestRepository) CreatePending(ctx context.Context, gameID, name string) (bool, error) {
	query, args, err := qb.InsertInto("square_requests").
		Columns("game_id", "player_name", "status", "requested_at").
		Values(gameID, name, string(participant.RequestPending), time.Now().UTC()).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert request query: %w", err)
	}
	query += " ON CONFLICT (game_id, player_name) WHERE status = 'pending' DO NOTHING"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert request rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *RequestRepository) HasPending(ctx context.Context, gameID, name string) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").From("square_requests").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", name),
			qb.Eq("status", string(participant.RequestPending)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has pending query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("has pending request: %w", err)
	}
	return count > 0, nil
}

func (r *RequestRepository) ListPending(ctx context.Context, gameID string) ([]participant.SquareRequest, error) {
	query, args, err := qb.Select("*").From("square_requests").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("status", string(participant.RequestPending)),
		).
		OrderBy("requested_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending query: %w", err)
	}

	var rows []squareRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	out := make([]participant.SquareRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RequestRepository) ResolvePending(ctx context.Context, gameID, name string, status participant.RequestStatus) error {
	query, args, err := qb.Update("square_requests").
		Set("status", string(status)).
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("player_name", name),
			qb.Eq("status", string(participant.RequestPending)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build resolve request query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	return nil
}

func (r *RequestRepository) DeleteByGame(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("square_requests").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete requests query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete requests: %w", err)
	}
	return nil
}
