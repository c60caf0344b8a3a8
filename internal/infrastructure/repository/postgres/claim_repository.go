package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mlooney/gridpool/internal/domain/grid"
	qb "github.com/mlooney/gridpool/internal/platform/querybuilder"
)

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Insert claims a cell if and only if it is unowned. The unique index on
// (game_id, grid_row, grid_col) plus DO NOTHING makes concurrent claims
// race-free: the affected-rows count says who won.
func (r *ClaimRepository) Insert(ctx context.Context, gameID string, row, col int, owner string) (bool, error) {
	query, args, err := qb.InsertInto("claims").
		Columns("game_id", "grid_row", "grid_col", "owner", "claimed_at").
		Values(gameID, row, col, owner, time.Now().UTC()).
		Suffix("ON CONFLICT (game_id, grid_row, grid_col) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert claim query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert claim: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert claim rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ClaimRepository) Delete(ctx context.Context, gameID string, row, col int) error {
	query, args, err := qb.DeleteFrom("claims").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("grid_row", row),
			qb.Eq("grid_col", col),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete claim query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) DeleteByOwner(ctx context.Context, gameID, owner string) (int, error) {
	query, args, err := qb.DeleteFrom("claims").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("owner", owner),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete claims by owner query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete claims by owner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete claims rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *ClaimRepository) DeleteByGame(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("claims").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete claims query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete claims: %w", err)
	}
	return nil
}

func (r *ClaimRepository) Get(ctx context.Context, gameID string, row, col int) (grid.Cell, bool, error) {
	query, args, err := qb.Select("*").From("claims").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("grid_row", row),
			qb.Eq("grid_col", col),
		).
		ToSQL()
	if err != nil {
		return grid.Cell{}, false, fmt.Errorf("build get claim query: %w", err)
	}

	var model claimTableModel
	if err := r.db.GetContext(ctx, &model, query, args...); err != nil {
		if isNotFound(err) {
			return grid.Cell{}, false, nil
		}
		return grid.Cell{}, false, fmt.Errorf("get claim: %w", err)
	}
	return model.toDomain(), true, nil
}

func (r *ClaimRepository) List(ctx context.Context, gameID string) ([]grid.Cell, error) {
	query, args, err := qb.Select("*").From("claims").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("grid_row", "grid_col").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list claims query: %w", err)
	}

	var rows []claimTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	out := make([]grid.Cell, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ClaimRepository) Count(ctx context.Context, gameID string) (int, error) {
	return r.count(ctx, qb.Eq("game_id", gameID))
}

func (r *ClaimRepository) CountByOwner(ctx context.Context, gameID, owner string) (int, error) {
	return r.count(ctx, qb.Eq("game_id", gameID), qb.Eq("owner", owner))
}

func (r *ClaimRepository) count(ctx context.Context, conditions ...qb.Condition) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("claims").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count claims query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return count, nil
}
