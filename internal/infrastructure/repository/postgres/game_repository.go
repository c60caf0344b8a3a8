package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mlooney/gridpool/internal/domain/game"
	qb "github.com/mlooney/gridpool/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) error {
	query, args, err := qb.InsertModel("games", gameToTableModel(g), "")
	if err != nil {
		return fmt.Errorf("build insert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) Delete(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("games").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

// SetNumbers persists both assignments in one conditional write. The
// WHERE clause makes it last-writer-loses: a game that already has
// numbers is untouched and the caller learns it lost the race.
func (r *GameRepository) SetNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (bool, error) {
	query, args, err := qb.Update("games").
		Set("row_numbers", intsToArray(rowNumbers)).
		Set("col_numbers", intsToArray(colNumbers)).
		Where(
			qb.Eq("id", gameID),
			qb.Expr("row_numbers IS NULL"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set numbers query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set numbers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set numbers rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *GameRepository) SetComplete(ctx context.Context, gameID string, complete bool) error {
	return r.setFlag(ctx, gameID, "is_complete", complete)
}

func (r *GameRepository) SetNumbersReleased(ctx context.Context, gameID string) error {
	return r.setFlag(ctx, gameID, "numbers_released", true)
}

func (r *GameRepository) SetLocked(ctx context.Context, gameID string, locked, clearLockAt bool) error {
	builder := qb.Update("games").Set("is_locked", locked)
	if clearLockAt {
		builder = builder.SetExpr("lock_at", "NULL")
	}
	query, args, err := builder.Where(qb.Eq("id", gameID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build set locked query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set locked: %w", err)
	}
	return nil
}

func (r *GameRepository) setFlag(ctx context.Context, gameID, column string, value bool) error {
	query, args, err := qb.Update("games").
		Set(column, value).
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set %s query: %w", column, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

func (r *GameRepository) NotifiedPeriods(ctx context.Context, gameID string) ([]int, error) {
	query, args, err := qb.Select("period").From("notified_periods").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("period").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build notified periods query: %w", err)
	}

	var periods []int
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("list notified periods: %w", err)
	}
	return periods, nil
}

// AddNotifiedPeriods records periods idempotently: replays land on the
// primary key conflict and change nothing.
func (r *GameRepository) AddNotifiedPeriods(ctx context.Context, gameID string, periods []int) error {
	if len(periods) == 0 {
		return nil
	}

	builder := qb.InsertInto("notified_periods").Columns("game_id", "period")
	for _, p := range periods {
		builder = builder.Values(gameID, p)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT (game_id, period) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add notified periods query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add notified periods: %w", err)
	}
	return nil
}
