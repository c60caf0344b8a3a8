package postgres

import (
	"time"

	"github.com/mlooney/gridpool/internal/domain/grid"
)

type claimTableModel struct {
	GameID    string    `db:"game_id"`
	Row       int       `db:"grid_row"`
	Col       int       `db:"grid_col"`
	Owner     string    `db:"owner"`
	ClaimedAt time.Time `db:"claimed_at"`
}

func (m claimTableModel) toDomain() grid.Cell {
	return grid.Cell{
		GameID:    m.GameID,
		Row:       m.Row,
		Col:       m.Col,
		Owner:     m.Owner,
		ClaimedAt: m.ClaimedAt,
	}
}
