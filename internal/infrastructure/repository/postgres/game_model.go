package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/mlooney/gridpool/internal/domain/game"
)

type gameTableModel struct {
	ID              string        `db:"id"`
	Name            string        `db:"name"`
	HomeTeam        string        `db:"home_team"`
	AwayTeam        string        `db:"away_team"`
	IsComplete      bool          `db:"is_complete"`
	NumbersReleased bool          `db:"numbers_released"`
	IsLocked        bool          `db:"is_locked"`
	LockAt          *time.Time    `db:"lock_at"`
	League          string        `db:"league"`
	EventID         string        `db:"event_id"`
	RowNumbers      pq.Int64Array `db:"row_numbers"`
	ColNumbers      pq.Int64Array `db:"col_numbers"`
	MaxClaims       int           `db:"max_claims"`
	WebhookURL      string        `db:"webhook_url"`
	CreatedAt       time.Time     `db:"created_at"`
}

func gameToTableModel(g game.Game) gameTableModel {
	model := gameTableModel{
		ID:              g.ID,
		Name:            g.Name,
		HomeTeam:        g.HomeTeam,
		AwayTeam:        g.AwayTeam,
		IsComplete:      g.IsComplete,
		NumbersReleased: g.NumbersReleased,
		IsLocked:        g.IsLocked,
		League:          g.League,
		EventID:         g.EventID,
		RowNumbers:      intsToArray(g.RowNumbers),
		ColNumbers:      intsToArray(g.ColNumbers),
		MaxClaims:       g.MaxClaims,
		WebhookURL:      g.WebhookURL,
		CreatedAt:       g.CreatedAt,
	}
	if !g.LockAt.IsZero() {
		lockAt := g.LockAt
		model.LockAt = &lockAt
	}
	return model
}

func (m gameTableModel) toDomain() game.Game {
	g := game.Game{
		ID:              m.ID,
		Name:            m.Name,
		HomeTeam:        m.HomeTeam,
		AwayTeam:        m.AwayTeam,
		IsComplete:      m.IsComplete,
		NumbersReleased: m.NumbersReleased,
		IsLocked:        m.IsLocked,
		League:          m.League,
		EventID:         m.EventID,
		RowNumbers:      arrayToInts(m.RowNumbers),
		ColNumbers:      arrayToInts(m.ColNumbers),
		MaxClaims:       m.MaxClaims,
		WebhookURL:      m.WebhookURL,
		CreatedAt:       m.CreatedAt,
	}
	if m.LockAt != nil {
		g.LockAt = *m.LockAt
	}
	return g
}

func intsToArray(values []int) pq.Int64Array {
	if len(values) == 0 {
		return nil
	}
	out := make(pq.Int64Array, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

func arrayToInts(values pq.Int64Array) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
