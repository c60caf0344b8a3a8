package postgres

import (
	"time"

	"github.com/mlooney/gridpool/internal/domain/participant"
)

type participantTableModel struct {
	GameID      string    `db:"game_id"`
	Name        string    `db:"player_name"`
	IsBanned    bool      `db:"is_banned"`
	BonusClaims int       `db:"bonus_claims"`
	JoinedAt    time.Time `db:"joined_at"`
}

func (m participantTableModel) toDomain() participant.Participant {
	return participant.Participant{
		GameID:      m.GameID,
		Name:        m.Name,
		IsBanned:    m.IsBanned,
		BonusClaims: m.BonusClaims,
		JoinedAt:    m.JoinedAt,
	}
}

type squareRequestTableModel struct {
	ID          int64     `db:"id"`
	GameID      string    `db:"game_id"`
	Name        string    `db:"player_name"`
	Status      string    `db:"status"`
	RequestedAt time.Time `db:"requested_at"`
}

func (m squareRequestTableModel) toDomain() participant.SquareRequest {
	return participant.SquareRequest{
		ID:          m.ID,
		GameID:      m.GameID,
		Name:        m.Name,
		Status:      participant.RequestStatus(m.Status),
		RequestedAt: m.RequestedAt,
	}
}
