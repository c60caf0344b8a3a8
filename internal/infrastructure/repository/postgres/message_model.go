package postgres

import (
	"time"

	"github.com/mlooney/gridpool/internal/domain/message"
)

type messageTableModel struct {
	ID         int64     `db:"id"`
	GameID     string    `db:"game_id"`
	PlayerName string    `db:"player_name"`
	Body       string    `db:"body"`
	Sender     string    `db:"sender"`
	SentAt     time.Time `db:"sent_at"`
}

func (m messageTableModel) toDomain() message.Message {
	return message.Message{
		ID:         m.ID,
		GameID:     m.GameID,
		PlayerName: m.PlayerName,
		Body:       m.Body,
		Sender:     message.Sender(m.Sender),
		SentAt:     m.SentAt,
	}
}
