package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/message"
)

type MessageRepository struct {
	mu     sync.Mutex
	nextID int64
	items  []message.Message
	now    func() time.Time
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{nextID: 1, now: time.Now}
}

func (r *MessageRepository) Append(_ context.Context, m message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = r.nextID
	if m.SentAt.IsZero() {
		m.SentAt = r.now()
	}
	r.nextID++
	r.items = append(r.items, m)
	return nil
}

func (r *MessageRepository) ListThread(_ context.Context, gameID, playerName string) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]message.Message, 0)
	for _, m := range r.items {
		if m.GameID == gameID && m.PlayerName == playerName {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MessageRepository) ListByGame(_ context.Context, gameID string) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]message.Message, 0)
	for _, m := range r.items {
		if m.GameID == gameID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MessageRepository) DeleteByGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, m := range r.items {
		if m.GameID != gameID {
			kept = append(kept, m)
		}
	}
	r.items = kept
	return nil
}
