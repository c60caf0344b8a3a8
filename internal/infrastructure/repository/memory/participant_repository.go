package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/participant"
)

type participantKey struct {
	gameID string
	name   string
}

type ParticipantRepository struct {
	mu    sync.RWMutex
	items map[participantKey]participant.Participant
	now   func() time.Time
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{
		items: make(map[participantKey]participant.Participant),
		now:   time.Now,
	}
}

func (r *ParticipantRepository) Create(_ context.Context, p participant.Participant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey{gameID: p.GameID, name: p.Name}
	if _, exists := r.items[key]; exists {
		return false, nil
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = r.now()
	}
	r.items[key] = p
	return true, nil
}

func (r *ParticipantRepository) Get(_ context.Context, gameID, name string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[participantKey{gameID: gameID, name: name}]
	return p, ok, nil
}

func (r *ParticipantRepository) List(_ context.Context, gameID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0)
	for key, p := range r.items {
		if key.gameID == gameID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ParticipantRepository) SetBanned(_ context.Context, gameID, name string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey{gameID: gameID, name: name}
	if p, ok := r.items[key]; ok {
		p.IsBanned = banned
		r.items[key] = p
	}
	return nil
}

func (r *ParticipantRepository) AddBonusClaims(_ context.Context, gameID, name string, bonus int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey{gameID: gameID, name: name}
	if p, ok := r.items[key]; ok {
		p.BonusClaims += bonus
		r.items[key] = p
	}
	return nil
}

func (r *ParticipantRepository) DeleteByGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.gameID == gameID {
			delete(r.items, key)
		}
	}
	return nil
}

// RequestRepository stores extra-squares requests in memory.
type RequestRepository struct {
	mu     sync.Mutex
	nextID int64
	items  []participant.SquareRequest
	now    func() time.Time
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{nextID: 1, now: time.Now}
}

func (r *RequestRepository) CreatePending(_ context.Context, gameID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.items {
		if req.GameID == gameID && req.Name == name && req.Status == participant.RequestPending {
			return false, nil
		}
	}
	r.items = append(r.items, participant.SquareRequest{
		ID:          r.nextID,
		GameID:      gameID,
		Name:        name,
		Status:      participant.RequestPending,
		RequestedAt: r.now(),
	})
	r.nextID++
	return true, nil
}

func (r *RequestRepository) HasPending(_ context.Context, gameID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.items {
		if req.GameID == gameID && req.Name == name && req.Status == participant.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *RequestRepository) ListPending(_ context.Context, gameID string) ([]participant.SquareRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]participant.SquareRequest, 0)
	for _, req := range r.items {
		if req.GameID == gameID && req.Status == participant.RequestPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *RequestRepository) ResolvePending(_ context.Context, gameID, name string, status participant.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, req := range r.items {
		if req.GameID == gameID && req.Name == name && req.Status == participant.RequestPending {
			r.items[i].Status = status
		}
	}
	return nil
}

func (r *RequestRepository) DeleteByGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, req := range r.items {
		if req.GameID != gameID {
			kept = append(kept, req)
		}
	}
	r.items = kept
	return nil
}
