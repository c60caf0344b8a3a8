package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
)

type GameRepository struct {
	mu       sync.RWMutex
	items    map[string]game.Game
	notified map[string]map[int]struct{}
	order    []string
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		items:    make(map[string]game.Game),
		notified: make(map[string]map[int]struct{}),
	}
}

func (r *GameRepository) Create(_ context.Context, g game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[g.ID]; exists {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	r.items[g.ID] = cloneGame(g)
	r.order = append(r.order, g.ID)
	return nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[gameID]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.order))
	for _, id := range r.order {
		if g, ok := r.items[id]; ok {
			out = append(out, cloneGame(g))
		}
	}
	return out, nil
}

func (r *GameRepository) Delete(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, gameID)
	delete(r.notified, gameID)
	for i, id := range r.order {
		if id == gameID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *GameRepository) SetNumbers(_ context.Context, gameID string, rowNumbers, colNumbers []int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.items[gameID]
	if !ok {
		return false, fmt.Errorf("game %s not found", gameID)
	}
	if g.HasNumbers() {
		return false, nil
	}
	g.RowNumbers = append([]int(nil), rowNumbers...)
	g.ColNumbers = append([]int(nil), colNumbers...)
	r.items[gameID] = g
	return true, nil
}

func (r *GameRepository) SetComplete(_ context.Context, gameID string, complete bool) error {
	return r.update(gameID, func(g *game.Game) { g.IsComplete = complete })
}

func (r *GameRepository) SetNumbersReleased(_ context.Context, gameID string) error {
	return r.update(gameID, func(g *game.Game) { g.NumbersReleased = true })
}

func (r *GameRepository) SetLocked(_ context.Context, gameID string, locked bool, clearLockAt bool) error {
	return r.update(gameID, func(g *game.Game) {
		g.IsLocked = locked
		if clearLockAt {
			g.LockAt = time.Time{}
		}
	})
}

func (r *GameRepository) NotifiedPeriods(_ context.Context, gameID string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.notified[gameID]
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func (r *GameRepository) AddNotifiedPeriods(_ context.Context, gameID string, periods []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[gameID]; !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	set := r.notified[gameID]
	if set == nil {
		set = make(map[int]struct{})
		r.notified[gameID] = set
	}
	for _, p := range periods {
		set[p] = struct{}{}
	}
	return nil
}

func (r *GameRepository) update(gameID string, fn func(*game.Game)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.items[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	fn(&g)
	r.items[gameID] = g
	return nil
}

func cloneGame(g game.Game) game.Game {
	g.RowNumbers = append([]int(nil), g.RowNumbers...)
	g.ColNumbers = append([]int(nil), g.ColNumbers...)
	return g
}
