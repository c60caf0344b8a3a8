package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/grid"
)

type cellKey struct {
	row int
	col int
}

// ClaimRepository keeps cell ownership per game behind a single mutex,
// which makes insert-if-absent naturally atomic.
type ClaimRepository struct {
	mu    sync.Mutex
	cells map[string]map[cellKey]grid.Cell
	now   func() time.Time
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{
		cells: make(map[string]map[cellKey]grid.Cell),
		now:   time.Now,
	}
}

func (r *ClaimRepository) Insert(_ context.Context, gameID string, row, col int, owner string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cells := r.cells[gameID]
	if cells == nil {
		cells = make(map[cellKey]grid.Cell)
		r.cells[gameID] = cells
	}

	key := cellKey{row: row, col: col}
	if _, taken := cells[key]; taken {
		return false, nil
	}
	cells[key] = grid.Cell{
		GameID:    gameID,
		Row:       row,
		Col:       col,
		Owner:     owner,
		ClaimedAt: r.now(),
	}
	return true, nil
}

func (r *ClaimRepository) Delete(_ context.Context, gameID string, row, col int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cells[gameID], cellKey{row: row, col: col})
	return nil
}

func (r *ClaimRepository) DeleteByOwner(_ context.Context, gameID, owner string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, cell := range r.cells[gameID] {
		if cell.Owner == owner {
			delete(r.cells[gameID], key)
			removed++
		}
	}
	return removed, nil
}

func (r *ClaimRepository) DeleteByGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cells, gameID)
	return nil
}

func (r *ClaimRepository) Get(_ context.Context, gameID string, row, col int) (grid.Cell, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cell, ok := r.cells[gameID][cellKey{row: row, col: col}]
	return cell, ok, nil
}

func (r *ClaimRepository) List(_ context.Context, gameID string) ([]grid.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]grid.Cell, 0, len(r.cells[gameID]))
	for _, cell := range r.cells[gameID] {
		out = append(out, cell)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

func (r *ClaimRepository) Count(_ context.Context, gameID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cells[gameID]), nil
}

func (r *ClaimRepository) CountByOwner(_ context.Context, gameID, owner string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, cell := range r.cells[gameID] {
		if cell.Owner == owner {
			count++
		}
	}
	return count, nil
}
