package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
)

// LockService governs whether a game still accepts claims. Explicit lock
// and unlock are administrative actions; a scheduled auto-lock is
// materialized lazily by the next status read, there is no timer.
type LockService struct {
	gameRepo  game.Repository
	claimRepo grid.Repository
	notify    *NotificationDispatcher
	logger    *slog.Logger
	now       func() time.Time

	gameLocks sync.Map // gameID -> *sync.Mutex
}

func NewLockService(
	gameRepo game.Repository,
	claimRepo grid.Repository,
	notify *NotificationDispatcher,
	logger *slog.Logger,
) *LockService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockService{
		gameRepo:  gameRepo,
		claimRepo: claimRepo,
		notify:    notify,
		logger:    logger,
		now:       time.Now,
	}
}

// gameMutex returns the per-game mutex shared by every bulk operation
// (lock, unlock, auto-lock materialization).
func (s *LockService) gameMutex(gameID string) *sync.Mutex {
	mu, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Status reports whether the game is locked, materializing a due
// auto-lock first. Claims must consult this at the instant of the claim.
func (s *LockService) Status(ctx context.Context, gameID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.Status")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return false, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	if g.IsLocked {
		return true, nil
	}
	if !g.EffectiveLocked(s.now()) {
		return false, nil
	}

	// Auto-lock instant has passed but the lock is not persisted yet.
	if err := s.materialize(ctx, gameID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LockService) materialize(ctx context.Context, gameID string) error {
	mu := s.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()

	// A concurrent observer may have materialized first.
	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("reread game: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.IsLocked {
		return nil
	}

	if err := s.lockLocked(ctx, g); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "auto-lock materialized", "game_id", gameID)
	return nil
}

// Lock closes the game: every unclaimed cell is voided, the grid is
// marked complete, and the lock flag is persisted. Idempotent.
func (s *LockService) Lock(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.Lock")
	defer span.End()

	mu := s.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.IsLocked {
		return nil
	}

	if err := s.lockLocked(ctx, g); err != nil {
		return err
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Game '%s' is locked. Unclaimed squares are now void.", g.Name))
	s.notify.DispatchDefault(fmt.Sprintf("Game '%s' LOCKED (ID: %s)", g.Name, g.ID))
	return nil
}

// lockLocked performs the fill + complete + lock sequence. Callers hold
// the per-game mutex.
func (s *LockService) lockLocked(ctx context.Context, g game.Game) error {
	if err := s.fillEmptyWithSentinel(ctx, g.ID); err != nil {
		return err
	}
	if err := s.gameRepo.SetComplete(ctx, g.ID, true); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	if err := s.gameRepo.SetLocked(ctx, g.ID, true, false); err != nil {
		return fmt.Errorf("persist lock: %w", err)
	}
	return nil
}

// fillEmptyWithSentinel voids every unowned cell. The conditional insert
// never overwrites: a real claim racing the fill keeps its cell.
func (s *LockService) fillEmptyWithSentinel(ctx context.Context, gameID string) error {
	for row := 1; row <= game.GridSize; row++ {
		for col := 1; col <= game.GridSize; col++ {
			if _, err := s.claimRepo.Insert(ctx, gameID, row, col, grid.SentinelOwner); err != nil {
				return fmt.Errorf("void cell (%d,%d): %w", row, col, err)
			}
		}
	}
	return nil
}

// Unlock reopens the game: voided cells are released, the scheduled
// auto-lock is cleared, and completion is re-derived from what remains.
func (s *LockService) Unlock(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.Unlock")
	defer span.End()

	mu := s.gameMutex(gameID)
	mu.Lock()
	defer mu.Unlock()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if !g.IsLocked && g.LockAt.IsZero() {
		return nil
	}

	if _, err := s.claimRepo.DeleteByOwner(ctx, gameID, grid.SentinelOwner); err != nil {
		return fmt.Errorf("remove voided cells: %w", err)
	}
	if err := s.gameRepo.SetLocked(ctx, gameID, false, true); err != nil {
		return fmt.Errorf("clear lock: %w", err)
	}

	count, err := s.claimRepo.Count(ctx, gameID)
	if err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	if err := s.gameRepo.SetComplete(ctx, gameID, count >= game.GridSize*game.GridSize); err != nil {
		return fmt.Errorf("re-derive completion: %w", err)
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Game '%s' is open again. Players can claim squares.", g.Name))
	s.notify.DispatchDefault(fmt.Sprintf("Game '%s' UNLOCKED (ID: %s)", g.Name, g.ID))
	return nil
}
