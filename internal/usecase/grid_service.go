package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/domain/participant"
)

const fullGrid = game.GridSize * game.GridSize

// GridService is the claim engine: it owns who gets which cell and the
// completion side effects when the last cell is taken.
type GridService struct {
	gameRepo        game.Repository
	claimRepo       grid.Repository
	participantRepo participant.Repository
	lock            *LockService
	numbers         *NumbersService
	notify          *NotificationDispatcher
	logger          *slog.Logger
}

func NewGridService(
	gameRepo game.Repository,
	claimRepo grid.Repository,
	participantRepo participant.Repository,
	lock *LockService,
	numbers *NumbersService,
	notify *NotificationDispatcher,
	logger *slog.Logger,
) *GridService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GridService{
		gameRepo:        gameRepo,
		claimRepo:       claimRepo,
		participantRepo: participantRepo,
		lock:            lock,
		numbers:         numbers,
		notify:          notify,
		logger:          logger,
	}
}

// Claim binds playerName to (row, col). The storage layer's conditional
// insert is the arbiter under contention: of any number of concurrent
// claims for the same cell, exactly one succeeds.
func (s *GridService) Claim(ctx context.Context, gameID string, row, col int, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GridService.Claim")
	defer span.End()

	playerName = strings.TrimSpace(playerName)
	if playerName == "" || playerName == grid.SentinelOwner {
		return fmt.Errorf("%w: player name", ErrInvalidInput)
	}
	if !grid.ValidCoordinate(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, row, col)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	locked, err := s.lock.Status(ctx, gameID)
	if err != nil {
		return err
	}
	if locked {
		return ErrGameLocked
	}

	p, found, err := s.participantRepo.Get(ctx, gameID, playerName)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: player %q has not joined game %s", ErrUnauthorized, playerName, gameID)
	}
	if p.IsBanned {
		return fmt.Errorf("%w: player %q is banned", ErrUnauthorized, playerName)
	}

	if allowed := p.Allowance(g.MaxClaims); allowed > 0 {
		held, err := s.claimRepo.CountByOwner(ctx, gameID, playerName)
		if err != nil {
			return fmt.Errorf("count claims: %w", err)
		}
		if held >= allowed {
			return fmt.Errorf("%w: %d of %d squares", ErrQuotaExceeded, held, allowed)
		}
	}

	inserted, err := s.claimRepo.Insert(ctx, gameID, row, col, playerName)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	if !inserted {
		return ErrAlreadyClaimed
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("'%s' claimed row %d, col %d in '%s'", playerName, row, col, g.Name))

	// The claim stood; a failed completion side effect must not undo it.
	if err := s.checkCompletion(ctx, g); err != nil {
		s.logger.WarnContext(ctx, "completion check failed after claim",
			"game_id", gameID, "error", err)
	}
	return nil
}

// checkCompletion fires the one-time full-grid side effects: numbers are
// generated and the game is marked complete.
func (s *GridService) checkCompletion(ctx context.Context, g game.Game) error {
	count, err := s.claimRepo.Count(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	if count < fullGrid {
		return nil
	}

	if _, _, err := s.numbers.Generate(ctx, g.ID); err != nil {
		return err
	}
	if err := s.gameRepo.SetComplete(ctx, g.ID, true); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Grid is FULL for '%s'! All 100 squares claimed.", g.Name))
	s.notify.DispatchDefault(fmt.Sprintf("Grid is FULL for '%s' (ID: %s)", g.Name, g.ID))
	return nil
}

// Remove clears a cell (administrative). Removing from a full grid
// reopens completion.
func (s *GridService) Remove(ctx context.Context, gameID string, row, col int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GridService.Remove")
	defer span.End()

	if !grid.ValidCoordinate(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, row, col)
	}
	if _, found, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return fmt.Errorf("get game: %w", err)
	} else if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	if err := s.claimRepo.Delete(ctx, gameID, row, col); err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	return s.rederiveCompletion(ctx, gameID)
}

func (s *GridService) rederiveCompletion(ctx context.Context, gameID string) error {
	count, err := s.claimRepo.Count(ctx, gameID)
	if err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	if count < fullGrid {
		if err := s.gameRepo.SetComplete(ctx, gameID, false); err != nil {
			return fmt.Errorf("clear completion: %w", err)
		}
	}
	return nil
}

// GridSnapshot is the rendering layer's view of a game.
type GridSnapshot struct {
	Game       game.Game
	Cells      []grid.Cell
	ClaimCount int
	Locked     bool
}

// Snapshot returns the current grid. The digit assignments are blanked
// unless released, so hosts cannot leak them early; includeUnreleased
// is the administrative override.
func (s *GridService) Snapshot(ctx context.Context, gameID string, includeUnreleased bool) (GridSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GridService.Snapshot")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return GridSnapshot{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return GridSnapshot{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	locked, err := s.lock.Status(ctx, gameID)
	if err != nil {
		return GridSnapshot{}, err
	}
	if locked {
		// Materialization may have voided cells since the first read.
		g, _, err = s.gameRepo.GetByID(ctx, gameID)
		if err != nil {
			return GridSnapshot{}, fmt.Errorf("reread game: %w", err)
		}
	}

	cells, err := s.claimRepo.List(ctx, gameID)
	if err != nil {
		return GridSnapshot{}, fmt.Errorf("list claims: %w", err)
	}

	if !g.NumbersReleased && !includeUnreleased {
		g.RowNumbers = nil
		g.ColNumbers = nil
	}

	return GridSnapshot{
		Game:       g,
		Cells:      cells,
		ClaimCount: len(cells),
		Locked:     locked,
	}, nil
}
