package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlooney/gridpool/internal/domain/game"
)

// NumbersService owns the one-time digit assignment of a game. Numbers
// are generated lazily, on grid completion or administrative release,
// and are immutable once persisted.
type NumbersService struct {
	gameRepo game.Repository
	notify   *NotificationDispatcher
	logger   *slog.Logger
}

func NewNumbersService(gameRepo game.Repository, notify *NotificationDispatcher, logger *slog.Logger) *NumbersService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NumbersService{gameRepo: gameRepo, notify: notify, logger: logger}
}

// Generate returns the game's row and column assignments, creating them
// on first need. Racing generators are resolved by a conditional write:
// the loser discards its freshly shuffled pair and reads the winner's.
func (s *NumbersService) Generate(ctx context.Context, gameID string) (rowNumbers, colNumbers []int, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NumbersService.Generate")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.HasNumbers() {
		return g.RowNumbers, g.ColNumbers, nil
	}

	rows, err := game.NewAssignment()
	if err != nil {
		return nil, nil, fmt.Errorf("generate row assignment: %w", err)
	}
	cols, err := game.NewAssignment()
	if err != nil {
		return nil, nil, fmt.Errorf("generate column assignment: %w", err)
	}

	won, err := s.gameRepo.SetNumbers(ctx, gameID, rows, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("persist assignments: %w", err)
	}
	if won {
		return rows, cols, nil
	}

	// Another generator landed first: its pair is the permanent one.
	g, found, err = s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("reread game: %w", err)
	}
	if !found || !g.HasNumbers() {
		return nil, nil, fmt.Errorf("lost assignment race but no assignment persisted for game %s", gameID)
	}
	return g.RowNumbers, g.ColNumbers, nil
}

// Release generates the assignments if needed and makes them visible to
// players.
func (s *NumbersService) Release(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NumbersService.Release")
	defer span.End()

	if _, _, err := s.Generate(ctx, gameID); err != nil {
		return err
	}
	if err := s.gameRepo.SetNumbersReleased(ctx, gameID); err != nil {
		return fmt.Errorf("mark released: %w", err)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err == nil && found {
		s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Numbers have been released for '%s'!", g.Name))
		s.notify.DispatchDefault(fmt.Sprintf("Numbers RELEASED for '%s' (ID: %s)", g.Name, g.ID))
	}
	return nil
}
