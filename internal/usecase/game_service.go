package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/domain/message"
	"github.com/mlooney/gridpool/internal/domain/participant"
	"github.com/mlooney/gridpool/internal/platform/id"
)

var customCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// CreateGameInput carries the host's settings for a new pool.
type CreateGameInput struct {
	Name       string `validate:"required,max=60"`
	HomeTeam   string `validate:"required,max=40"`
	AwayTeam   string `validate:"required,max=40"`
	CustomCode string
	League     string
	EventID    string
	LockAt     time.Time
	MaxClaims  int `validate:"gte=0"`
	WebhookURL string
}

// GameService owns the pool lifecycle from creation to teardown.
type GameService struct {
	gameRepo        game.Repository
	claimRepo       grid.Repository
	participantRepo participant.Repository
	requestRepo     participant.RequestRepository
	messageRepo     message.Repository
	codes           id.Generator
	notify          *NotificationDispatcher
	webhookValid    func(string) bool
	logger          *slog.Logger
	now             func() time.Time
}

func NewGameService(
	gameRepo game.Repository,
	claimRepo grid.Repository,
	participantRepo participant.Repository,
	requestRepo participant.RequestRepository,
	messageRepo message.Repository,
	codes id.Generator,
	notify *NotificationDispatcher,
	webhookValid func(string) bool,
	logger *slog.Logger,
) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	if webhookValid == nil {
		webhookValid = func(string) bool { return false }
	}
	return &GameService{
		gameRepo:        gameRepo,
		claimRepo:       claimRepo,
		participantRepo: participantRepo,
		requestRepo:     requestRepo,
		messageRepo:     messageRepo,
		codes:           codes,
		notify:          notify,
		webhookValid:    webhookValid,
		logger:          logger,
		now:             time.Now,
	}
}

// Create registers a new pool. Custom codes are normalized to uppercase;
// generated codes retry on the (unlikely) collision with an existing game.
func (s *GameService) Create(ctx context.Context, in CreateGameInput) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Create")
	defer span.End()

	g := game.Game{
		Name:       strings.TrimSpace(in.Name),
		HomeTeam:   strings.TrimSpace(in.HomeTeam),
		AwayTeam:   strings.TrimSpace(in.AwayTeam),
		League:     strings.TrimSpace(in.League),
		EventID:    strings.TrimSpace(in.EventID),
		LockAt:     in.LockAt,
		MaxClaims:  in.MaxClaims,
		WebhookURL: strings.TrimSpace(in.WebhookURL),
		CreatedAt:  s.now(),
	}

	if g.WebhookURL != "" && !s.webhookValid(g.WebhookURL) {
		return game.Game{}, fmt.Errorf("%w: webhook url", ErrInvalidInput)
	}

	if code := strings.ToUpper(strings.TrimSpace(in.CustomCode)); code != "" {
		if !customCodePattern.MatchString(code) {
			return game.Game{}, fmt.Errorf("%w: game code must be %d letters or digits", ErrInvalidInput, game.IDLength)
		}
		if _, exists, err := s.gameRepo.GetByID(ctx, code); err != nil {
			return game.Game{}, fmt.Errorf("check code: %w", err)
		} else if exists {
			return game.Game{}, fmt.Errorf("%w: game code %s is taken", ErrInvalidInput, code)
		}
		g.ID = code
	} else {
		code, err := s.freshCode(ctx)
		if err != nil {
			return game.Game{}, err
		}
		g.ID = code
	}

	if err := g.Validate(); err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.gameRepo.Create(ctx, g); err != nil {
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}

	s.logger.InfoContext(ctx, "game created", "game_id", g.ID, "name", g.Name)
	s.notify.DispatchDefault(fmt.Sprintf("New game created: '%s' (ID: %s)", g.Name, g.ID))
	return g, nil
}

func (s *GameService) freshCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := s.codes.NewCode(game.IDLength)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		if _, exists, err := s.gameRepo.GetByID(ctx, code); err != nil {
			return "", fmt.Errorf("check code: %w", err)
		} else if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate code: too many collisions")
}

func (s *GameService) Get(ctx context.Context, gameID string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Get")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return game.Game{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return g, nil
}

func (s *GameService) List(ctx context.Context) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.List")
	defer span.End()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Teardown removes the pool and everything attached to it. Claims,
// participants, pending requests and message threads go with the game.
func (s *GameService) Teardown(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Teardown")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	if err := s.claimRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete claims: %w", err)
	}
	if err := s.requestRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete requests: %w", err)
	}
	if err := s.participantRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if err := s.messageRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	s.logger.InfoContext(ctx, "game deleted", "game_id", gameID)
	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Game '%s' has been deleted by the host.", g.Name))
	return nil
}
