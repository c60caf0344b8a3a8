package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/message"
	"github.com/mlooney/gridpool/internal/domain/participant"
)

// MessageService runs the player-to-host chat threads. A copy of each
// player message is mirrored to the game webhook so hosts see it where
// they already are.
type MessageService struct {
	gameRepo        game.Repository
	participantRepo participant.Repository
	messageRepo     message.Repository
	notify          *NotificationDispatcher
	logger          *slog.Logger
	now             func() time.Time
}

func NewMessageService(
	gameRepo game.Repository,
	participantRepo participant.Repository,
	messageRepo message.Repository,
	notify *NotificationDispatcher,
	logger *slog.Logger,
) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
		notify:          notify,
		logger:          logger,
		now:             time.Now,
	}
}

// Send appends a player message to their thread.
func (s *MessageService) Send(ctx context.Context, gameID, playerName, body string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MessageService.Send")
	defer span.End()

	g, p, err := s.lookup(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	if p.IsBanned {
		return fmt.Errorf("%w: player %q is banned", ErrUnauthorized, p.Name)
	}
	if err := message.ValidateBody(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m := message.Message{
		GameID:     gameID,
		PlayerName: p.Name,
		Body:       body,
		Sender:     message.SenderPlayer,
		SentAt:     s.now(),
	}
	if err := s.messageRepo.Append(ctx, m); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("Message from '%s' in '%s': %s", p.Name, g.Name, body))
	return nil
}

// Reply appends a host message to the player's thread.
func (s *MessageService) Reply(ctx context.Context, gameID, playerName, body string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MessageService.Reply")
	defer span.End()

	_, p, err := s.lookup(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	if err := message.ValidateBody(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m := message.Message{
		GameID:     gameID,
		PlayerName: p.Name,
		Body:       body,
		Sender:     message.SenderHost,
		SentAt:     s.now(),
	}
	if err := s.messageRepo.Append(ctx, m); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Thread returns a single player's conversation, oldest first.
func (s *MessageService) Thread(ctx context.Context, gameID, playerName string) ([]message.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MessageService.Thread")
	defer span.End()

	_, p, err := s.lookup(ctx, gameID, playerName)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.ListThread(ctx, gameID, p.Name)
}

// ListByGame returns every thread of a game, for the host view.
func (s *MessageService) ListByGame(ctx context.Context, gameID string) ([]message.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MessageService.ListByGame")
	defer span.End()

	if _, found, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return s.messageRepo.ListByGame(ctx, gameID)
}

func (s *MessageService) lookup(ctx context.Context, gameID, playerName string) (game.Game, participant.Participant, error) {
	playerName = strings.TrimSpace(playerName)

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, participant.Participant{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return game.Game{}, participant.Participant{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	p, found, err := s.participantRepo.Get(ctx, gameID, playerName)
	if err != nil {
		return game.Game{}, participant.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	if !found {
		return game.Game{}, participant.Participant{}, fmt.Errorf("%w: player %q in game %s", ErrNotFound, playerName, gameID)
	}
	return g, p, nil
}
