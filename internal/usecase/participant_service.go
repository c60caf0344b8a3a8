package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/domain/participant"
)

// Bonus granted on approval when the game has no base quota.
const unlimitedBonusGrant = 5

// ParticipantService handles joining, moderation and the extra-squares
// request workflow.
type ParticipantService struct {
	gameRepo        game.Repository
	claimRepo       grid.Repository
	participantRepo participant.Repository
	requestRepo     participant.RequestRepository
	lock            *LockService
	notify          *NotificationDispatcher
	logger          *slog.Logger
	now             func() time.Time
}

func NewParticipantService(
	gameRepo game.Repository,
	claimRepo grid.Repository,
	participantRepo participant.Repository,
	requestRepo participant.RequestRepository,
	lock *LockService,
	notify *NotificationDispatcher,
	logger *slog.Logger,
) *ParticipantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipantService{
		gameRepo:        gameRepo,
		claimRepo:       claimRepo,
		participantRepo: participantRepo,
		requestRepo:     requestRepo,
		lock:            lock,
		notify:          notify,
		logger:          logger,
		now:             time.Now,
	}
}

// Join registers playerName in the game. Rejoining under the same name
// is fine; a banned name is not.
func (s *ParticipantService) Join(ctx context.Context, gameID, playerName string) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Join")
	defer span.End()

	playerName = strings.TrimSpace(playerName)
	if err := participant.ValidateName(playerName); err != nil {
		return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if playerName == grid.SentinelOwner {
		return participant.Participant{}, fmt.Errorf("%w: reserved player name", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return participant.Participant{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	locked, err := s.lock.Status(ctx, gameID)
	if err != nil {
		return participant.Participant{}, err
	}
	if locked {
		return participant.Participant{}, ErrGameLocked
	}

	p := participant.Participant{
		GameID:   gameID,
		Name:     playerName,
		JoinedAt: s.now(),
	}
	created, err := s.participantRepo.Create(ctx, p)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	if !created {
		existing, _, err := s.participantRepo.Get(ctx, gameID, playerName)
		if err != nil {
			return participant.Participant{}, fmt.Errorf("get participant: %w", err)
		}
		if existing.IsBanned {
			return participant.Participant{}, fmt.Errorf("%w: player %q is banned", ErrUnauthorized, playerName)
		}
		return existing, nil
	}

	s.notify.Dispatch(g.WebhookURL, fmt.Sprintf("'%s' joined '%s'", playerName, g.Name))
	return p, nil
}

func (s *ParticipantService) List(ctx context.Context, gameID string) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.List")
	defer span.End()

	if _, found, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return s.participantRepo.List(ctx, gameID)
}

// Ban marks the player banned and strips every claim they hold. Losing
// claims can reopen a completed grid.
func (s *ParticipantService) Ban(ctx context.Context, gameID, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Ban")
	defer span.End()

	g, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}

	if err := s.participantRepo.SetBanned(ctx, gameID, p.Name, true); err != nil {
		return fmt.Errorf("ban participant: %w", err)
	}
	removed, err := s.claimRepo.DeleteByOwner(ctx, gameID, p.Name)
	if err != nil {
		return fmt.Errorf("delete claims: %w", err)
	}
	if removed > 0 {
		count, err := s.claimRepo.Count(ctx, gameID)
		if err != nil {
			return fmt.Errorf("count claims: %w", err)
		}
		if count < fullGrid {
			if err := s.gameRepo.SetComplete(ctx, gameID, false); err != nil {
				return fmt.Errorf("clear completion: %w", err)
			}
		}
	}

	s.logger.InfoContext(ctx, "participant banned",
		"game_id", gameID, "player", p.Name, "claims_removed", removed)
	s.notify.Dispatch(g.WebhookURL,
		fmt.Sprintf("'%s' was banned from '%s'; %d square(s) released.", p.Name, g.Name, removed))
	return nil
}

func (s *ParticipantService) Unban(ctx context.Context, gameID, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Unban")
	defer span.End()

	_, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	if err := s.participantRepo.SetBanned(ctx, gameID, p.Name, false); err != nil {
		return fmt.Errorf("unban participant: %w", err)
	}
	return nil
}

func (s *ParticipantService) GrantBonus(ctx context.Context, gameID, playerName string, bonus int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.GrantBonus")
	defer span.End()

	if bonus <= 0 {
		return fmt.Errorf("%w: bonus must be positive", ErrInvalidInput)
	}
	_, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	if err := s.participantRepo.AddBonusClaims(ctx, gameID, p.Name, bonus); err != nil {
		return fmt.Errorf("grant bonus: %w", err)
	}
	return nil
}

// RequestSquares files an extra-squares request. One pending request per
// player per game.
func (s *ParticipantService) RequestSquares(ctx context.Context, gameID, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.RequestSquares")
	defer span.End()

	g, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	if p.IsBanned {
		return fmt.Errorf("%w: player %q is banned", ErrUnauthorized, p.Name)
	}

	created, err := s.requestRepo.CreatePending(ctx, gameID, p.Name)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if !created {
		return fmt.Errorf("%w: request already pending", ErrInvalidInput)
	}

	s.notify.Dispatch(g.WebhookURL,
		fmt.Sprintf("'%s' requested more squares in '%s'", p.Name, g.Name))
	return nil
}

func (s *ParticipantService) PendingRequests(ctx context.Context, gameID string) ([]participant.SquareRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.PendingRequests")
	defer span.End()

	if _, found, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return s.requestRepo.ListPending(ctx, gameID)
}

// ApproveRequest grants another round of squares: the game's base quota,
// or a fixed batch when the game is unlimited.
func (s *ParticipantService) ApproveRequest(ctx context.Context, gameID, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.ApproveRequest")
	defer span.End()

	g, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	pending, err := s.requestRepo.HasPending(ctx, gameID, p.Name)
	if err != nil {
		return fmt.Errorf("check request: %w", err)
	}
	if !pending {
		return fmt.Errorf("%w: no pending request", ErrNotFound)
	}

	grant := g.MaxClaims
	if grant <= 0 {
		grant = unlimitedBonusGrant
	}
	if err := s.participantRepo.AddBonusClaims(ctx, gameID, p.Name, grant); err != nil {
		return fmt.Errorf("grant bonus: %w", err)
	}
	if err := s.requestRepo.ResolvePending(ctx, gameID, p.Name, participant.RequestApproved); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}

	s.notify.Dispatch(g.WebhookURL,
		fmt.Sprintf("'%s' was granted %d more square(s) in '%s'", p.Name, grant, g.Name))
	return nil
}

func (s *ParticipantService) DenyRequest(ctx context.Context, gameID, playerName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.DenyRequest")
	defer span.End()

	_, p, err := s.gameAndParticipant(ctx, gameID, playerName)
	if err != nil {
		return err
	}
	pending, err := s.requestRepo.HasPending(ctx, gameID, p.Name)
	if err != nil {
		return fmt.Errorf("check request: %w", err)
	}
	if !pending {
		return fmt.Errorf("%w: no pending request", ErrNotFound)
	}
	if err := s.requestRepo.ResolvePending(ctx, gameID, p.Name, participant.RequestDenied); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	return nil
}

func (s *ParticipantService) gameAndParticipant(ctx context.Context, gameID, playerName string) (game.Game, participant.Participant, error) {
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
