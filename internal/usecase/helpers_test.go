package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/participant"
	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/infrastructure/repository/memory"
	"github.com/mlooney/gridpool/internal/platform/id"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingNotifier captures messages synchronously for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) NotifyDefault(_ context.Context, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

// stubFeed serves canned snapshots per league and counts calls.
type stubFeed struct {
	mu        sync.Mutex
	snapshots map[string][]scoreboard.Snapshot
	err       error
	calls     int
}

func (f *stubFeed) Scoreboard(_ context.Context, league string) ([]scoreboard.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots[league], nil
}

func (f *stubFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	games        *memory.GameRepository
	claims       *memory.ClaimRepository
	participants *memory.ParticipantRepository
	requests     *memory.RequestRepository
	messages     *memory.MessageRepository

	notify      *NotificationDispatcher
	lock        *LockService
	numbers     *NumbersService
	grid        *GridService
	game        *GameService
	participant *ParticipantService
	message     *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testLogger()
	notify, err := NewNotificationDispatcher(2, NopNotifier{}, logger)
	if err != nil {
		t.Fatalf("NewNotificationDispatcher: %v", err)
	}
	t.Cleanup(notify.Close)

	env := &testEnv{
		games:        memory.NewGameRepository(),
		claims:       memory.NewClaimRepository(),
		participants: memory.NewParticipantRepository(),
		requests:     memory.NewRequestRepository(),
		messages:     memory.NewMessageRepository(),
		notify:       notify,
	}

	env.lock = NewLockService(env.games, env.claims, notify, logger)
	env.numbers = NewNumbersService(env.games, notify, logger)
	env.grid = NewGridService(env.games, env.claims, env.participants, env.lock, env.numbers, notify, logger)
	env.game = NewGameService(env.games, env.claims, env.participants, env.requests, env.messages,
		id.NewRandomGenerator(), notify, func(string) bool { return true }, logger)
	env.participant = NewParticipantService(env.games, env.claims, env.participants, env.requests, env.lock, notify, logger)
	env.message = NewMessageService(env.games, env.participants, env.messages, notify, logger)
	return env
}

// seedGame stores a ready-to-use game and returns it.
func (e *testEnv) seedGame(t *testing.T, gameID string, mutate func(*game.Game)) game.Game {
	t.Helper()

	g := game.Game{
		ID:        gameID,
		Name:      "Test Pool",
		HomeTeam:  "Home",
		AwayTeam:  "Away",
		CreatedAt: time.Now(),
	}
	if mutate != nil {
		mutate(&g)
	}
	if err := e.games.Create(context.Background(), g); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

// seedPlayer joins a participant directly through the repository.
func (e *testEnv) seedPlayer(t *testing.T, gameID, name string) {
	t.Helper()

	created, err := e.participants.Create(context.Background(), participant.Participant{
		GameID:   gameID,
		Name:     name,
		JoinedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed player: %v", err)
	}
	if !created {
		t.Fatalf("seed player: %s already exists", name)
	}
}
