package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/infrastructure/repository/memory"
	"github.com/mlooney/gridpool/internal/platform/id"
	"github.com/mlooney/gridpool/internal/usecase"
)

type emptyFeed struct{}

func (emptyFeed) Scoreboard(context.Context, string) ([]scoreboard.Snapshot, error) {
	return nil, nil
}

// fixedFeed serves the same snapshots on every fetch.
type fixedFeed struct {
	snapshots []scoreboard.Snapshot
}

func (f fixedFeed) Scoreboard(_ context.Context, league string) ([]scoreboard.Snapshot, error) {
	out := make([]scoreboard.Snapshot, 0, len(f.snapshots))
	for _, snap := range f.snapshots {
		if snap.League == league {
			out = append(out, snap)
		}
	}
	return out, nil
}

const testAdminToken = "test-admin-token"

type routerEnv struct {
	router http.Handler
	games  *memory.GameRepository
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newRouterEnv(t, emptyFeed{}).router
}

func newRouterEnv(t *testing.T, feed usecase.ScoreFeed) routerEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	games := memory.NewGameRepository()
	claims := memory.NewClaimRepository()
	participants := memory.NewParticipantRepository()
	requests := memory.NewRequestRepository()
	messages := memory.NewMessageRepository()

	notify, err := usecase.NewNotificationDispatcher(2, usecase.NopNotifier{}, logger)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	t.Cleanup(notify.Close)

	lock := usecase.NewLockService(games, claims, notify, logger)
	numbers := usecase.NewNumbersService(games, notify, logger)
	gridSvc := usecase.NewGridService(games, claims, participants, lock, numbers, notify, logger)
	gameSvc := usecase.NewGameService(games, claims, participants, requests, messages, id.NewRandomGenerator(), notify, func(string) bool { return true }, logger)
	participantSvc := usecase.NewParticipantService(games, claims, participants, requests, lock, notify, logger)
	messageSvc := usecase.NewMessageService(games, participants, messages, notify, logger)
	scoreboardSvc := usecase.NewScoreboardService(feed, 30*time.Second, []string{"nfl"}, logger)
	quarterSvc := usecase.NewQuarterService(games, claims, scoreboardSvc, notify, logger)

	handler := NewHandler(gameSvc, gridSvc, lock, numbers, participantSvc, messageSvc, scoreboardSvc, quarterSvc, logger)
	return routerEnv{
		router: NewRouter(handler, logger, []string{"*"}, testAdminToken),
		games:  games,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, body, adminToken string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("expected apiVersion 2.0, got %q", envelope.APIVersion)
	}
	return envelope
}

func dataField(t *testing.T, envelope googleResponseEnvelope) map[string]any {
	t.Helper()

	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", envelope.Data)
	}
	return data
}

func TestRouter_CreateJoinClaimFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/games",
		`{"name":"Office Pool","homeTeam":"Chiefs","awayTeam":"Eagles","customCode":"POOL01"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	created := dataField(t, decodeEnvelope(t, rec))
	if created["id"] != "POOL01" {
		t.Fatalf("expected game id POOL01, got %v", created["id"])
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/games/POOL01/join", `{"player":"alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/games/POOL01/claims",
		`{"row":4,"col":7,"player":"alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("claim: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/games/POOL01/claims",
		`{"row":4,"col":7,"player":"alice"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat claim: expected 409, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Status != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS error, got %+v", envelope.Error)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/games/POOL01", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get game: expected 200, got %d", rec.Code)
	}
	snapshot := dataField(t, decodeEnvelope(t, rec))
	if got := snapshot["claimCount"]; got != float64(1) {
		t.Fatalf("expected claimCount 1, got %v", got)
	}
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/games",
		`{"name":"Office Pool","homeTeam":"Chiefs","awayTeam":"Eagles","customCode":"POOL02"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/games/POOL02/lock", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("lock without token: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/games/POOL02/lock", "", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("lock with token: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/games/POOL02/full", "", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin snapshot: expected 200, got %d", rec.Code)
	}
	snapshot := dataField(t, decodeEnvelope(t, rec))
	if got := snapshot["locked"]; got != true {
		t.Fatalf("expected locked snapshot, got %v", got)
	}
}

func TestRouter_QuarterViewRecordsOutcome(t *testing.T) {
	env := newRouterEnv(t, fixedFeed{snapshots: []scoreboard.Snapshot{{
		EventID:       "EV100",
		League:        "nfl",
		Home:          scoreboard.Side{Name: "Chiefs", Score: 10, Periods: []int{7}},
		Away:          scoreboard.Side{Name: "Eagles", Score: 3, Periods: []int{3}},
		CurrentPeriod: 2,
		State:         scoreboard.StateInProgress,
		FetchedAt:     time.Now(),
	}}})

	rec := doJSON(t, env.router, http.MethodPost, "/v1/games",
		`{"name":"Office Pool","homeTeam":"Chiefs","awayTeam":"Eagles","customCode":"POOL09","league":"nfl","eventId":"EV100"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, env.router, http.MethodPost, "/v1/games/POOL09/numbers/release", "", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("release numbers: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// An ordinary view, no admin token, must record the finished quarter.
	rec = doJSON(t, env.router, http.MethodGet, "/v1/games/POOL09/quarters", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("quarters view: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	outcomes, ok := envelope.Data.([]any)
	if !ok || len(outcomes) != 1 {
		t.Fatalf("expected one outcome, got %v", envelope.Data)
	}
	outcome := outcomes[0].(map[string]any)
	if outcome["label"] != "Q1" || outcome["homeDigit"] != float64(7) || outcome["awayDigit"] != float64(3) {
		t.Fatalf("unexpected outcome: %v", outcome)
	}

	notified, err := env.games.NotifiedPeriods(context.Background(), "POOL09")
	if err != nil {
		t.Fatalf("notified periods: %v", err)
	}
	if len(notified) != 1 || notified[0] != 1 {
		t.Fatalf("expected period 1 recorded, got %v", notified)
	}

	// A repeat view reports the same outcome without recording again.
	rec = doJSON(t, env.router, http.MethodGet, "/v1/games/POOL09/quarters", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat view: expected 200, got %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if outcomes, ok := envelope.Data.([]any); !ok || len(outcomes) != 1 {
		t.Fatalf("expected one outcome on repeat view, got %v", envelope.Data)
	}
	notified, err = env.games.NotifiedPeriods(context.Background(), "POOL09")
	if err != nil {
		t.Fatalf("notified periods: %v", err)
	}
	if len(notified) != 1 {
		t.Fatalf("expected period 1 recorded once, got %v", notified)
	}
}

func TestRouter_UnknownGameIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/games/NOPE42", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND error, got %+v", envelope.Error)
	}
}
