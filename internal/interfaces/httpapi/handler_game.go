package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/usecase"
)

type createGameRequest struct {
	Name       string    `json:"name" validate:"required,max=60"`
	HomeTeam   string    `json:"homeTeam" validate:"required,max=40"`
	AwayTeam   string    `json:"awayTeam" validate:"required,max=40"`
	CustomCode string    `json:"customCode"`
	League     string    `json:"league"`
	EventID    string    `json:"eventId"`
	LockAt     time.Time `json:"lockAt"`
	MaxClaims  int       `json:"maxClaims" validate:"gte=0"`
	WebhookURL string    `json:"webhookUrl"`
}

type gameDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	HomeTeam        string `json:"homeTeam"`
	AwayTeam        string `json:"awayTeam"`
	IsComplete      bool   `json:"isComplete"`
	NumbersReleased bool   `json:"numbersReleased"`
	IsLocked        bool   `json:"isLocked"`
	LockAt          string `json:"lockAt,omitempty"`
	League          string `json:"league,omitempty"`
	EventID         string `json:"eventId,omitempty"`
	RowNumbers      []int  `json:"rowNumbers,omitempty"`
	ColNumbers      []int  `json:"colNumbers,omitempty"`
	MaxClaims       int    `json:"maxClaims"`
	CreatedAt       string `json:"createdAt"`
}

type cellDTO struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Owner     string `json:"owner"`
	Voided    bool   `json:"voided"`
	ClaimedAt string `json:"claimedAt"`
}

type gridDTO struct {
	Game       gameDTO             `json:"game"`
	Cells      []cellDTO           `json:"cells"`
	ClaimCount int                 `json:"claimCount"`
	Locked     bool                `json:"locked"`
	Quarters   []quarterOutcomeDTO `json:"quarters,omitempty"`
}

func gameToDTO(g game.Game) gameDTO {
	dto := gameDTO{
		ID:              g.ID,
		Name:            g.Name,
		HomeTeam:        g.HomeTeam,
		AwayTeam:        g.AwayTeam,
		IsComplete:      g.IsComplete,
		NumbersReleased: g.NumbersReleased,
		IsLocked:        g.IsLocked,
		League:          g.League,
		EventID:         g.EventID,
		RowNumbers:      g.RowNumbers,
		ColNumbers:      g.ColNumbers,
		MaxClaims:       g.MaxClaims,
		CreatedAt:       g.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !g.LockAt.IsZero() {
		dto.LockAt = g.LockAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func cellsToDTO(cells []grid.Cell) []cellDTO {
	out := make([]cellDTO, 0, len(cells))
	for _, cell := range cells {
		out = append(out, cellDTO{
			Row:       cell.Row,
			Col:       cell.Col,
			Owner:     cell.Owner,
			Voided:    cell.IsSentinel(),
			ClaimedAt: cell.ClaimedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGame")
	defer span.End()

	var req createGameRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.gameService.Create(ctx, usecase.CreateGameInput{
		Name:       req.Name,
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		CustomCode: req.CustomCode,
		League:     req.League,
		EventID:    req.EventID,
		LockAt:     req.LockAt,
		MaxClaims:  req.MaxClaims,
		WebhookURL: req.WebhookURL,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create game failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameToDTO(created))
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.gameService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]gameDTO, 0, len(games))
	for _, g := range games {
		dto := gameToDTO(g)
		if !g.NumbersReleased {
			dto.RowNumbers, dto.ColNumbers = nil, nil
		}
		out = append(out, dto)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.getGameSnapshot(w, r, false)
}

// GetGameAdmin includes unreleased digit assignments.
func (h *Handler) GetGameAdmin(w http.ResponseWriter, r *http.Request) {
	h.getGameSnapshot(w, r, true)
}

func (h *Handler) getGameSnapshot(w http.ResponseWriter, r *http.Request, includeUnreleased bool) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	snapshot, err := h.gridService.Snapshot(ctx, gameIDFromPath(r), includeUnreleased)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dto := gridDTO{
		Game:       gameToDTO(snapshot.Game),
		Cells:      cellsToDTO(snapshot.Cells),
		ClaimCount: snapshot.ClaimCount,
		Locked:     snapshot.Locked,
	}
	if includeUnreleased {
		// Admin snapshots report already-recorded outcomes without
		// triggering another resolution pass.
		outcomes, err := h.quarterService.Results(ctx, gameIDFromPath(r))
		if err != nil {
			h.logger.WarnContext(ctx, "recorded outcomes unavailable",
				"game_id", gameIDFromPath(r), "error", err)
		} else if len(outcomes) > 0 {
			dto.Quarters = outcomesToDTO(outcomes)
		}
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGame")
	defer span.End()

	if err := h.gameService.Teardown(ctx, gameIDFromPath(r)); err != nil {
		h.logger.ErrorContext(ctx, "delete game failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
