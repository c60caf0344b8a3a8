package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/mlooney/gridpool/internal/domain/participant"
	"github.com/mlooney/gridpool/internal/usecase"
)

type joinRequest struct {
	Player string `json:"player" validate:"required,max=20"`
}

type bonusRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

type participantDTO struct {
	Name        string `json:"name"`
	IsBanned    bool   `json:"isBanned"`
	BonusClaims int    `json:"bonusClaims"`
	JoinedAt    string `json:"joinedAt"`
}

type squareRequestDTO struct {
	Player      string `json:"player"`
	Status      string `json:"status"`
	RequestedAt string `json:"requestedAt"`
}

func participantToDTO(p participant.Participant) participantDTO {
	return participantDTO{
		Name:        p.Name,
		IsBanned:    p.IsBanned,
		BonusClaims: p.BonusClaims,
		JoinedAt:    p.JoinedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinGame")
	defer span.End()

	var req joinRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	joined, err := h.participantService.Join(ctx, gameIDFromPath(r), req.Player)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(joined))
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListParticipants")
	defer span.End()

	participants, err := h.participantService.List(ctx, gameIDFromPath(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]participantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) BanParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BanParticipant")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.participantService.Ban(ctx, gameIDFromPath(r), player); err != nil {
		h.logger.ErrorContext(ctx, "ban participant failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "banned"})
}

func (h *Handler) UnbanParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnbanParticipant")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.participantService.Unban(ctx, gameIDFromPath(r), player); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "unbanned"})
}

func (h *Handler) GrantBonusClaims(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GrantBonusClaims")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req bonusRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.participantService.GrantBonus(ctx, gameIDFromPath(r), player, req.Amount); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"granted": req.Amount})
}

func (h *Handler) RequestSquares(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestSquares")
	defer span.End()

	var req joinRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.participantService.RequestSquares(ctx, gameIDFromPath(r), req.Player); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "pending"})
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingRequests")
	defer span.End()

	requests, err := h.participantService.PendingRequests(ctx, gameIDFromPath(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]squareRequestDTO, 0, len(requests))
	for _, req := range requests {
		out = append(out, squareRequestDTO{
			Player:      req.Name,
			Status:      string(req.Status),
			RequestedAt: req.RequestedAt.UTC().Format(time.RFC3339),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveRequest")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.participantService.ApproveRequest(ctx, gameIDFromPath(r), player); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DenyRequest")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.participantService.DenyRequest(ctx, gameIDFromPath(r), player); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "denied"})
}
