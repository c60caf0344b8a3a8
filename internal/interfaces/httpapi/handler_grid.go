package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/mlooney/gridpool/internal/usecase"
)

type claimRequest struct {
	Row    int    `json:"row" validate:"required,min=1,max=10"`
	Col    int    `json:"col" validate:"required,min=1,max=10"`
	Player string `json:"player" validate:"required,max=20"`
}

type removeClaimRequest struct {
	Row int `json:"row" validate:"required,min=1,max=10"`
	Col int `json:"col" validate:"required,min=1,max=10"`
}

func (h *Handler) ClaimSquare(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClaimSquare")
	defer span.End()

	var req claimRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.gridService.Claim(ctx, gameIDFromPath(r), req.Row, req.Col, req.Player); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]any{
		"row":    req.Row,
		"col":    req.Col,
		"player": req.Player,
	})
}

func (h *Handler) RemoveClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveClaim")
	defer span.End()

	var req removeClaimRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.gridService.Remove(ctx, gameIDFromPath(r), req.Row, req.Col); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}
