package httpapi

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mlooney/gridpool/internal/domain/message"
	"github.com/mlooney/gridpool/internal/usecase"
)

type sendMessageRequest struct {
	Player string `json:"player" validate:"required,max=20"`
	Body   string `json:"body" validate:"required,max=500"`
}

type replyMessageRequest struct {
	Body string `json:"body" validate:"required,max=500"`
}

type messageDTO struct {
	Player string `json:"player"`
	Body   string `json:"body"`
	Sender string `json:"sender"`
	SentAt string `json:"sentAt"`
}

func messagesToDTO(messages []message.Message) []messageDTO {
	out := make([]messageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageDTO{
			Player: m.PlayerName,
			Body:   m.Body,
			Sender: string(m.Sender),
			SentAt: m.SentAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendMessage")
	defer span.End()

	var req sendMessageRequest
	decoder := jsoniter.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.messageService.Send(ctx, gameIDFromPath(r), req.Player, req.Body); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "sent"})
}

func (h *Handler) ReplyMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReplyMessage")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req replyMessageRequest
	decoder := jsoniter.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.messageService.Reply(ctx, gameIDFromPath(r), player, req.Body); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "sent"})
}

func (h *Handler) GetMessageThread(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMessageThread")
	defer span.End()

	player, err := playerFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	thread, err := h.messageService.Thread(ctx, gameIDFromPath(r), player)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, messagesToDTO(thread))
}

func (h *Handler) ListGameMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameMessages")
	defer span.End()

	messages, err := h.messageService.ListByGame(ctx, gameIDFromPath(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, messagesToDTO(messages))
}
