package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mlooney/gridpool/internal/usecase"
)

type Handler struct {
	gameService        *usecase.GameService
	gridService        *usecase.GridService
	lockService        *usecase.LockService
	numbersService     *usecase.NumbersService
	participantService *usecase.ParticipantService
	messageService     *usecase.MessageService
	scoreboardService  *usecase.ScoreboardService
	quarterService     *usecase.QuarterService
	logger             *slog.Logger
	validator          *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	gridService *usecase.GridService,
	lockService *usecase.LockService,
	numbersService *usecase.NumbersService,
	participantService *usecase.ParticipantService,
	messageService *usecase.MessageService,
	scoreboardService *usecase.ScoreboardService,
	quarterService *usecase.QuarterService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		gameService:        gameService,
		gridService:        gridService,
		lockService:        lockService,
		numbersService:     numbersService,
		participantService: participantService,
		messageService:     messageService,
		scoreboardService:  scoreboardService,
		quarterService:     quarterService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func gameIDFromPath(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("gameID")))
}

func playerFromPath(r *http.Request) (string, error) {
	player := strings.TrimSpace(r.PathValue("player"))
	if player == "" {
		return "", fmt.Errorf("%w: player path segment is required", usecase.ErrInvalidInput)
	}
	return player, nil
}
