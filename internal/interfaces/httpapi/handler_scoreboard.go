package httpapi

import (
	"net/http"
	"time"

	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/usecase"
)

type scoreboardSideDTO struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Periods []int  `json:"periods,omitempty"`
}

type scoreboardEventDTO struct {
	EventID       string            `json:"eventId"`
	League        string            `json:"league"`
	Home          scoreboardSideDTO `json:"home"`
	Away          scoreboardSideDTO `json:"away"`
	CurrentPeriod int               `json:"currentPeriod"`
	State         string            `json:"state"`
	FetchedAt     string            `json:"fetchedAt"`
}

type quarterOutcomeDTO struct {
	Period    int    `json:"period"`
	Label     string `json:"label"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	HomeDigit int    `json:"homeDigit"`
	AwayDigit int    `json:"awayDigit"`
	Row       int    `json:"row,omitempty"`
	Col       int    `json:"col,omitempty"`
	Winner    string `json:"winner,omitempty"`
}

func snapshotToDTO(s scoreboard.Snapshot) scoreboardEventDTO {
	return scoreboardEventDTO{
		EventID:       s.EventID,
		League:        s.League,
		Home:          scoreboardSideDTO{Name: s.Home.Name, Score: s.Home.Score, Periods: s.Home.Periods},
		Away:          scoreboardSideDTO{Name: s.Away.Name, Score: s.Away.Score, Periods: s.Away.Periods},
		CurrentPeriod: s.CurrentPeriod,
		State:         string(s.State),
		FetchedAt:     s.FetchedAt.UTC().Format(time.RFC3339),
	}
}

func outcomesToDTO(outcomes []usecase.PeriodOutcome) []quarterOutcomeDTO {
	out := make([]quarterOutcomeDTO, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, quarterOutcomeDTO{
			Period:    o.Period,
			Label:     o.Label,
			HomeScore: o.HomeScore,
			AwayScore: o.AwayScore,
			HomeDigit: o.HomeDigit,
			AwayDigit: o.AwayDigit,
			Row:       o.Row,
			Col:       o.Col,
			Winner:    o.Winner,
		})
	}
	return out
}

func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoreboard")
	defer span.End()

	snapshots, err := h.scoreboardService.Fetch(ctx, r.PathValue("league"))
	if err != nil {
		h.logger.ErrorContext(ctx, "scoreboard fetch failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]scoreboardEventDTO, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, snapshotToDTO(snap))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// GetQuarterResults resolves any periods that completed since the last
// look before rendering, so an ordinary view is enough to record and
// announce outcomes.
func (h *Handler) GetQuarterResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetQuarterResults")
	defer span.End()

	resolution, err := h.quarterService.Resolve(ctx, gameIDFromPath(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, outcomesToDTO(resolution.All()))
}

func (h *Handler) ResolveQuarters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveQuarters")
	defer span.End()

	resolution, err := h.quarterService.Resolve(ctx, gameIDFromPath(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "quarter resolution failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"newly": outcomesToDTO(resolution.Newly),
		"known": outcomesToDTO(resolution.Known),
	})
}
