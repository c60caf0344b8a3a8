package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/domain/scoreboard"
)

// PeriodOutcome is the resolved winner (or absence of one) for a single
// completed scoring period.
type PeriodOutcome struct {
	Period    int
	Label     string
	HomeScore int
	AwayScore int
	HomeDigit int
	AwayDigit int
	Row       int // 0 when the away digit is absent from the row assignment
	Col       int // 0 when the home digit is absent from the column assignment
	Winner    string
}

// Resolution separates outcomes recorded by this call from outcomes a
// prior call already recorded.
type Resolution struct {
	Newly []PeriodOutcome
	Known []PeriodOutcome
}

// All merges known and newly recorded outcomes in period order.
func (r Resolution) All() []PeriodOutcome {
	merged := make([]PeriodOutcome, 0, len(r.Known)+len(r.Newly))
	merged = append(merged, r.Known...)
	merged = append(merged, r.Newly...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Period < merged[j].Period })
	return merged
}

// QuarterService turns completed periods into recorded outcomes. A
// period is recorded at most once per game; the record is persisted
// before any notification is sent, so a crash can at worst repeat a
// notification, never a record.
type QuarterService struct {
	gameRepo   game.Repository
	claimRepo  grid.Repository
	scoreboard *ScoreboardService
	notify     *NotificationDispatcher
	logger     *slog.Logger
}

func NewQuarterService(
	gameRepo game.Repository,
	claimRepo grid.Repository,
	scoreboard *ScoreboardService,
	notify *NotificationDispatcher,
	logger *slog.Logger,
) *QuarterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuarterService{
		gameRepo:   gameRepo,
		claimRepo:  claimRepo,
		scoreboard: scoreboard,
		notify:     notify,
		logger:     logger,
	}
}

// Resolve computes outcomes for every completed period not yet recorded
// for the game. Feed trouble is absorbed: an unreachable feed resolves
// nothing and returns no error, so callers can poll freely.
func (s *QuarterService) Resolve(ctx context.Context, gameID string) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuarterService.Resolve")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return Resolution{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return Resolution{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.EventID == "" || !g.HasNumbers() {
		return Resolution{}, nil
	}

	snap, err := s.scoreboard.LookupEvent(ctx, g.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "quarter resolution skipped, event unavailable",
			"game_id", gameID, "event_id", g.EventID, "error", err)
		return Resolution{}, nil
	}

	notified, err := s.gameRepo.NotifiedPeriods(ctx, gameID)
	if err != nil {
		return Resolution{}, fmt.Errorf("load notified periods: %w", err)
	}
	seen := make(map[int]bool, len(notified))
	for _, p := range notified {
		seen[p] = true
	}

	var res Resolution
	var pending []int
	for _, p := range snap.CompletedPeriods() {
		outcome, err := s.outcomeFor(ctx, g, snap, p)
		if err != nil {
			return Resolution{}, err
		}
		if seen[p] {
			res.Known = append(res.Known, outcome)
			continue
		}
		res.Newly = append(res.Newly, outcome)
		pending = append(pending, p)
	}

	if len(pending) == 0 {
		return res, nil
	}

	// Record first. Notifications only go out once the periods are
	// durably marked, so retries never double-record.
	if err := s.gameRepo.AddNotifiedPeriods(ctx, gameID, pending); err != nil {
		return Resolution{}, fmt.Errorf("record notified periods: %w", err)
	}

	for _, outcome := range res.Newly {
		msg := formatOutcome(g, outcome)
		s.notify.Dispatch(g.WebhookURL, msg)
		s.notify.DispatchDefault(msg)
	}

	return res, nil
}

// Results reports outcomes for already-recorded periods without
// recording or notifying anything.
func (s *QuarterService) Results(ctx context.Context, gameID string) ([]PeriodOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuarterService.Results")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.EventID == "" || !g.HasNumbers() {
		return nil, nil
	}

	notified, err := s.gameRepo.NotifiedPeriods(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load notified periods: %w", err)
	}
	if len(notified) == 0 {
		return nil, nil
	}
	sort.Ints(notified)

	snap, err := s.scoreboard.LookupEvent(ctx, g.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	outcomes := make([]PeriodOutcome, 0, len(notified))
	for _, p := range notified {
		if !snap.PeriodComplete(p) {
			continue
		}
		outcome, err := s.outcomeFor(ctx, g, snap, p)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *QuarterService) outcomeFor(ctx context.Context, g game.Game, snap scoreboard.Snapshot, period int) (PeriodOutcome, error) {
	homeScore := cumulativeAt(snap.Home, period)
	awayScore := cumulativeAt(snap.Away, period)

	outcome := PeriodOutcome{
		Period:    period,
		Label:     scoreboard.PeriodLabel(period),
		HomeScore: homeScore,
		AwayScore: awayScore,
		HomeDigit: homeScore % 10,
		AwayDigit: awayScore % 10,
	}
	outcome.Col = game.DigitIndex(g.ColNumbers, outcome.HomeDigit)
	outcome.Row = game.DigitIndex(g.RowNumbers, outcome.AwayDigit)
	if outcome.Row == 0 || outcome.Col == 0 {
		return outcome, nil
	}

	cell, found, err := s.claimRepo.Get(ctx, g.ID, outcome.Row, outcome.Col)
	if err != nil {
		return PeriodOutcome{}, fmt.Errorf("get cell (%d,%d): %w", outcome.Row, outcome.Col, err)
	}
	if found && !cell.IsSentinel() {
		outcome.Winner = cell.Owner
	}
	return outcome, nil
}

// cumulativeAt returns the side's cumulative score at the end of period p,
// falling back to the running total when linescores are truncated.
func cumulativeAt(side scoreboard.Side, p int) int {
	if p >= 1 && p <= len(side.Periods) {
		return side.Periods[p-1]
	}
	return side.Score
}

func formatOutcome(g game.Game, o PeriodOutcome) string {
	if o.Winner == "" {
		return fmt.Sprintf("%s (%s %d - %s %d) in '%s': no winner for this square.",
			o.Label, g.HomeTeam, o.HomeScore, g.AwayTeam, o.AwayScore, g.Name)
	}
	return fmt.Sprintf("%s winner in '%s': %s! (%s %d - %s %d, square row %d / col %d)",
		o.Label, g.Name, o.Winner, g.HomeTeam, o.HomeScore, g.AwayTeam, o.AwayScore, o.Row, o.Col)
}
