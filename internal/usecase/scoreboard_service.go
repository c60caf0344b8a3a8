package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/platform/cache"
	"github.com/sourcegraph/conc"
)

// ScoreFeed is the upstream scoreboard source.
type ScoreFeed interface {
	Scoreboard(ctx context.Context, league string) ([]scoreboard.Snapshot, error)
}

// ScoreboardService caches feed responses per league. A feed outage
// serves the last good response instead of failing readers.
type ScoreboardService struct {
	feed    ScoreFeed
	store   *cache.Store
	leagues []string
	logger  *slog.Logger
}

func NewScoreboardService(feed ScoreFeed, ttl time.Duration, leagues []string, logger *slog.Logger) *ScoreboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if len(leagues) == 0 {
		leagues = []string{"nfl", "college-football"}
	}
	return &ScoreboardService{
		feed:    feed,
		store:   cache.NewStore(ttl),
		leagues: leagues,
		logger:  logger,
	}
}

// Leagues returns the leagues this service scans.
func (s *ScoreboardService) Leagues() []string {
	out := make([]string, len(s.leagues))
	copy(out, s.leagues)
	return out
}

// Fetch returns the league scoreboard, served from cache while fresh.
// When the feed fails and a stale response exists, the stale response
// wins over an error.
func (s *ScoreboardService) Fetch(ctx context.Context, league string) ([]scoreboard.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.Fetch")
	defer span.End()

	league = strings.TrimSpace(league)
	if league == "" {
		return nil, fmt.Errorf("%w: league", ErrInvalidInput)
	}

	key := "scoreboard:" + league
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		snapshots, loadErr := s.feed.Scoreboard(ctx, league)
		if loadErr != nil {
			return nil, loadErr
		}
		return snapshots, nil
	})
	if err != nil {
		if stale, ok := s.store.GetStale(ctx, key); ok {
			s.logger.WarnContext(ctx, "score feed failed, serving stale scoreboard",
				"league", league, "error", err)
			return stale.([]scoreboard.Snapshot), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	return value.([]scoreboard.Snapshot), nil
}

// LookupEvent scans every configured league concurrently for the event.
func (s *ScoreboardService) LookupEvent(ctx context.Context, eventID string) (scoreboard.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.LookupEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return scoreboard.Snapshot{}, fmt.Errorf("%w: event id", ErrInvalidInput)
	}

	var (
		mu       sync.Mutex
		match    scoreboard.Snapshot
		found    bool
		feedErrs int
	)

	var wg conc.WaitGroup
	for _, league := range s.leagues {
		league := league
		wg.Go(func() {
			snapshots, err := s.Fetch(ctx, league)
			if err != nil {
				mu.Lock()
				feedErrs++
				mu.Unlock()
				return
			}
			for _, snap := range snapshots {
				if snap.EventID == eventID {
					mu.Lock()
					if !found {
						match, found = snap, true
					}
					mu.Unlock()
					return
				}
			}
		})
	}
	wg.Wait()

	if found {
		return match, nil
	}
	if feedErrs == len(s.leagues) {
		return scoreboard.Snapshot{}, fmt.Errorf("%w: all league feeds failed", ErrFeedUnavailable)
	}
	return scoreboard.Snapshot{}, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
}
