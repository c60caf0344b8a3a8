package scorefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/platform/logging"
	"github.com/mlooney/gridpool/internal/platform/resilience"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football"

var errFeedTransient = crerr.New("score feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches league scoreboards from the public site API. Requests
// are deduplicated per league, retried on transient failures, and shed
// through a circuit breaker when the upstream is misbehaving.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// Scoreboard returns every event currently on the league's scoreboard,
// projected into normalized snapshots. Events whose payload is too
// malformed to score are skipped, not fatal.
func (c *Client) Scoreboard(ctx context.Context, league string) ([]scoreboard.Snapshot, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return nil, fmt.Errorf("league is required")
	}

	path := "/" + league + "/scoreboard"
	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard league=%s: %w", league, err)
	}

	fetchedAt := c.now()
	snapshots := make([]scoreboard.Snapshot, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		snap, ok := projectEvent(event, league, fetchedAt)
		if !ok {
			c.logger.WarnContext(ctx, "skipping malformed scoreboard event",
				"league", league, "event_id", event.ID)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "score feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("score feed temporarily unavailable: %w", err)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.execute(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode scoreboard payload: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFeedTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d", errFeedTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("feed status=%d", resp.StatusCode)
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func projectEvent(event eventItem, league string, fetchedAt time.Time) (scoreboard.Snapshot, bool) {
	if event.ID == "" || len(event.Competitions) == 0 {
		return scoreboard.Snapshot{}, false
	}

	var home, away *competitorItem
	for i := range event.Competitions[0].Competitors {
		competitor := &event.Competitions[0].Competitors[i]
		switch competitor.HomeAway {
		case "home":
			home = competitor
		case "away":
			away = competitor
		}
	}
	if home == nil || away == nil {
		return scoreboard.Snapshot{}, false
	}

	homeSide, ok := projectSide(*home)
	if !ok {
		return scoreboard.Snapshot{}, false
	}
	awaySide, ok := projectSide(*away)
	if !ok {
		return scoreboard.Snapshot{}, false
	}

	return scoreboard.Snapshot{
		EventID:       event.ID,
		League:        league,
		Home:          homeSide,
		Away:          awaySide,
		CurrentPeriod: event.Status.Period,
		State:         projectState(event.Status.Type.State),
		FetchedAt:     fetchedAt,
	}, true
}

func projectSide(competitor competitorItem) (scoreboard.Side, bool) {
	name := strings.TrimSpace(competitor.Team.DisplayName)
	if name == "" {
		name = strings.TrimSpace(competitor.Team.Abbreviation)
	}
	if name == "" {
		return scoreboard.Side{}, false
	}

	score := 0
	if trimmed := strings.TrimSpace(competitor.Score); trimmed != "" {
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return scoreboard.Side{}, false
		}
		score = parsed
	}

	// Linescores are per-period points; the resolver needs cumulative
	// totals at each period boundary.
	periods := make([]int, 0, len(competitor.Linescores))
	running := 0
	for _, line := range competitor.Linescores {
		running += int(line.Value)
		periods = append(periods, running)
	}

	return scoreboard.Side{Name: name, Score: score, Periods: periods}, true
}

func projectState(state string) scoreboard.State {
	switch state {
	case "in":
		return scoreboard.StateInProgress
	case "post":
		return scoreboard.StateFinal
	default:
		return scoreboard.StateScheduled
	}
}
