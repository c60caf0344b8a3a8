package scorefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mlooney/gridpool/internal/domain/scoreboard"
	"github.com/mlooney/gridpool/internal/platform/resilience"
)

const scoreboardPayload = `{
  "events": [
    {
      "id": "401547321",
      "name": "Eagles at Chiefs",
      "status": {"period": 3, "type": {"state": "in", "completed": false}},
      "competitions": [
        {
          "competitors": [
            {
              "homeAway": "home",
              "score": "21",
              "team": {"displayName": "Kansas City Chiefs"},
              "linescores": [{"value": 7}, {"value": 14}]
            },
            {
              "homeAway": "away",
              "score": "17",
              "team": {"displayName": "Philadelphia Eagles"},
              "linescores": [{"value": 10}, {"value": 7}]
            }
          ]
        }
      ]
    },
    {
      "id": "broken",
      "status": {"period": 1, "type": {"state": "in"}},
      "competitions": [{"competitors": [{"homeAway": "home", "score": "x", "team": {"displayName": "A"}}]}]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Timeout: time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})
	return client, server
}

func TestClient_Scoreboard_ProjectsEvents(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nfl/scoreboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(scoreboardPayload))
	})

	snapshots, err := client.Scoreboard(context.Background(), "nfl")
	if err != nil {
		t.Fatalf("scoreboard failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected malformed event skipped, got %d snapshots", len(snapshots))
	}

	snap := snapshots[0]
	if snap.EventID != "401547321" {
		t.Fatalf("unexpected event id %s", snap.EventID)
	}
	if snap.State != scoreboard.StateInProgress {
		t.Fatalf("unexpected state %s", snap.State)
	}
	if snap.CurrentPeriod != 3 {
		t.Fatalf("unexpected period %d", snap.CurrentPeriod)
	}
	if snap.Home.Name != "Kansas City Chiefs" || snap.Home.Score != 21 {
		t.Fatalf("unexpected home side %+v", snap.Home)
	}
	// Linescores arrive as per-period points and must become cumulative.
	if len(snap.Home.Periods) != 2 || snap.Home.Periods[0] != 7 || snap.Home.Periods[1] != 21 {
		t.Fatalf("unexpected home period history %v", snap.Home.Periods)
	}
	if len(snap.Away.Periods) != 2 || snap.Away.Periods[1] != 17 {
		t.Fatalf("unexpected away period history %v", snap.Away.Periods)
	}
}

func TestClient_Scoreboard_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(scoreboardPayload))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    time.Second,
		MaxRetries: 2,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})

	if _, err := client.Scoreboard(context.Background(), "nfl"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestClient_Scoreboard_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.Scoreboard(context.Background(), "nfl"); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected single request, got %d", got)
	}
}
