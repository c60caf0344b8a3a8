package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mlooney/gridpool/internal/domain/scoreboard"
)

func snapshotFixture(eventID string, homePeriods, awayPeriods []int, currentPeriod int, state scoreboard.State) scoreboard.Snapshot {
	home := scoreboard.Side{Name: "Home", Periods: homePeriods}
	away := scoreboard.Side{Name: "Away", Periods: awayPeriods}
	if n := len(homePeriods); n > 0 {
		home.Score = homePeriods[n-1]
	}
	if n := len(awayPeriods); n > 0 {
		away.Score = awayPeriods[n-1]
	}
	return scoreboard.Snapshot{
		EventID:       eventID,
		League:        "nfl",
		Home:          home,
		Away:          away,
		CurrentPeriod: currentPeriod,
		State:         state,
		FetchedAt:     time.Now(),
	}
}

func TestFetchServesFromCache(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{snapshots: map[string][]scoreboard.Snapshot{
		"nfl": {snapshotFixture("401", []int{7}, []int{3}, 2, scoreboard.StateInProgress)},
	}}
	svc := NewScoreboardService(feed, 30*time.Second, []string{"nfl"}, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snaps, err := svc.Fetch(ctx, "nfl")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(snaps) != 1 || snaps[0].EventID != "401" {
			t.Fatalf("fetch %d: unexpected snapshots %+v", i, snaps)
		}
	}
	if got := feed.callCount(); got != 1 {
		t.Fatalf("want one upstream call within the TTL, got %d", got)
	}
}

func TestFetchFallsBackToStale(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{snapshots: map[string][]scoreboard.Snapshot{
		"nfl": {snapshotFixture("401", []int{7}, []int{3}, 2, scoreboard.StateInProgress)},
	}}
	svc := NewScoreboardService(feed, time.Nanosecond, []string{"nfl"}, testLogger())
	ctx := context.Background()

	if _, err := svc.Fetch(ctx, "nfl"); err != nil {
		t.Fatalf("warm fetch: %v", err)
	}

	feed.mu.Lock()
	feed.err = errors.New("upstream down")
	feed.mu.Unlock()
	time.Sleep(time.Millisecond)

	snaps, err := svc.Fetch(ctx, "nfl")
	if err != nil {
		t.Fatalf("stale fetch: %v", err)
	}
	if len(snaps) != 1 || snaps[0].EventID != "401" {
		t.Fatalf("stale fetch lost the cached scoreboard: %+v", snaps)
	}
}

func TestFetchFailsWithoutStale(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{err: errors.New("upstream down")}
	svc := NewScoreboardService(feed, 30*time.Second, []string{"nfl"}, testLogger())

	_, err := svc.Fetch(context.Background(), "nfl")
	if !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("want ErrFeedUnavailable, got %v", err)
	}
}

func TestLookupEventScansLeagues(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{snapshots: map[string][]scoreboard.Snapshot{
		"nfl": {snapshotFixture("401", []int{7}, []int{3}, 2, scoreboard.StateInProgress)},
		"college-football": {
			snapshotFixture("601", []int{14}, []int{10}, 3, scoreboard.StateInProgress),
		},
	}}
	svc := NewScoreboardService(feed, 30*time.Second, []string{"nfl", "college-football"}, testLogger())
	ctx := context.Background()

	snap, err := svc.LookupEvent(ctx, "601")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if snap.League != "college-football" {
		t.Fatalf("want college-football match, got %q", snap.League)
	}

	if _, err := svc.LookupEvent(ctx, "000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing event: want ErrNotFound, got %v", err)
	}
}
