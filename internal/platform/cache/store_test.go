package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errLoaderFailed = errors.New("loader failed")

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errors.New("unexpected value")
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiryIsClockDriven(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 18, 18, 0, 0, 0, time.UTC)
	store := NewStore(30 * time.Second).WithClock(func() time.Time { return now })

	store.Set(context.Background(), "nfl", "snapshot-1")

	if _, ok := store.Get(context.Background(), "nfl"); !ok {
		t.Fatal("expected fresh value")
	}

	now = now.Add(31 * time.Second)
	if _, ok := store.Get(context.Background(), "nfl"); ok {
		t.Fatal("expected value to be expired")
	}
	if v, ok := store.GetStale(context.Background(), "nfl"); !ok || v != "snapshot-1" {
		t.Fatalf("expected stale value to survive expiry, got %v ok=%v", v, ok)
	}
}

func TestStore_GetOrLoad_LoaderErrorKeepsStaleEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 18, 18, 0, 0, 0, time.UTC)
	store := NewStore(30 * time.Second).WithClock(func() time.Time { return now })

	store.Set(context.Background(), "nfl", "snapshot-1")
	now = now.Add(time.Minute)

	_, err := store.GetOrLoad(context.Background(), "nfl", func(context.Context) (any, error) {
		return nil, errLoaderFailed
	})
	if !errors.Is(err, errLoaderFailed) {
		t.Fatalf("expected loader error, got %v", err)
	}

	if v, ok := store.GetStale(context.Background(), "nfl"); !ok || v != "snapshot-1" {
		t.Fatalf("expected stale value after failed reload, got %v ok=%v", v, ok)
	}
}
