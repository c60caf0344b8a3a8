package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
)

func TestLockFillsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "LKAAAA", nil)
	env.seedPlayer(t, "LKAAAA", "alice")

	if err := env.grid.Claim(ctx, "LKAAAA", 3, 3, "alice"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := env.lock.Lock(ctx, "LKAAAA"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := env.lock.Lock(ctx, "LKAAAA"); err != nil {
		t.Fatalf("second lock: %v", err)
	}

	count, err := env.claims.Count(ctx, "LKAAAA")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 100 {
		t.Fatalf("want 100 cells after lock, got %d", count)
	}

	cell, found, err := env.claims.Get(ctx, "LKAAAA", 3, 3)
	if err != nil || !found {
		t.Fatalf("get claimed cell: found=%v err=%v", found, err)
	}
	if cell.Owner != "alice" {
		t.Fatalf("lock overwrote a real claim: owner=%q", cell.Owner)
	}

	voided, err := env.claims.CountByOwner(ctx, "LKAAAA", grid.SentinelOwner)
	if err != nil {
		t.Fatalf("count voided: %v", err)
	}
	if voided != 99 {
		t.Fatalf("want 99 voided cells, got %d", voided)
	}

	g, _, err := env.games.GetByID(ctx, "LKAAAA")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !g.IsLocked || !g.IsComplete {
		t.Fatalf("lock flags: locked=%v complete=%v", g.IsLocked, g.IsComplete)
	}
}

func TestUnlockRemovesOnlySentinels(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "LKBBBB", nil)
	env.seedPlayer(t, "LKBBBB", "bob")

	for col := 1; col <= 4; col++ {
		if err := env.grid.Claim(ctx, "LKBBBB", 7, col, "bob"); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	if err := env.lock.Lock(ctx, "LKBBBB"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := env.lock.Unlock(ctx, "LKBBBB"); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	count, err := env.claims.Count(ctx, "LKBBBB")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Fatalf("want the 4 real claims to survive unlock, got %d cells", count)
	}

	g, _, err := env.games.GetByID(ctx, "LKBBBB")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if g.IsLocked || g.IsComplete {
		t.Fatalf("unlock flags: locked=%v complete=%v", g.IsLocked, g.IsComplete)
	}
	if !g.LockAt.IsZero() {
		t.Fatalf("unlock kept the auto-lock schedule")
	}
}

func TestStatusMaterializesDueAutoLock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "LKCCCC", func(g *game.Game) {
		g.LockAt = time.Now().Add(time.Hour)
	})

	locked, err := env.lock.Status(ctx, "LKCCCC")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if locked {
		t.Fatalf("future auto-lock reported locked")
	}

	env.lock.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	locked, err = env.lock.Status(ctx, "LKCCCC")
	if err != nil {
		t.Fatalf("status past due: %v", err)
	}
	if !locked {
		t.Fatalf("due auto-lock not reported locked")
	}

	g, _, err := env.games.GetByID(ctx, "LKCCCC")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !g.IsLocked {
		t.Fatalf("due auto-lock not persisted")
	}
	count, err := env.claims.Count(ctx, "LKCCCC")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 100 {
		t.Fatalf("materialization skipped the sentinel fill: %d cells", count)
	}
}

func TestUnlockWithoutLockIsNoop(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "LKDDDD", nil)

	if err := env.lock.Unlock(ctx, "LKDDDD"); err != nil {
		t.Fatalf("unlock unlocked game: %v", err)
	}
}
