package usecase

import (
	"context"
	"testing"

	"github.com/mlooney/gridpool/internal/domain/game"
)

func TestGenerateProducesPermutations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "NMAAAA", nil)

	rows, cols, err := env.numbers.Generate(ctx, "NMAAAA")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !game.ValidAssignment(rows) {
		t.Fatalf("row assignment not a permutation: %v", rows)
	}
	if !game.ValidAssignment(cols) {
		t.Fatalf("column assignment not a permutation: %v", cols)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "NMBBBB", nil)

	rows1, cols1, err := env.numbers.Generate(ctx, "NMBBBB")
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	rows2, cols2, err := env.numbers.Generate(ctx, "NMBBBB")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	for i := range rows1 {
		if rows1[i] != rows2[i] || cols1[i] != cols2[i] {
			t.Fatalf("regeneration changed assignments: %v/%v vs %v/%v", rows1, cols1, rows2, cols2)
		}
	}
}

func TestReleaseMakesNumbersVisible(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.seedGame(t, "NMCCCC", nil)

	if err := env.numbers.Release(ctx, "NMCCCC"); err != nil {
		t.Fatalf("release: %v", err)
	}

	g, _, err := env.games.GetByID(ctx, "NMCCCC")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !g.NumbersReleased {
		t.Fatalf("release did not set the visibility flag")
	}
	if !g.HasNumbers() {
		t.Fatalf("release did not generate assignments")
	}

	snap, err := env.grid.Snapshot(ctx, "NMCCCC", false)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.Game.HasNumbers() {
		t.Fatalf("released numbers hidden from players")
	}
}
