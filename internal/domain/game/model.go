package game

import (
	"fmt"
	"strings"
	"time"
)

// Game is one squares pool: a 10x10 grid tied to a single sporting event.
type Game struct {
	ID              string
	Name            string
	HomeTeam        string // column axis
	AwayTeam        string // row axis
	IsComplete      bool
	NumbersReleased bool
	IsLocked        bool
	LockAt          time.Time // zero means no scheduled auto-lock
	League          string
	EventID         string
	RowNumbers      []int // empty until generated, then a permutation of 0..9
	ColNumbers      []int
	MaxClaims       int // 0 = unlimited
	WebhookURL      string
	CreatedAt       time.Time
}

const (
	GridSize = 10
	IDLength = 6
)

func (g Game) Validate() error {
	if len(g.ID) != IDLength {
		return fmt.Errorf("game id must be %d characters", IDLength)
	}
	for _, r := range g.ID {
		if !isUpperAlnum(r) {
			return fmt.Errorf("game id must be uppercase alphanumeric")
		}
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("game name is required")
	}
	if strings.TrimSpace(g.HomeTeam) == "" || strings.TrimSpace(g.AwayTeam) == "" {
		return fmt.Errorf("both team labels are required")
	}
	if g.MaxClaims < 0 {
		return fmt.Errorf("max claims cannot be negative")
	}
	return nil
}

// HasNumbers reports whether both digit assignments have been generated.
func (g Game) HasNumbers() bool {
	return len(g.RowNumbers) == GridSize && len(g.ColNumbers) == GridSize
}

// EffectiveLocked is the lock state as of now, counting a due auto-lock
// that has not been materialized yet.
func (g Game) EffectiveLocked(now time.Time) bool {
	if g.IsLocked {
		return true
	}
	return !g.LockAt.IsZero() && !now.Before(g.LockAt)
}

func isUpperAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
