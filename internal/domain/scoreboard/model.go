package scoreboard

import (
	"fmt"
	"time"
)

// State is the coarse lifecycle of an event as reported upstream.
type State string

const (
	StateScheduled  State = "scheduled"
	StateInProgress State = "in_progress"
	StateFinal      State = "final"
)

// Side is one competitor of an event. Periods holds the cumulative score
// at the end of each completed or in-progress period, in period order.
type Side struct {
	Name    string
	Score   int
	Periods []int
}

// Snapshot is a transient view of one event, normalized from whatever the
// upstream feed returned. It lives only inside the score cache window.
type Snapshot struct {
	EventID       string
	League        string
	Home          Side
	Away          Side
	CurrentPeriod int
	State         State
	FetchedAt     time.Time
}

// PeriodComplete reports whether period p has finished according to the
// snapshot: play has moved past it, or the event is final and p was played.
func (s Snapshot) PeriodComplete(p int) bool {
	if p < 1 {
		return false
	}
	if s.CurrentPeriod > p {
		return true
	}
	return s.State == StateFinal && p <= len(s.Home.Periods) && p <= len(s.Away.Periods)
}

// CompletedPeriods lists every finished period in ascending order.
func (s Snapshot) CompletedPeriods() []int {
	limit := len(s.Home.Periods)
	if len(s.Away.Periods) < limit {
		limit = len(s.Away.Periods)
	}
	out := make([]int, 0, limit)
	for p := 1; p <= limit; p++ {
		if s.PeriodComplete(p) {
			out = append(out, p)
		}
	}
	return out
}

// PeriodLabel names a football scoring period: Q1..Q4, then OT, 2OT, ...
func PeriodLabel(p int) string {
	switch {
	case p >= 1 && p <= 4:
		return fmt.Sprintf("Q%d", p)
	case p == 5:
		return "OT"
	case p > 5:
		return fmt.Sprintf("%dOT", p-4)
	default:
		return fmt.Sprintf("P%d", p)
	}
}
