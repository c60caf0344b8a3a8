package grid

import "time"

// SentinelOwner marks a cell deliberately voided at lock time, distinct
// from a cell nobody ever claimed.
const SentinelOwner = "VOID"

// Cell is one owned (row, col) position of a game's grid.
type Cell struct {
	GameID    string
	Row       int
	Col       int
	Owner     string
	ClaimedAt time.Time
}

// IsSentinel reports whether the cell was voided rather than claimed.
func (c Cell) IsSentinel() bool {
	return c.Owner == SentinelOwner
}

// ValidCoordinate reports whether (row, col) addresses the 10x10 grid.
func ValidCoordinate(row, col int) bool {
	return row >= 1 && row <= 10 && col >= 1 && col <= 10
}
