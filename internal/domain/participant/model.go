package participant

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 20

// Participant is one named player within a game.
type Participant struct {
	GameID      string
	Name        string
	IsBanned    bool
	BonusClaims int
	JoinedAt    time.Time
}

// Allowance is the number of claims the participant may hold given the
// game's base quota. Zero means unlimited.
func (p Participant) Allowance(baseQuota int) int {
	if baseQuota <= 0 {
		return 0
	}
	return baseQuota + p.BonusClaims
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("player name must be %d characters or less", maxNameLength)
	}
	return nil
}

// RequestStatus is the lifecycle of an extra-squares request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

// SquareRequest is a participant's ask for claims beyond their allowance.
type SquareRequest struct {
	ID          int64
	GameID      string
	Name        string
	Status      RequestStatus
	RequestedAt time.Time
}
