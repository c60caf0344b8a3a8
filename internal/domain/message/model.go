package message

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxLength = 500

type Sender string

const (
	SenderPlayer Sender = "player"
	SenderHost   Sender = "host"
)

// Message is one entry of a (game, player) chat thread with the host.
type Message struct {
	ID         int64
	GameID     string
	PlayerName string
	Body       string
	Sender     Sender
	SentAt     time.Time
}

func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("message is required")
	}
	if utf8.RuneCountInString(body) > maxLength {
		return fmt.Errorf("message must be %d characters or less", maxLength)
	}
	return nil
}
