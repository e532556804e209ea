package value

import (
	"fmt"
	"strings"
)

// Sender аккаунт, от имени которого совершается покупка.
type Sender string

const (
	SenderBot     Sender = "bot"
	SenderUserbot Sender = "userbot"
)

func ParseSender(s string) (Sender, error) {
	switch sender := Sender(strings.ToLower(strings.TrimSpace(s))); sender {
	case SenderBot, SenderUserbot:
		return sender, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSender, s)
	}
}

func (s Sender) String() string {
	return string(s)
}
