package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidSender    = errors.New("invalid sender")
)

type RecipientKind int

const (
	RecipientUnknown RecipientKind = iota
	RecipientUser
	RecipientChannel
)

func (k RecipientKind) String() string {
	switch k {
	case RecipientUser:
		return "user"
	case RecipientChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// Recipient получатель подарка: либо пользователь, либо канал.
// Создаётся только через конструкторы, поэтому одновременно оба варианта
// заданы быть не могут.
type Recipient struct {
	kind    RecipientKind
	userID  int64
	channel string
}

func UserRecipient(userID int64) (Recipient, error) {
	if userID <= 0 {
		return Recipient{}, fmt.Errorf("%w: user id %d", ErrInvalidRecipient, userID)
	}

	return Recipient{kind: RecipientUser, userID: userID}, nil
}

// ChannelRecipient принимает @username канала или числовой chat id.
// Username без @ дополняется им.
func ChannelRecipient(ref string) (Recipient, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" || ref == "@" {
		return Recipient{}, fmt.Errorf("%w: empty channel", ErrInvalidRecipient)
	}

	if _, err := strconv.ParseInt(ref, 10, 64); err != nil && !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}

	return Recipient{kind: RecipientChannel, channel: ref}, nil
}

// ParseRecipient разбирает строку: положительное число это пользователь,
// всё остальное (@name, -100...) это канал.
func ParseRecipient(s string) (Recipient, error) {
	s = strings.TrimSpace(s)

	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return UserRecipient(id)
	}

	return ChannelRecipient(s)
}

func (r Recipient) Kind() RecipientKind {
	return r.kind
}

func (r Recipient) IsZero() bool {
	return r.kind == RecipientUnknown
}

func (r Recipient) UserID() (int64, bool) {
	return r.userID, r.kind == RecipientUser
}

func (r Recipient) Channel() (string, bool) {
	return r.channel, r.kind == RecipientChannel
}

// ChannelChatID возвращает числовой id канала, если канал задан числом.
func (r Recipient) ChannelChatID() (int64, bool) {
	if r.kind != RecipientChannel {
		return 0, false
	}

	id, err := strconv.ParseInt(r.channel, 10, 64)

	return id, err == nil
}

func (r Recipient) String() string {
	switch r.kind {
	case RecipientUser:
		return strconv.FormatInt(r.userID, 10)
	case RecipientChannel:
		return r.channel
	default:
		return ""
	}
}

func (r Recipient) Equal(other Recipient) bool {
	return r == other
}
