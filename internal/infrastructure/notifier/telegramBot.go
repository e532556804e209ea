package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot отправляет HTML-сообщения владельцу напрямую через Bot API.
type TelegramBot struct {
	bot messageSender
}

func NewTelegramBot(bot messageSender) *TelegramBot {
	return &TelegramBot{bot: bot}
}

// Notify отправляет сообщение и возвращает его id.
func (b *TelegramBot) Notify(ctx context.Context, chatID int64, text string) (int64, error) {
	msg := tu.Message(
		tu.ID(chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	sent, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	return int64(sent.MessageID), nil
}
