package botapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/pkg/httpx"
	"gift_autobuy/pkg/logx"
)

// giftAPI методы Bot API, которые нужны клиенту.
type giftAPI interface {
	GetAvailableGifts(ctx context.Context) (*telego.Gifts, error)
	SendGift(ctx context.Context, params *telego.SendGiftParams) error
	GetMyStarBalance(ctx context.Context) (*telego.StarAmount, error)
}

// Client витрина, покупка и баланс через Bot API.
type Client struct {
	api              giftAPI
	includeUnlimited bool
}

// NewBot создаёт telego бота. При logRequests запросы к Bot API логируются
// с маскированием токена.
func NewBot(token string, logRequests bool, logFieldMaxLen int) (*telego.Bot, error) {
	opts := []telego.BotOption{telego.WithDiscardLogger()}

	if logRequests {
		transport := httpx.NewLoggingRoundTripper(
			http.DefaultTransport,
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
			httpx.WithLogFieldMaxLen(logFieldMaxLen),
		)

		opts = append(opts, telego.WithHTTPClient(&http.Client{Transport: transport}))
	}

	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return bot, nil
}

func NewClient(api giftAPI) *Client {
	return &Client{api: api}
}

// WithUnlimited включает в выдачу подарки без ограничения тиража.
func (c *Client) WithUnlimited(include bool) *Client {
	c.includeUnlimited = include

	return c
}

// Query возвращает доступные подарки, подходящие под фильтр, по убыванию цены.
func (c *Client) Query(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error) {
	gifts, err := c.api.GetAvailableGifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("api.GetAvailableGifts: %w", err)
	}

	items := make([]entity.Item, 0, len(gifts.Gifts))

	for _, g := range gifts.Gifts {
		item, ok := c.toItem(g)
		if !ok {
			continue
		}

		items = append(items, item)
	}

	return filter.Apply(items), nil
}

func (c *Client) toItem(g telego.Gift) (entity.Item, bool) {
	limited := g.TotalCount > 0
	if !limited && !c.includeUnlimited {
		return entity.Item{}, false
	}

	// распроданный лимитированный подарок купить нельзя
	if limited && g.RemainingCount == 0 {
		return entity.Item{}, false
	}

	return entity.Item{
		ID:        g.ID,
		Price:     int64(g.StarCount),
		Supply:    int64(g.TotalCount),
		Remaining: int64(g.RemainingCount),
		AssetRef:  g.Sticker.FileID,
	}, true
}

// Purchase отправляет подарок получателю. Ошибка Bot API означает неудачную
// покупку, подробности только в логе.
func (c *Client) Purchase(ctx context.Context, req entity.PurchaseRequest) error {
	params := &telego.SendGiftParams{GiftID: req.ItemID}

	if id, ok := req.Recipient.UserID(); ok {
		params.UserID = id
	} else if chatID, ok := req.Recipient.ChannelChatID(); ok {
		params.ChatID = tu.ID(chatID)
	} else if channel, ok := req.Recipient.Channel(); ok {
		params.ChatID = tu.Username(channel)
	} else {
		return fmt.Errorf("empty recipient for gift %s", req.ItemID)
	}

	if err := c.api.SendGift(ctx, params); err != nil {
		logger(ctx).Warn(
			"bot gift purchase failed",
			slog.String(logx.FieldItemID, req.ItemID),
			slog.Int64(logx.FieldPrice, req.Price),
			slog.String(logx.FieldRecipient, req.Recipient.String()),
			logx.Error(err),
		)

		return fmt.Errorf("api.SendGift: %w", err)
	}

	return nil
}

func (c *Client) StarBalance(ctx context.Context) (int64, error) {
	amount, err := c.api.GetMyStarBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("api.GetMyStarBalance: %w", err)
	}

	return int64(amount.Amount), nil
}
