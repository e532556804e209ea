package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/patrickmn/go-cache"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/logx"
)

const (
	defaultCatalogTTL = 50 * time.Second
	catalogKey        = "catalog"
	// channelIDShift смещение идентификаторов каналов в Bot API (-100...).
	channelIDShift = 1_000_000_000_000
)

// starGiftAPI методы MTProto, которые использует юзербот.
type starGiftAPI interface {
	PaymentsGetStarGifts(ctx context.Context, hash int) (tg.PaymentsStarGiftsClass, error)
	PaymentsGetPaymentForm(ctx context.Context, request *tg.PaymentsGetPaymentFormRequest) (tg.PaymentsPaymentFormClass, error)
	PaymentsSendStarsForm(ctx context.Context, request *tg.PaymentsSendStarsFormRequest) (tg.PaymentsPaymentResultClass, error)
	PaymentsGetStarsStatus(ctx context.Context, request *tg.PaymentsGetStarsStatusRequest) (*tg.PaymentsStarsStatus, error)
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	UsersGetUsers(ctx context.Context, id []tg.InputUserClass) ([]tg.UserClass, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)
}

// Query каталог подарков с фильтром. Каталог кэшируется на catalogTTL.
func (c *Client) Query(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}

	items, err := c.catalogItems(ctx)
	if err != nil {
		return nil, err
	}

	return filter.Apply(items), nil
}

func (c *Client) catalogItems(ctx context.Context) ([]entity.Item, error) {
	if cached, ok := c.catalog.Get(catalogKey); ok {
		return cached.([]entity.Item), nil //nolint:forcetypeassert
	}

	items, err := c.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	c.catalog.Set(catalogKey, items, cache.DefaultExpiration)

	return items, nil
}

// fetchCatalog получение всех доступных к покупке подарков
func (c *Client) fetchCatalog(ctx context.Context) ([]entity.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resRaw, err := c.api.PaymentsGetStarGifts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch star gifts: %w", err)
	}

	var giftsInterfaces []tg.StarGiftClass

	switch res := resRaw.(type) {
	case *tg.PaymentsStarGifts:
		giftsInterfaces = res.Gifts
	case *tg.PaymentsStarGiftsNotModified:
		return []entity.Item{}, nil
	default:
		return nil, fmt.Errorf("unexpected response type: %T", resRaw)
	}

	result := make([]entity.Item, 0, len(giftsInterfaces))

	for _, gRaw := range giftsInterfaces {
		g, ok := gRaw.(*tg.StarGift)
		if !ok || g.SoldOut {
			continue
		}

		total, limited := g.GetAvailabilityTotal()
		if !limited && !c.includeUnlimited {
			continue
		}

		remains, _ := g.GetAvailabilityRemains()
		if limited && remains == 0 {
			continue
		}

		var stickerRef string
		if doc, ok := g.Sticker.(*tg.Document); ok {
			stickerRef = strconv.FormatInt(doc.ID, 10)
		}

		result = append(result, entity.Item{
			ID:        strconv.FormatInt(g.ID, 10),
			Price:     g.Stars,
			Supply:    int64(total),
			Remaining: int64(remains),
			AssetRef:  stickerRef,
		})
	}

	return result, nil
}

// Purchase покупка подарка за звёзды юзербота: платёжная форма,
// затем оплата формы.
func (c *Client) Purchase(ctx context.Context, req entity.PurchaseRequest) error {
	if !c.Ready() {
		return ErrNotReady
	}

	giftID, err := strconv.ParseInt(req.ItemID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse gift id %q: %w", req.ItemID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	peer, err := c.resolvePeer(ctx, req.Recipient)
	if err != nil {
		return err
	}

	invoice := &tg.InputInvoiceStarGift{Peer: peer, GiftID: giftID}

	formRaw, err := c.api.PaymentsGetPaymentForm(ctx, &tg.PaymentsGetPaymentFormRequest{Invoice: invoice})
	if err != nil {
		return fmt.Errorf("api.PaymentsGetPaymentForm: %w", err)
	}

	form, ok := formRaw.(*tg.PaymentsPaymentFormStarGift)
	if !ok {
		return fmt.Errorf("unexpected payment form type: %T", formRaw)
	}

	if price := formPrice(form); price != req.Price {
		// каталог устарел
		c.catalog.Delete(catalogKey)

		return fmt.Errorf("%w: expected %d, form %d", ErrPriceChanged, req.Price, price)
	}

	if _, err = c.api.PaymentsSendStarsForm(ctx, &tg.PaymentsSendStarsFormRequest{
		FormID:  form.FormID,
		Invoice: invoice,
	}); err != nil {
		logger(ctx).Warn(
			"userbot gift purchase failed",
			slog.String(logx.FieldItemID, req.ItemID),
			slog.Int64(logx.FieldPrice, req.Price),
			slog.String(logx.FieldRecipient, req.Recipient.String()),
			logx.Error(err),
		)

		return fmt.Errorf("api.PaymentsSendStarsForm: %w", err)
	}

	// остаток подарка изменился
	c.catalog.Delete(catalogKey)

	return nil
}

func formPrice(form *tg.PaymentsPaymentFormStarGift) int64 {
	var total int64

	for _, p := range form.Invoice.Prices {
		total += p.Amount
	}

	return total
}

// StarBalance баланс звёзд аккаунта юзербота.
func (c *Client) StarBalance(ctx context.Context) (int64, error) {
	if !c.Ready() {
		return 0, ErrNotReady
	}

	status, err := c.api.PaymentsGetStarsStatus(ctx, &tg.PaymentsGetStarsStatusRequest{Peer: &tg.InputPeerSelf{}})
	if err != nil {
		return 0, fmt.Errorf("api.PaymentsGetStarsStatus: %w", err)
	}

	switch amount := status.Balance.(type) {
	case *tg.StarsAmount:
		return amount.Amount, nil
	default:
		return 0, fmt.Errorf("unexpected balance type: %T", status.Balance)
	}
}

func (c *Client) resolvePeer(ctx context.Context, recipient value.Recipient) (tg.InputPeerClass, error) {
	if id, ok := recipient.UserID(); ok {
		return c.resolveUser(ctx, id)
	}

	if chatID, ok := recipient.ChannelChatID(); ok {
		return c.resolveChannel(ctx, chatID)
	}

	if channel, ok := recipient.Channel(); ok {
		return c.resolveUsername(ctx, strings.TrimPrefix(channel, "@"))
	}

	return nil, fmt.Errorf("empty recipient")
}

func (c *Client) resolveUser(ctx context.Context, id int64) (tg.InputPeerClass, error) {
	if id == c.selfID {
		return &tg.InputPeerSelf{}, nil
	}

	users, err := c.api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: id}})
	if err != nil {
		return nil, fmt.Errorf("api.UsersGetUsers: %w", err)
	}

	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == id {
			return user.AsInputPeer(), nil
		}
	}

	return nil, fmt.Errorf("user %d not found", id)
}

func (c *Client) resolveChannel(ctx context.Context, chatID int64) (tg.InputPeerClass, error) {
	channelID := -chatID - channelIDShift
	if channelID <= 0 {
		return nil, fmt.Errorf("chat %d is not a channel", chatID)
	}

	res, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{ChannelID: channelID}})
	if err != nil {
		return nil, fmt.Errorf("api.ChannelsGetChannels: %w", err)
	}

	for _, ch := range res.GetChats() {
		if channel, ok := ch.(*tg.Channel); ok && channel.ID == channelID {
			return channel.AsInputPeer(), nil
		}
	}

	return nil, fmt.Errorf("channel %d not found", chatID)
}

func (c *Client) resolveUsername(ctx context.Context, username string) (tg.InputPeerClass, error) {
	resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	if err != nil {
		return nil, fmt.Errorf("api.ContactsResolveUsername: %w", err)
	}

	switch peer := resolved.Peer.(type) {
	case *tg.PeerChannel:
		for _, ch := range resolved.Chats {
			if channel, ok := ch.(*tg.Channel); ok && channel.ID == peer.ChannelID {
				return channel.AsInputPeer(), nil
			}
		}
	case *tg.PeerUser:
		for _, u := range resolved.Users {
			if user, ok := u.(*tg.User); ok && user.ID == peer.UserID {
				return user.AsInputPeer(), nil
			}
		}
	}

	return nil, fmt.Errorf("username %q not resolved", username)
}
