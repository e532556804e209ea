package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
)

type fakeStarGiftAPI struct {
	gifts       []tg.StarGiftClass
	catalogHits int
	sendErr     error
	formPrice   int64
	forms       []*tg.PaymentsGetPaymentFormRequest
	paid        []*tg.PaymentsSendStarsFormRequest
	balance     int64
}

func (f *fakeStarGiftAPI) PaymentsGetStarGifts(context.Context, int) (tg.PaymentsStarGiftsClass, error) {
	f.catalogHits++

	return &tg.PaymentsStarGifts{Gifts: f.gifts}, nil
}

func (f *fakeStarGiftAPI) PaymentsGetPaymentForm(
	_ context.Context,
	request *tg.PaymentsGetPaymentFormRequest,
) (tg.PaymentsPaymentFormClass, error) {
	f.forms = append(f.forms, request)

	return &tg.PaymentsPaymentFormStarGift{
		FormID: 777,
		Invoice: tg.Invoice{
			Currency: "XTR",
			Prices:   []tg.LabeledPrice{{Label: "gift", Amount: f.formPrice}},
		},
	}, nil
}

func (f *fakeStarGiftAPI) PaymentsSendStarsForm(
	_ context.Context,
	request *tg.PaymentsSendStarsFormRequest,
) (tg.PaymentsPaymentResultClass, error) {
	f.paid = append(f.paid, request)

	if f.sendErr != nil {
		return nil, f.sendErr
	}

	return &tg.PaymentsPaymentResult{Updates: &tg.Updates{}}, nil
}

func (f *fakeStarGiftAPI) PaymentsGetStarsStatus(
	context.Context,
	*tg.PaymentsGetStarsStatusRequest,
) (*tg.PaymentsStarsStatus, error) {
	return &tg.PaymentsStarsStatus{Balance: &tg.StarsAmount{Amount: f.balance}}, nil
}

func (f *fakeStarGiftAPI) ContactsResolveUsername(
	_ context.Context,
	request *tg.ContactsResolveUsernameRequest,
) (*tg.ContactsResolvedPeer, error) {
	if request.Username != "giftdrops" {
		return nil, errors.New("USERNAME_NOT_OCCUPIED")
	}

	return &tg.ContactsResolvedPeer{
		Peer:  &tg.PeerChannel{ChannelID: 55},
		Chats: []tg.ChatClass{&tg.Channel{ID: 55, AccessHash: 99}},
	}, nil
}

func (f *fakeStarGiftAPI) UsersGetUsers(_ context.Context, id []tg.InputUserClass) ([]tg.UserClass, error) {
	input := id[0].(*tg.InputUser) //nolint:forcetypeassert

	return []tg.UserClass{&tg.User{ID: input.UserID, AccessHash: 11}}, nil
}

func (f *fakeStarGiftAPI) ChannelsGetChannels(_ context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error) {
	input := id[0].(*tg.InputChannel) //nolint:forcetypeassert

	return &tg.MessagesChats{Chats: []tg.ChatClass{&tg.Channel{ID: input.ChannelID, AccessHash: 12}}}, nil
}

func starGift(id, stars int64, total, remains int) *tg.StarGift {
	g := &tg.StarGift{ID: id, Stars: stars, Sticker: &tg.Document{ID: id * 10}}
	if total > 0 {
		g.SetAvailabilityTotal(total)
		g.SetAvailabilityRemains(remains)
		g.Limited = true
	}

	return g
}

func readyClient(api *fakeStarGiftAPI) *Client {
	c := newClient(api)
	c.markReady(1000)

	return c
}

func TestQueryNotReady(t *testing.T) {
	rq := require.New(t)

	_, err := newClient(&fakeStarGiftAPI{}).Query(context.Background(), entity.ItemFilter{})
	rq.ErrorIs(err, ErrNotReady)

	err = newClient(&fakeStarGiftAPI{}).Purchase(context.Background(), entity.PurchaseRequest{ItemID: "1"})
	rq.ErrorIs(err, ErrNotReady)

	_, err = newClient(&fakeStarGiftAPI{}).StarBalance(context.Background())
	rq.ErrorIs(err, ErrNotReady)
}

func TestQueryCatalog(t *testing.T) {
	rq := require.New(t)
	soldOut := starGift(4, 700, 3000, 0)
	soldOut.SoldOut = true

	api := &fakeStarGiftAPI{gifts: []tg.StarGiftClass{
		starGift(1, 100, 2000, 10),
		starGift(2, 900, 5000, 1),
		starGift(3, 500, 0, 0),
		soldOut,
		&tg.StarGiftUnique{ID: 5},
	}}
	c := readyClient(api)
	filter := entity.ItemFilter{MinPrice: 1, MaxPrice: 1000, MinSupply: 1, MaxSupply: 10000}

	items, err := c.Query(context.Background(), filter)
	rq.NoError(err)
	rq.Equal([]entity.Item{
		{ID: "2", Price: 900, Supply: 5000, Remaining: 1, AssetRef: "20"},
		{ID: "1", Price: 100, Supply: 2000, Remaining: 10, AssetRef: "10"},
	}, items)

	_, err = c.Query(context.Background(), filter)
	rq.NoError(err)
	rq.Equal(1, api.catalogHits)
}

func TestPurchase(t *testing.T) {
	self, err := value.UserRecipient(1000)
	require.NoError(t, err)

	friend, err := value.UserRecipient(42)
	require.NoError(t, err)

	channel, err := value.ChannelRecipient("giftdrops")
	require.NoError(t, err)

	numeric, err := value.ChannelRecipient("-1000000000077")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		recipient value.Recipient
		peer      tg.InputPeerClass
	}{
		{name: "self", recipient: self, peer: &tg.InputPeerSelf{}},
		{name: "user", recipient: friend, peer: &tg.InputPeerUser{UserID: 42, AccessHash: 11}},
		{name: "channel username", recipient: channel, peer: &tg.InputPeerChannel{ChannelID: 55, AccessHash: 99}},
		{name: "channel id", recipient: numeric, peer: &tg.InputPeerChannel{ChannelID: 77, AccessHash: 12}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			api := &fakeStarGiftAPI{formPrice: 50}
			c := readyClient(api)

			err := c.Purchase(context.Background(), entity.PurchaseRequest{ItemID: "123", Recipient: tc.recipient, Price: 50})
			rq.NoError(err)

			expected := &tg.InputInvoiceStarGift{Peer: tc.peer, GiftID: 123}
			rq.Len(api.forms, 1)
			rq.Equal(expected, api.forms[0].Invoice)
			rq.Len(api.paid, 1)
			rq.Equal(int64(777), api.paid[0].FormID)
		})
	}
}

func TestPurchaseFailure(t *testing.T) {
	rq := require.New(t)
	api := &fakeStarGiftAPI{sendErr: errors.New("BALANCE_TOO_LOW")}
	c := readyClient(api)
	recipient, err := value.UserRecipient(1000)
	rq.NoError(err)

	rq.Error(c.Purchase(context.Background(), entity.PurchaseRequest{ItemID: "123", Recipient: recipient}))
	rq.Error(c.Purchase(context.Background(), entity.PurchaseRequest{ItemID: "abc", Recipient: recipient}))
	rq.Len(api.paid, 1)
}

func TestPurchasePriceChanged(t *testing.T) {
	rq := require.New(t)
	api := &fakeStarGiftAPI{formPrice: 75, gifts: []tg.StarGiftClass{starGift(123, 50, 100, 10)}}
	c := readyClient(api)
	recipient, err := value.UserRecipient(1000)
	rq.NoError(err)

	_, err = c.Query(context.Background(), entity.ItemFilter{MinPrice: 1, MaxPrice: 100, MinSupply: 1, MaxSupply: 1000})
	rq.NoError(err)
	rq.Equal(1, api.catalogHits)

	err = c.Purchase(context.Background(), entity.PurchaseRequest{ItemID: "123", Recipient: recipient, Price: 50})
	rq.ErrorIs(err, ErrPriceChanged)
	rq.Len(api.forms, 1)
	rq.Empty(api.paid)

	_, err = c.Query(context.Background(), entity.ItemFilter{MinPrice: 1, MaxPrice: 100, MinSupply: 1, MaxSupply: 1000})
	rq.NoError(err)
	rq.Equal(2, api.catalogHits)
}

func TestStarBalance(t *testing.T) {
	rq := require.New(t)

	balance, err := readyClient(&fakeStarGiftAPI{balance: 4200}).StarBalance(context.Background())
	rq.NoError(err)
	rq.Equal(int64(4200), balance)
}
