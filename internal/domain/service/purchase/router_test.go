package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/errcodes"
)

type fakeExecutor struct {
	err   error
	ready bool
	calls []entity.PurchaseRequest
}

func (f *fakeExecutor) Purchase(_ context.Context, req entity.PurchaseRequest) error {
	f.calls = append(f.calls, req)

	return f.err
}

func (f *fakeExecutor) Ready() bool {
	return f.ready
}

type plainExecutor struct{}

func (plainExecutor) Purchase(context.Context, entity.PurchaseRequest) error { return nil }

type fakeEvents struct {
	events []entity.PurchaseEvent
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, event entity.PurchaseEvent) error {
	f.events = append(f.events, event)

	return f.err
}

func TestRouterAvailable(t *testing.T) {
	rq := require.New(t)

	router := NewRouter().
		WithExecutor(value.SenderBot, plainExecutor{}).
		WithExecutor(value.SenderUserbot, &fakeExecutor{ready: false})

	rq.True(router.Available(value.SenderBot))
	rq.False(router.Available(value.SenderUserbot))
	rq.False(NewRouter().Available(value.SenderBot))
}

func TestRouterPurchase(t *testing.T) {
	recipient, err := value.UserRecipient(7)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		sender      value.Sender
		executorErr error
		expectErr   error
		events      int
	}{
		{name: "success", sender: value.SenderBot, events: 1},
		{name: "failure", sender: value.SenderBot, executorErr: errors.New("BALANCE_TOO_LOW"), events: 1},
		{name: "no executor", sender: value.SenderUserbot, expectErr: ErrSenderUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			executor := &fakeExecutor{err: tc.executorErr, ready: true}
			events := &fakeEvents{err: errors.New("broker down")}

			router := NewRouter().WithExecutor(value.SenderBot, executor).WithEvents(events)
			router.now = func() time.Time { return now }

			err := router.Purchase(context.Background(), "p1", entity.PurchaseRequest{
				RequestedBy: 1,
				Sender:      tc.sender,
				ItemID:      "g1",
				Recipient:   recipient,
				Price:       100,
			})

			switch {
			case tc.expectErr != nil:
				rq.ErrorIs(err, tc.expectErr)
			case tc.executorErr != nil:
				rq.ErrorIs(err, tc.executorErr)

				code, ok := domain.GetCode(err)
				rq.True(ok)
				rq.Equal(errcodes.PurchaseFailed, code)
			default:
				rq.NoError(err)
			}

			rq.Len(events.events, tc.events)

			if tc.events > 0 {
				rq.Equal(entity.PurchaseEvent{
					UserID:    1,
					ProfileID: "p1",
					ItemID:    "g1",
					Price:     100,
					Recipient: "7",
					Sender:    "bot",
					Success:   tc.executorErr == nil,
					At:        now,
				}, events.events[0])
			}
		})
	}
}
