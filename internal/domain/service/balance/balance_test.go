package balance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain/service/balance"
	"gift_autobuy/internal/infrastructure/persistence"
)

const userID int64 = 42

type fakeBalancer struct {
	amount int64
	err    error
	calls  int
	ready  bool
}

func (f *fakeBalancer) StarBalance(context.Context) (int64, error) {
	f.calls++

	return f.amount, f.err
}

func (f *fakeBalancer) Ready() bool {
	return f.ready
}

func TestRefreshIsCached(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := persistence.NewConfigStore(persistence.NewMemoryBackend())
	bot := &fakeBalancer{amount: 1500}

	svc := balance.NewService(store, bot).WithTTL(time.Minute)

	amount, err := svc.Refresh(ctx, userID)
	rq.NoError(err)
	rq.Equal(int64(1500), amount)

	bot.amount = 10

	amount, err = svc.Refresh(ctx, userID)
	rq.NoError(err)
	rq.Equal(int64(1500), amount)
	rq.Equal(1, bot.calls)

	amount, err = svc.ForceRefresh(ctx, userID)
	rq.NoError(err)
	rq.Equal(int64(10), amount)

	cfg, err := store.LoadValid(ctx, userID)
	rq.NoError(err)
	rq.Equal(int64(10), cfg.Balance)
}

func TestForceRefreshUserbot(t *testing.T) {
	testCases := []struct {
		name     string
		userbot  *fakeBalancer
		expected int64
	}{
		{name: "ready", userbot: &fakeBalancer{amount: 300, ready: true}, expected: 300},
		{name: "not ready", userbot: &fakeBalancer{amount: 300}, expected: 0},
		{name: "failing", userbot: &fakeBalancer{err: errors.New("flood"), ready: true}, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()
			store := persistence.NewConfigStore(persistence.NewMemoryBackend())

			_, err := balance.NewService(store, &fakeBalancer{amount: 5}).
				WithUserbot(tc.userbot).
				ForceRefresh(ctx, userID)
			rq.NoError(err)

			cfg, err := store.LoadValid(ctx, userID)
			rq.NoError(err)
			rq.Equal(int64(5), cfg.Balance)
			rq.Equal(tc.expected, cfg.Userbot.Balance)
		})
	}
}

func TestForceRefreshBotError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := persistence.NewConfigStore(persistence.NewMemoryBackend())

	_, err := balance.NewService(store, &fakeBalancer{err: errors.New("unauthorized")}).ForceRefresh(ctx, userID)
	rq.Error(err)
}
