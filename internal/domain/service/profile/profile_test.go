package profile_test

import (
	"context"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/service/profile"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/internal/infrastructure/persistence"
	"gift_autobuy/pkg/errcodes"
)

const ownerID int64 = 42

func newService() *profile.Service {
	store := persistence.NewConfigStore(persistence.NewMemoryBackend()).WithMaxProfiles(3)

	return profile.NewService(store)
}

func TestAddProfile(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	svc := newService()

	cfg, err := svc.Add(ctx, ownerID, profile.Patch{
		Name:     lo.ToPtr("channel drops"),
		MinPrice: lo.ToPtr(int64(100)),
		MaxPrice: lo.ToPtr(int64(200)),
		Target:   lo.ToPtr("giftdrops"),
		Sender:   lo.ToPtr("userbot"),
	})
	rq.NoError(err)
	rq.Len(cfg.Profiles, 2)

	added := cfg.Profiles[1]
	rq.Equal("channel drops", added.Name)
	rq.Equal(int64(100), added.MinPrice)
	rq.Equal(int64(200), added.MaxPrice)
	rq.Equal(value.SenderUserbot, added.Sender)

	channel, ok := added.Target.Channel()
	rq.True(ok)
	rq.Equal("@giftdrops", channel)
	rq.NotEqual(cfg.Profiles[0].ID, added.ID)

	_, err = svc.Add(ctx, ownerID, profile.Patch{})
	rq.NoError(err)

	_, err = svc.Add(ctx, ownerID, profile.Patch{})
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.ProfilesLimitReached, code)
}

func TestUpdateProfileValidation(t *testing.T) {
	testCases := []struct {
		name  string
		patch profile.Patch
		code  failure.ErrorCode
	}{
		{
			name:  "non positive",
			patch: profile.Patch{Count: lo.ToPtr(int64(0))},
			code:  errcodes.ValidationError,
		},
		{
			name:  "price range",
			patch: profile.Patch{MinPrice: lo.ToPtr(entity.DefaultMaxPrice + 1)},
			code:  errcodes.InvalidPriceRange,
		},
		{
			name:  "supply range",
			patch: profile.Patch{MinSupply: lo.ToPtr(int64(500)), MaxSupply: lo.ToPtr(int64(100))},
			code:  errcodes.InvalidSupplyRange,
		},
		{
			name:  "recipient",
			patch: profile.Patch{Target: lo.ToPtr("@")},
			code:  errcodes.InvalidRecipient,
		},
		{
			name:  "sender",
			patch: profile.Patch{Sender: lo.ToPtr("robot")},
			code:  errcodes.InvalidSender,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()
			svc := newService()

			before, err := svc.Get(ctx, ownerID)
			rq.NoError(err)

			_, err = svc.Update(ctx, ownerID, 0, tc.patch)
			rq.True(failure.IsInvalidArgumentError(err))
			rq.Equal(tc.code, failure.Code(err))

			after, err := svc.Get(ctx, ownerID)
			rq.NoError(err)
			rq.Equal(before, after)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	svc := newService()

	cfg, err := svc.Update(ctx, ownerID, 0, profile.Patch{
		MinSupply: lo.ToPtr(int64(10)),
		MaxSupply: lo.ToPtr(int64(20)),
		Limit:     lo.ToPtr(int64(999)),
		Target:    lo.ToPtr("777"),
	})
	rq.NoError(err)

	p := cfg.Profiles[0]
	rq.Equal(int64(10), p.MinSupply)
	rq.Equal(int64(20), p.MaxSupply)
	rq.Equal(int64(999), p.Limit)

	id, ok := p.Target.UserID()
	rq.True(ok)
	rq.Equal(int64(777), id)

	cfg, err = svc.Update(ctx, ownerID, 0, profile.Patch{Target: lo.ToPtr("")})
	rq.NoError(err)

	id, _ = cfg.Profiles[0].Target.UserID()
	rq.Equal(ownerID, id)

	_, err = svc.Update(ctx, ownerID, 5, profile.Patch{})
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.ProfileNotFound, code)
}

func TestRemoveProfile(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	svc := newService()

	_, err := svc.Add(ctx, ownerID, profile.Patch{Name: lo.ToPtr("second")})
	rq.NoError(err)

	_, err = svc.SetActive(ctx, ownerID, true)
	rq.NoError(err)

	cfg, err := svc.Remove(ctx, ownerID, 0)
	rq.NoError(err)
	rq.Len(cfg.Profiles, 1)
	rq.Equal("second", cfg.Profiles[0].Name)
	rq.True(cfg.Active)

	removedID := cfg.Profiles[0].ID

	cfg, err = svc.Remove(ctx, ownerID, 0)
	rq.NoError(err)
	rq.Len(cfg.Profiles, 1)
	rq.NotEqual(removedID, cfg.Profiles[0].ID)
	rq.Equal(entity.DefaultCount, cfg.Profiles[0].Count)
	rq.False(cfg.Active)

	_, err = svc.Remove(ctx, ownerID, -1)
	rq.Error(err)
}

func TestToggleAndReset(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	svc := newService()

	cfg, err := svc.Toggle(ctx, ownerID)
	rq.NoError(err)
	rq.True(cfg.Active)

	cfg, err = svc.Toggle(ctx, ownerID)
	rq.NoError(err)
	rq.False(cfg.Active)

	store := persistence.NewConfigStore(persistence.NewMemoryBackend())
	_, err = store.Update(ctx, ownerID, func(cfg *entity.Configuration) error {
		cfg.Active = true
		cfg.Profiles[0].RecordPurchase(500)
		cfg.Profiles[0].Done = true

		return nil
	})
	rq.NoError(err)

	cfg, err = profile.NewService(store).Reset(ctx, ownerID)
	rq.NoError(err)
	rq.False(cfg.Active)
	rq.Equal(int64(0), cfg.Profiles[0].Bought)
	rq.Equal(int64(0), cfg.Profiles[0].Spent)
	rq.False(cfg.Profiles[0].Done)
}
