package configctl_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/configctl"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/infrastructure/persistence"
)

const ownerID int64 = 1217838677

func run(t *testing.T, backend persistence.Backend, owners []int64, args ...string) (string, error) {
	t.Helper()

	store := persistence.NewConfigStore(backend)
	closed := false

	cmd := configctl.NewRootCommand(func(context.Context) (configctl.Store, func(), error) {
		return store, func() { closed = true }, nil
	}, owners...)

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		require.True(t, closed)
	}

	return out.String(), err
}

func TestShow(t *testing.T) {
	rq := require.New(t)

	out, err := run(t, persistence.NewMemoryBackend(), []int64{ownerID}, "show")
	rq.NoError(err)
	rq.Contains(out, `"PROFILES"`)
	rq.Contains(out, `"TARGET_USER_ID": 1217838677`)
}

func TestMigrate(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	backend := persistence.NewMemoryBackend()
	rq.NoError(backend.Write(ctx, ownerID, []byte(`{"ACTIVE":true,"COUNT":3,"MIN_PRICE":100}`)))

	out, err := run(t, backend, nil, "migrate", "--user", "1217838677")
	rq.NoError(err)
	rq.Contains(out, "1217838677: migrated")

	out, err = run(t, backend, nil, "migrate", "--user", "1217838677")
	rq.NoError(err)
	rq.Contains(out, "1217838677: up to date")

	cfg, err := persistence.NewConfigStore(backend).LoadValid(ctx, ownerID)
	rq.NoError(err)
	rq.Len(cfg.Profiles, 1)
	rq.Equal(int64(3), cfg.Profiles[0].Count)
	rq.Equal(int64(100), cfg.Profiles[0].MinPrice)
}

func TestActivateAndReset(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	backend := persistence.NewMemoryBackend()
	store := persistence.NewConfigStore(backend)

	_, err := store.Update(ctx, ownerID, func(cfg *entity.Configuration) error {
		cfg.Profiles[0].RecordPurchase(700)

		return nil
	})
	rq.NoError(err)

	out, err := run(t, backend, []int64{ownerID}, "activate")
	rq.NoError(err)
	rq.Contains(out, "1217838677: active, 1 profile(s)")

	out, err = run(t, backend, []int64{ownerID}, "activate", "--off")
	rq.NoError(err)
	rq.Contains(out, "1217838677: inactive")

	_, err = run(t, backend, []int64{ownerID}, "reset")
	rq.NoError(err)

	cfg, err := store.LoadValid(ctx, ownerID)
	rq.NoError(err)
	rq.False(cfg.Active)
	rq.Zero(cfg.Profiles[0].Spent)
}

func TestNoUsers(t *testing.T) {
	_, err := run(t, persistence.NewMemoryBackend(), nil, "show")
	require.Error(t, err)
}
