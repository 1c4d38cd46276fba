package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

func TestReserveStore_GetMissing(t *testing.T) {
	store := NewReserveStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReserveStore_SaveIsUpsert(t *testing.T) {
	store := NewReserveStore()
	ctx := context.Background()

	r := &domain.Reserve{
		ID:                 domain.ReserveID("0xasset", "0xpool"),
		Pool:               "0xpool",
		Asset:              "0xasset",
		AvailableLiquidity: big.NewInt(0),
		LifetimeLiquidated: big.NewInt(0),
	}
	require.NoError(t, store.Save(ctx, r))

	r.LifetimeLiquidated = big.NewInt(500)
	require.NoError(t, store.Save(ctx, r))

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.LifetimeLiquidated.Int64())
}

func TestReserveStore_GetReturnsCopy(t *testing.T) {
	store := NewReserveStore()
	ctx := context.Background()

	r := &domain.Reserve{
		ID:                 "res",
		AvailableLiquidity: big.NewInt(100),
	}
	require.NoError(t, store.Save(ctx, r))

	first, err := store.Get(ctx, "res")
	require.NoError(t, err)
	first.AvailableLiquidity.Add(first.AvailableLiquidity, big.NewInt(1))
	first.Paused = true

	second, err := store.Get(ctx, "res")
	require.NoError(t, err)
	assert.Equal(t, int64(100), second.AvailableLiquidity.Int64())
	assert.False(t, second.Paused)
}

func TestUserReserveStore_SaveInvalid(t *testing.T) {
	store := NewUserReserveStore()

	err := store.Save(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Save(context.Background(), &domain.UserReserve{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestUserAndReferrerStores(t *testing.T) {
	ctx := context.Background()

	users := NewUserStore()
	require.NoError(t, users.Save(ctx, &domain.User{ID: "0xuser"}))
	u, err := users.Get(ctx, "0xuser")
	require.NoError(t, err)
	assert.Equal(t, "0xuser", u.ID)

	referrers := NewReferrerStore()
	_, err = referrers.Get(ctx, "7")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, referrers.Save(ctx, &domain.Referrer{ID: "7"}))
	ref, err := referrers.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", ref.ID)
}
