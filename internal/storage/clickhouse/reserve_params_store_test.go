package clickhouse

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

func TestReserveParamsHistoryStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReserveParamsHistoryStore(conn)

	reserveID := "0xdai:0xpool"
	liquidityIndex, _ := new(big.Int).SetString("1001279853325188386725726538", 10)

	item := &domain.ReserveParamsHistoryItem{
		ID:                  "rp1",
		Reserve:             reserveID,
		LiquidityRate:       big.NewInt(100),
		StableBorrowRate:    big.NewInt(200),
		VariableBorrowRate:  big.NewInt(300),
		LiquidityIndex:      liquidityIndex,
		VariableBorrowIndex: big.NewInt(400),
		Timestamp:           1600000000,
	}
	require.NoError(t, store.Insert(ctx, item))

	items, err := store.GetByReserve(ctx, reserveID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rp1", items[0].ID)
	assert.Zero(t, items[0].LiquidityIndex.Cmp(liquidityIndex), "ray precision must survive UInt256")
	assert.Equal(t, "300", items[0].VariableBorrowRate.String())
}

func TestReserveParamsHistoryStore_DuplicateID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReserveParamsHistoryStore(conn)

	item := &domain.ReserveParamsHistoryItem{
		ID:        "rp-dup",
		Reserve:   "0xdai:0xpool",
		Timestamp: 1600000000,
	}
	require.NoError(t, store.Insert(ctx, item))
	assert.ErrorIs(t, store.Insert(ctx, item), storage.ErrDuplicateKey)
}

func TestReserveParamsHistoryStore_OrderedAndScoped(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewReserveParamsHistoryStore(conn)

	for _, item := range []*domain.ReserveParamsHistoryItem{
		{ID: "c", Reserve: "0xdai:0xpool", Timestamp: 1600000030},
		{ID: "a", Reserve: "0xdai:0xpool", Timestamp: 1600000010},
		{ID: "b", Reserve: "0xweth:0xpool", Timestamp: 1600000020},
	} {
		require.NoError(t, store.Insert(ctx, item))
	}

	items, err := store.GetByReserve(ctx, "0xdai:0xpool")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)
}
