package feed

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/ethlog"
)

type fakeSubscription struct{ errs chan error }

func (f *fakeSubscription) Unsubscribe()      {}
func (f *fakeSubscription) Err() <-chan error { return f.errs }

// fakeChainClient scripts a fixed sequence of logs and serves headers
// with a constant block time.
type fakeChainClient struct {
	script    []types.Log
	blockTime uint64

	headerCalls int
}

func (f *fakeChainClient) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	go func() {
		for _, lg := range f.script {
			ch <- lg
		}
	}()
	return &fakeSubscription{errs: make(chan error)}, nil
}

func (f *fakeChainClient) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	f.headerCalls++
	return &types.Header{Number: number, Time: f.blockTime}, nil
}

func chainTopic(t *testing.T, eventName string) common.Hash {
	t.Helper()
	parsed, err := ethlog.LendingPoolABI()
	require.NoError(t, err)
	event, ok := parsed.Events[eventName]
	require.True(t, ok, "no event %s in abi", eventName)
	return event.ID
}

func packChainData(t *testing.T, eventName string, values ...any) []byte {
	t.Helper()
	parsed, err := ethlog.LendingPoolABI()
	require.NoError(t, err)
	data, err := parsed.Events[eventName].Inputs.NonIndexed().Pack(values...)
	require.NoError(t, err)
	return data
}

func padTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func TestChainLogSource_DecodesRawLogs(t *testing.T) {
	pool := common.HexToAddress("0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9")
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	user := common.HexToAddress("0x00000000000000000000000000000000000a11ce")

	amount, _ := new(big.Int).SetString("2500000000000000000000", 10)
	deposit := types.Log{
		Address:     pool,
		BlockNumber: 11362579,
		TxIndex:     3,
		Index:       9,
		Topics: []common.Hash{
			chainTopic(t, "Deposit"),
			padTopic(dai),
			padTopic(user),
			common.BigToHash(big.NewInt(0)),
		},
		Data: packChainData(t, "Deposit", user, amount),
	}
	// Unknown signature topic in the same block: skipped, and the
	// header is only fetched once for the block.
	unknown := types.Log{
		Address:     pool,
		BlockNumber: 11362579,
		TxIndex:     3,
		Index:       10,
		Topics:      []common.Hash{common.HexToHash("0xdead")},
	}
	// Reorged-out log: skipped.
	removed := deposit
	removed.Index = 11
	removed.Removed = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := NewChainLogSource("ws://unused", pool.Hex(), nil)
	require.NoError(t, err)
	client := &fakeChainClient{
		script:    []types.Log{deposit, unknown, removed},
		blockTime: 1606780800,
	}
	source.client = client

	ch, err := source.Subscribe(ctx)
	require.NoError(t, err)

	item := <-ch
	require.NoError(t, item.Err)
	dep, ok := item.Event.(*domain.DepositEvent)
	require.True(t, ok, "expected *domain.DepositEvent, got %T", item.Event)
	assert.Equal(t, uint64(11362579), dep.BlockNumber)
	assert.Equal(t, uint(3), dep.TxIndex)
	assert.Equal(t, uint(9), dep.LogIndex)
	assert.Equal(t, int64(1606780800), dep.Timestamp)
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", dep.Reserve)
	assert.Equal(t, amount, dep.Amount)

	// No further events: the unknown and removed logs never surface.
	select {
	case item := <-ch:
		t.Fatalf("unexpected item: %+v", item)
	default:
	}

	cancel()
	for range ch {
	}

	assert.Equal(t, 1, client.headerCalls)
}

func TestChainLogSource_SubscriptionErrorEndsStream(t *testing.T) {
	sub := &fakeSubscription{errs: make(chan error, 1)}
	sub.errs <- assert.AnError

	source, err := NewChainLogSource("ws://unused", "0xpool", nil)
	require.NoError(t, err)
	source.client = &fakeChainClientWithSub{sub: sub}

	ch, err := source.Subscribe(context.Background())
	require.NoError(t, err)

	item := <-ch
	require.ErrorIs(t, item.Err, assert.AnError)

	_, open := <-ch
	assert.False(t, open)
}

type fakeChainClientWithSub struct{ sub ethereum.Subscription }

func (f *fakeChainClientWithSub) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, _ chan<- types.Log) (ethereum.Subscription, error) {
	return f.sub, nil
}

func (f *fakeChainClientWithSub) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: number}, nil
}
