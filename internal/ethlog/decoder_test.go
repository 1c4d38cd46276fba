package ethlog

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
)

var (
	poolAddr = common.HexToAddress("0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9")
	daiAddr  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	wethAddr = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func uint16Topic(v uint16) common.Hash {
	return common.BigToHash(big.NewInt(int64(v)))
}

// packData packs the non-indexed inputs of the named event.
func packData(t *testing.T, eventName string, values ...any) []byte {
	t.Helper()
	parsed, err := LendingPoolABI()
	require.NoError(t, err)
	event, ok := parsed.Events[eventName]
	require.True(t, ok, "no event %s in abi", eventName)
	data, err := event.Inputs.NonIndexed().Pack(values...)
	require.NoError(t, err)
	return data
}

func eventID(t *testing.T, eventName string) common.Hash {
	t.Helper()
	parsed, err := LendingPoolABI()
	require.NoError(t, err)
	return parsed.Events[eventName].ID
}

func TestDecode_Deposit(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	amount, _ := new(big.Int).SetString("2500000000000000000000", 10)
	lg := types.Log{
		Address:     poolAddr,
		BlockNumber: 11362579,
		TxIndex:     42,
		Index:       117,
		Topics: []common.Hash{
			eventID(t, "Deposit"),
			addressTopic(daiAddr),
			addressTopic(bob),
			uint16Topic(7),
		},
		Data: packData(t, "Deposit", alice, amount),
	}

	event, err := decoder.Decode(lg, 1606780800)
	require.NoError(t, err)

	dep, ok := event.(*domain.DepositEvent)
	require.True(t, ok, "expected *domain.DepositEvent, got %T", event)
	assert.Equal(t, uint64(11362579), dep.BlockNumber)
	assert.Equal(t, uint(42), dep.TxIndex)
	assert.Equal(t, uint(117), dep.LogIndex)
	assert.Equal(t, int64(1606780800), dep.Timestamp)
	assert.Equal(t, "0x7d2768de32b0b80b7a3454c06bdac94a69ddc7a9", dep.Address)
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", dep.Reserve)
	assert.Equal(t, "0x00000000000000000000000000000000000a11ce", dep.User)
	assert.Equal(t, "0x0000000000000000000000000000000000000b0b", dep.OnBehalfOf)
	assert.Zero(t, dep.Amount.Cmp(amount))
	assert.Equal(t, uint16(7), dep.Referral)
}

func TestDecode_Borrow(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	rate, _ := new(big.Int).SetString("35000000000000000000000000", 10)
	lg := types.Log{
		Address:     poolAddr,
		BlockNumber: 100,
		Topics: []common.Hash{
			eventID(t, "Borrow"),
			addressTopic(daiAddr),
			addressTopic(alice),
			uint16Topic(0),
		},
		Data: packData(t, "Borrow", alice, big.NewInt(1000), big.NewInt(2), rate),
	}

	event, err := decoder.Decode(lg, 1600000000)
	require.NoError(t, err)

	borrow, ok := event.(*domain.BorrowEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(2), borrow.RateModeCode)
	assert.Zero(t, borrow.BorrowRate.Cmp(rate))
	assert.Equal(t, uint16(0), borrow.Referral)
}

func TestDecode_LiquidationCall(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	lg := types.Log{
		Address:     poolAddr,
		BlockNumber: 200,
		Topics: []common.Hash{
			eventID(t, "LiquidationCall"),
			addressTopic(wethAddr),
			addressTopic(daiAddr),
			addressTopic(alice),
		},
		Data: packData(t, "LiquidationCall", big.NewInt(5000), big.NewInt(3), bob, true),
	}

	event, err := decoder.Decode(lg, 1600000000)
	require.NoError(t, err)

	call, ok := event.(*domain.LiquidationCallEvent)
	require.True(t, ok)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", call.CollateralAsset)
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", call.DebtAsset)
	assert.Equal(t, "0x0000000000000000000000000000000000000b0b", call.Liquidator)
	assert.True(t, call.ReceiveAToken)
	assert.Equal(t, "5000", call.DebtToCover.String())
	assert.Equal(t, "3", call.LiquidatedCollateralAmount.String())
}

func TestDecode_Paused(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	lg := types.Log{
		Address:     poolAddr,
		BlockNumber: 300,
		Topics:      []common.Hash{eventID(t, "Paused")},
	}

	event, err := decoder.Decode(lg, 1600000000)
	require.NoError(t, err)
	require.IsType(t, &domain.PausedEvent{}, event)
	assert.Equal(t, "0x7d2768de32b0b80b7a3454c06bdac94a69ddc7a9", event.Meta().Address)
}

func TestDecode_UnknownTopic(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	lg := types.Log{
		Address: poolAddr,
		Topics:  []common.Hash{common.HexToHash("0xdeadbeef")},
	}

	_, err = decoder.Decode(lg, 0)
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecode_NoTopics(t *testing.T) {
	decoder, err := NewDecoder()
	require.NoError(t, err)

	_, err = decoder.Decode(types.Log{Address: poolAddr}, 0)
	require.ErrorIs(t, err, ErrUnknownEvent)
}
