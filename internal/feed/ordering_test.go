package feed

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
)

func metaAt(block uint64, txIndex, logIndex uint) domain.EventMeta {
	return domain.EventMeta{
		BlockNumber: block,
		TxIndex:     txIndex,
		LogIndex:    logIndex,
		Timestamp:   1600000000,
		Address:     "0xpool",
	}
}

func TestCompareMeta(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.EventMeta
		want int
	}{
		{"equal", metaAt(10, 1, 2), metaAt(10, 1, 2), 0},
		{"block wins", metaAt(9, 9, 9), metaAt(10, 0, 0), -1},
		{"tx index breaks block tie", metaAt(10, 2, 0), metaAt(10, 1, 9), 1},
		{"log index breaks tx tie", metaAt(10, 1, 3), metaAt(10, 1, 4), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareMeta(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestSortEvents(t *testing.T) {
	events := []domain.Event{
		&domain.PausedEvent{EventMeta: metaAt(12, 0, 0)},
		&domain.DepositEvent{EventMeta: metaAt(10, 3, 1), Amount: big.NewInt(1)},
		&domain.DepositEvent{EventMeta: metaAt(10, 1, 7), Amount: big.NewInt(2)},
		&domain.UnpausedEvent{EventMeta: metaAt(11, 0, 2)},
	}

	SortEvents(events)

	require.NoError(t, ValidateOrdering(events))
	assert.Equal(t, uint64(10), events[0].Meta().BlockNumber)
	assert.Equal(t, uint(1), events[0].Meta().TxIndex)
	assert.Equal(t, uint64(12), events[3].Meta().BlockNumber)
}

func TestValidateOrdering_RejectsDuplicateCoordinates(t *testing.T) {
	events := []domain.Event{
		&domain.PausedEvent{EventMeta: metaAt(10, 1, 1)},
		&domain.UnpausedEvent{EventMeta: metaAt(10, 1, 1)},
	}

	err := ValidateOrdering(events)
	require.ErrorIs(t, err, ErrInvalidOrdering)
}

func TestValidateOrdering_RejectsRegression(t *testing.T) {
	events := []domain.Event{
		&domain.PausedEvent{EventMeta: metaAt(11, 0, 0)},
		&domain.UnpausedEvent{EventMeta: metaAt(10, 5, 5)},
	}

	err := ValidateOrdering(events)
	require.ErrorIs(t, err, ErrInvalidOrdering)
}
