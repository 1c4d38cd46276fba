package feed

import (
	"errors"
	"sort"

	"lending-pool-indexer/internal/domain"
)

// ErrInvalidOrdering is returned when events are not in strict
// (block, tx_index, log_index) order.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// SortEvents orders events by (block ASC, tx_index ASC, log_index ASC).
// This matches on-chain order and is the processing order the engine
// requires.
func SortEvents(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return CompareMeta(events[i].Meta(), events[j].Meta()) < 0
	})
}

// ValidateOrdering checks that events are strictly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateOrdering(events []domain.Event) error {
	for i := 1; i < len(events); i++ {
		if CompareMeta(events[i-1].Meta(), events[i].Meta()) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// CompareMeta returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (block ASC, tx_index ASC, log_index ASC)
func CompareMeta(a, b domain.EventMeta) int {
	if a.BlockNumber != b.BlockNumber {
		if a.BlockNumber < b.BlockNumber {
			return -1
		}
		return 1
	}
	if a.TxIndex != b.TxIndex {
		if a.TxIndex < b.TxIndex {
			return -1
		}
		return 1
	}
	if a.LogIndex != b.LogIndex {
		if a.LogIndex < b.LogIndex {
			return -1
		}
		return 1
	}
	return 0
}
