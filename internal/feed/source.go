// Package feed delivers decoded lending pool events to the projection
// engine in strict source order.
package feed

import (
	"context"

	"lending-pool-indexer/internal/domain"
)

// Item is one delivery from a source: a decoded event, or the error
// that terminated the stream.
type Item struct {
	Event domain.Event
	Err   error
}

// Source provides decoded pool events from an external feed. The
// channel is closed when the source is exhausted or the context is
// cancelled. Events must be delivered in (block, tx_index, log_index)
// order, exactly once.
type Source interface {
	Subscribe(ctx context.Context) (<-chan Item, error)
}
