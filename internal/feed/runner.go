package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/observability"
	"lending-pool-indexer/internal/projection"
)

// Runner drains a Source and applies each event to the projection
// engine, one at a time. Ordering is validated against the previous
// event: any regression or repeat of (block, txIndex, logIndex) is
// fatal, as is the first apply error, since a skipped event would
// leave the stores diverged from the chain.
type Runner struct {
	source  Source
	engine  *projection.Engine
	logger  *log.Logger
	metrics bool

	processed uint64
	lastMeta  *domain.EventMeta
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source Source
	Engine *projection.Engine
	Logger *log.Logger
	// DisableMetrics turns off Prometheus counters (used in tests).
	DisableMetrics bool
}

// NewRunner creates a new projection runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		source:  opts.Source,
		engine:  opts.Engine,
		logger:  logger,
		metrics: !opts.DisableMetrics,
	}
}

// Processed reports the number of events applied so far.
func (r *Runner) Processed() uint64 {
	return r.processed
}

// Run subscribes to the source and applies events until the channel is
// drained or the context is cancelled. A closed channel with no error
// means the source is exhausted and Run returns nil.
func (r *Runner) Run(ctx context.Context) error {
	items, err := r.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	r.logger.Println("Projection runner started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("Runner stopping after %d events", r.processed)
			return ctx.Err()

		case item, ok := <-items:
			if !ok {
				r.logger.Printf("Event source drained, %d events applied", r.processed)
				return nil
			}
			if item.Err != nil {
				return fmt.Errorf("source: %w", item.Err)
			}
			if err := r.apply(ctx, item.Event); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) apply(ctx context.Context, event domain.Event) error {
	meta := event.Meta()

	if r.lastMeta != nil && CompareMeta(*r.lastMeta, meta) >= 0 {
		return fmt.Errorf("%w: event %d:%d:%d after %d:%d:%d",
			ErrInvalidOrdering,
			meta.BlockNumber, meta.TxIndex, meta.LogIndex,
			r.lastMeta.BlockNumber, r.lastMeta.TxIndex, r.lastMeta.LogIndex)
	}

	start := time.Now()
	err := r.engine.Apply(ctx, event)
	kind := fmt.Sprintf("%T", event)

	if r.metrics {
		observability.RecordApplyLatency(kind, time.Since(start).Seconds())
	}

	if err != nil {
		if r.metrics {
			observability.RecordEventError(kind)
		}
		// Cancellation is reported as-is, not as a projection failure.
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("projection halted: %w", err)
	}

	r.lastMeta = &meta
	r.processed++

	if r.metrics {
		observability.RecordEventProcessed(kind)
		observability.UpdateHighestBlock(meta.BlockNumber)
		observability.UpdateLastProcessed(meta.Timestamp)
	}

	if r.processed%10000 == 0 {
		r.logger.Printf("Applied %d events, at block %d", r.processed, meta.BlockNumber)
	}

	return nil
}
