// Package projection turns ordered lending pool events into the
// normalized entity graph: reserve aggregates, user positions, and an
// append-only action history.
package projection

import (
	"context"
	"fmt"
	"log"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/resolver"
	"lending-pool-indexer/internal/storage"
)

// Engine routes each incoming event to its accounting rule and commits
// the resulting entity mutations and history record. Events must be
// applied one at a time, in delivery order: borrow and rebalance
// history snapshots rely on no other event for the same key
// interleaving.
type Engine struct {
	resolver *resolver.Resolver
	entities storage.Entities
	history  storage.History
	logger   *log.Logger
}

// NewEngine creates a projection engine for one lending pool.
func NewEngine(res *resolver.Resolver, entities storage.Entities, history storage.History, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		resolver: res,
		entities: entities,
		history:  history,
		logger:   logger,
	}
}

// Apply dispatches one event to its accounting rule. Any resolver or
// store failure is fatal for the event and is returned to the caller;
// the event is then not considered processed.
func (e *Engine) Apply(ctx context.Context, event domain.Event) error {
	var err error

	switch ev := event.(type) {
	case *domain.DepositEvent:
		err = e.applyDeposit(ctx, ev)
	case *domain.WithdrawEvent:
		err = e.applyWithdraw(ctx, ev)
	case *domain.BorrowEvent:
		err = e.applyBorrow(ctx, ev)
	case *domain.RepayEvent:
		err = e.applyRepay(ctx, ev)
	case *domain.SwapEvent:
		err = e.applySwap(ctx, ev)
	case *domain.RebalanceStableBorrowRateEvent:
		err = e.applyRebalance(ctx, ev)
	case *domain.LiquidationCallEvent:
		err = e.applyLiquidationCall(ctx, ev)
	case *domain.FlashLoanEvent:
		err = e.applyFlashLoan(ctx, ev)
	case *domain.ReserveUsedAsCollateralEnabledEvent:
		err = e.applyUsageAsCollateral(ctx, ev.EventMeta, ev.Reserve, ev.User, true)
	case *domain.ReserveUsedAsCollateralDisabledEvent:
		err = e.applyUsageAsCollateral(ctx, ev.EventMeta, ev.Reserve, ev.User, false)
	case *domain.ReserveDataUpdatedEvent:
		err = e.applyReserveDataUpdated(ctx, ev)
	case *domain.PausedEvent:
		err = e.applyPaused(ctx, ev.EventMeta, true)
	case *domain.UnpausedEvent:
		err = e.applyPaused(ctx, ev.EventMeta, false)
	default:
		return fmt.Errorf("unsupported event type %T", event)
	}

	if err != nil {
		meta := event.Meta()
		return fmt.Errorf("apply %T at %d:%d:%d: %w",
			event, meta.BlockNumber, meta.TxIndex, meta.LogIndex, err)
	}
	return nil
}
