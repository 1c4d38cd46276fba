package storage

import (
	"context"

	"lending-pool-indexer/internal/domain"
)

// Mutable entity stores expose load/save semantics: Get returns
// ErrNotFound when absent, Save upserts and is atomic and durable on
// return. The projection engine is the only writer.

// ReserveStore provides access to reserve aggregate state.
type ReserveStore interface {
	// Get retrieves a reserve by its ID. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.Reserve, error)

	// Save upserts a reserve.
	Save(ctx context.Context, r *domain.Reserve) error
}

// UserReserveStore provides access to per-(user, asset) positions.
type UserReserveStore interface {
	// Get retrieves a user reserve by its ID. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.UserReserve, error)

	// Save upserts a user reserve.
	Save(ctx context.Context, u *domain.UserReserve) error
}

// UserStore provides access to user identity records.
type UserStore interface {
	// Get retrieves a user by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Save upserts a user.
	Save(ctx context.Context, u *domain.User) error
}

// ReferrerStore provides access to referrer records.
type ReferrerStore interface {
	// Get retrieves a referrer by code. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.Referrer, error)

	// Save upserts a referrer.
	Save(ctx context.Context, r *domain.Referrer) error
}

// History stores are append-only: Insert returns ErrDuplicateKey when
// the ID exists, records are never updated or deleted.

// DepositStore provides access to deposit history.
type DepositStore interface {
	Insert(ctx context.Context, a *domain.DepositAction) error
	GetByID(ctx context.Context, id string) (*domain.DepositAction, error)
}

// RedeemUnderlyingStore provides access to withdrawal history.
type RedeemUnderlyingStore interface {
	Insert(ctx context.Context, a *domain.RedeemUnderlyingAction) error
	GetByID(ctx context.Context, id string) (*domain.RedeemUnderlyingAction, error)
}

// BorrowStore provides access to borrow history.
type BorrowStore interface {
	Insert(ctx context.Context, a *domain.BorrowAction) error
	GetByID(ctx context.Context, id string) (*domain.BorrowAction, error)
}

// RepayStore provides access to repayment history.
type RepayStore interface {
	Insert(ctx context.Context, a *domain.RepayAction) error
	GetByID(ctx context.Context, id string) (*domain.RepayAction, error)
}

// SwapStore provides access to rate mode swap history.
type SwapStore interface {
	Insert(ctx context.Context, a *domain.SwapAction) error
	GetByID(ctx context.Context, id string) (*domain.SwapAction, error)
}

// RebalanceStore provides access to stable rate rebalance history.
type RebalanceStore interface {
	Insert(ctx context.Context, a *domain.RebalanceStableBorrowRateAction) error
	GetByID(ctx context.Context, id string) (*domain.RebalanceStableBorrowRateAction, error)
}

// LiquidationCallStore provides access to liquidation history.
type LiquidationCallStore interface {
	Insert(ctx context.Context, a *domain.LiquidationCallAction) error
	GetByID(ctx context.Context, id string) (*domain.LiquidationCallAction, error)
}

// FlashLoanStore provides access to flash loan history.
type FlashLoanStore interface {
	Insert(ctx context.Context, a *domain.FlashLoanAction) error
	GetByID(ctx context.Context, id string) (*domain.FlashLoanAction, error)
}

// UsageAsCollateralStore provides access to collateral toggle history.
type UsageAsCollateralStore interface {
	Insert(ctx context.Context, a *domain.UsageAsCollateralAction) error
	GetByID(ctx context.Context, id string) (*domain.UsageAsCollateralAction, error)
}

// ReserveParamsHistoryStore provides access to the reserve params
// timeseries written on every reserve data update.
type ReserveParamsHistoryStore interface {
	Insert(ctx context.Context, item *domain.ReserveParamsHistoryItem) error

	// GetByReserve retrieves all items for a reserve, ordered by timestamp ASC.
	GetByReserve(ctx context.Context, reserve string) ([]*domain.ReserveParamsHistoryItem, error)
}

// Entities bundles the mutable entity stores consumed by the identity
// resolver.
type Entities struct {
	Reserves     ReserveStore
	UserReserves UserReserveStore
	Users        UserStore
	Referrers    ReferrerStore
}

// History bundles the append-only action stores consumed by the
// projection engine.
type History struct {
	Deposits          DepositStore
	Redeems           RedeemUnderlyingStore
	Borrows           BorrowStore
	Repays            RepayStore
	Swaps             SwapStore
	Rebalances        RebalanceStore
	Liquidations      LiquidationCallStore
	FlashLoans        FlashLoanStore
	UsageAsCollateral UsageAsCollateralStore
	ReserveParams     ReserveParamsHistoryStore
}
