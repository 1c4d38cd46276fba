package memory

import (
	"context"
	"sort"
	"sync"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// actionStore holds one kind of append-only history action keyed by ID.
// Records are stored as shallow copies; callers must not mutate big
// integer fields of inserted actions (the engine never does).
type actionStore[T any] struct {
	mu   sync.RWMutex
	data map[string]*T
}

func newActionStore[T any]() *actionStore[T] {
	return &actionStore[T]{data: make(map[string]*T)}
}

func (s *actionStore[T]) insert(id string, a *T) error {
	if a == nil || id == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; exists {
		return storage.ErrDuplicateKey
	}

	actionCopy := *a
	s.data[id] = &actionCopy
	return nil
}

func (s *actionStore[T]) get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	actionCopy := *a
	return &actionCopy, nil
}

// DepositStore is an in-memory implementation of storage.DepositStore.
type DepositStore struct{ s *actionStore[domain.DepositAction] }

// NewDepositStore creates a new in-memory deposit history store.
func NewDepositStore() *DepositStore {
	return &DepositStore{s: newActionStore[domain.DepositAction]()}
}

func (d *DepositStore) Insert(_ context.Context, a *domain.DepositAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return d.s.insert(a.ID, a)
}

func (d *DepositStore) GetByID(_ context.Context, id string) (*domain.DepositAction, error) {
	return d.s.get(id)
}

// RedeemUnderlyingStore is an in-memory implementation of storage.RedeemUnderlyingStore.
type RedeemUnderlyingStore struct {
	s *actionStore[domain.RedeemUnderlyingAction]
}

// NewRedeemUnderlyingStore creates a new in-memory withdrawal history store.
func NewRedeemUnderlyingStore() *RedeemUnderlyingStore {
	return &RedeemUnderlyingStore{s: newActionStore[domain.RedeemUnderlyingAction]()}
}

func (r *RedeemUnderlyingStore) Insert(_ context.Context, a *domain.RedeemUnderlyingAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return r.s.insert(a.ID, a)
}

func (r *RedeemUnderlyingStore) GetByID(_ context.Context, id string) (*domain.RedeemUnderlyingAction, error) {
	return r.s.get(id)
}

// BorrowStore is an in-memory implementation of storage.BorrowStore.
type BorrowStore struct{ s *actionStore[domain.BorrowAction] }

// NewBorrowStore creates a new in-memory borrow history store.
func NewBorrowStore() *BorrowStore {
	return &BorrowStore{s: newActionStore[domain.BorrowAction]()}
}

func (b *BorrowStore) Insert(_ context.Context, a *domain.BorrowAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return b.s.insert(a.ID, a)
}

func (b *BorrowStore) GetByID(_ context.Context, id string) (*domain.BorrowAction, error) {
	return b.s.get(id)
}

// RepayStore is an in-memory implementation of storage.RepayStore.
type RepayStore struct{ s *actionStore[domain.RepayAction] }

// NewRepayStore creates a new in-memory repayment history store.
func NewRepayStore() *RepayStore {
	return &RepayStore{s: newActionStore[domain.RepayAction]()}
}

func (r *RepayStore) Insert(_ context.Context, a *domain.RepayAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return r.s.insert(a.ID, a)
}

func (r *RepayStore) GetByID(_ context.Context, id string) (*domain.RepayAction, error) {
	return r.s.get(id)
}

// SwapStore is an in-memory implementation of storage.SwapStore.
type SwapStore struct{ s *actionStore[domain.SwapAction] }

// NewSwapStore creates a new in-memory rate swap history store.
func NewSwapStore() *SwapStore {
	return &SwapStore{s: newActionStore[domain.SwapAction]()}
}

func (w *SwapStore) Insert(_ context.Context, a *domain.SwapAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return w.s.insert(a.ID, a)
}

func (w *SwapStore) GetByID(_ context.Context, id string) (*domain.SwapAction, error) {
	return w.s.get(id)
}

// RebalanceStore is an in-memory implementation of storage.RebalanceStore.
type RebalanceStore struct {
	s *actionStore[domain.RebalanceStableBorrowRateAction]
}

// NewRebalanceStore creates a new in-memory rebalance history store.
func NewRebalanceStore() *RebalanceStore {
	return &RebalanceStore{s: newActionStore[domain.RebalanceStableBorrowRateAction]()}
}

func (r *RebalanceStore) Insert(_ context.Context, a *domain.RebalanceStableBorrowRateAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return r.s.insert(a.ID, a)
}

func (r *RebalanceStore) GetByID(_ context.Context, id string) (*domain.RebalanceStableBorrowRateAction, error) {
	return r.s.get(id)
}

// LiquidationCallStore is an in-memory implementation of storage.LiquidationCallStore.
type LiquidationCallStore struct {
	s *actionStore[domain.LiquidationCallAction]
}

// NewLiquidationCallStore creates a new in-memory liquidation history store.
func NewLiquidationCallStore() *LiquidationCallStore {
	return &LiquidationCallStore{s: newActionStore[domain.LiquidationCallAction]()}
}

func (l *LiquidationCallStore) Insert(_ context.Context, a *domain.LiquidationCallAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return l.s.insert(a.ID, a)
}

func (l *LiquidationCallStore) GetByID(_ context.Context, id string) (*domain.LiquidationCallAction, error) {
	return l.s.get(id)
}

// FlashLoanStore is an in-memory implementation of storage.FlashLoanStore.
type FlashLoanStore struct{ s *actionStore[domain.FlashLoanAction] }

// NewFlashLoanStore creates a new in-memory flash loan history store.
func NewFlashLoanStore() *FlashLoanStore {
	return &FlashLoanStore{s: newActionStore[domain.FlashLoanAction]()}
}

func (f *FlashLoanStore) Insert(_ context.Context, a *domain.FlashLoanAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return f.s.insert(a.ID, a)
}

func (f *FlashLoanStore) GetByID(_ context.Context, id string) (*domain.FlashLoanAction, error) {
	return f.s.get(id)
}

// UsageAsCollateralStore is an in-memory implementation of storage.UsageAsCollateralStore.
type UsageAsCollateralStore struct {
	s *actionStore[domain.UsageAsCollateralAction]
}

// NewUsageAsCollateralStore creates a new in-memory collateral toggle history store.
func NewUsageAsCollateralStore() *UsageAsCollateralStore {
	return &UsageAsCollateralStore{s: newActionStore[domain.UsageAsCollateralAction]()}
}

func (u *UsageAsCollateralStore) Insert(_ context.Context, a *domain.UsageAsCollateralAction) error {
	if a == nil {
		return storage.ErrInvalidInput
	}
	return u.s.insert(a.ID, a)
}

func (u *UsageAsCollateralStore) GetByID(_ context.Context, id string) (*domain.UsageAsCollateralAction, error) {
	return u.s.get(id)
}

// ReserveParamsHistoryStore is an in-memory implementation of
// storage.ReserveParamsHistoryStore.
type ReserveParamsHistoryStore struct {
	s *actionStore[domain.ReserveParamsHistoryItem]
}

// NewReserveParamsHistoryStore creates a new in-memory params timeseries store.
func NewReserveParamsHistoryStore() *ReserveParamsHistoryStore {
	return &ReserveParamsHistoryStore{s: newActionStore[domain.ReserveParamsHistoryItem]()}
}

func (p *ReserveParamsHistoryStore) Insert(_ context.Context, item *domain.ReserveParamsHistoryItem) error {
	if item == nil {
		return storage.ErrInvalidInput
	}
	return p.s.insert(item.ID, item)
}

// GetByReserve retrieves all items for a reserve, ordered by timestamp ASC.
func (p *ReserveParamsHistoryStore) GetByReserve(_ context.Context, reserve string) ([]*domain.ReserveParamsHistoryItem, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	var result []*domain.ReserveParamsHistoryItem
	for _, item := range p.s.data {
		if item.Reserve == reserve {
			itemCopy := *item
			result = append(result, &itemCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// NewHistory builds the full in-memory history store bundle.
func NewHistory() storage.History {
	return storage.History{
		Deposits:          NewDepositStore(),
		Redeems:           NewRedeemUnderlyingStore(),
		Borrows:           NewBorrowStore(),
		Repays:            NewRepayStore(),
		Swaps:             NewSwapStore(),
		Rebalances:        NewRebalanceStore(),
		Liquidations:      NewLiquidationCallStore(),
		FlashLoans:        NewFlashLoanStore(),
		UsageAsCollateral: NewUsageAsCollateralStore(),
		ReserveParams:     NewReserveParamsHistoryStore(),
	}
}

// Compile-time interface checks.
var (
	_ storage.DepositStore              = (*DepositStore)(nil)
	_ storage.RedeemUnderlyingStore     = (*RedeemUnderlyingStore)(nil)
	_ storage.BorrowStore               = (*BorrowStore)(nil)
	_ storage.RepayStore                = (*RepayStore)(nil)
	_ storage.SwapStore                 = (*SwapStore)(nil)
	_ storage.RebalanceStore            = (*RebalanceStore)(nil)
	_ storage.LiquidationCallStore      = (*LiquidationCallStore)(nil)
	_ storage.FlashLoanStore            = (*FlashLoanStore)(nil)
	_ storage.UsageAsCollateralStore    = (*UsageAsCollateralStore)(nil)
	_ storage.ReserveParamsHistoryStore = (*ReserveParamsHistoryStore)(nil)
)
