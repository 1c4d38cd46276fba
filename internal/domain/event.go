package domain

import "math/big"

// EventMeta carries the source coordinates shared by all pool events.
// (BlockNumber, TxIndex, LogIndex) is the sole input to history ID
// generation and defines the strict processing order.
type EventMeta struct {
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
	Timestamp   int64  // block timestamp, unix seconds
	Address     string // emitting contract address
}

// Meta returns the event coordinates. Embedding EventMeta makes a
// payload struct satisfy the Event interface.
func (m EventMeta) Meta() EventMeta {
	return m
}

// Event is a decoded lending pool event with source coordinates.
type Event interface {
	Meta() EventMeta
}

// DepositEvent records liquidity supplied to a reserve.
type DepositEvent struct {
	EventMeta
	Reserve    string
	User       string
	OnBehalfOf string
	Amount     *big.Int
	Referral   uint16
}

// WithdrawEvent records underlying liquidity redeemed from a reserve.
type WithdrawEvent struct {
	EventMeta
	Reserve string
	User    string
	To      string
	Amount  *big.Int
}

// BorrowEvent records a borrow against a reserve.
type BorrowEvent struct {
	EventMeta
	Reserve      string
	User         string
	OnBehalfOf   string
	Amount       *big.Int
	RateModeCode uint64 // raw numeric mode, decoded by the accounting rule
	BorrowRate   *big.Int
	Referral     uint16
}

// RepayEvent records a debt repayment.
type RepayEvent struct {
	EventMeta
	Reserve string
	User    string
	Repayer string
	Amount  *big.Int
}

// SwapEvent records a borrow rate mode swap (stable <-> variable).
type SwapEvent struct {
	EventMeta
	Reserve      string
	User         string
	RateModeCode uint64 // mode being swapped FROM
}

// RebalanceStableBorrowRateEvent records a stable rate rebalance.
type RebalanceStableBorrowRateEvent struct {
	EventMeta
	Reserve string
	User    string
}

// LiquidationCallEvent records a forced liquidation touching two reserves.
type LiquidationCallEvent struct {
	EventMeta
	CollateralAsset            string
	DebtAsset                  string
	User                       string
	DebtToCover                *big.Int
	LiquidatedCollateralAmount *big.Int
	Liquidator                 string
	ReceiveAToken              bool
}

// FlashLoanEvent records a flash loan against a reserve.
type FlashLoanEvent struct {
	EventMeta
	Target    string
	Initiator string
	Asset     string
	Amount    *big.Int
	Premium   *big.Int
	Referral  uint16
}

// ReserveUsedAsCollateralEnabledEvent enables collateral usage for a pair.
type ReserveUsedAsCollateralEnabledEvent struct {
	EventMeta
	Reserve string
	User    string
}

// ReserveUsedAsCollateralDisabledEvent disables collateral usage for a pair.
type ReserveUsedAsCollateralDisabledEvent struct {
	EventMeta
	Reserve string
	User    string
}

// ReserveDataUpdatedEvent carries fresh rate and index snapshots.
type ReserveDataUpdatedEvent struct {
	EventMeta
	Reserve             string
	LiquidityRate       *big.Int
	StableBorrowRate    *big.Int
	VariableBorrowRate  *big.Int
	LiquidityIndex      *big.Int
	VariableBorrowIndex *big.Int
}

// PausedEvent pauses the pool. The reserve is keyed by the emitting
// contract address in the metadata.
type PausedEvent struct {
	EventMeta
}

// UnpausedEvent resumes the pool.
type UnpausedEvent struct {
	EventMeta
}
