package domain

import (
	"math/big"
)

// Reserve is the aggregate per-asset state of a lending pool.
// Created on first reference by any event touching the asset,
// mutated in place by subsequent events, never deleted.
type Reserve struct {
	ID    string // "<asset>:<pool>"
	Pool  string // lending pool address
	Asset string // underlying asset address

	AvailableLiquidity           *big.Int
	LifetimeLiquidated           *big.Int
	LifetimeFlashLoans           *big.Int
	LifetimeFlashloanProtocolFee *big.Int
	LifetimeFeeCollected         *big.Int

	LiquidityRate       *big.Int
	StableBorrowRate    *big.Int
	VariableBorrowRate  *big.Int
	LiquidityIndex      *big.Int
	VariableBorrowIndex *big.Int

	Paused              bool
	LastUpdateTimestamp int64
}

// ReserveID builds the deterministic reserve identifier.
func ReserveID(asset, pool string) string {
	return asset + ":" + pool
}

// Clone returns a deep copy, including big integer fields.
func (r *Reserve) Clone() *Reserve {
	c := *r
	c.AvailableLiquidity = copyBig(r.AvailableLiquidity)
	c.LifetimeLiquidated = copyBig(r.LifetimeLiquidated)
	c.LifetimeFlashLoans = copyBig(r.LifetimeFlashLoans)
	c.LifetimeFlashloanProtocolFee = copyBig(r.LifetimeFlashloanProtocolFee)
	c.LifetimeFeeCollected = copyBig(r.LifetimeFeeCollected)
	c.LiquidityRate = copyBig(r.LiquidityRate)
	c.StableBorrowRate = copyBig(r.StableBorrowRate)
	c.VariableBorrowRate = copyBig(r.VariableBorrowRate)
	c.LiquidityIndex = copyBig(r.LiquidityIndex)
	c.VariableBorrowIndex = copyBig(r.VariableBorrowIndex)
	return &c
}

func copyBig(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}
