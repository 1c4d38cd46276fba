package domain

import "math/big"

// UserReserve is a user's position within one reserve.
// Created lazily on first event involving the (user, asset) pair.
type UserReserve struct {
	ID      string // "<user>:<asset>:<pool>"
	User    string // User.ID
	Reserve string // Reserve.ID

	PrincipalStableDebt *big.Int
	ScaledVariableDebt  *big.Int
	OldStableBorrowRate *big.Int
	StableBorrowRate    *big.Int

	UsageAsCollateralEnabledOnUser bool
}

// UserReserveID builds the deterministic user reserve identifier.
func UserReserveID(user, asset, pool string) string {
	return user + ":" + asset + ":" + pool
}

// Clone returns a deep copy, including big integer fields.
func (u *UserReserve) Clone() *UserReserve {
	c := *u
	c.PrincipalStableDebt = copyBig(u.PrincipalStableDebt)
	c.ScaledVariableDebt = copyBig(u.ScaledVariableDebt)
	c.OldStableBorrowRate = copyBig(u.OldStableBorrowRate)
	c.StableBorrowRate = copyBig(u.StableBorrowRate)
	return &c
}

// User is a minimal identity record for a distinct address.
type User struct {
	ID string // address
}

// Referrer attributes deposits and borrows to a referral code.
// Created lazily, only for non-zero codes.
type Referrer struct {
	ID string // decimal referral code
}
