// Package resolver centralizes lazy get-or-create materialization of
// entities. Zero-value defaults live here and nowhere else.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// Resolver looks up entities by deterministic key and materializes
// zero-valued ones on first reference. Resolution is idempotent: a
// second call with the same key returns the entity with whatever
// mutations have been committed since creation.
type Resolver struct {
	pool     string
	entities storage.Entities
}

// New creates a resolver scoped to one lending pool.
func New(pool string, entities storage.Entities) *Resolver {
	return &Resolver{pool: pool, entities: entities}
}

// Pool returns the lending pool address this resolver is scoped to.
func (r *Resolver) Pool() string {
	return r.pool
}

// Reserve resolves the reserve for an asset, creating a zero-valued one
// if absent.
func (r *Resolver) Reserve(ctx context.Context, asset string) (*domain.Reserve, error) {
	id := domain.ReserveID(asset, r.pool)

	reserve, err := r.entities.Reserves.Get(ctx, id)
	if err == nil {
		return reserve, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get reserve %s: %w", id, err)
	}

	reserve = &domain.Reserve{
		ID:                           id,
		Pool:                         r.pool,
		Asset:                        asset,
		AvailableLiquidity:           big.NewInt(0),
		LifetimeLiquidated:           big.NewInt(0),
		LifetimeFlashLoans:           big.NewInt(0),
		LifetimeFlashloanProtocolFee: big.NewInt(0),
		LifetimeFeeCollected:         big.NewInt(0),
		LiquidityRate:                big.NewInt(0),
		StableBorrowRate:             big.NewInt(0),
		VariableBorrowRate:           big.NewInt(0),
		LiquidityIndex:               big.NewInt(0),
		VariableBorrowIndex:          big.NewInt(0),
	}
	if err := r.entities.Reserves.Save(ctx, reserve); err != nil {
		return nil, fmt.Errorf("create reserve %s: %w", id, err)
	}
	return reserve, nil
}

// UserReserve resolves the position for a (user, asset) pair, creating
// a zero-valued one if absent. The owning user is resolved first so a
// user reserve never references a missing user.
func (r *Resolver) UserReserve(ctx context.Context, user, asset string) (*domain.UserReserve, error) {
	if _, err := r.User(ctx, user); err != nil {
		return nil, err
	}

	id := domain.UserReserveID(user, asset, r.pool)

	userReserve, err := r.entities.UserReserves.Get(ctx, id)
	if err == nil {
		return userReserve, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get user reserve %s: %w", id, err)
	}

	userReserve = &domain.UserReserve{
		ID:                  id,
		User:                user,
		Reserve:             domain.ReserveID(asset, r.pool),
		PrincipalStableDebt: big.NewInt(0),
		ScaledVariableDebt:  big.NewInt(0),
		OldStableBorrowRate: big.NewInt(0),
		StableBorrowRate:    big.NewInt(0),
	}
	if err := r.entities.UserReserves.Save(ctx, userReserve); err != nil {
		return nil, fmt.Errorf("create user reserve %s: %w", id, err)
	}
	return userReserve, nil
}

// User resolves a user identity record, creating one if absent.
func (r *Resolver) User(ctx context.Context, address string) (*domain.User, error) {
	user, err := r.entities.Users.Get(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get user %s: %w", address, err)
	}

	user = &domain.User{ID: address}
	if err := r.entities.Users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", address, err)
	}
	return user, nil
}

// Referrer resolves a referrer record for a referral code, creating one
// if absent. Callers are expected to skip code zero.
func (r *Resolver) Referrer(ctx context.Context, code uint16) (*domain.Referrer, error) {
	id := strconv.FormatUint(uint64(code), 10)

	referrer, err := r.entities.Referrers.Get(ctx, id)
	if err == nil {
		return referrer, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get referrer %s: %w", id, err)
	}

	referrer = &domain.Referrer{ID: id}
	if err := r.entities.Referrers.Save(ctx, referrer); err != nil {
		return nil, fmt.Errorf("create referrer %s: %w", id, err)
	}
	return referrer, nil
}
