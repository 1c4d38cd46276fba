package postgres

import (
	"context"
	"fmt"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// ReserveStore implements storage.ReserveStore using PostgreSQL.
type ReserveStore struct {
	pool *Pool
}

// NewReserveStore creates a new ReserveStore.
func NewReserveStore(pool *Pool) *ReserveStore {
	return &ReserveStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReserveStore = (*ReserveStore)(nil)

// Get retrieves a reserve by ID. Returns ErrNotFound if not exists.
func (s *ReserveStore) Get(ctx context.Context, id string) (*domain.Reserve, error) {
	query := `
		SELECT id, pool, asset,
			available_liquidity::text,
			lifetime_liquidated::text,
			lifetime_flash_loans::text,
			lifetime_flashloan_protocol_fee::text,
			lifetime_fee_collected::text,
			liquidity_rate::text,
			stable_borrow_rate::text,
			variable_borrow_rate::text,
			liquidity_index::text,
			variable_borrow_index::text,
			paused, last_update_timestamp
		FROM reserves
		WHERE id = $1
	`

	var (
		r domain.Reserve
		availableLiquidity, lifetimeLiquidated           string
		lifetimeFlashLoans, lifetimeProtocolFee          string
		lifetimeFeeCollected                             string
		liquidityRate, stableRate, variableRate          string
		liquidityIndex, variableIndex                    string
	)

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.Pool, &r.Asset,
		&availableLiquidity, &lifetimeLiquidated,
		&lifetimeFlashLoans, &lifetimeProtocolFee, &lifetimeFeeCollected,
		&liquidityRate, &stableRate, &variableRate,
		&liquidityIndex, &variableIndex,
		&r.Paused, &r.LastUpdateTimestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get reserve: %w", err)
	}

	if r.AvailableLiquidity, err = parseNumeric("available_liquidity", availableLiquidity); err != nil {
		return nil, err
	}
	if r.LifetimeLiquidated, err = parseNumeric("lifetime_liquidated", lifetimeLiquidated); err != nil {
		return nil, err
	}
	if r.LifetimeFlashLoans, err = parseNumeric("lifetime_flash_loans", lifetimeFlashLoans); err != nil {
		return nil, err
	}
	if r.LifetimeFlashloanProtocolFee, err = parseNumeric("lifetime_flashloan_protocol_fee", lifetimeProtocolFee); err != nil {
		return nil, err
	}
	if r.LifetimeFeeCollected, err = parseNumeric("lifetime_fee_collected", lifetimeFeeCollected); err != nil {
		return nil, err
	}
	if r.LiquidityRate, err = parseNumeric("liquidity_rate", liquidityRate); err != nil {
		return nil, err
	}
	if r.StableBorrowRate, err = parseNumeric("stable_borrow_rate", stableRate); err != nil {
		return nil, err
	}
	if r.VariableBorrowRate, err = parseNumeric("variable_borrow_rate", variableRate); err != nil {
		return nil, err
	}
	if r.LiquidityIndex, err = parseNumeric("liquidity_index", liquidityIndex); err != nil {
		return nil, err
	}
	if r.VariableBorrowIndex, err = parseNumeric("variable_borrow_index", variableIndex); err != nil {
		return nil, err
	}

	return &r, nil
}

// Save upserts a reserve.
func (s *ReserveStore) Save(ctx context.Context, r *domain.Reserve) error {
	query := `
		INSERT INTO reserves (
			id, pool, asset,
			available_liquidity, lifetime_liquidated,
			lifetime_flash_loans, lifetime_flashloan_protocol_fee, lifetime_fee_collected,
			liquidity_rate, stable_borrow_rate, variable_borrow_rate,
			liquidity_index, variable_borrow_index,
			paused, last_update_timestamp
		) VALUES (
			$1, $2, $3,
			$4::numeric, $5::numeric,
			$6::numeric, $7::numeric, $8::numeric,
			$9::numeric, $10::numeric, $11::numeric,
			$12::numeric, $13::numeric,
			$14, $15
		)
		ON CONFLICT (id) DO UPDATE SET
			available_liquidity = EXCLUDED.available_liquidity,
			lifetime_liquidated = EXCLUDED.lifetime_liquidated,
			lifetime_flash_loans = EXCLUDED.lifetime_flash_loans,
			lifetime_flashloan_protocol_fee = EXCLUDED.lifetime_flashloan_protocol_fee,
			lifetime_fee_collected = EXCLUDED.lifetime_fee_collected,
			liquidity_rate = EXCLUDED.liquidity_rate,
			stable_borrow_rate = EXCLUDED.stable_borrow_rate,
			variable_borrow_rate = EXCLUDED.variable_borrow_rate,
			liquidity_index = EXCLUDED.liquidity_index,
			variable_borrow_index = EXCLUDED.variable_borrow_index,
			paused = EXCLUDED.paused,
			last_update_timestamp = EXCLUDED.last_update_timestamp
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.Pool, r.Asset,
		numericArg(r.AvailableLiquidity), numericArg(r.LifetimeLiquidated),
		numericArg(r.LifetimeFlashLoans), numericArg(r.LifetimeFlashloanProtocolFee),
		numericArg(r.LifetimeFeeCollected),
		numericArg(r.LiquidityRate), numericArg(r.StableBorrowRate),
		numericArg(r.VariableBorrowRate),
		numericArg(r.LiquidityIndex), numericArg(r.VariableBorrowIndex),
		r.Paused, r.LastUpdateTimestamp,
	)
	if err != nil {
		return fmt.Errorf("save reserve: %w", err)
	}
	return nil
}

// UserReserveStore implements storage.UserReserveStore using PostgreSQL.
type UserReserveStore struct {
	pool *Pool
}

// NewUserReserveStore creates a new UserReserveStore.
func NewUserReserveStore(pool *Pool) *UserReserveStore {
	return &UserReserveStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserReserveStore = (*UserReserveStore)(nil)

// Get retrieves a user reserve by ID. Returns ErrNotFound if not exists.
func (s *UserReserveStore) Get(ctx context.Context, id string) (*domain.UserReserve, error) {
	query := `
		SELECT id, user_id, reserve_id,
			principal_stable_debt::text,
			scaled_variable_debt::text,
			old_stable_borrow_rate::text,
			stable_borrow_rate::text,
			usage_as_collateral_enabled
		FROM user_reserves
		WHERE id = $1
	`

	var (
		u                                 domain.UserReserve
		principalDebt, scaledDebt         string
		oldStableRate, stableRate         string
	)

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.User, &u.Reserve,
		&principalDebt, &scaledDebt, &oldStableRate, &stableRate,
		&u.UsageAsCollateralEnabledOnUser,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user reserve: %w", err)
	}

	if u.PrincipalStableDebt, err = parseNumeric("principal_stable_debt", principalDebt); err != nil {
		return nil, err
	}
	if u.ScaledVariableDebt, err = parseNumeric("scaled_variable_debt", scaledDebt); err != nil {
		return nil, err
	}
	if u.OldStableBorrowRate, err = parseNumeric("old_stable_borrow_rate", oldStableRate); err != nil {
		return nil, err
	}
	if u.StableBorrowRate, err = parseNumeric("stable_borrow_rate", stableRate); err != nil {
		return nil, err
	}

	return &u, nil
}

// Save upserts a user reserve.
func (s *UserReserveStore) Save(ctx context.Context, u *domain.UserReserve) error {
	query := `
		INSERT INTO user_reserves (
			id, user_id, reserve_id,
			principal_stable_debt, scaled_variable_debt,
			old_stable_borrow_rate, stable_borrow_rate,
			usage_as_collateral_enabled
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8)
		ON CONFLICT (id) DO UPDATE SET
			principal_stable_debt = EXCLUDED.principal_stable_debt,
			scaled_variable_debt = EXCLUDED.scaled_variable_debt,
			old_stable_borrow_rate = EXCLUDED.old_stable_borrow_rate,
			stable_borrow_rate = EXCLUDED.stable_borrow_rate,
			usage_as_collateral_enabled = EXCLUDED.usage_as_collateral_enabled
	`

	_, err := s.pool.Exec(ctx, query,
		u.ID, u.User, u.Reserve,
		numericArg(u.PrincipalStableDebt), numericArg(u.ScaledVariableDebt),
		numericArg(u.OldStableBorrowRate), numericArg(u.StableBorrowRate),
		u.UsageAsCollateralEnabledOnUser,
	)
	if err != nil {
		return fmt.Errorf("save user reserve: %w", err)
	}
	return nil
}

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Get retrieves a user by address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, id).Scan(&u.ID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Save upserts a user.
func (s *UserStore) Save(ctx context.Context, u *domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, u.ID)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// ReferrerStore implements storage.ReferrerStore using PostgreSQL.
type ReferrerStore struct {
	pool *Pool
}

// NewReferrerStore creates a new ReferrerStore.
func NewReferrerStore(pool *Pool) *ReferrerStore {
	return &ReferrerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReferrerStore = (*ReferrerStore)(nil)

// Get retrieves a referrer by code. Returns ErrNotFound if not exists.
func (s *ReferrerStore) Get(ctx context.Context, id string) (*domain.Referrer, error) {
	var r domain.Referrer
	err := s.pool.QueryRow(ctx, `SELECT id FROM referrers WHERE id = $1`, id).Scan(&r.ID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get referrer: %w", err)
	}
	return &r, nil
}

// Save upserts a referrer.
func (s *ReferrerStore) Save(ctx context.Context, r *domain.Referrer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO referrers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, r.ID)
	if err != nil {
		return fmt.Errorf("save referrer: %w", err)
	}
	return nil
}

// NewEntities bundles the four entity stores over one pool.
func NewEntities(pool *Pool) storage.Entities {
	return storage.Entities{
		Reserves:     NewReserveStore(pool),
		UserReserves: NewUserReserveStore(pool),
		Users:        NewUserStore(pool),
		Referrers:    NewReferrerStore(pool),
	}
}
