package postgres

import (
	"context"
	"fmt"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// History stores map one table per action kind. Insert surfaces
// ErrDuplicateKey on primary key conflicts so the engine can detect
// replayed coordinates; rows are never updated.

// DepositStore implements storage.DepositStore using PostgreSQL.
type DepositStore struct {
	pool *Pool
}

// NewDepositStore creates a new DepositStore.
func NewDepositStore(pool *Pool) *DepositStore {
	return &DepositStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DepositStore = (*DepositStore)(nil)

// Insert adds a deposit record. Returns ErrDuplicateKey if the ID exists.
func (s *DepositStore) Insert(ctx context.Context, a *domain.DepositAction) error {
	query := `
		INSERT INTO deposit_history (
			id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount, referrer_id, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, NULLIF($8, ''), $9)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.OnBehalfOf, a.UserReserve, a.Reserve,
		numericArg(a.Amount), a.Referrer, a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// GetByID retrieves a deposit record. Returns ErrNotFound if not exists.
func (s *DepositStore) GetByID(ctx context.Context, id string) (*domain.DepositAction, error) {
	query := `
		SELECT id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount::text, COALESCE(referrer_id, ''), action_timestamp
		FROM deposit_history
		WHERE id = $1
	`

	var (
		a      domain.DepositAction
		amount string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.OnBehalfOf, &a.UserReserve, &a.Reserve,
		&amount, &a.Referrer, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	if a.Amount, err = parseNumeric("amount", amount); err != nil {
		return nil, err
	}
	return &a, nil
}

// RedeemUnderlyingStore implements storage.RedeemUnderlyingStore using PostgreSQL.
type RedeemUnderlyingStore struct {
	pool *Pool
}

// NewRedeemUnderlyingStore creates a new RedeemUnderlyingStore.
func NewRedeemUnderlyingStore(pool *Pool) *RedeemUnderlyingStore {
	return &RedeemUnderlyingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RedeemUnderlyingStore = (*RedeemUnderlyingStore)(nil)

// Insert adds a redeem record. Returns ErrDuplicateKey if the ID exists.
func (s *RedeemUnderlyingStore) Insert(ctx context.Context, a *domain.RedeemUnderlyingAction) error {
	query := `
		INSERT INTO redeem_underlying_history (
			id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.OnBehalfOf, a.UserReserve, a.Reserve,
		numericArg(a.Amount), a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert redeem underlying: %w", err)
	}
	return nil
}

// GetByID retrieves a redeem record. Returns ErrNotFound if not exists.
func (s *RedeemUnderlyingStore) GetByID(ctx context.Context, id string) (*domain.RedeemUnderlyingAction, error) {
	query := `
		SELECT id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount::text, action_timestamp
		FROM redeem_underlying_history
		WHERE id = $1
	`

	var (
		a      domain.RedeemUnderlyingAction
		amount string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.OnBehalfOf, &a.UserReserve, &a.Reserve,
		&amount, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get redeem underlying: %w", err)
	}
	if a.Amount, err = parseNumeric("amount", amount); err != nil {
		return nil, err
	}
	return &a, nil
}

// BorrowStore implements storage.BorrowStore using PostgreSQL.
type BorrowStore struct {
	pool *Pool
}

// NewBorrowStore creates a new BorrowStore.
func NewBorrowStore(pool *Pool) *BorrowStore {
	return &BorrowStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BorrowStore = (*BorrowStore)(nil)

// Insert adds a borrow record. Returns ErrDuplicateKey if the ID exists.
func (s *BorrowStore) Insert(ctx context.Context, a *domain.BorrowAction) error {
	query := `
		INSERT INTO borrow_history (
			id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount, stable_token_debt, variable_token_debt,
			borrow_rate, borrow_rate_mode, referrer_id, action_timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::numeric, $8::numeric, $9::numeric,
			$10::numeric, $11, NULLIF($12, ''), $13
		)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.OnBehalfOf, a.UserReserve, a.Reserve,
		numericArg(a.Amount), numericArg(a.StableTokenDebt), numericArg(a.VariableTokenDebt),
		numericArg(a.BorrowRate), a.BorrowRateMode.String(), a.Referrer, a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert borrow: %w", err)
	}
	return nil
}

// GetByID retrieves a borrow record. Returns ErrNotFound if not exists.
func (s *BorrowStore) GetByID(ctx context.Context, id string) (*domain.BorrowAction, error) {
	query := `
		SELECT id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount::text, stable_token_debt::text, variable_token_debt::text,
			borrow_rate::text, borrow_rate_mode, COALESCE(referrer_id, ''), action_timestamp
		FROM borrow_history
		WHERE id = $1
	`

	var (
		a                      domain.BorrowAction
		amount                 string
		stableDebt, varDebt    string
		borrowRate, borrowMode string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.OnBehalfOf, &a.UserReserve, &a.Reserve,
		&amount, &stableDebt, &varDebt,
		&borrowRate, &borrowMode, &a.Referrer, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get borrow: %w", err)
	}

	a.BorrowRateMode = domain.RateMode(borrowMode)
	if a.Amount, err = parseNumeric("amount", amount); err != nil {
		return nil, err
	}
	if a.StableTokenDebt, err = parseNumeric("stable_token_debt", stableDebt); err != nil {
		return nil, err
	}
	if a.VariableTokenDebt, err = parseNumeric("variable_token_debt", varDebt); err != nil {
		return nil, err
	}
	if a.BorrowRate, err = parseNumeric("borrow_rate", borrowRate); err != nil {
		return nil, err
	}
	return &a, nil
}

// RepayStore implements storage.RepayStore using PostgreSQL.
type RepayStore struct {
	pool *Pool
}

// NewRepayStore creates a new RepayStore.
func NewRepayStore(pool *Pool) *RepayStore {
	return &RepayStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RepayStore = (*RepayStore)(nil)

// Insert adds a repay record. Returns ErrDuplicateKey if the ID exists.
func (s *RepayStore) Insert(ctx context.Context, a *domain.RepayAction) error {
	query := `
		INSERT INTO repay_history (
			id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.OnBehalfOf, a.UserReserve, a.Reserve,
		numericArg(a.Amount), a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert repay: %w", err)
	}
	return nil
}

// GetByID retrieves a repay record. Returns ErrNotFound if not exists.
func (s *RepayStore) GetByID(ctx context.Context, id string) (*domain.RepayAction, error) {
	query := `
		SELECT id, pool, user_id, on_behalf_of, user_reserve_id, reserve_id,
			amount::text, action_timestamp
		FROM repay_history
		WHERE id = $1
	`

	var (
		a      domain.RepayAction
		amount string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.OnBehalfOf, &a.UserReserve, &a.Reserve,
		&amount, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get repay: %w", err)
	}
	if a.Amount, err = parseNumeric("amount", amount); err != nil {
		return nil, err
	}
	return &a, nil
}

// SwapStore implements storage.SwapStore using PostgreSQL.
type SwapStore struct {
	pool *Pool
}

// NewSwapStore creates a new SwapStore.
func NewSwapStore(pool *Pool) *SwapStore {
	return &SwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

// Insert adds a swap record. Returns ErrDuplicateKey if the ID exists.
func (s *SwapStore) Insert(ctx context.Context, a *domain.SwapAction) error {
	query := `
		INSERT INTO swap_history (
			id, pool, user_id, user_reserve_id, reserve_id,
			borrow_rate_mode_from, borrow_rate_mode_to,
			stable_borrow_rate, variable_borrow_rate, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.UserReserve, a.Reserve,
		a.BorrowRateModeFrom.String(), a.BorrowRateModeTo.String(),
		numericArg(a.StableBorrowRate), numericArg(a.VariableBorrowRate), a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

// GetByID retrieves a swap record. Returns ErrNotFound if not exists.
func (s *SwapStore) GetByID(ctx context.Context, id string) (*domain.SwapAction, error) {
	query := `
		SELECT id, pool, user_id, user_reserve_id, reserve_id,
			borrow_rate_mode_from, borrow_rate_mode_to,
			stable_borrow_rate::text, variable_borrow_rate::text, action_timestamp
		FROM swap_history
		WHERE id = $1
	`

	var (
		a                      domain.SwapAction
		modeFrom, modeTo       string
		stableRate, varRate    string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.UserReserve, &a.Reserve,
		&modeFrom, &modeTo, &stableRate, &varRate, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get swap: %w", err)
	}

	a.BorrowRateModeFrom = domain.RateMode(modeFrom)
	a.BorrowRateModeTo = domain.RateMode(modeTo)
	if a.StableBorrowRate, err = parseNumeric("stable_borrow_rate", stableRate); err != nil {
		return nil, err
	}
	if a.VariableBorrowRate, err = parseNumeric("variable_borrow_rate", varRate); err != nil {
		return nil, err
	}
	return &a, nil
}

// RebalanceStore implements storage.RebalanceStore using PostgreSQL.
type RebalanceStore struct {
	pool *Pool
}

// NewRebalanceStore creates a new RebalanceStore.
func NewRebalanceStore(pool *Pool) *RebalanceStore {
	return &RebalanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RebalanceStore = (*RebalanceStore)(nil)

// Insert adds a rebalance record. Returns ErrDuplicateKey if the ID exists.
func (s *RebalanceStore) Insert(ctx context.Context, a *domain.RebalanceStableBorrowRateAction) error {
	query := `
		INSERT INTO rebalance_history (
			id, pool, user_id, user_reserve_id, reserve_id,
			borrow_rate_from, borrow_rate_to, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.UserReserve, a.Reserve,
		numericArg(a.BorrowRateFrom), numericArg(a.BorrowRateTo), a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert rebalance: %w", err)
	}
	return nil
}

// GetByID retrieves a rebalance record. Returns ErrNotFound if not exists.
func (s *RebalanceStore) GetByID(ctx context.Context, id string) (*domain.RebalanceStableBorrowRateAction, error) {
	query := `
		SELECT id, pool, user_id, user_reserve_id, reserve_id,
			borrow_rate_from::text, borrow_rate_to::text, action_timestamp
		FROM rebalance_history
		WHERE id = $1
	`

	var (
		a                domain.RebalanceStableBorrowRateAction
		rateFrom, rateTo string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.UserReserve, &a.Reserve,
		&rateFrom, &rateTo, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get rebalance: %w", err)
	}
	if a.BorrowRateFrom, err = parseNumeric("borrow_rate_from", rateFrom); err != nil {
		return nil, err
	}
	if a.BorrowRateTo, err = parseNumeric("borrow_rate_to", rateTo); err != nil {
		return nil, err
	}
	return &a, nil
}

// LiquidationCallStore implements storage.LiquidationCallStore using PostgreSQL.
type LiquidationCallStore struct {
	pool *Pool
}

// NewLiquidationCallStore creates a new LiquidationCallStore.
func NewLiquidationCallStore(pool *Pool) *LiquidationCallStore {
	return &LiquidationCallStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidationCallStore = (*LiquidationCallStore)(nil)

// Insert adds a liquidation record. Returns ErrDuplicateKey if the ID exists.
func (s *LiquidationCallStore) Insert(ctx context.Context, a *domain.LiquidationCallAction) error {
	query := `
		INSERT INTO liquidation_call_history (
			id, pool, user_id,
			collateral_reserve_id, collateral_user_reserve_id, collateral_amount,
			principal_reserve_id, principal_user_reserve_id, principal_amount,
			liquidator, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9::numeric, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User,
		a.CollateralReserve, a.CollateralUserReserve, numericArg(a.CollateralAmount),
		a.PrincipalReserve, a.PrincipalUserReserve, numericArg(a.PrincipalAmount),
		a.Liquidator, a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert liquidation call: %w", err)
	}
	return nil
}

// GetByID retrieves a liquidation record. Returns ErrNotFound if not exists.
func (s *LiquidationCallStore) GetByID(ctx context.Context, id string) (*domain.LiquidationCallAction, error) {
	query := `
		SELECT id, pool, user_id,
			collateral_reserve_id, collateral_user_reserve_id, collateral_amount::text,
			principal_reserve_id, principal_user_reserve_id, principal_amount::text,
			liquidator, action_timestamp
		FROM liquidation_call_history
		WHERE id = $1
	`

	var (
		a                          domain.LiquidationCallAction
		collateralAmt, principalAmt string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User,
		&a.CollateralReserve, &a.CollateralUserReserve, &collateralAmt,
		&a.PrincipalReserve, &a.PrincipalUserReserve, &principalAmt,
		&a.Liquidator, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get liquidation call: %w", err)
	}
	if a.CollateralAmount, err = parseNumeric("collateral_amount", collateralAmt); err != nil {
		return nil, err
	}
	if a.PrincipalAmount, err = parseNumeric("principal_amount", principalAmt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FlashLoanStore implements storage.FlashLoanStore using PostgreSQL.
type FlashLoanStore struct {
	pool *Pool
}

// NewFlashLoanStore creates a new FlashLoanStore.
func NewFlashLoanStore(pool *Pool) *FlashLoanStore {
	return &FlashLoanStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FlashLoanStore = (*FlashLoanStore)(nil)

// Insert adds a flash loan record. Returns ErrDuplicateKey if the ID exists.
func (s *FlashLoanStore) Insert(ctx context.Context, a *domain.FlashLoanAction) error {
	query := `
		INSERT INTO flash_loan_history (
			id, pool, reserve_id, target, initiator,
			total_fee, amount, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.Reserve, a.Target, a.Initiator,
		numericArg(a.TotalFee), numericArg(a.Amount), a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert flash loan: %w", err)
	}
	return nil
}

// GetByID retrieves a flash loan record. Returns ErrNotFound if not exists.
func (s *FlashLoanStore) GetByID(ctx context.Context, id string) (*domain.FlashLoanAction, error) {
	query := `
		SELECT id, pool, reserve_id, target, initiator,
			total_fee::text, amount::text, action_timestamp
		FROM flash_loan_history
		WHERE id = $1
	`

	var (
		a               domain.FlashLoanAction
		totalFee, amount string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.Reserve, &a.Target, &a.Initiator,
		&totalFee, &amount, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get flash loan: %w", err)
	}
	if a.TotalFee, err = parseNumeric("total_fee", totalFee); err != nil {
		return nil, err
	}
	if a.Amount, err = parseNumeric("amount", amount); err != nil {
		return nil, err
	}
	return &a, nil
}

// UsageAsCollateralStore implements storage.UsageAsCollateralStore using PostgreSQL.
type UsageAsCollateralStore struct {
	pool *Pool
}

// NewUsageAsCollateralStore creates a new UsageAsCollateralStore.
func NewUsageAsCollateralStore(pool *Pool) *UsageAsCollateralStore {
	return &UsageAsCollateralStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UsageAsCollateralStore = (*UsageAsCollateralStore)(nil)

// Insert adds a collateral toggle record. Returns ErrDuplicateKey if the ID exists.
func (s *UsageAsCollateralStore) Insert(ctx context.Context, a *domain.UsageAsCollateralAction) error {
	query := `
		INSERT INTO usage_as_collateral_history (
			id, pool, user_id, user_reserve_id, reserve_id,
			from_state, to_state, action_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Pool, a.User, a.UserReserve, a.Reserve,
		a.FromState, a.ToState, a.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert usage as collateral: %w", err)
	}
	return nil
}

// GetByID retrieves a collateral toggle record. Returns ErrNotFound if not exists.
func (s *UsageAsCollateralStore) GetByID(ctx context.Context, id string) (*domain.UsageAsCollateralAction, error) {
	query := `
		SELECT id, pool, user_id, user_reserve_id, reserve_id,
			from_state, to_state, action_timestamp
		FROM usage_as_collateral_history
		WHERE id = $1
	`

	var a domain.UsageAsCollateralAction
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Pool, &a.User, &a.UserReserve, &a.Reserve,
		&a.FromState, &a.ToState, &a.Timestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get usage as collateral: %w", err)
	}
	return &a, nil
}
