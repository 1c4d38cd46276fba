package postgres

import (
	"context"
	"fmt"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// ReserveParamsHistoryStore implements storage.ReserveParamsHistoryStore
// using PostgreSQL. Deployments with a ClickHouse DSN use the ClickHouse
// implementation instead; this one keeps single-database setups whole.
type ReserveParamsHistoryStore struct {
	pool *Pool
}

// NewReserveParamsHistoryStore creates a new ReserveParamsHistoryStore.
func NewReserveParamsHistoryStore(pool *Pool) *ReserveParamsHistoryStore {
	return &ReserveParamsHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReserveParamsHistoryStore = (*ReserveParamsHistoryStore)(nil)

// Insert adds a params snapshot. Returns ErrDuplicateKey if the ID exists.
func (s *ReserveParamsHistoryStore) Insert(ctx context.Context, item *domain.ReserveParamsHistoryItem) error {
	query := `
		INSERT INTO reserve_params_history (
			id, reserve_id, liquidity_rate, stable_borrow_rate,
			variable_borrow_rate, liquidity_index, variable_borrow_index,
			snapshot_timestamp
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		item.ID, item.Reserve,
		numericArg(item.LiquidityRate), numericArg(item.StableBorrowRate),
		numericArg(item.VariableBorrowRate),
		numericArg(item.LiquidityIndex), numericArg(item.VariableBorrowIndex),
		item.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert reserve params: %w", err)
	}
	return nil
}

// GetByReserve retrieves all snapshots for a reserve, ordered by timestamp ASC.
func (s *ReserveParamsHistoryStore) GetByReserve(ctx context.Context, reserve string) ([]*domain.ReserveParamsHistoryItem, error) {
	query := `
		SELECT id, reserve_id, liquidity_rate::text, stable_borrow_rate::text,
			variable_borrow_rate::text, liquidity_index::text, variable_borrow_index::text,
			snapshot_timestamp
		FROM reserve_params_history
		WHERE reserve_id = $1
		ORDER BY snapshot_timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, reserve)
	if err != nil {
		return nil, fmt.Errorf("get reserve params by reserve: %w", err)
	}
	defer rows.Close()

	var items []*domain.ReserveParamsHistoryItem
	for rows.Next() {
		var (
			item                        domain.ReserveParamsHistoryItem
			liquidityRate, stableRate   string
			variableRate                string
			liquidityIndex, varIndex    string
		)
		err := rows.Scan(
			&item.ID, &item.Reserve,
			&liquidityRate, &stableRate, &variableRate,
			&liquidityIndex, &varIndex,
			&item.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reserve params row: %w", err)
		}
		if item.LiquidityRate, err = parseNumeric("liquidity_rate", liquidityRate); err != nil {
			return nil, err
		}
		if item.StableBorrowRate, err = parseNumeric("stable_borrow_rate", stableRate); err != nil {
			return nil, err
		}
		if item.VariableBorrowRate, err = parseNumeric("variable_borrow_rate", variableRate); err != nil {
			return nil, err
		}
		if item.LiquidityIndex, err = parseNumeric("liquidity_index", liquidityIndex); err != nil {
			return nil, err
		}
		if item.VariableBorrowIndex, err = parseNumeric("variable_borrow_index", varIndex); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reserve params rows: %w", err)
	}

	return items, nil
}

// NewHistory bundles the append-only stores over one pool. The reserve
// params timeseries defaults to Postgres and can be swapped for the
// ClickHouse implementation by the caller.
func NewHistory(pool *Pool) storage.History {
	return storage.History{
		Deposits:          NewDepositStore(pool),
		Redeems:           NewRedeemUnderlyingStore(pool),
		Borrows:           NewBorrowStore(pool),
		Repays:            NewRepayStore(pool),
		Swaps:             NewSwapStore(pool),
		Rebalances:        NewRebalanceStore(pool),
		Liquidations:      NewLiquidationCallStore(pool),
		FlashLoans:        NewFlashLoanStore(pool),
		UsageAsCollateral: NewUsageAsCollateralStore(pool),
		ReserveParams:     NewReserveParamsHistoryStore(pool),
	}
}
