package clickhouse

import (
	"context"
	"fmt"
	"math/big"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// ReserveParamsHistoryStore implements storage.ReserveParamsHistoryStore
// using ClickHouse. MergeTree does not enforce uniqueness, so Insert
// checks the ID explicitly before writing; the engine inserts each ID
// once, the check guards replays.
type ReserveParamsHistoryStore struct {
	conn *Conn
}

// NewReserveParamsHistoryStore creates a new ReserveParamsHistoryStore.
func NewReserveParamsHistoryStore(conn *Conn) *ReserveParamsHistoryStore {
	return &ReserveParamsHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ReserveParamsHistoryStore = (*ReserveParamsHistoryStore)(nil)

// Insert adds a params snapshot. Returns ErrDuplicateKey if the ID exists.
func (s *ReserveParamsHistoryStore) Insert(ctx context.Context, item *domain.ReserveParamsHistoryItem) error {
	exists, err := s.exists(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO reserve_params_history (
			id, reserve_id, liquidity_rate, stable_borrow_rate,
			variable_borrow_rate, liquidity_index, variable_borrow_index,
			snapshot_timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		item.ID, item.Reserve,
		orZero(item.LiquidityRate), orZero(item.StableBorrowRate),
		orZero(item.VariableBorrowRate),
		orZero(item.LiquidityIndex), orZero(item.VariableBorrowIndex),
		item.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByReserve retrieves all snapshots for a reserve, ordered by timestamp ASC.
func (s *ReserveParamsHistoryStore) GetByReserve(ctx context.Context, reserve string) ([]*domain.ReserveParamsHistoryItem, error) {
	query := `
		SELECT id, reserve_id, liquidity_rate, stable_borrow_rate,
			variable_borrow_rate, liquidity_index, variable_borrow_index,
			snapshot_timestamp
		FROM reserve_params_history
		WHERE reserve_id = ?
		ORDER BY snapshot_timestamp ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, reserve)
	if err != nil {
		return nil, fmt.Errorf("query by reserve: %w", err)
	}
	defer rows.Close()

	var items []*domain.ReserveParamsHistoryItem
	for rows.Next() {
		var (
			item                                    domain.ReserveParamsHistoryItem
			liquidityRate, stableRate, variableRate big.Int
			liquidityIndex, variableIndex           big.Int
		)
		err := rows.Scan(
			&item.ID, &item.Reserve,
			&liquidityRate, &stableRate, &variableRate,
			&liquidityIndex, &variableIndex,
			&item.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reserve params row: %w", err)
		}
		item.LiquidityRate = &liquidityRate
		item.StableBorrowRate = &stableRate
		item.VariableBorrowRate = &variableRate
		item.LiquidityIndex = &liquidityIndex
		item.VariableBorrowIndex = &variableIndex
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reserve params rows: %w", err)
	}

	return items, nil
}

// exists checks if a snapshot with the given ID exists.
func (s *ReserveParamsHistoryStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM reserve_params_history WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return big.NewInt(0)
	}
	return x
}
