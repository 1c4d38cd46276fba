package feed

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/histid"
	"lending-pool-indexer/internal/projection"
	"lending-pool-indexer/internal/resolver"
	"lending-pool-indexer/internal/storage"
	"lending-pool-indexer/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*projection.Engine, storage.Entities, storage.History) {
	t.Helper()
	entities := memory.NewEntities()
	history := memory.NewHistory()
	res := resolver.New("0xpool", entities)
	logger := log.New(os.Stderr, "[test] ", log.LstdFlags)
	return projection.NewEngine(res, entities, history, logger), entities, history
}

func writeEventFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const (
	depositLine = `{"type":"Deposit","block_number":100,"tx_index":0,"log_index":1,"timestamp":1600000000,"address":"0xpool","payload":{"reserve":"0xdai","user":"0xalice","on_behalf_of":"0xalice","amount":"1000"}}`
	borrowLine  = `{"type":"Borrow","block_number":100,"tx_index":1,"log_index":4,"timestamp":1600000013,"address":"0xpool","payload":{"reserve":"0xdai","user":"0xalice","on_behalf_of":"0xalice","amount":"400","rate_mode":2,"borrow_rate":"35000000000000000000000000"}}`
	repayLine   = `{"type":"Repay","block_number":101,"tx_index":0,"log_index":0,"timestamp":1600000026,"address":"0xpool","payload":{"reserve":"0xdai","user":"0xalice","repayer":"0xalice","amount":"400"}}`
)

func TestRunner_AppliesFileInOrder(t *testing.T) {
	engine, entities, history := newTestEngine(t)
	path := writeEventFile(t, depositLine, borrowLine, repayLine)

	runner := NewRunner(RunnerOptions{
		Source:         NewFileSource(path),
		Engine:         engine,
		DisableMetrics: true,
	})

	err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), runner.Processed())

	ctx := context.Background()
	reserve, err := entities.Reserves.Get(ctx, domain.ReserveID("0xdai", "0xpool"))
	require.NoError(t, err)
	assert.Equal(t, "0xdai", reserve.Asset)

	user, err := entities.Users.Get(ctx, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, "0xalice", user.ID)

	depositMeta := domain.EventMeta{BlockNumber: 100, TxIndex: 0, LogIndex: 1, Timestamp: 1600000000, Address: "0xpool"}
	deposit, err := history.Deposits.GetByID(ctx, histid.ComputeActionID(depositMeta, domain.ActionDeposit))
	require.NoError(t, err)
	assert.Equal(t, "1000", deposit.Amount.String())

	borrowMeta := domain.EventMeta{BlockNumber: 100, TxIndex: 1, LogIndex: 4, Timestamp: 1600000013, Address: "0xpool"}
	borrow, err := history.Borrows.GetByID(ctx, histid.ComputeActionID(borrowMeta, domain.ActionBorrow))
	require.NoError(t, err)
	assert.Equal(t, domain.RateModeVariable, borrow.BorrowRateMode)

	repayMeta := domain.EventMeta{BlockNumber: 101, TxIndex: 0, LogIndex: 0, Timestamp: 1600000026, Address: "0xpool"}
	_, err = history.Repays.GetByID(ctx, histid.ComputeActionID(repayMeta, domain.ActionRepay))
	require.NoError(t, err)
}

func TestRunner_HaltsOnOrderingRegression(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	// repay at block 101 before the block-100 deposit
	path := writeEventFile(t, repayLine, depositLine)

	runner := NewRunner(RunnerOptions{
		Source:         NewFileSource(path),
		Engine:         engine,
		DisableMetrics: true,
	})

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidOrdering)
	assert.Equal(t, uint64(1), runner.Processed())
}

func TestRunner_HaltsOnDuplicateCoordinates(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	path := writeEventFile(t, depositLine, depositLine)

	runner := NewRunner(RunnerOptions{
		Source:         NewFileSource(path),
		Engine:         engine,
		DisableMetrics: true,
	})

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidOrdering)
}

func TestRunner_HaltsOnMalformedLine(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	path := writeEventFile(t, depositLine, `{"type":"Deposit","block_number":`)

	runner := NewRunner(RunnerOptions{
		Source:         NewFileSource(path),
		Engine:         engine,
		DisableMetrics: true,
	})

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, uint64(1), runner.Processed())
}

func TestRunner_HaltsOnApplyError(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	badBorrow := `{"type":"Borrow","block_number":100,"tx_index":0,"log_index":0,"timestamp":1600000000,"address":"0xpool","payload":{"reserve":"0xdai","user":"0xalice","on_behalf_of":"0xalice","amount":"400","rate_mode":3,"borrow_rate":"1"}}`
	path := writeEventFile(t, badBorrow, repayLine)

	runner := NewRunner(RunnerOptions{
		Source:         NewFileSource(path),
		Engine:         engine,
		DisableMetrics: true,
	})

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownRateMode)
	assert.Zero(t, runner.Processed())
}

func TestFileSource_SkipsBlankLines(t *testing.T) {
	path := writeEventFile(t, depositLine, "", "   ", borrowLine)

	src := NewFileSource(path)
	items, err := src.Subscribe(context.Background())
	require.NoError(t, err)

	var events []domain.Event
	for item := range items {
		require.NoError(t, item.Err)
		events = append(events, item.Event)
	}
	require.Len(t, events, 2)
	assert.IsType(t, &domain.DepositEvent{}, events[0])
	assert.IsType(t, &domain.BorrowEvent{}, events[1])
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.jsonl"))
	_, err := src.Subscribe(context.Background())
	require.Error(t, err)
}
