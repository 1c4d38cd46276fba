package ethlog

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"lending-pool-indexer/internal/domain"
)

// ErrUnknownEvent is returned for logs whose signature topic does not
// match any lending pool event.
var ErrUnknownEvent = errors.New("log does not match a known lending pool event")

// Decoder turns raw EVM logs into domain events. Block timestamps are
// not part of the log itself, so the caller supplies them.
type Decoder struct {
	abi *abi.ABI
}

// NewDecoder creates a decoder for lending pool logs.
func NewDecoder() (*Decoder, error) {
	parsed, err := LendingPoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse lending pool abi: %w", err)
	}
	return &Decoder{abi: parsed}, nil
}

// Decode converts one log into its domain event. Logs with unknown
// signature topics return ErrUnknownEvent so callers can skip them.
func (d *Decoder) Decode(lg types.Log, timestamp int64) (domain.Event, error) {
	if len(lg.Topics) == 0 {
		return nil, ErrUnknownEvent
	}

	event, err := d.abi.EventByID(lg.Topics[0])
	if err != nil {
		return nil, ErrUnknownEvent
	}

	vals := map[string]any{}
	if len(event.Inputs.NonIndexed()) > 0 {
		if err := d.abi.UnpackIntoMap(vals, event.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("unpack %s data: %w", event.Name, err)
		}
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(vals, indexed, lg.Topics[1:]); err != nil {
			return nil, fmt.Errorf("parse %s topics: %w", event.Name, err)
		}
	}

	meta := domain.EventMeta{
		BlockNumber: lg.BlockNumber,
		TxIndex:     lg.TxIndex,
		LogIndex:    lg.Index,
		Timestamp:   timestamp,
		Address:     lowerHex(lg.Address),
	}

	f := fields{event: event.Name, vals: vals}

	switch event.Name {
	case "Deposit":
		return &domain.DepositEvent{
			EventMeta:  meta,
			Reserve:    f.address("reserve"),
			User:       f.address("user"),
			OnBehalfOf: f.address("onBehalfOf"),
			Amount:     f.bigInt("amount"),
			Referral:   f.uint16Val("referral"),
		}, f.err

	case "Withdraw":
		return &domain.WithdrawEvent{
			EventMeta: meta,
			Reserve:   f.address("reserve"),
			User:      f.address("user"),
			To:        f.address("to"),
			Amount:    f.bigInt("amount"),
		}, f.err

	case "Borrow":
		return &domain.BorrowEvent{
			EventMeta:    meta,
			Reserve:      f.address("reserve"),
			User:         f.address("user"),
			OnBehalfOf:   f.address("onBehalfOf"),
			Amount:       f.bigInt("amount"),
			RateModeCode: f.uint64FromBig("borrowRateMode"),
			BorrowRate:   f.bigInt("borrowRate"),
			Referral:     f.uint16Val("referral"),
		}, f.err

	case "Repay":
		return &domain.RepayEvent{
			EventMeta: meta,
			Reserve:   f.address("reserve"),
			User:      f.address("user"),
			Repayer:   f.address("repayer"),
			Amount:    f.bigInt("amount"),
		}, f.err

	case "Swap":
		return &domain.SwapEvent{
			EventMeta:    meta,
			Reserve:      f.address("reserve"),
			User:         f.address("user"),
			RateModeCode: f.uint64FromBig("rateMode"),
		}, f.err

	case "RebalanceStableBorrowRate":
		return &domain.RebalanceStableBorrowRateEvent{
			EventMeta: meta,
			Reserve:   f.address("reserve"),
			User:      f.address("user"),
		}, f.err

	case "LiquidationCall":
		return &domain.LiquidationCallEvent{
			EventMeta:                  meta,
			CollateralAsset:            f.address("collateralAsset"),
			DebtAsset:                  f.address("debtAsset"),
			User:                       f.address("user"),
			DebtToCover:                f.bigInt("debtToCover"),
			LiquidatedCollateralAmount: f.bigInt("liquidatedCollateralAmount"),
			Liquidator:                 f.address("liquidator"),
			ReceiveAToken:              f.boolVal("receiveAToken"),
		}, f.err

	case "FlashLoan":
		return &domain.FlashLoanEvent{
			EventMeta: meta,
			Target:    f.address("target"),
			Initiator: f.address("initiator"),
			Asset:     f.address("asset"),
			Amount:    f.bigInt("amount"),
			Premium:   f.bigInt("premium"),
			Referral:  f.uint16Val("referralCode"),
		}, f.err

	case "ReserveUsedAsCollateralEnabled":
		return &domain.ReserveUsedAsCollateralEnabledEvent{
			EventMeta: meta,
			Reserve:   f.address("reserve"),
			User:      f.address("user"),
		}, f.err

	case "ReserveUsedAsCollateralDisabled":
		return &domain.ReserveUsedAsCollateralDisabledEvent{
			EventMeta: meta,
			Reserve:   f.address("reserve"),
			User:      f.address("user"),
		}, f.err

	case "ReserveDataUpdated":
		return &domain.ReserveDataUpdatedEvent{
			EventMeta:           meta,
			Reserve:             f.address("reserve"),
			LiquidityRate:       f.bigInt("liquidityRate"),
			StableBorrowRate:    f.bigInt("stableBorrowRate"),
			VariableBorrowRate:  f.bigInt("variableBorrowRate"),
			LiquidityIndex:      f.bigInt("liquidityIndex"),
			VariableBorrowIndex: f.bigInt("variableBorrowIndex"),
		}, f.err

	case "Paused":
		return &domain.PausedEvent{EventMeta: meta}, nil

	case "Unpaused":
		return &domain.UnpausedEvent{EventMeta: meta}, nil

	default:
		return nil, ErrUnknownEvent
	}
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// fields wraps an unpacked value map with typed accessors. The first
// type mismatch sticks in err; callers return it alongside the event.
type fields struct {
	event string
	vals  map[string]any
	err   error
}

func (f *fields) fail(name, want string) {
	if f.err == nil {
		f.err = fmt.Errorf("%s: field %s is not %s (got %T)", f.event, name, want, f.vals[name])
	}
}

func (f *fields) address(name string) string {
	addr, ok := f.vals[name].(common.Address)
	if !ok {
		f.fail(name, "address")
		return ""
	}
	return lowerHex(addr)
}

func (f *fields) bigInt(name string) *big.Int {
	v, ok := f.vals[name].(*big.Int)
	if !ok {
		f.fail(name, "*big.Int")
		return nil
	}
	return v
}

func (f *fields) uint64FromBig(name string) uint64 {
	v := f.bigInt(name)
	if v == nil {
		return 0
	}
	return v.Uint64()
}

func (f *fields) uint16Val(name string) uint16 {
	v, ok := f.vals[name].(uint16)
	if !ok {
		f.fail(name, "uint16")
		return 0
	}
	return v
}

func (f *fields) boolVal(name string) bool {
	v, ok := f.vals[name].(bool)
	if !ok {
		f.fail(name, "bool")
		return false
	}
	return v
}
