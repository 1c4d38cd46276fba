package feed

import (
	"encoding/json"
	"fmt"
	"math/big"

	"lending-pool-indexer/internal/domain"
)

// Envelope is the wire form of one pool event. Amounts, rates and
// indices travel as decimal strings to preserve uint256 precision.
type Envelope struct {
	Type        string          `json:"type"`
	BlockNumber uint64          `json:"block_number"`
	TxIndex     uint            `json:"tx_index"`
	LogIndex    uint            `json:"log_index"`
	Timestamp   int64           `json:"timestamp"`
	Address     string          `json:"address"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Envelope type tags.
const (
	TypeDeposit           = "Deposit"
	TypeWithdraw          = "Withdraw"
	TypeBorrow            = "Borrow"
	TypeRepay             = "Repay"
	TypeSwap              = "Swap"
	TypeRebalance         = "RebalanceStableBorrowRate"
	TypeLiquidationCall   = "LiquidationCall"
	TypeFlashLoan         = "FlashLoan"
	TypeCollateralEnable  = "ReserveUsedAsCollateralEnabled"
	TypeCollateralDisable = "ReserveUsedAsCollateralDisabled"
	TypeReserveData       = "ReserveDataUpdated"
	TypePaused            = "Paused"
	TypeUnpaused          = "Unpaused"
)

type depositPayload struct {
	Reserve    string `json:"reserve"`
	User       string `json:"user"`
	OnBehalfOf string `json:"on_behalf_of"`
	Amount     string `json:"amount"`
	Referral   uint16 `json:"referral"`
}

type withdrawPayload struct {
	Reserve string `json:"reserve"`
	User    string `json:"user"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

type borrowPayload struct {
	Reserve    string `json:"reserve"`
	User       string `json:"user"`
	OnBehalfOf string `json:"on_behalf_of"`
	Amount     string `json:"amount"`
	RateMode   uint64 `json:"rate_mode"`
	BorrowRate string `json:"borrow_rate"`
	Referral   uint16 `json:"referral"`
}

type repayPayload struct {
	Reserve string `json:"reserve"`
	User    string `json:"user"`
	Repayer string `json:"repayer"`
	Amount  string `json:"amount"`
}

type swapPayload struct {
	Reserve  string `json:"reserve"`
	User     string `json:"user"`
	RateMode uint64 `json:"rate_mode"`
}

type rebalancePayload struct {
	Reserve string `json:"reserve"`
	User    string `json:"user"`
}

type liquidationPayload struct {
	CollateralAsset            string `json:"collateral_asset"`
	DebtAsset                  string `json:"debt_asset"`
	User                       string `json:"user"`
	DebtToCover                string `json:"debt_to_cover"`
	LiquidatedCollateralAmount string `json:"liquidated_collateral_amount"`
	Liquidator                 string `json:"liquidator"`
	ReceiveAToken              bool   `json:"receive_atoken"`
}

type flashLoanPayload struct {
	Target    string `json:"target"`
	Initiator string `json:"initiator"`
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
	Premium   string `json:"premium"`
	Referral  uint16 `json:"referral"`
}

type collateralPayload struct {
	Reserve string `json:"reserve"`
	User    string `json:"user"`
}

type reserveDataPayload struct {
	Reserve             string `json:"reserve"`
	LiquidityRate       string `json:"liquidity_rate"`
	StableBorrowRate    string `json:"stable_borrow_rate"`
	VariableBorrowRate  string `json:"variable_borrow_rate"`
	LiquidityIndex      string `json:"liquidity_index"`
	VariableBorrowIndex string `json:"variable_borrow_index"`
}

func parseBig(field, s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid big integer in %s: %q", field, s)
	}
	return v, nil
}

func bigString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}

// DecodeEnvelope parses one wire envelope into a domain event.
func DecodeEnvelope(data []byte) (domain.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env.Event()
}

// Event converts the envelope into its domain event.
func (env *Envelope) Event() (domain.Event, error) {
	meta := domain.EventMeta{
		BlockNumber: env.BlockNumber,
		TxIndex:     env.TxIndex,
		LogIndex:    env.LogIndex,
		Timestamp:   env.Timestamp,
		Address:     env.Address,
	}

	switch env.Type {
	case TypeDeposit:
		var p depositPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		amount, err := parseBig("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		return &domain.DepositEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
			OnBehalfOf: p.OnBehalfOf, Amount: amount, Referral: p.Referral,
		}, nil

	case TypeWithdraw:
		var p withdrawPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		amount, err := parseBig("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		return &domain.WithdrawEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User, To: p.To, Amount: amount,
		}, nil

	case TypeBorrow:
		var p borrowPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		amount, err := parseBig("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		rate, err := parseBig("borrow_rate", p.BorrowRate)
		if err != nil {
			return nil, err
		}
		return &domain.BorrowEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
			OnBehalfOf: p.OnBehalfOf, Amount: amount,
			RateModeCode: p.RateMode, BorrowRate: rate, Referral: p.Referral,
		}, nil

	case TypeRepay:
		var p repayPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		amount, err := parseBig("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		return &domain.RepayEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
			Repayer: p.Repayer, Amount: amount,
		}, nil

	case TypeSwap:
		var p swapPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return &domain.SwapEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User, RateModeCode: p.RateMode,
		}, nil

	case TypeRebalance:
		var p rebalancePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return &domain.RebalanceStableBorrowRateEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
		}, nil

	case TypeLiquidationCall:
		var p liquidationPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		debt, err := parseBig("debt_to_cover", p.DebtToCover)
		if err != nil {
			return nil, err
		}
		liquidated, err := parseBig("liquidated_collateral_amount", p.LiquidatedCollateralAmount)
		if err != nil {
			return nil, err
		}
		return &domain.LiquidationCallEvent{
			EventMeta: meta, CollateralAsset: p.CollateralAsset, DebtAsset: p.DebtAsset,
			User: p.User, DebtToCover: debt, LiquidatedCollateralAmount: liquidated,
			Liquidator: p.Liquidator, ReceiveAToken: p.ReceiveAToken,
		}, nil

	case TypeFlashLoan:
		var p flashLoanPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		amount, err := parseBig("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		premium, err := parseBig("premium", p.Premium)
		if err != nil {
			return nil, err
		}
		return &domain.FlashLoanEvent{
			EventMeta: meta, Target: p.Target, Initiator: p.Initiator,
			Asset: p.Asset, Amount: amount, Premium: premium, Referral: p.Referral,
		}, nil

	case TypeCollateralEnable:
		var p collateralPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return &domain.ReserveUsedAsCollateralEnabledEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
		}, nil

	case TypeCollateralDisable:
		var p collateralPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return &domain.ReserveUsedAsCollateralDisabledEvent{
			EventMeta: meta, Reserve: p.Reserve, User: p.User,
		}, nil

	case TypeReserveData:
		var p reserveDataPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		ev := &domain.ReserveDataUpdatedEvent{EventMeta: meta, Reserve: p.Reserve}
		var err error
		if ev.LiquidityRate, err = parseBig("liquidity_rate", p.LiquidityRate); err != nil {
			return nil, err
		}
		if ev.StableBorrowRate, err = parseBig("stable_borrow_rate", p.StableBorrowRate); err != nil {
			return nil, err
		}
		if ev.VariableBorrowRate, err = parseBig("variable_borrow_rate", p.VariableBorrowRate); err != nil {
			return nil, err
		}
		if ev.LiquidityIndex, err = parseBig("liquidity_index", p.LiquidityIndex); err != nil {
			return nil, err
		}
		if ev.VariableBorrowIndex, err = parseBig("variable_borrow_index", p.VariableBorrowIndex); err != nil {
			return nil, err
		}
		return ev, nil

	case TypePaused:
		return &domain.PausedEvent{EventMeta: meta}, nil

	case TypeUnpaused:
		return &domain.UnpausedEvent{EventMeta: meta}, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// EncodeEvent converts a domain event into its wire envelope. Used by
// tooling and tests to produce replayable event files.
func EncodeEvent(event domain.Event) ([]byte, error) {
	meta := event.Meta()
	env := Envelope{
		BlockNumber: meta.BlockNumber,
		TxIndex:     meta.TxIndex,
		LogIndex:    meta.LogIndex,
		Timestamp:   meta.Timestamp,
		Address:     meta.Address,
	}

	var payload any
	switch ev := event.(type) {
	case *domain.DepositEvent:
		env.Type = TypeDeposit
		payload = depositPayload{
			Reserve: ev.Reserve, User: ev.User, OnBehalfOf: ev.OnBehalfOf,
			Amount: bigString(ev.Amount), Referral: ev.Referral,
		}
	case *domain.WithdrawEvent:
		env.Type = TypeWithdraw
		payload = withdrawPayload{
			Reserve: ev.Reserve, User: ev.User, To: ev.To, Amount: bigString(ev.Amount),
		}
	case *domain.BorrowEvent:
		env.Type = TypeBorrow
		payload = borrowPayload{
			Reserve: ev.Reserve, User: ev.User, OnBehalfOf: ev.OnBehalfOf,
			Amount: bigString(ev.Amount), RateMode: ev.RateModeCode,
			BorrowRate: bigString(ev.BorrowRate), Referral: ev.Referral,
		}
	case *domain.RepayEvent:
		env.Type = TypeRepay
		payload = repayPayload{
			Reserve: ev.Reserve, User: ev.User, Repayer: ev.Repayer,
			Amount: bigString(ev.Amount),
		}
	case *domain.SwapEvent:
		env.Type = TypeSwap
		payload = swapPayload{Reserve: ev.Reserve, User: ev.User, RateMode: ev.RateModeCode}
	case *domain.RebalanceStableBorrowRateEvent:
		env.Type = TypeRebalance
		payload = rebalancePayload{Reserve: ev.Reserve, User: ev.User}
	case *domain.LiquidationCallEvent:
		env.Type = TypeLiquidationCall
		payload = liquidationPayload{
			CollateralAsset: ev.CollateralAsset, DebtAsset: ev.DebtAsset, User: ev.User,
			DebtToCover:                bigString(ev.DebtToCover),
			LiquidatedCollateralAmount: bigString(ev.LiquidatedCollateralAmount),
			Liquidator:                 ev.Liquidator, ReceiveAToken: ev.ReceiveAToken,
		}
	case *domain.FlashLoanEvent:
		env.Type = TypeFlashLoan
		payload = flashLoanPayload{
			Target: ev.Target, Initiator: ev.Initiator, Asset: ev.Asset,
			Amount: bigString(ev.Amount), Premium: bigString(ev.Premium),
			Referral: ev.Referral,
		}
	case *domain.ReserveUsedAsCollateralEnabledEvent:
		env.Type = TypeCollateralEnable
		payload = collateralPayload{Reserve: ev.Reserve, User: ev.User}
	case *domain.ReserveUsedAsCollateralDisabledEvent:
		env.Type = TypeCollateralDisable
		payload = collateralPayload{Reserve: ev.Reserve, User: ev.User}
	case *domain.ReserveDataUpdatedEvent:
		env.Type = TypeReserveData
		payload = reserveDataPayload{
			Reserve:             ev.Reserve,
			LiquidityRate:       bigString(ev.LiquidityRate),
			StableBorrowRate:    bigString(ev.StableBorrowRate),
			VariableBorrowRate:  bigString(ev.VariableBorrowRate),
			LiquidityIndex:      bigString(ev.LiquidityIndex),
			VariableBorrowIndex: bigString(ev.VariableBorrowIndex),
		}
	case *domain.PausedEvent:
		env.Type = TypePaused
	case *domain.UnpausedEvent:
		env.Type = TypeUnpaused
	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}
