package domain

import "math/big"

// ActionKind tags each history action variant. The kind participates in
// history ID generation so distinct kinds sharing event coordinates
// never collide.
type ActionKind string

const (
	ActionDeposit           ActionKind = "deposit"
	ActionRedeemUnderlying  ActionKind = "redeem-underlying"
	ActionBorrow            ActionKind = "borrow"
	ActionRepay             ActionKind = "repay"
	ActionSwap              ActionKind = "swap"
	ActionRebalance         ActionKind = "rebalance-stable-borrow-rate"
	ActionLiquidationCall   ActionKind = "liquidation-call"
	ActionFlashLoan         ActionKind = "flash-loan"
	ActionUsageAsCollateral ActionKind = "usage-as-collateral"
	ActionReserveParams     ActionKind = "reserve-params"
)

// String returns the string representation of ActionKind.
func (k ActionKind) String() string {
	return string(k)
}

// DepositAction is the immutable record of one deposit.
type DepositAction struct {
	ID          string
	Pool        string
	User        string
	OnBehalfOf  string
	UserReserve string
	Reserve     string
	Amount      *big.Int
	Referrer    string // empty unless the event carried a non-zero referral code
	Timestamp   int64
}

// RedeemUnderlyingAction is the immutable record of one withdrawal.
type RedeemUnderlyingAction struct {
	ID          string
	Pool        string
	User        string
	OnBehalfOf  string // withdrawal recipient
	UserReserve string
	Reserve     string
	Amount      *big.Int
	Timestamp   int64
}

// BorrowAction is the immutable record of one borrow. Debt fields are
// snapshots of the user reserve as of immediately before the event.
type BorrowAction struct {
	ID                string
	Pool              string
	User              string
	OnBehalfOf        string
	UserReserve       string
	Reserve           string
	Amount            *big.Int
	StableTokenDebt   *big.Int
	VariableTokenDebt *big.Int
	BorrowRate        *big.Int
	BorrowRateMode    RateMode
	Referrer          string
	Timestamp         int64
}

// RepayAction is the immutable record of one repayment.
type RepayAction struct {
	ID          string
	Pool        string
	User        string
	OnBehalfOf  string // repayer
	UserReserve string
	Reserve     string
	Amount      *big.Int
	Timestamp   int64
}

// SwapAction is the immutable record of one rate mode swap.
type SwapAction struct {
	ID                 string
	Pool               string
	User               string
	UserReserve        string
	Reserve            string
	BorrowRateModeFrom RateMode
	BorrowRateModeTo   RateMode
	StableBorrowRate   *big.Int // reserve snapshot at event time
	VariableBorrowRate *big.Int
	Timestamp          int64
}

// RebalanceStableBorrowRateAction is the immutable record of one rebalance.
type RebalanceStableBorrowRateAction struct {
	ID             string
	Pool           string
	User           string
	UserReserve    string
	Reserve        string
	BorrowRateFrom *big.Int
	BorrowRateTo   *big.Int
	Timestamp      int64
}

// LiquidationCallAction is the immutable record of one liquidation. It
// references both the collateral and the principal reserve pairs.
type LiquidationCallAction struct {
	ID                    string
	Pool                  string
	User                  string
	CollateralReserve     string
	CollateralUserReserve string
	CollateralAmount      *big.Int
	PrincipalReserve      string
	PrincipalUserReserve  string
	PrincipalAmount       *big.Int
	Liquidator            string
	Timestamp             int64
}

// FlashLoanAction is the immutable record of one flash loan.
type FlashLoanAction struct {
	ID        string
	Pool      string
	Reserve   string
	Target    string
	Initiator string
	TotalFee  *big.Int
	Amount    *big.Int
	Timestamp int64
}

// UsageAsCollateralAction is the immutable record of one collateral
// toggle. FromState is captured before the user reserve is mutated.
type UsageAsCollateralAction struct {
	ID          string
	Pool        string
	User        string
	UserReserve string
	Reserve     string
	FromState   bool
	ToState     bool
	Timestamp   int64
}

// ReserveParamsHistoryItem is a timeseries snapshot of reserve rates
// and indices, emitted on every reserve data update.
type ReserveParamsHistoryItem struct {
	ID                  string
	Reserve             string
	LiquidityRate       *big.Int
	StableBorrowRate    *big.Int
	VariableBorrowRate  *big.Int
	LiquidityIndex      *big.Int
	VariableBorrowIndex *big.Int
	Timestamp           int64
}
