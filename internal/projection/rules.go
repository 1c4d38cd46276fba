package projection

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/histid"
	"lending-pool-indexer/internal/observability"
	"lending-pool-indexer/internal/storage"
)

// referrerID lazily materializes a referrer for a non-zero code and
// returns its ID; zero codes yield no referrer at all.
func (e *Engine) referrerID(ctx context.Context, code uint16) (string, error) {
	if code == 0 {
		return "", nil
	}
	referrer, err := e.resolver.Referrer(ctx, code)
	if err != nil {
		return "", err
	}
	return referrer.ID, nil
}

func (e *Engine) applyDeposit(ctx context.Context, ev *domain.DepositEvent) error {
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}

	// A single underlying transaction can conceptually yield more than
	// one deposit sharing coordinates; keep both records queryable.
	id := histid.ComputeActionID(ev.EventMeta, domain.ActionDeposit)
	if _, err := e.history.Deposits.GetByID(ctx, id); err == nil {
		id = histid.Disambiguate(id)
		observability.RecordIDCollision(domain.ActionDeposit.String())
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check deposit id: %w", err)
	}

	referrer, err := e.referrerID(ctx, ev.Referral)
	if err != nil {
		return err
	}

	deposit := &domain.DepositAction{
		ID:          id,
		Pool:        poolReserve.Pool,
		User:        userReserve.User,
		OnBehalfOf:  ev.OnBehalfOf,
		UserReserve: userReserve.ID,
		Reserve:     poolReserve.ID,
		Amount:      ev.Amount,
		Referrer:    referrer,
		Timestamp:   ev.Timestamp,
	}
	if err := e.history.Deposits.Insert(ctx, deposit); err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	observability.RecordActionWritten(domain.ActionDeposit.String())
	return nil
}

func (e *Engine) applyWithdraw(ctx context.Context, ev *domain.WithdrawEvent) error {
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}

	redeem := &domain.RedeemUnderlyingAction{
		ID:          histid.ComputeActionID(ev.EventMeta, domain.ActionRedeemUnderlying),
		Pool:        poolReserve.Pool,
		User:        userReserve.User,
		OnBehalfOf:  ev.To,
		UserReserve: userReserve.ID,
		Reserve:     poolReserve.ID,
		Amount:      ev.Amount,
		Timestamp:   ev.Timestamp,
	}
	if err := e.history.Redeems.Insert(ctx, redeem); err != nil {
		return fmt.Errorf("insert redeem underlying: %w", err)
	}
	observability.RecordActionWritten(domain.ActionRedeemUnderlying.String())
	return nil
}

func (e *Engine) applyBorrow(ctx context.Context, ev *domain.BorrowEvent) error {
	// Debt fields snapshot the position as of immediately before this
	// event; borrow does not itself mutate them here.
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}

	rateMode, err := domain.DecodeRateMode(ev.RateModeCode)
	if err != nil {
		return err
	}

	referrer, err := e.referrerID(ctx, ev.Referral)
	if err != nil {
		return err
	}

	borrow := &domain.BorrowAction{
		ID:                histid.ComputeActionID(ev.EventMeta, domain.ActionBorrow),
		Pool:              poolReserve.Pool,
		User:              ev.User,
		OnBehalfOf:        ev.OnBehalfOf,
		UserReserve:       userReserve.ID,
		Reserve:           poolReserve.ID,
		Amount:            ev.Amount,
		StableTokenDebt:   userReserve.PrincipalStableDebt,
		VariableTokenDebt: userReserve.ScaledVariableDebt,
		BorrowRate:        ev.BorrowRate,
		BorrowRateMode:    rateMode,
		Referrer:          referrer,
		Timestamp:         ev.Timestamp,
	}
	if err := e.history.Borrows.Insert(ctx, borrow); err != nil {
		return fmt.Errorf("insert borrow: %w", err)
	}
	observability.RecordActionWritten(domain.ActionBorrow.String())
	return nil
}

func (e *Engine) applyRepay(ctx context.Context, ev *domain.RepayEvent) error {
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}

	// No reserve fields change on repay; the save keeps the write
	// pattern uniform with the other rules.
	if err := e.entities.Reserves.Save(ctx, poolReserve); err != nil {
		return fmt.Errorf("save reserve: %w", err)
	}

	repay := &domain.RepayAction{
		ID:          histid.ComputeActionID(ev.EventMeta, domain.ActionRepay),
		Pool:        poolReserve.Pool,
		User:        userReserve.User,
		OnBehalfOf:  ev.Repayer,
		UserReserve: userReserve.ID,
		Reserve:     poolReserve.ID,
		Amount:      ev.Amount,
		Timestamp:   ev.Timestamp,
	}
	if err := e.history.Repays.Insert(ctx, repay); err != nil {
		return fmt.Errorf("insert repay: %w", err)
	}
	observability.RecordActionWritten(domain.ActionRepay.String())
	return nil
}

func (e *Engine) applySwap(ctx context.Context, ev *domain.SwapEvent) error {
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}

	modeFrom, err := domain.DecodeRateMode(ev.RateModeCode)
	if err != nil {
		return err
	}

	swap := &domain.SwapAction{
		ID:                 histid.ComputeActionID(ev.EventMeta, domain.ActionSwap),
		Pool:               poolReserve.Pool,
		User:               userReserve.User,
		UserReserve:        userReserve.ID,
		Reserve:            poolReserve.ID,
		BorrowRateModeFrom: modeFrom,
		BorrowRateModeTo:   modeFrom.Other(),
		StableBorrowRate:   poolReserve.StableBorrowRate,
		VariableBorrowRate: poolReserve.VariableBorrowRate,
		Timestamp:          ev.Timestamp,
	}
	if err := e.history.Swaps.Insert(ctx, swap); err != nil {
		return fmt.Errorf("insert swap: %w", err)
	}
	observability.RecordActionWritten(domain.ActionSwap.String())
	return nil
}

func (e *Engine) applyRebalance(ctx context.Context, ev *domain.RebalanceStableBorrowRateEvent) error {
	userReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.Reserve)
	if err != nil {
		return err
	}
	poolReserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}

	rebalance := &domain.RebalanceStableBorrowRateAction{
		ID:             histid.ComputeActionID(ev.EventMeta, domain.ActionRebalance),
		Pool:           poolReserve.Pool,
		User:           ev.User,
		UserReserve:    userReserve.ID,
		Reserve:        poolReserve.ID,
		BorrowRateFrom: userReserve.OldStableBorrowRate,
		BorrowRateTo:   userReserve.StableBorrowRate,
		Timestamp:      ev.Timestamp,
	}
	if err := e.history.Rebalances.Insert(ctx, rebalance); err != nil {
		return fmt.Errorf("insert rebalance: %w", err)
	}
	observability.RecordActionWritten(domain.ActionRebalance.String())
	return nil
}

func (e *Engine) applyLiquidationCall(ctx context.Context, ev *domain.LiquidationCallEvent) error {
	user, err := e.resolver.User(ctx, ev.User)
	if err != nil {
		return err
	}

	collateralReserve, err := e.resolver.Reserve(ctx, ev.CollateralAsset)
	if err != nil {
		return err
	}
	collateralUserReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.CollateralAsset)
	if err != nil {
		return err
	}

	collateralReserve.LifetimeLiquidated = new(big.Int).Add(
		collateralReserve.LifetimeLiquidated, ev.LiquidatedCollateralAmount)
	if err := e.entities.Reserves.Save(ctx, collateralReserve); err != nil {
		return fmt.Errorf("save collateral reserve: %w", err)
	}

	principalUserReserve, err := e.resolver.UserReserve(ctx, ev.User, ev.DebtAsset)
	if err != nil {
		return err
	}
	principalReserve, err := e.resolver.Reserve(ctx, ev.DebtAsset)
	if err != nil {
		return err
	}
	if err := e.entities.Reserves.Save(ctx, principalReserve); err != nil {
		return fmt.Errorf("save principal reserve: %w", err)
	}

	liquidation := &domain.LiquidationCallAction{
		ID:                    histid.ComputeActionID(ev.EventMeta, domain.ActionLiquidationCall),
		Pool:                  collateralReserve.Pool,
		User:                  user.ID,
		CollateralReserve:     collateralReserve.ID,
		CollateralUserReserve: collateralUserReserve.ID,
		CollateralAmount:      ev.LiquidatedCollateralAmount,
		PrincipalReserve:      principalReserve.ID,
		PrincipalUserReserve:  principalUserReserve.ID,
		PrincipalAmount:       ev.DebtToCover,
		Liquidator:            ev.Liquidator,
		Timestamp:             ev.Timestamp,
	}
	if err := e.history.Liquidations.Insert(ctx, liquidation); err != nil {
		return fmt.Errorf("insert liquidation call: %w", err)
	}
	observability.RecordActionWritten(domain.ActionLiquidationCall.String())
	return nil
}

func (e *Engine) applyFlashLoan(ctx context.Context, ev *domain.FlashLoanEvent) error {
	poolReserve, err := e.resolver.Reserve(ctx, ev.Asset)
	if err != nil {
		return err
	}

	premium := ev.Premium

	poolReserve.AvailableLiquidity = new(big.Int).Add(poolReserve.AvailableLiquidity, premium)
	poolReserve.LifetimeFlashLoans = new(big.Int).Add(poolReserve.LifetimeFlashLoans, ev.Amount)
	poolReserve.LifetimeFlashloanProtocolFee = new(big.Int).Add(poolReserve.LifetimeFlashloanProtocolFee, premium)
	poolReserve.LifetimeFeeCollected = new(big.Int).Add(poolReserve.LifetimeFeeCollected, premium)

	if err := e.entities.Reserves.Save(ctx, poolReserve); err != nil {
		return fmt.Errorf("save reserve: %w", err)
	}

	flashLoan := &domain.FlashLoanAction{
		ID:        histid.ComputeActionID(ev.EventMeta, domain.ActionFlashLoan),
		Pool:      poolReserve.Pool,
		Reserve:   poolReserve.ID,
		Target:    ev.Target,
		Initiator: ev.Initiator,
		TotalFee:  premium,
		Amount:    ev.Amount,
		Timestamp: ev.Timestamp,
	}
	if err := e.history.FlashLoans.Insert(ctx, flashLoan); err != nil {
		return fmt.Errorf("insert flash loan: %w", err)
	}
	observability.RecordActionWritten(domain.ActionFlashLoan.String())
	return nil
}

func (e *Engine) applyUsageAsCollateral(ctx context.Context, meta domain.EventMeta, reserve, user string, enabled bool) error {
	poolReserve, err := e.resolver.Reserve(ctx, reserve)
	if err != nil {
		return err
	}
	userReserve, err := e.resolver.UserReserve(ctx, user, reserve)
	if err != nil {
		return err
	}

	// fromState is the value before this event's mutation.
	usage := &domain.UsageAsCollateralAction{
		ID:          histid.ComputeActionID(meta, domain.ActionUsageAsCollateral),
		Pool:        poolReserve.Pool,
		User:        userReserve.User,
		UserReserve: userReserve.ID,
		Reserve:     poolReserve.ID,
		FromState:   userReserve.UsageAsCollateralEnabledOnUser,
		ToState:     enabled,
		Timestamp:   meta.Timestamp,
	}
	if err := e.history.UsageAsCollateral.Insert(ctx, usage); err != nil {
		return fmt.Errorf("insert usage as collateral: %w", err)
	}

	userReserve.UsageAsCollateralEnabledOnUser = enabled
	if err := e.entities.UserReserves.Save(ctx, userReserve); err != nil {
		return fmt.Errorf("save user reserve: %w", err)
	}
	observability.RecordActionWritten(domain.ActionUsageAsCollateral.String())
	return nil
}

func (e *Engine) applyReserveDataUpdated(ctx context.Context, ev *domain.ReserveDataUpdatedEvent) error {
	reserve, err := e.resolver.Reserve(ctx, ev.Reserve)
	if err != nil {
		return err
	}

	reserve.LiquidityRate = ev.LiquidityRate
	reserve.StableBorrowRate = ev.StableBorrowRate
	reserve.VariableBorrowRate = ev.VariableBorrowRate
	reserve.LiquidityIndex = ev.LiquidityIndex
	reserve.VariableBorrowIndex = ev.VariableBorrowIndex
	reserve.LastUpdateTimestamp = ev.Timestamp

	if err := e.entities.Reserves.Save(ctx, reserve); err != nil {
		return fmt.Errorf("save reserve: %w", err)
	}

	// Snapshot-only event: no history action, but the rates feed the
	// analytics timeseries.
	item := &domain.ReserveParamsHistoryItem{
		ID:                  histid.ComputeActionID(ev.EventMeta, domain.ActionReserveParams),
		Reserve:             reserve.ID,
		LiquidityRate:       ev.LiquidityRate,
		StableBorrowRate:    ev.StableBorrowRate,
		VariableBorrowRate:  ev.VariableBorrowRate,
		LiquidityIndex:      ev.LiquidityIndex,
		VariableBorrowIndex: ev.VariableBorrowIndex,
		Timestamp:           ev.Timestamp,
	}
	if err := e.history.ReserveParams.Insert(ctx, item); err != nil {
		return fmt.Errorf("insert reserve params history: %w", err)
	}
	observability.RecordActionWritten(domain.ActionReserveParams.String())
	return nil
}

func (e *Engine) applyPaused(ctx context.Context, meta domain.EventMeta, paused bool) error {
	// Pause events carry no asset; the emitting contract address keys
	// the reserve, mirroring upstream pool-level pause semantics.
	reserve, err := e.resolver.Reserve(ctx, meta.Address)
	if err != nil {
		return err
	}

	reserve.Paused = paused
	if err := e.entities.Reserves.Save(ctx, reserve); err != nil {
		return fmt.Errorf("save reserve: %w", err)
	}
	return nil
}
