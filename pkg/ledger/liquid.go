package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Liquid staking engine. The global ratio expresses "underlying units per
// RatioScale derivative units"; all conversions truncate. Mint credits the
// caller's liquid stake in underlying units and their derivative balance in
// derivative units; burn debits the derivative balance by the derivative
// amount but debits the three underlying-denominated cells by the converted
// underlying amount. That mixed-unit symmetry is deliberate: it keeps one
// global staked figure across direct and liquid staking, at the cost of a
// rounding-drift surface when the ratio moves between mint and burn. Drift
// underflow surfaces as an error, it never wraps.

var ratioScale = uint256.NewInt(RatioScale)

// StakeForLiquid deposits amount of underlying and mints derivative tokens
// at the current ratio. A zero ratio is the degenerate bootstrap case and
// mints 1:1.
func (l *Ledger) StakeForLiquid(caller common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	ratio, err := state.GetU256(l.kv, state.KeyLiquidRatio)
	if err != nil {
		return err
	}

	minted := new(uint256.Int)
	if ratio.IsZero() {
		minted.Set(amount)
	} else {
		// amount * RatioScale / ratio with a full-width intermediate.
		if _, overflow := minted.MulDivOverflow(amount, ratioScale, ratio); overflow {
			return ErrAmountOverflow
		}
	}

	liquid, err := state.GetU256(l.kv, state.LiquidStakeKey(caller))
	if err != nil {
		return err
	}
	newLiquid, overflow := new(uint256.Int).AddOverflow(liquid, amount)
	if overflow {
		return ErrAmountOverflow
	}
	if err := state.PutU256(l.kv, state.LiquidStakeKey(caller), newLiquid); err != nil {
		return err
	}

	deriv, err := state.GetU256(l.kv, state.DerivativeKey(caller))
	if err != nil {
		return err
	}
	newDeriv, overflow := new(uint256.Int).AddOverflow(deriv, minted)
	if overflow {
		return ErrAmountOverflow
	}
	if err := state.PutU256(l.kv, state.DerivativeKey(caller), newDeriv); err != nil {
		return err
	}

	if err := l.addU256(state.KeyTotalLiquid, amount); err != nil {
		return err
	}
	// Liquid stake also counts toward the global staked total.
	return l.addU256(state.KeyTotalStaked, amount)
}

// UnstakeLiquid burns derivativeAmount of derivative tokens and releases
// the converted underlying amount from the liquid ledgers.
func (l *Ledger) UnstakeLiquid(caller common.Address, derivativeAmount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	ratio, err := state.GetU256(l.kv, state.KeyLiquidRatio)
	if err != nil {
		return err
	}

	underlying := new(uint256.Int)
	if ratio.IsZero() {
		underlying.Set(derivativeAmount)
	} else {
		// derivativeAmount * ratio / RatioScale, truncating.
		if _, overflow := underlying.MulDivOverflow(derivativeAmount, ratio, ratioScale); overflow {
			return ErrAmountOverflow
		}
	}

	deriv, err := state.GetU256(l.kv, state.DerivativeKey(caller))
	if err != nil {
		return err
	}
	if deriv.Lt(derivativeAmount) {
		return ErrInsufficientBalance
	}
	if err := state.PutU256(l.kv, state.DerivativeKey(caller), new(uint256.Int).Sub(deriv, derivativeAmount)); err != nil {
		return err
	}

	// The remaining debits are in underlying units. Repeated mint/burn at a
	// changing ratio can leave the per-account cell short of the converted
	// amount; that underflow must surface, not wrap.
	liquid, err := state.GetU256(l.kv, state.LiquidStakeKey(caller))
	if err != nil {
		return err
	}
	newLiquid, underflow := new(uint256.Int).SubOverflow(liquid, underlying)
	if underflow {
		return ErrInsufficientBalance
	}
	if err := state.PutU256(l.kv, state.LiquidStakeKey(caller), newLiquid); err != nil {
		return err
	}

	if err := l.subU256(state.KeyTotalLiquid, underlying); err != nil {
		return err
	}
	return l.subU256(state.KeyTotalStaked, underlying)
}

// LiquidStakeRatio returns the global conversion factor.
func (l *Ledger) LiquidStakeRatio() (*uint256.Int, error) {
	return state.GetU256(l.kv, state.KeyLiquidRatio)
}

// DerivativeBalanceOf returns an account's derivative token balance, zero
// for unseen accounts.
func (l *Ledger) DerivativeBalanceOf(owner common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.DerivativeKey(owner))
}

// LiquidStakeOf returns the underlying amount an account has contributed
// through liquid staking, zero for unseen accounts.
func (l *Ledger) LiquidStakeOf(owner common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.LiquidStakeKey(owner))
}

// TotalLiquidStaked returns the global liquid-staked underlying total.
func (l *Ledger) TotalLiquidStaked() (*uint256.Int, error) {
	return state.GetU256(l.kv, state.KeyTotalLiquid)
}
