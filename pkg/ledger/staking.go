package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Staking ledger: per-account stake plus the global total. The total also
// aggregates liquid stake (see liquid.go), so the running invariant is
// total_staked == sum of direct stakes + total_liquid_staked.

// Stake adds amount to the caller's stake and the global total. Zero is
// accepted as a no-op write.
func (l *Ledger) Stake(caller common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	current, err := state.GetU256(l.kv, state.StakeKey(caller))
	if err != nil {
		return err
	}
	newStake, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return ErrAmountOverflow
	}
	if err := state.PutU256(l.kv, state.StakeKey(caller), newStake); err != nil {
		return err
	}

	return l.addU256(state.KeyTotalStaked, amount)
}

// Unstake removes amount from the caller's stake and the global total,
// failing if the caller has staked less than amount.
func (l *Ledger) Unstake(caller common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	current, err := state.GetU256(l.kv, state.StakeKey(caller))
	if err != nil {
		return err
	}
	if current.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := state.PutU256(l.kv, state.StakeKey(caller), new(uint256.Int).Sub(current, amount)); err != nil {
		return err
	}

	return l.subU256(state.KeyTotalStaked, amount)
}

// GetStake returns an account's direct stake, zero for unseen accounts.
func (l *Ledger) GetStake(owner common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.StakeKey(owner))
}

// TotalStaked returns the global staked total across direct and liquid
// staking.
func (l *Ledger) TotalStaked() (*uint256.Int, error) {
	return state.GetU256(l.kv, state.KeyTotalStaked)
}

// addU256 adds amount to a global scalar cell with overflow checking.
func (l *Ledger) addU256(key []byte, amount *uint256.Int) error {
	total, err := state.GetU256(l.kv, key)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(total, amount)
	if overflow {
		return ErrAmountOverflow
	}
	return state.PutU256(l.kv, key, sum)
}

// subU256 subtracts amount from a global scalar cell. Underflow means the
// cell no longer covers what is being released; it surfaces rather than
// wrapping.
func (l *Ledger) subU256(key []byte, amount *uint256.Int) error {
	total, err := state.GetU256(l.kv, key)
	if err != nil {
		return err
	}
	diff, underflow := new(uint256.Int).SubOverflow(total, amount)
	if underflow {
		return ErrInsufficientBalance
	}
	return state.PutU256(l.kv, key, diff)
}
