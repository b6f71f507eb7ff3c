package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Fungible token ledger: balances plus (owner, spender) allowances.
// Invariant: the sum of all balances equals the total supply; only genesis
// mints.

func (l *Ledger) Name() (string, error) {
	return state.GetString(l.kv, state.KeyName)
}

func (l *Ledger) Symbol() (string, error) {
	return state.GetString(l.kv, state.KeySymbol)
}

func (l *Ledger) Decimals() (uint8, error) {
	v, err := state.GetU64(l.kv, state.KeyDecimals)
	return uint8(v), err
}

func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return state.GetU256(l.kv, state.KeyTotalSupply)
}

// BalanceOf returns an account's token balance, zero for unseen accounts.
func (l *Ledger) BalanceOf(owner common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.BalanceKey(owner))
}

// Transfer moves amount from the caller to the recipient. A self-transfer
// with sufficient balance is value-neutral but still performs both writes:
// the debit lands first, so the recipient read sees it and the credit
// composes on the debited balance.
func (l *Ledger) Transfer(caller, recipient common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	fromBal, err := state.GetU256(l.kv, state.BalanceKey(caller))
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := state.PutU256(l.kv, state.BalanceKey(caller), new(uint256.Int).Sub(fromBal, amount)); err != nil {
		return err
	}

	toBal, err := state.GetU256(l.kv, state.BalanceKey(recipient))
	if err != nil {
		return err
	}
	newTo, overflow := new(uint256.Int).AddOverflow(toBal, amount)
	if overflow {
		return ErrAmountOverflow
	}
	return state.PutU256(l.kv, state.BalanceKey(recipient), newTo)
}

// Approve overwrites the (caller, spender) allowance. Not additive, and no
// operation spends allowances; the pair is kept as the contract shipped it.
func (l *Ledger) Approve(caller, spender common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}
	return state.PutU256(l.kv, state.AllowanceKey(caller, spender), amount)
}

// Allowance returns the (owner, spender) allowance, zero if never approved.
func (l *Ledger) Allowance(owner, spender common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.AllowanceKey(owner, spender))
}
