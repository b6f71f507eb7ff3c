package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Vault ledger: 1:1 share accounting, no share-price mechanism. Invariant:
// sum of all shares equals the vault total.

// VaultDeposit credits amount of shares to the caller and the vault total.
func (l *Ledger) VaultDeposit(caller common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	current, err := state.GetU256(l.kv, state.VaultKey(caller))
	if err != nil {
		return err
	}
	newShares, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return ErrAmountOverflow
	}
	if err := state.PutU256(l.kv, state.VaultKey(caller), newShares); err != nil {
		return err
	}

	return l.addU256(state.KeyVaultTotal, amount)
}

// VaultWithdraw debits amount of shares from the caller and the vault
// total, failing if the caller holds fewer shares than amount.
func (l *Ledger) VaultWithdraw(caller common.Address, amount *uint256.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	current, err := state.GetU256(l.kv, state.VaultKey(caller))
	if err != nil {
		return err
	}
	if current.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := state.PutU256(l.kv, state.VaultKey(caller), new(uint256.Int).Sub(current, amount)); err != nil {
		return err
	}

	return l.subU256(state.KeyVaultTotal, amount)
}

// VaultShares returns an account's vault shares, zero for unseen accounts.
func (l *Ledger) VaultShares(owner common.Address) (*uint256.Int, error) {
	return state.GetU256(l.kv, state.VaultKey(owner))
}

// VaultTotal returns the global share total.
func (l *Ledger) VaultTotal() (*uint256.Int, error) {
	return state.GetU256(l.kv, state.KeyVaultTotal)
}
