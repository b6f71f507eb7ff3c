package ledger_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/ledger"
)

func TestVaultDepositWithdraw(t *testing.T) {
	h := newTestHost(t)

	exec(t, h, "vault_deposit", alice, func(l *ledger.Ledger) error { return l.VaultDeposit(alice, u(800)) })
	exec(t, h, "vault_deposit", bob, func(l *ledger.Ledger) error { return l.VaultDeposit(bob, u(200)) })
	exec(t, h, "vault_withdraw", alice, func(l *ledger.Ledger) error { return l.VaultWithdraw(alice, u(300)) })

	if got := readU256(t, h, func(l *ledger.Ledger) (*uint256.Int, error) { return l.VaultShares(alice) }); !got.Eq(u(500)) {
		t.Errorf("alice shares = %s, want 500", got.Dec())
	}
	if got := readU256(t, h, func(l *ledger.Ledger) (*uint256.Int, error) { return l.VaultShares(bob) }); !got.Eq(u(200)) {
		t.Errorf("bob shares = %s, want 200", got.Dec())
	}
	// Shares are 1:1; the total always equals the sum of holdings.
	if got := readU256(t, h, func(l *ledger.Ledger) (*uint256.Int, error) { return l.VaultTotal() }); !got.Eq(u(700)) {
		t.Errorf("vault total = %s, want 700", got.Dec())
	}
}

func TestVaultWithdrawInsufficientShares(t *testing.T) {
	h := newTestHost(t)

	exec(t, h, "vault_deposit", alice, func(l *ledger.Ledger) error { return l.VaultDeposit(alice, u(100)) })

	err := execErr(t, h, "vault_withdraw", alice, func(l *ledger.Ledger) error { return l.VaultWithdraw(alice, u(101)) })
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	if got := readU256(t, h, func(l *ledger.Ledger) (*uint256.Int, error) { return l.VaultShares(alice) }); !got.Eq(u(100)) {
		t.Errorf("shares = %s, want 100", got.Dec())
	}
	if got := readU256(t, h, func(l *ledger.Ledger) (*uint256.Int, error) { return l.VaultTotal() }); !got.Eq(u(100)) {
		t.Errorf("vault total = %s, want 100", got.Dec())
	}
}
