package host_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/casperflow/casperflow/params"
	"github.com/casperflow/casperflow/pkg/host"
	"github.com/casperflow/casperflow/pkg/ledger"
	"github.com/casperflow/casperflow/pkg/state"
)

var deployer = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func newTestHost(t *testing.T) *host.Host {
	t.Helper()
	store, err := state.NewStore(filepath.Join(t.TempDir(), "ledger"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	g := params.Default().Genesis
	g.Deployer = deployer
	g.TotalSupply = uint256.NewInt(1000)

	h := host.New(store, zap.NewNop())
	if err := h.EnsureGenesis(g); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return h
}

// TestExecuteDiscardsAllWritesOnFailure is the rollback contract the ledger
// is written against: writes issued before the failing step must vanish
// with the rest of the call.
func TestExecuteDiscardsAllWritesOnFailure(t *testing.T) {
	h := newTestHost(t)
	errBoom := errors.New("boom")

	err := h.Execute("compound_op", deployer, func(l *ledger.Ledger) error {
		if err := l.Stake(deployer, uint256.NewInt(500)); err != nil {
			return err
		}
		if err := l.VaultDeposit(deployer, uint256.NewInt(200)); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want boom", err)
	}

	if err := h.View(func(l *ledger.Ledger) error {
		stake, err := l.GetStake(deployer)
		if err != nil {
			return err
		}
		if !stake.IsZero() {
			t.Errorf("stake = %s after failed call, want 0", stake.Dec())
		}
		shares, err := l.VaultShares(deployer)
		if err != nil {
			return err
		}
		if !shares.IsZero() {
			t.Errorf("vault shares = %s after failed call, want 0", shares.Dec())
		}
		total, err := l.TotalStaked()
		if err != nil {
			return err
		}
		if !total.IsZero() {
			t.Errorf("total staked = %s after failed call, want 0", total.Dec())
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	h := newTestHost(t)

	if err := h.Execute("stake", deployer, func(l *ledger.Ledger) error {
		return l.Stake(deployer, uint256.NewInt(123))
	}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if err := h.View(func(l *ledger.Ledger) error {
		stake, err := l.GetStake(deployer)
		if err != nil {
			return err
		}
		if !stake.Eq(uint256.NewInt(123)) {
			t.Errorf("stake = %s, want 123", stake.Dec())
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

// Calls are serialized by the sequential host; two calls on the same cell
// observe each other's committed effects in order.
func TestExecuteSequencing(t *testing.T) {
	h := newTestHost(t)

	for i := 0; i < 3; i++ {
		if err := h.Execute("stake", deployer, func(l *ledger.Ledger) error {
			return l.Stake(deployer, uint256.NewInt(100))
		}); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}

	if err := h.View(func(l *ledger.Ledger) error {
		total, err := l.TotalStaked()
		if err != nil {
			return err
		}
		if !total.Eq(uint256.NewInt(300)) {
			t.Errorf("total staked = %s, want 300", total.Dec())
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
