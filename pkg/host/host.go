// Package host provides the execution boundary around the ledger: one
// transaction per external call, committed only if the operation succeeds.
// The ledger never compensates for partial failures; this wrapper is what
// makes that safe.
package host

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/casperflow/casperflow/params"
	"github.com/casperflow/casperflow/pkg/ledger"
	"github.com/casperflow/casperflow/pkg/state"
	"github.com/casperflow/casperflow/pkg/util"
)

type Host struct {
	store *state.Store
	log   *zap.Logger
	clock util.Clock
}

func New(store *state.Store, log *zap.Logger) *Host {
	return &Host{store: store, log: log, clock: util.RealClock{}}
}

// EnsureGenesis bootstraps a fresh store. On an already-installed store it
// is a no-op, so restarts are safe.
func (h *Host) EnsureGenesis(g params.Genesis) error {
	tx := h.store.Begin()
	defer tx.Discard()

	installed, err := ledger.Installed(tx)
	if err != nil {
		return err
	}
	if installed {
		return nil
	}

	if err := ledger.Genesis(tx, g); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	h.log.Info("genesis_installed",
		zap.String("token", g.TokenName),
		zap.String("symbol", g.TokenSymbol),
		zap.String("deployer", g.Deployer.Hex()),
		zap.String("supply", g.TotalSupply.Dec()),
	)
	return nil
}

// Execute runs one mutating entry-point call. All writes the operation
// makes, including ones issued before a failing check, are discarded as a
// unit when it returns an error.
func (h *Host) Execute(op string, caller common.Address, fn func(*ledger.Ledger) error) error {
	start := h.clock.Now()

	tx := h.store.Begin()
	defer tx.Discard()

	l := ledger.NewWithClock(tx, h.clock)
	if err := fn(l); err != nil {
		h.log.Info("call_reverted",
			zap.String("op", op),
			zap.String("caller", caller.Hex()),
			zap.Int("code", ledger.Code(err)),
			zap.Error(err),
		)
		return err
	}
	if err := tx.Commit(); err != nil {
		h.log.Error("call_commit_failed",
			zap.String("op", op),
			zap.String("caller", caller.Hex()),
			zap.Error(err),
		)
		return err
	}

	h.log.Info("call_committed",
		zap.String("op", op),
		zap.String("caller", caller.Hex()),
		zap.Duration("took", h.clock.Now().Sub(start)),
	)
	return nil
}

// View runs a read-only entry point directly against the store. Reads are
// pure; nothing to roll back.
func (h *Host) View(fn func(*ledger.Ledger) error) error {
	return fn(ledger.NewWithClock(h.store, h.clock))
}

// Now exposes the host clock, the sole time source for record timestamps.
func (h *Host) Now() time.Time {
	return h.clock.Now()
}
