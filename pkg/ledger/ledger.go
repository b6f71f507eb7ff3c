// Package ledger implements the accounting core: a fungible token ledger,
// staking and liquid-staking ledgers, a leveraged position ledger, a vault
// share ledger, and an order lifecycle registry, all over a key-value cell
// store. Every mutating operation is a read-check-write sequence; writes
// land in the caller's transaction and become visible only if the whole
// call succeeds.
package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
	"github.com/casperflow/casperflow/pkg/util"
)

// RatioScale is the fixed-point scale of the liquid-staking ratio:
// the ratio cell holds "underlying units per RatioScale derivative units".
const RatioScale = 1_000_000

// Ledger exposes the accounting operations over a cell store. It holds no
// state of its own; bind one per call to the call's transaction.
type Ledger struct {
	kv    state.KV
	clock util.Clock
}

func New(kv state.KV) *Ledger {
	return &Ledger{kv: kv, clock: util.RealClock{}}
}

// NewWithClock builds a ledger with an injected clock for record timestamps.
func NewWithClock(kv state.KV, clock util.Clock) *Ledger {
	return &Ledger{kv: kv, clock: clock}
}

// requireNotPaused heads every mutating operation. The flag defaults to
// false at genesis, so nothing is gated until an admin flips it.
func (l *Ledger) requireNotPaused() error {
	paused, err := state.GetBool(l.kv, state.KeyPaused)
	if err != nil {
		return err
	}
	if paused {
		return ErrContractPaused
	}
	return nil
}

// requireAdmin gates the capability entry points on the admin cell set at
// genesis.
func (l *Ledger) requireAdmin(caller common.Address) error {
	admin, err := state.GetAddress(l.kv, state.KeyAdmin)
	if err != nil {
		return err
	}
	if caller != admin {
		return ErrUnauthorized
	}
	return nil
}

// Admin returns the admin account recorded at genesis.
func (l *Ledger) Admin() (common.Address, error) {
	return state.GetAddress(l.kv, state.KeyAdmin)
}

// Paused reports the global kill switch.
func (l *Ledger) Paused() (bool, error) {
	return state.GetBool(l.kv, state.KeyPaused)
}

// MaxLeverage returns the position leverage cap.
func (l *Ledger) MaxLeverage() (uint32, error) {
	v, err := state.GetU64(l.kv, state.KeyMaxLeverage)
	return uint32(v), err
}

// SetPaused flips the global kill switch. Admin only.
func (l *Ledger) SetPaused(caller common.Address, paused bool) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	return state.PutBool(l.kv, state.KeyPaused, paused)
}

// SetMaxLeverage updates the position leverage cap. Admin only; zero is
// rejected because it would make every open fail.
func (l *Ledger) SetMaxLeverage(caller common.Address, max uint32) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if max == 0 {
		return ErrInvalidAmount
	}
	return state.PutU64(l.kv, state.KeyMaxLeverage, uint64(max))
}

// SetLiquidStakeRatio updates the liquid-staking conversion factor. Admin
// only. This is the capability point through which reward accrual would
// move the ratio; no automatic accrual runs inside the core.
func (l *Ledger) SetLiquidStakeRatio(caller common.Address, ratio *uint256.Int) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	return state.PutU256(l.kv, state.KeyLiquidRatio, ratio)
}
