package ledger

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Position ledger: notional-size records only, no collateral escrow.
// Ids come from a global monotonic counter, so two opens can never collide
// the way blocktime-derived ids could.

// Position is a leveraged exposure record. Size is notional
// (amount x leverage); closing zeroes the size but retains the record.
type Position struct {
	ID       uint64         `json:"id"`
	Owner    common.Address `json:"owner"`
	Size     *uint256.Int   `json:"size"`
	Leverage uint32         `json:"leverage"`
	OpenedAt int64          `json:"openedAt"` // Unix milliseconds
	Closed   bool           `json:"closed"`
}

// OpenPosition records a new position of size amount x leverage for the
// caller and returns its id. Leverage must be in [1, max_leverage].
func (l *Ledger) OpenPosition(caller common.Address, amount *uint256.Int, leverage uint32) (uint64, error) {
	if err := l.requireNotPaused(); err != nil {
		return 0, err
	}
	if leverage == 0 {
		return 0, ErrInvalidAmount
	}
	max, err := l.MaxLeverage()
	if err != nil {
		return 0, err
	}
	if leverage > max {
		return 0, ErrInvalidAmount
	}

	size, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(uint64(leverage)))
	if overflow {
		return 0, ErrAmountOverflow
	}

	counter, err := state.GetU64(l.kv, state.KeyPositionCounter)
	if err != nil {
		return 0, err
	}
	id := counter + 1
	if err := state.PutU64(l.kv, state.KeyPositionCounter, id); err != nil {
		return 0, err
	}

	pos := &Position{
		ID:       id,
		Owner:    caller,
		Size:     size,
		Leverage: leverage,
		OpenedAt: l.clock.Now().UnixMilli(),
	}
	if err := l.putPosition(pos); err != nil {
		return 0, err
	}
	return id, nil
}

// ClosePosition zeroes the position's size. Only the recorded owner may
// close; an unknown id is indistinguishable from a foreign one and is
// rejected the same way.
func (l *Ledger) ClosePosition(caller common.Address, id uint64) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	pos, err := l.getPosition(caller, id)
	if err != nil {
		return err
	}
	if pos == nil || pos.Owner != caller {
		return ErrUnauthorized
	}

	pos.Size = uint256.NewInt(0)
	pos.Closed = true
	return l.putPosition(pos)
}

// GetPosition returns a position record, nil if it does not exist.
func (l *Ledger) GetPosition(owner common.Address, id uint64) (*Position, error) {
	return l.getPosition(owner, id)
}

func (l *Ledger) getPosition(owner common.Address, id uint64) (*Position, error) {
	val, ok, err := l.kv.Get(state.PositionKey(owner, id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var pos Position
	if err := json.Unmarshal(val, &pos); err != nil {
		return nil, err
	}
	if pos.Size == nil {
		pos.Size = uint256.NewInt(0)
	}
	return &pos, nil
}

func (l *Ledger) putPosition(pos *Position) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return l.kv.Set(state.PositionKey(pos.Owner, pos.ID), data)
}
