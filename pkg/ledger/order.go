package ledger

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/pkg/state"
)

// Order registry: lifecycle records only. Orders are never matched here;
// an external party marks them executed. No balance is escrowed or
// validated on creation.

// OrderKind discriminates limit buys, limit sells, and stop-loss orders.
type OrderKind uint8

const (
	OrderBuy OrderKind = iota
	OrderSell
	OrderStop
)

func (k OrderKind) String() string {
	switch k {
	case OrderBuy:
		return "buy"
	case OrderSell:
		return "sell"
	case OrderStop:
		return "stop"
	default:
		return "unknown"
	}
}

// OrderStatus is the lifecycle state. Cancelled and Executed are terminal:
// nothing transitions out of them, though a later cancel/execute still
// overwrites the cell (recording semantics, see CancelOrder/ExecuteOrder).
type OrderStatus uint8

const (
	OrderOpen OrderStatus = iota
	OrderCancelled
	OrderExecuted
)

func (s OrderStatus) String() string {
	switch s {
	case OrderOpen:
		return "open"
	case OrderCancelled:
		return "cancelled"
	case OrderExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// Order is a resting limit or stop order. Price carries the limit price for
// buy/sell orders and the trigger price for stop orders.
type Order struct {
	ID        uint64         `json:"id"`
	Owner     common.Address `json:"owner"`
	Kind      OrderKind      `json:"kind"`
	Amount    *uint256.Int   `json:"amount"`
	Price     *uint256.Int   `json:"price"`
	Status    OrderStatus    `json:"status"`
	CreatedAt int64          `json:"createdAt"` // Unix milliseconds
	UpdatedAt int64          `json:"updatedAt"`
}

// CreateLimitOrder records an open buy or sell order for the caller and
// returns its id, allocated from the strictly increasing order counter.
func (l *Ledger) CreateLimitOrder(caller common.Address, amount, price *uint256.Int, kind OrderKind) (uint64, error) {
	if err := l.requireNotPaused(); err != nil {
		return 0, err
	}
	if kind != OrderBuy && kind != OrderSell {
		return 0, ErrInvalidAmount
	}
	return l.createOrder(caller, amount, price, kind)
}

// CreateStopLoss records an open stop order with a trigger price. Same id
// allocation path as limit orders.
func (l *Ledger) CreateStopLoss(caller common.Address, amount, triggerPrice *uint256.Int) (uint64, error) {
	if err := l.requireNotPaused(); err != nil {
		return 0, err
	}
	return l.createOrder(caller, amount, triggerPrice, OrderStop)
}

func (l *Ledger) createOrder(caller common.Address, amount, price *uint256.Int, kind OrderKind) (uint64, error) {
	counter, err := state.GetU64(l.kv, state.KeyOrderCounter)
	if err != nil {
		return 0, err
	}
	id := counter + 1
	if err := state.PutU64(l.kv, state.KeyOrderCounter, id); err != nil {
		return 0, err
	}

	now := l.clock.Now().UnixMilli()
	ord := &Order{
		ID:        id,
		Owner:     caller,
		Kind:      kind,
		Amount:    amount,
		Price:     price,
		Status:    OrderOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.putOrder(ord); err != nil {
		return 0, err
	}
	return id, nil
}

// CancelOrder marks the caller's order cancelled. Only the recorded owner
// may cancel; an unknown id is rejected the same way as a foreign one. A
// cancel on an already-terminal order still overwrites the status.
func (l *Ledger) CancelOrder(caller common.Address, id uint64) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	ord, err := l.getOrder(caller, id)
	if err != nil {
		return err
	}
	if ord == nil || ord.Owner != caller {
		return ErrUnauthorized
	}

	ord.Status = OrderCancelled
	ord.UpdatedAt = l.clock.Now().UnixMilli()
	return l.putOrder(ord)
}

// ExecuteOrder marks an owner's order executed. Any caller may do this and
// no price or trigger condition is evaluated: the registry records
// execution, it does not enforce it.
func (l *Ledger) ExecuteOrder(caller common.Address, owner common.Address, id uint64) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}

	ord, err := l.getOrder(owner, id)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrUnauthorized
	}

	ord.Status = OrderExecuted
	ord.UpdatedAt = l.clock.Now().UnixMilli()
	return l.putOrder(ord)
}

// GetOrder returns an order record, nil if it does not exist.
func (l *Ledger) GetOrder(owner common.Address, id uint64) (*Order, error) {
	return l.getOrder(owner, id)
}

func (l *Ledger) getOrder(owner common.Address, id uint64) (*Order, error) {
	val, ok, err := l.kv.Get(state.OrderKey(owner, id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var ord Order
	if err := json.Unmarshal(val, &ord); err != nil {
		return nil, err
	}
	return &ord, nil
}

func (l *Ledger) putOrder(ord *Order) error {
	data, err := json.Marshal(ord)
	if err != nil {
		return err
	}
	return l.kv.Set(state.OrderKey(ord.Owner, ord.ID), data)
}
