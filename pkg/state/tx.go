package state

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Tx is a write-buffered overlay over the Store: one Tx per external call.
// Reads see the call's own pending writes; Commit flushes everything through
// a single Pebble batch, Discard drops it. This is the all-or-nothing
// boundary the ledger relies on: a failed call must leave the store exactly
// as it was, including writes issued before the failing check.
type Tx struct {
	store   *Store
	pending map[string][]byte
	order   []string // commit in write order, last write per key wins in pending
	done    bool
}

// Begin opens a new transaction over the store.
func (s *Store) Begin() *Tx {
	return &Tx{
		store:   s,
		pending: make(map[string][]byte),
	}
}

func (tx *Tx) Get(key []byte) ([]byte, bool, error) {
	if val, ok := tx.pending[string(key)]; ok {
		out := make([]byte, len(val))
		copy(out, val)
		return out, true, nil
	}
	return tx.store.Get(key)
}

func (tx *Tx) Set(key, value []byte) error {
	if tx.done {
		return fmt.Errorf("set on finished transaction")
	}
	k := string(key)
	if _, seen := tx.pending[k]; !seen {
		tx.order = append(tx.order, k)
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	tx.pending[k] = buf
	return nil
}

// Commit writes all pending cells atomically.
func (tx *Tx) Commit() error {
	if tx.done {
		return fmt.Errorf("commit on finished transaction")
	}
	tx.done = true

	if len(tx.pending) == 0 {
		return nil
	}

	batch := tx.store.db.NewBatch()
	defer batch.Close()

	for _, k := range tx.order {
		if err := batch.Set([]byte(k), tx.pending[k], nil); err != nil {
			return fmt.Errorf("failed to stage %q: %w", k, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Discard drops all pending writes. Safe to call after Commit; it is a no-op
// on a finished transaction, which lets callers defer it unconditionally.
func (tx *Tx) Discard() {
	tx.done = true
	tx.pending = nil
	tx.order = nil
}

var _ KV = (*Tx)(nil)
