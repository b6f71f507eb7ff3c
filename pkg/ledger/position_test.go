package ledger_test

import (
	"errors"
	"testing"

	"github.com/casperflow/casperflow/pkg/ledger"
)

func TestOpenPositionComputesNotionalSize(t *testing.T) {
	h := newTestHost(t)

	var id uint64
	exec(t, h, "open_position", alice, func(l *ledger.Ledger) error {
		var err error
		id, err = l.OpenPosition(alice, u(1000), 10)
		return err
	})

	var pos *ledger.Position
	if err := h.View(func(l *ledger.Ledger) error {
		var err error
		pos, err = l.GetPosition(alice, id)
		return err
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if pos == nil {
		t.Fatal("position not found")
	}
	if !pos.Size.Eq(u(10_000)) {
		t.Errorf("size = %s, want 10000 (amount x leverage)", pos.Size.Dec())
	}
	if pos.Owner != alice {
		t.Errorf("owner = %s, want %s", pos.Owner.Hex(), alice.Hex())
	}
	if pos.Leverage != 10 {
		t.Errorf("leverage = %d, want 10", pos.Leverage)
	}
	if pos.Closed {
		t.Error("fresh position must not be closed")
	}
}

func TestPositionIDsAreUniqueAndIncreasing(t *testing.T) {
	h := newTestHost(t)

	var prev uint64
	for i := 0; i < 5; i++ {
		var id uint64
		exec(t, h, "open_position", alice, func(l *ledger.Ledger) error {
			var err error
			id, err = l.OpenPosition(alice, u(100), 2)
			return err
		})
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}

	// Ids come from one global counter; another account continues it.
	var id uint64
	exec(t, h, "open_position", bob, func(l *ledger.Ledger) error {
		var err error
		id, err = l.OpenPosition(bob, u(100), 2)
		return err
	})
	if id <= prev {
		t.Fatalf("cross-account id %d not greater than %d", id, prev)
	}
}

func TestClosePositionZeroesSizeAndRetainsRecord(t *testing.T) {
	h := newTestHost(t)

	var id uint64
	exec(t, h, "open_position", alice, func(l *ledger.Ledger) error {
		var err error
		id, err = l.OpenPosition(alice, u(500), 4)
		return err
	})
	exec(t, h, "close_position", alice, func(l *ledger.Ledger) error {
		return l.ClosePosition(alice, id)
	})

	var pos *ledger.Position
	if err := h.View(func(l *ledger.Ledger) error {
		var err error
		pos, err = l.GetPosition(alice, id)
		return err
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if pos == nil {
		t.Fatal("closed position record must be retained")
	}
	if !pos.Size.IsZero() {
		t.Errorf("size after close = %s, want 0", pos.Size.Dec())
	}
	if !pos.Closed {
		t.Error("position not marked closed")
	}
}

func TestClosePositionOwnership(t *testing.T) {
	h := newTestHost(t)

	var id uint64
	exec(t, h, "open_position", alice, func(l *ledger.Ledger) error {
		var err error
		id, err = l.OpenPosition(alice, u(500), 4)
		return err
	})

	// A foreign caller cannot close it, and an unknown id looks the same.
	err := execErr(t, h, "close_position", bob, func(l *ledger.Ledger) error {
		return l.ClosePosition(bob, id)
	})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("foreign close: got %v, want ErrUnauthorized", err)
	}

	err = execErr(t, h, "close_position", alice, func(l *ledger.Ledger) error {
		return l.ClosePosition(alice, id+100)
	})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("unknown id close: got %v, want ErrUnauthorized", err)
	}
}

func TestOpenPositionLeverageBounds(t *testing.T) {
	h := newTestHost(t)

	cases := []struct {
		name     string
		leverage uint32
	}{
		{"zero leverage", 0},
		{"above cap", 101}, // genesis cap is 100
	}
	for _, tc := range cases {
		err := execErr(t, h, "open_position", alice, func(l *ledger.Ledger) error {
			_, err := l.OpenPosition(alice, u(100), tc.leverage)
			return err
		})
		if !errors.Is(err, ledger.ErrInvalidAmount) {
			t.Errorf("%s: got %v, want ErrInvalidAmount", tc.name, err)
		}
	}

	// The cap itself is allowed.
	exec(t, h, "open_position", alice, func(l *ledger.Ledger) error {
		_, err := l.OpenPosition(alice, u(100), 100)
		return err
	})
}
