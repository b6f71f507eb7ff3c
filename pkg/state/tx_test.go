package state

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTxReadsOwnWrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Set([]byte("k"), []byte("base")); err != nil {
		t.Fatalf("set: %v", err)
	}

	tx := store.Begin()
	defer tx.Discard()

	val, ok, err := tx.Get([]byte("k"))
	if err != nil || !ok || !bytes.Equal(val, []byte("base")) {
		t.Fatalf("tx read-through = %q, %v, %v; want base", val, ok, err)
	}

	if err := tx.Set([]byte("k"), []byte("pending")); err != nil {
		t.Fatalf("tx set: %v", err)
	}
	val, ok, _ = tx.Get([]byte("k"))
	if !ok || !bytes.Equal(val, []byte("pending")) {
		t.Errorf("tx read after write = %q, want pending", val)
	}

	// The store must not see the pending write.
	val, _, _ = store.Get([]byte("k"))
	if !bytes.Equal(val, []byte("base")) {
		t.Errorf("store sees %q before commit, want base", val)
	}
}

func TestTxDiscardLeavesStoreUntouched(t *testing.T) {
	store := newTestStore(t)

	tx := store.Begin()
	if err := tx.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tx.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	tx.Discard()

	for _, k := range []string{"a", "b"} {
		if _, ok, _ := store.Get([]byte(k)); ok {
			t.Errorf("key %q visible after discard", k)
		}
	}

	if err := tx.Set([]byte("c"), []byte("3")); err == nil {
		t.Error("set on discarded tx must fail")
	}
}

func TestTxCommitIsAtomicAndOrdered(t *testing.T) {
	store := newTestStore(t)

	tx := store.Begin()
	tx.Set([]byte("a"), []byte("1"))
	tx.Set([]byte("b"), []byte("2"))
	tx.Set([]byte("a"), []byte("3")) // last write wins
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	val, ok, _ := store.Get([]byte("a"))
	if !ok || !bytes.Equal(val, []byte("3")) {
		t.Errorf("a = %q, want 3", val)
	}
	val, ok, _ = store.Get([]byte("b"))
	if !ok || !bytes.Equal(val, []byte("2")) {
		t.Errorf("b = %q, want 2", val)
	}

	if err := tx.Commit(); err == nil {
		t.Error("double commit must fail")
	}
}

func TestCodecDefaults(t *testing.T) {
	store := newTestStore(t)

	if v, err := GetU256(store, []byte("missing")); err != nil || !v.IsZero() {
		t.Errorf("GetU256 missing = %v, %v; want 0, nil", v, err)
	}
	if v, err := GetU64(store, []byte("missing")); err != nil || v != 0 {
		t.Errorf("GetU64 missing = %d, %v; want 0, nil", v, err)
	}
	if v, err := GetBool(store, []byte("missing")); err != nil || v {
		t.Errorf("GetBool missing = %v, %v; want false, nil", v, err)
	}
	if v, err := GetString(store, []byte("missing")); err != nil || v != "" {
		t.Errorf("GetString missing = %q, %v; want empty, nil", v, err)
	}
	if v, err := GetAddress(store, []byte("missing")); err != nil || v != (common.Address{}) {
		t.Errorf("GetAddress missing = %v, %v; want zero address, nil", v, err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	store := newTestStore(t)

	big := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	if err := PutU256(store, []byte("u256"), big); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := GetU256(store, []byte("u256"))
	if err != nil || !got.Eq(big) {
		t.Errorf("u256 round trip = %v, %v", got, err)
	}

	if err := PutU64(store, []byte("u64"), 42); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, _ := GetU64(store, []byte("u64")); v != 42 {
		t.Errorf("u64 round trip = %d, want 42", v)
	}

	if err := PutBool(store, []byte("bool"), true); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, _ := GetBool(store, []byte("bool")); !v {
		t.Error("bool round trip = false, want true")
	}

	addr := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	if err := PutAddress(store, []byte("addr"), addr); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, _ := GetAddress(store, []byte("addr")); v != addr {
		t.Errorf("address round trip = %s, want %s", v.Hex(), addr.Hex())
	}
}

func TestAllowanceKeyIsDirectional(t *testing.T) {
	a := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	b := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	if bytes.Equal(AllowanceKey(a, b), AllowanceKey(b, a)) {
		t.Error("allowance key must depend on pair order")
	}
	if !bytes.Equal(AllowanceKey(a, b), AllowanceKey(a, b)) {
		t.Error("allowance key must be deterministic")
	}
}

func TestCompositeKeysSortByID(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	if !bytes.Equal(OrderKey(addr, 1), OrderKey(addr, 1)) {
		t.Error("order key must be deterministic")
	}
	if bytes.Compare(OrderKey(addr, 2), OrderKey(addr, 10)) >= 0 {
		t.Error("order keys must sort in allocation order (zero-padded ids)")
	}
	if bytes.Compare(PositionKey(addr, 9), PositionKey(addr, 100)) >= 0 {
		t.Error("position keys must sort in allocation order")
	}
}
