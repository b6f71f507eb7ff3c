package state

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Cell codecs. Scalars are fixed-width big-endian (or minimal big-endian for
// uint256); an absent cell always decodes to the zero value, matching the
// lazy-zero read contract of every dictionary.

// GetU256 reads a uint256 cell, zero if absent.
func GetU256(kv KV, key []byte) (*uint256.Int, error) {
	val, ok, err := kv.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	if len(val) > 32 {
		return nil, fmt.Errorf("cell %q: value too wide for uint256: %d bytes", key, len(val))
	}
	return new(uint256.Int).SetBytes(val), nil
}

// PutU256 writes a uint256 cell as minimal big-endian bytes.
func PutU256(kv KV, key []byte, v *uint256.Int) error {
	return kv.Set(key, v.Bytes())
}

// GetU64 reads a uint64 cell, zero if absent.
func GetU64(kv KV, key []byte) (uint64, error) {
	val, ok, err := kv.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("cell %q: expected 8 bytes, got %d", key, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// PutU64 writes a uint64 cell as 8-byte big-endian.
func PutU64(kv KV, key []byte, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return kv.Set(key, buf[:])
}

// GetBool reads a boolean cell, false if absent.
func GetBool(kv KV, key []byte) (bool, error) {
	val, ok, err := kv.Get(key)
	if err != nil {
		return false, err
	}
	return ok && len(val) == 1 && val[0] == 1, nil
}

// PutBool writes a boolean cell as a single byte.
func PutBool(kv KV, key []byte, v bool) error {
	if v {
		return kv.Set(key, []byte{1})
	}
	return kv.Set(key, []byte{0})
}

// GetString reads a string cell, empty if absent.
func GetString(kv KV, key []byte) (string, error) {
	val, _, err := kv.Get(key)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// PutString writes a string cell as raw bytes.
func PutString(kv KV, key []byte, v string) error {
	return kv.Set(key, []byte(v))
}

// GetAddress reads an address cell, zero address if absent.
func GetAddress(kv KV, key []byte) (common.Address, error) {
	val, ok, err := kv.Get(key)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, nil
	}
	if len(val) != common.AddressLength {
		return common.Address{}, fmt.Errorf("cell %q: expected %d bytes, got %d", key, common.AddressLength, len(val))
	}
	return common.BytesToAddress(val), nil
}

// PutAddress writes an address cell as its 20 raw bytes.
func PutAddress(kv KV, key []byte, addr common.Address) error {
	return kv.Set(key, addr.Bytes())
}
