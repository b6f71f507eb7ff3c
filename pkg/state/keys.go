package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

// Key schema for the ledger cells.
// Design principles:
// 1. Short prefix per dictionary, canonical hex address as the principal part
// 2. Numeric sub-ids zero-padded so keys sort in allocation order
// 3. No iteration over a whole dictionary is ever required; every operation
//    addresses exactly the cells it touches

// Dictionary prefixes
const (
	prefixBalance    = "bal:" // fungible token balances
	prefixAllowance  = "alw:" // (owner, spender) allowances
	prefixStake      = "stk:" // direct stake per account
	prefixPosition   = "pos:" // leveraged positions
	prefixVault      = "vlt:" // vault shares
	prefixLiquid     = "liq:" // liquid-staked underlying per account
	prefixDerivative = "drv:" // derivative token balances
	prefixOrder      = "ord:" // resting orders
)

// Global scalar cells, one value each.
var (
	KeyName            = []byte("m:name")
	KeySymbol          = []byte("m:symbol")
	KeyDecimals        = []byte("m:decimals")
	KeyTotalSupply     = []byte("m:total_supply")
	KeyAdmin           = []byte("m:admin")
	KeyPaused          = []byte("m:paused")
	KeyTotalStaked     = []byte("m:total_staked")
	KeyMaxLeverage     = []byte("m:max_leverage")
	KeyVaultTotal      = []byte("m:vault_total")
	KeyLiquidRatio     = []byte("m:liquid_ratio")
	KeyTotalLiquid     = []byte("m:total_liquid_staked")
	KeyOrderCounter    = []byte("m:order_counter")
	KeyPositionCounter = []byte("m:position_counter")
)

// BalanceKey returns the cell key for an account's token balance.
// Format: "bal:{address}"
func BalanceKey(addr common.Address) []byte {
	return []byte(prefixBalance + addr.Hex())
}

// AllowanceKey returns the cell key for an (owner, spender) allowance.
// The pair is hashed with blake2b-256, the Casper convention for composite
// dictionary item keys, giving a fixed-length key regardless of inputs.
// Format: "alw:{hex(blake2b256(owner || spender))}"
func AllowanceKey(owner, spender common.Address) []byte {
	var buf [40]byte
	copy(buf[:20], owner.Bytes())
	copy(buf[20:], spender.Bytes())
	sum := blake2b.Sum256(buf[:])
	return []byte(fmt.Sprintf("%s%x", prefixAllowance, sum))
}

// StakeKey returns the cell key for an account's direct stake.
func StakeKey(addr common.Address) []byte {
	return []byte(prefixStake + addr.Hex())
}

// PositionKey returns the cell key for a position record.
// Format: "pos:{address}:{id:020d}"
func PositionKey(addr common.Address, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", prefixPosition, addr.Hex(), id))
}

// VaultKey returns the cell key for an account's vault shares.
func VaultKey(addr common.Address) []byte {
	return []byte(prefixVault + addr.Hex())
}

// LiquidStakeKey returns the cell key for an account's liquid-staked
// underlying amount.
func LiquidStakeKey(addr common.Address) []byte {
	return []byte(prefixLiquid + addr.Hex())
}

// DerivativeKey returns the cell key for an account's derivative balance.
func DerivativeKey(addr common.Address) []byte {
	return []byte(prefixDerivative + addr.Hex())
}

// OrderKey returns the cell key for an order record.
// Format: "ord:{address}:{id:020d}"
func OrderKey(addr common.Address, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", prefixOrder, addr.Hex(), id))
}
