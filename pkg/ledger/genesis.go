package ledger

import (
	"github.com/holiman/uint256"

	"github.com/casperflow/casperflow/params"
	"github.com/casperflow/casperflow/pkg/state"
)

// Genesis seeds every global cell and mints the full supply to the
// deployer, who becomes admin. Runs once; Installed reports whether a
// store already carries a ledger.
func Genesis(kv state.KV, g params.Genesis) error {
	if err := state.PutString(kv, state.KeyName, g.TokenName); err != nil {
		return err
	}
	if err := state.PutString(kv, state.KeySymbol, g.TokenSymbol); err != nil {
		return err
	}
	if err := state.PutU64(kv, state.KeyDecimals, uint64(g.Decimals)); err != nil {
		return err
	}
	if err := state.PutU256(kv, state.KeyTotalSupply, g.TotalSupply); err != nil {
		return err
	}
	if err := state.PutAddress(kv, state.KeyAdmin, g.Deployer); err != nil {
		return err
	}
	if err := state.PutBool(kv, state.KeyPaused, false); err != nil {
		return err
	}
	if err := state.PutU64(kv, state.KeyMaxLeverage, uint64(g.MaxLeverage)); err != nil {
		return err
	}
	if err := state.PutU256(kv, state.KeyTotalStaked, uint256.NewInt(0)); err != nil {
		return err
	}
	if err := state.PutU256(kv, state.KeyVaultTotal, uint256.NewInt(0)); err != nil {
		return err
	}
	if err := state.PutU256(kv, state.KeyLiquidRatio, g.Ratio); err != nil {
		return err
	}
	if err := state.PutU256(kv, state.KeyTotalLiquid, uint256.NewInt(0)); err != nil {
		return err
	}
	if err := state.PutU64(kv, state.KeyOrderCounter, 0); err != nil {
		return err
	}
	if err := state.PutU64(kv, state.KeyPositionCounter, 0); err != nil {
		return err
	}

	// Entire supply starts in the deployer's balance.
	return state.PutU256(kv, state.BalanceKey(g.Deployer), g.TotalSupply)
}

// Installed reports whether genesis has already run against this store.
func Installed(kv state.KV) (bool, error) {
	_, ok, err := kv.Get(state.KeyAdmin)
	return ok, err
}
