// Package queryinvalidation computes the deterministic set of cross-module
// cache keys that must be invalidated when a wallet's state changes. It is a
// static dependency graph expressed as a pure function returning data: the
// actual invalidation call belongs to the caller's cache layer, keeping this
// package independent of any caching library's API.
package queryinvalidation

import "strings"

// Module identifies one consumer module that caches per-wallet derivations.
type Module string

// The modules whose cached views depend on a wallet's row set. Any wallet
// mutation (add network, remove network, change primary) must be followed by
// invalidating one key per module, so every module recomputes its view from
// the updated rows instead of serving stale derivations.
const (
	ModuleWalletRegistry    Module = "wallet-registry"
	ModuleWalletByAddress   Module = "wallet-by-address"
	ModuleRiskSummary       Module = "risk-summary"
	ModuleOpportunityAlerts Module = "opportunity-alerts"
	ModuleSessionTracking   Module = "session-tracking"
	ModulePortfolioSummary  Module = "portfolio-summary"
)

// modules lists every dependent module in a fixed order, so DependentKeys is
// deterministic across calls and processes.
var modules = []Module{
	ModuleWalletRegistry,
	ModuleWalletByAddress,
	ModuleRiskSummary,
	ModuleOpportunityAlerts,
	ModuleSessionTracking,
	ModulePortfolioSummary,
}

// Key is one cache key in the consuming query layer, shaped as
// [module, subkey, address] to match array-keyed cache implementations.
// The address is always in its lowercased canonical form.
type Key struct {
	Module  Module `json:"module"`
	Subkey  string `json:"subkey"`
	Address string `json:"address"`
}

// String renders the key in "module:subkey:address" form, which is how the
// redis-backed cache layer stores it.
func (k Key) String() string {
	return string(k.Module) + ":" + k.Subkey + ":" + k.Address
}

// subkeyFor names the per-module derivation that depends on the wallet.
func subkeyFor(module Module) string {
	switch module {
	case ModuleWalletByAddress:
		return "detail"
	case ModuleSessionTracking:
		return "active-wallet"
	default:
		return "by-wallet"
	}
}

// DependentKeys returns the exact key set to invalidate after a mutation of
// the wallet with the given address.
//
// The address is lowercased before key derivation: wallet identity is
// case-insensitive, so every mutation of the same logical wallet must land on
// the same key set no matter which casing the caller supplied.
//
// The result always contains one key per dependent module (six in total), is
// free of duplicates, is identical across repeated calls with the same
// address, and differs between case-insensitively distinct addresses.
func DependentKeys(address string) []Key {
	canonical := strings.ToLower(address)

	keys := make([]Key, 0, len(modules))
	for _, module := range modules {
		keys = append(keys, Key{
			Module:  module,
			Subkey:  subkeyFor(module),
			Address: canonical,
		})
	}
	return keys
}
