// Package walletidentity reconciles per-network wallet rows into canonical,
// address-centric wallet entities and orchestrates the mutations (link, unlink,
// primary election) that keep them consistent.
package walletidentity

import (
	"strings"
	"time"

	"github.com/gabapcia/walletcore/internal/pkg/types"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is a cached balance summary for one wallet on one network,
// produced by the external balance-fetching machinery.
type BalanceSnapshot struct {
	Amount    decimal.Decimal `json:"amount"`     // native asset amount
	USDValue  decimal.Decimal `json:"usd_value"`  // fiat valuation at fetch time
	FetchedAt time.Time       `json:"fetched_at"` // when the snapshot was taken
}

// WalletRow is the externally persisted unit of wallet state: one row exists
// per (user, address, chain namespace) combination. Rows are created when a
// user links a wallet on a network, mutated on rescans and deleted on
// disconnect, all by external collaborators; this package only reads them and
// recommends writes.
//
// The Address field keeps the casing exactly as received, since EVM addresses
// carry checksum casing.
type WalletRow struct {
	ID             string                     `json:"id"              validate:"required"`
	UserID         string                     `json:"user_id"         validate:"required"`
	Address        string                     `json:"address"         validate:"required"`
	ChainNamespace string                     `json:"chain_namespace" validate:"required"`
	Primary        bool                       `json:"primary"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	RiskScores     map[string]float64         `json:"risk_scores,omitempty"`    // keyed by chain namespace
	BalanceCaches  map[string]BalanceSnapshot `json:"balance_caches,omitempty"` // keyed by chain namespace
}

// ConnectedWallet is the canonical, derived aggregation of every row sharing
// one address (compared case-insensitively). It is never persisted: it is a
// pure, idempotent function of the row set, so re-deriving it from a
// reconstruction of its own output yields an equivalent result.
type ConnectedWallet struct {
	Address       string                     `json:"address"`        // casing preserved from the first row seen
	Networks      []string                   `json:"networks"`       // distinct chain namespaces, first-seen order
	Primary       bool                       `json:"primary"`        // logical OR across constituent rows
	CreatedAt     time.Time                  `json:"created_at"`     // earliest across constituent rows
	UpdatedAt     time.Time                  `json:"updated_at"`     // latest across constituent rows
	RiskScores    map[string]float64         `json:"risk_scores"`    // shallow merge keyed by chain namespace
	BalanceCaches map[string]BalanceSnapshot `json:"balance_caches"` // shallow merge keyed by chain namespace
}

// Adapt folds per-network wallet rows into canonical ConnectedWallet entities,
// one per address under case-insensitive comparison.
//
// For each address group:
//   - Address keeps the string exactly as it appears on the first row
//     encountered, under whatever row order the caller supplies. Output casing
//     is therefore order-dependent; that is a documented property, not a bug.
//   - Networks is the set of distinct chain namespaces seen, in first-seen order.
//   - Primary is the logical OR of all rows' primary flags.
//   - CreatedAt/UpdatedAt are the minimum/maximum across the group.
//   - RiskScores and BalanceCaches are shallow-merged keyed by chain namespace.
//     Well-formed input has each namespace on at most one row per address, so
//     the merge is non-destructive; rows lacking the optional maps are skipped.
//
// Empty or nil input yields an empty result. Adapt never fails: malformed but
// type-correct input degrades to whatever can be derived from it, because this
// runs on UI-refresh hot paths where an error would break rendering.
func Adapt(rows []WalletRow) []ConnectedWallet {
	var (
		wallets = make([]ConnectedWallet, 0, len(rows))
		// index of each address group in wallets, keyed by lowercased address
		groupIndex = make(map[string]int, len(rows))
		// distinct namespaces already recorded per address group
		seenNetworks = make(map[string]types.Set[string], len(rows))
	)

	for _, row := range rows {
		key := strings.ToLower(row.Address)

		idx, ok := groupIndex[key]
		if !ok {
			groupIndex[key] = len(wallets)
			seenNetworks[key] = types.NewSet[string]()
			wallets = append(wallets, ConnectedWallet{
				Address:       row.Address,
				Networks:      make([]string, 0, 1),
				CreatedAt:     row.CreatedAt,
				UpdatedAt:     row.UpdatedAt,
				RiskScores:    make(map[string]float64),
				BalanceCaches: make(map[string]BalanceSnapshot),
			})
			idx = groupIndex[key]
		}

		wallet := &wallets[idx]

		if networks := seenNetworks[key]; !networks.Has(row.ChainNamespace) {
			networks.Add(row.ChainNamespace)
			wallet.Networks = append(wallet.Networks, row.ChainNamespace)
		}

		wallet.Primary = wallet.Primary || row.Primary

		if row.CreatedAt.Before(wallet.CreatedAt) {
			wallet.CreatedAt = row.CreatedAt
		}
		if row.UpdatedAt.After(wallet.UpdatedAt) {
			wallet.UpdatedAt = row.UpdatedAt
		}

		for ns, score := range row.RiskScores {
			wallet.RiskScores[ns] = score
		}
		for ns, snapshot := range row.BalanceCaches {
			wallet.BalanceCaches[ns] = snapshot
		}
	}

	return wallets
}

// HasNetwork reports whether the wallet with the given address (compared
// case-insensitively) is registered on the given chain namespace (compared
// exactly — CAIP-2 namespaces are case-sensitive).
func HasNetwork(wallets []ConnectedWallet, address, chainNamespace string) bool {
	wallet := ByAddress(wallets, address)
	if wallet == nil {
		return false
	}

	for _, ns := range wallet.Networks {
		if ns == chainNamespace {
			return true
		}
	}
	return false
}

// ByAddress returns the wallet matching the given address case-insensitively,
// or nil when no wallet matches.
func ByAddress(wallets []ConnectedWallet, address string) *ConnectedWallet {
	for i := range wallets {
		if strings.EqualFold(wallets[i].Address, address) {
			return &wallets[i]
		}
	}
	return nil
}

// PrimaryOf returns the first wallet flagged primary, or nil when none is.
//
// Primaries of different addresses are independent records: finding more than
// one flagged wallet here is not a violation for this helper to deduplicate.
func PrimaryOf(wallets []ConnectedWallet) *ConnectedWallet {
	for i := range wallets {
		if wallets[i].Primary {
			return &wallets[i]
		}
	}
	return nil
}

// MissingNetworks returns the chain namespaces from supported that the wallet
// is not yet registered on, preserving the order of supported.
func MissingNetworks(wallet ConnectedWallet, supported []string) []string {
	registered := types.NewSet(wallet.Networks...)

	missing := make([]string, 0, len(supported))
	for _, ns := range supported {
		if !registered.Has(ns) {
			missing = append(missing, ns)
		}
	}
	return missing
}

// IsNetworkMissing reports whether the wallet is not registered on the given
// chain namespace.
func IsNetworkMissing(wallet ConnectedWallet, chainNamespace string) bool {
	for _, ns := range wallet.Networks {
		if ns == chainNamespace {
			return false
		}
	}
	return true
}

// Rows reconstructs a minimal row set from a derived wallet, one row per
// network. It exists so callers holding only derived output can re-run Adapt;
// the identity invariant is that adapting the reconstruction yields an
// equivalent wallet (same address, networks and primary flag).
func (w ConnectedWallet) Rows(userID string) []WalletRow {
	rows := make([]WalletRow, 0, len(w.Networks))
	for _, ns := range w.Networks {
		rows = append(rows, WalletRow{
			ID:             w.Address + "/" + ns,
			UserID:         userID,
			Address:        w.Address,
			ChainNamespace: ns,
			Primary:        w.Primary,
			CreatedAt:      w.CreatedAt,
			UpdatedAt:      w.UpdatedAt,
			RiskScores:     w.RiskScores,
			BalanceCaches:  w.BalanceCaches,
		})
	}
	return rows
}
