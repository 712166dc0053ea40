// Package primaryelection contains the pure decision logic for electing which
// wallet row should carry the "primary" flag for an address. It performs no
// writes: every function returns a recommendation that the caller commits (or
// not) through whatever transactional storage it owns.
package primaryelection

import (
	"strings"

	"github.com/gabapcia/walletcore/internal/walletidentity"
)

// ethereumMainnet is the chain namespace preferred above all others when
// electing a primary row.
const ethereumMainnet = "eip155:1"

// betterCandidate reports whether row should win over current under the
// creation-time ordering: earliest CreatedAt first, lexicographically smallest
// ID as the tie-break. The ordering is total over any row set, which makes
// every election below fully deterministic.
func betterCandidate(row, current walletidentity.WalletRow) bool {
	if !row.CreatedAt.Equal(current.CreatedAt) {
		return row.CreatedAt.Before(current.CreatedAt)
	}
	return strings.Compare(row.ID, current.ID) < 0
}

// electByAge returns the earliest-created row, breaking ties on smallest ID.
// Returns nil for an empty input.
func electByAge(rows []walletidentity.WalletRow) *walletidentity.WalletRow {
	var winner *walletidentity.WalletRow
	for i := range rows {
		if winner == nil || betterCandidate(rows[i], *winner) {
			winner = &rows[i]
		}
	}
	return winner
}

// electOnNetwork returns the best row registered on the given chain namespace,
// using the creation-time ordering among matches. Returns nil when no row is on
// that network.
func electOnNetwork(rows []walletidentity.WalletRow, chainNamespace string) *walletidentity.WalletRow {
	var winner *walletidentity.WalletRow
	for i := range rows {
		if rows[i].ChainNamespace != chainNamespace {
			continue
		}
		if winner == nil || betterCandidate(rows[i], *winner) {
			winner = &rows[i]
		}
	}
	return winner
}

// BestInitialCandidate elects the row that should become primary when an
// address gains its first primary assignment.
//
// Preference order:
//  1. a row on Ethereum mainnet ("eip155:1");
//  2. otherwise the row with the earliest CreatedAt;
//  3. ties resolve to the lexicographically smallest ID.
//
// The ordering is total and deterministic over any non-empty row set; repeated
// calls with identical input always elect the same row. Returns nil for empty
// input — the caller decides whether "no eligible row" is an error.
func BestInitialCandidate(rows []walletidentity.WalletRow) *walletidentity.WalletRow {
	if winner := electOnNetwork(rows, ethereumMainnet); winner != nil {
		return winner
	}
	return electByAge(rows)
}

// BestRepresentative elects the row a UI should display for an address, which
// is a preference distinct from the persisted primary flag.
//
// Preference order:
//  1. a row matching the caller-supplied activeNetwork, when non-empty;
//  2. otherwise a row on Ethereum mainnet;
//  3. otherwise the earliest-created row;
//  4. ties resolve to the lexicographically smallest ID.
//
// Returns nil for empty input.
func BestRepresentative(rows []walletidentity.WalletRow, activeNetwork string) *walletidentity.WalletRow {
	if activeNetwork != "" {
		if winner := electOnNetwork(rows, activeNetwork); winner != nil {
			return winner
		}
	}
	return BestInitialCandidate(rows)
}

// BestReassignmentCandidate elects a new primary among the rows that remain
// after the previous primary's rows were removed (wallet disconnect, network
// unlink). It applies the same ordering as BestInitialCandidate.
//
// Returns nil when no rows remain.
func BestReassignmentCandidate(remaining []walletidentity.WalletRow) *walletidentity.WalletRow {
	return BestInitialCandidate(remaining)
}

// HasExactlyOnePrimary reports whether precisely one of the given rows carries
// the primary flag. It is a diagnostic for the per-user "one session default"
// expectation; it never corrects anything.
func HasExactlyOnePrimary(rows []walletidentity.WalletRow) bool {
	count := 0
	for _, row := range rows {
		if row.Primary {
			count++
		}
	}
	return count == 1
}

// InvariantViolation describes an address whose row group carries more than one
// primary flag.
type InvariantViolation struct {
	Address    string   // address as seen on the first offending row
	PrimaryIDs []string // ids of every primary-flagged row in the group
}

// VerifyAddressLevelInvariant checks that, within the rows belonging to one
// address (compared case-insensitively), at most one row is flagged primary.
//
// It reports violations without correcting them: fixing a violation requires
// the caller to explicitly elect a winner via BestReassignmentCandidate and
// commit it through its own transactional writer.
//
// Returns:
//   - true and nil when every address group holds the invariant.
//   - false and one InvariantViolation per offending address otherwise.
func VerifyAddressLevelInvariant(rows []walletidentity.WalletRow) (bool, []InvariantViolation) {
	type group struct {
		address    string
		primaryIDs []string
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		key := strings.ToLower(row.Address)
		g, ok := groups[key]
		if !ok {
			g = &group{address: row.Address}
			groups[key] = g
			order = append(order, key)
		}
		if row.Primary {
			g.primaryIDs = append(g.primaryIDs, row.ID)
		}
	}

	var violations []InvariantViolation
	for _, key := range order {
		if g := groups[key]; len(g.primaryIDs) > 1 {
			violations = append(violations, InvariantViolation{
				Address:    g.address,
				PrimaryIDs: g.primaryIDs,
			})
		}
	}

	return len(violations) == 0, violations
}
