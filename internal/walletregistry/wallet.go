package walletregistry

import (
	"context"
	"strings"

	"github.com/gabapcia/walletcore/internal/pkg/validator"
	"github.com/gabapcia/walletcore/internal/queryinvalidation"
	"github.com/gabapcia/walletcore/internal/walletidentity"
)

// linkRequest carries the validated input for registering a wallet on one
// network. Both the address and the chain namespace are required; namespace
// registry membership is checked separately against the injected registry.
type linkRequest struct {
	UserID         string `validate:"required"` // owning user
	Address        string `validate:"required"` // wallet address, casing preserved
	ChainNamespace string `validate:"required"` // CAIP-2 network identifier
}

// WalletRowStorage defines the persistence contract for per-network wallet
// rows. Implementations own durability and, critically, the serialization of
// the read-decide-write primary election: CommitPrimary must be atomic per
// user so two concurrent elections cannot leave zero or two primaries for the
// same address.
type WalletRowStorage interface {
	// ListRows returns every wallet row belonging to the given user. The order
	// is implementation-defined but must be stable within one call.
	ListRows(ctx context.Context, userID string) ([]walletidentity.WalletRow, error)

	// CreateRow persists a new wallet row. It fails if a row already exists for
	// the same (user, address, chain namespace) combination.
	CreateRow(ctx context.Context, row walletidentity.WalletRow) error

	// DeleteRow removes the row with the given id from the user's row set.
	// Deleting a row that does not exist is not an error.
	DeleteRow(ctx context.Context, userID, rowID string) error

	// CommitPrimary atomically flags the row with the given id as primary and
	// clears the primary flag on every other row of the same user that shares
	// the winning row's address (compared case-insensitively). The write must
	// be serialized per user, e.g. with an optimistic transaction.
	CommitPrimary(ctx context.Context, userID, winningRowID string) error
}

// CacheInvalidator delivers a computed invalidation key set to whatever
// cache/query layer the consuming UI uses. Implementations should be
// idempotent: delivering the same key set twice is safe.
type CacheInvalidator interface {
	// Invalidate marks every given key stale so dependent modules recompute
	// their views from the updated row set.
	Invalidate(ctx context.Context, keys []queryinvalidation.Key) error
}

// buildLinkRequest constructs and validates a linkRequest from raw input.
func buildLinkRequest(userID, address, chainNamespace string) (linkRequest, error) {
	req := linkRequest{
		UserID:         userID,
		Address:        address,
		ChainNamespace: chainNamespace,
	}

	return req, validator.Validate(req)
}

// rowsForAddress filters the rows matching the given address case-insensitively.
func rowsForAddress(rows []walletidentity.WalletRow, address string) []walletidentity.WalletRow {
	matched := make([]walletidentity.WalletRow, 0, len(rows))
	for _, row := range rows {
		if strings.EqualFold(row.Address, address) {
			matched = append(matched, row)
		}
	}
	return matched
}

// hasPrimary reports whether any of the rows carries the primary flag.
func hasPrimary(rows []walletidentity.WalletRow) bool {
	for _, row := range rows {
		if row.Primary {
			return true
		}
	}
	return false
}
