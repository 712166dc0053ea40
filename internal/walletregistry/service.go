package walletregistry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gabapcia/walletcore/internal/chainregistry"
	"github.com/gabapcia/walletcore/internal/pkg/logger"
	"github.com/gabapcia/walletcore/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletcore/internal/primaryelection"
	"github.com/gabapcia/walletcore/internal/queryinvalidation"
	"github.com/gabapcia/walletcore/internal/walletidentity"

	"github.com/google/uuid"
)

var (
	// ErrNetworkAlreadyLinked is returned by LinkNetwork when a row already
	// exists for the same (user, address, chain namespace) combination.
	ErrNetworkAlreadyLinked = errors.New("network already linked for this address")

	// ErrNetworkNotLinked is returned by UnlinkNetwork when no row matches the
	// given address and chain namespace.
	ErrNetworkNotLinked = errors.New("network not linked for this address")

	// ErrNoEligibleRow is returned by SetPrimary when the address has no rows
	// to elect a primary from.
	ErrNoEligibleRow = errors.New("no eligible row for primary election")
)

// InvariantReport is the outcome of a read-only invariant check over a user's
// wallet rows. Violations are reported, never auto-corrected: correction
// requires the caller to explicitly invoke SetPrimary and commit the result.
type InvariantReport struct {
	// ExactlyOnePrimary reports whether precisely one of the user's rows is
	// flagged primary, the expectation for a single session-default wallet.
	ExactlyOnePrimary bool

	// Violations lists every address whose row group carries more than one
	// primary flag.
	Violations []primaryelection.InvariantViolation
}

// Service manages the lifecycle of a user's multi-chain wallet identity:
// linking and unlinking networks, electing the primary wallet, deriving the
// canonical connected-wallet view and keeping dependent caches consistent.
//
// Implementations validate input, delegate persistence to the configured
// WalletRowStorage and deliver invalidation keys only after a write has
// durably succeeded.
type Service interface {
	// ConnectedWallets derives the canonical, address-centric wallet list from
	// the user's current row set.
	ConnectedWallets(ctx context.Context, userID string) ([]walletidentity.ConnectedWallet, error)

	// LinkNetwork registers a wallet address on a network for the user. If the
	// user has no primary wallet yet, an initial primary is elected and
	// committed. Returns the created row.
	LinkNetwork(ctx context.Context, userID, address, chainNamespace string) (walletidentity.WalletRow, error)

	// UnlinkNetwork removes a wallet's registration on one network. If the
	// removed row was the primary, a new primary is elected among the rows
	// that remain and committed; when no row remains, the user is left without
	// a primary.
	UnlinkNetwork(ctx context.Context, userID, address, chainNamespace string) error

	// SetPrimary elects and commits the primary row for the given address.
	SetPrimary(ctx context.Context, userID, address string) error

	// CheckInvariants verifies the primary-wallet invariants over the user's
	// rows and reports violations without correcting them.
	CheckInvariants(ctx context.Context, userID string) (InvariantReport, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	rowStorage       WalletRowStorage
	cacheInvalidator CacheInvalidator
	registry         chainregistry.Registry
	retry            retry.Retry
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// New creates a walletregistry service wired to the given row storage, cache
// invalidator and network registry. Invalidation delivery is retried with the
// provided retry mechanism.
//
// This constructor is intended to be used by dependency injection during
// application wiring.
func New(rs WalletRowStorage, ci CacheInvalidator, registry chainregistry.Registry, r retry.Retry) *service {
	return &service{
		rowStorage:       rs,
		cacheInvalidator: ci,
		registry:         registry,
		retry:            r,
	}
}

// ConnectedWallets derives the canonical wallet list for the user.
func (s *service) ConnectedWallets(ctx context.Context, userID string) ([]walletidentity.ConnectedWallet, error) {
	rows, err := s.rowStorage.ListRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	return walletidentity.Adapt(rows), nil
}

// LinkNetwork validates the input, persists a new row and, when the user has
// no primary wallet yet, elects and commits an initial primary. The dependent
// cache keys are invalidated only after every write has succeeded.
func (s *service) LinkNetwork(ctx context.Context, userID, address, chainNamespace string) (walletidentity.WalletRow, error) {
	req, err := buildLinkRequest(userID, address, chainNamespace)
	if err != nil {
		return walletidentity.WalletRow{}, err
	}

	if result := s.registry.Validate(req.ChainNamespace); !result.Valid {
		return walletidentity.WalletRow{}, result.Err
	}

	rows, err := s.rowStorage.ListRows(ctx, req.UserID)
	if err != nil {
		return walletidentity.WalletRow{}, err
	}

	wallets := walletidentity.Adapt(rows)
	if walletidentity.HasNetwork(wallets, req.Address, req.ChainNamespace) {
		return walletidentity.WalletRow{}, ErrNetworkAlreadyLinked
	}

	now := time.Now().UTC()
	row := walletidentity.WalletRow{
		ID:             uuid.Must(uuid.NewV7()).String(),
		UserID:         req.UserID,
		Address:        req.Address,
		ChainNamespace: req.ChainNamespace,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.rowStorage.CreateRow(ctx, row); err != nil {
		return walletidentity.WalletRow{}, err
	}

	// First linked wallet of a user becomes the session default. The resolver
	// only recommends a winner; the storage commit is what flips the flag.
	if !hasPrimary(rows) {
		winner := primaryelection.BestInitialCandidate(append(rows, row))
		if winner != nil {
			if err := s.rowStorage.CommitPrimary(ctx, req.UserID, winner.ID); err != nil {
				return walletidentity.WalletRow{}, err
			}

			// The election can land on a pre-existing row of another address
			// (rows written externally without a primary). That wallet's
			// primary flag just changed, so its views go stale too.
			if !strings.EqualFold(winner.Address, req.Address) {
				if err := s.invalidate(ctx, winner.Address); err != nil {
					return walletidentity.WalletRow{}, err
				}
			}
		}
	}

	if err := s.invalidate(ctx, req.Address); err != nil {
		return walletidentity.WalletRow{}, err
	}

	logger.Info(ctx, "wallet network linked",
		"user_id", req.UserID,
		"address", req.Address,
		"chain_namespace", req.ChainNamespace,
	)

	return row, nil
}

// UnlinkNetwork removes the row matching the given address and namespace,
// re-electing a primary when the removed row carried the flag.
func (s *service) UnlinkNetwork(ctx context.Context, userID, address, chainNamespace string) error {
	req, err := buildLinkRequest(userID, address, chainNamespace)
	if err != nil {
		return err
	}

	rows, err := s.rowStorage.ListRows(ctx, req.UserID)
	if err != nil {
		return err
	}

	var (
		removed     *walletidentity.WalletRow
		remaining   = make([]walletidentity.WalletRow, 0, len(rows))
		addressRows = rowsForAddress(rows, req.Address)
	)

	for i := range addressRows {
		if addressRows[i].ChainNamespace == req.ChainNamespace {
			removed = &addressRows[i]
			break
		}
	}
	if removed == nil {
		return ErrNetworkNotLinked
	}

	for _, row := range rows {
		if row.ID != removed.ID {
			remaining = append(remaining, row)
		}
	}

	if err := s.rowStorage.DeleteRow(ctx, req.UserID, removed.ID); err != nil {
		return err
	}

	// Losing the primary row forces a re-election over whatever remains.
	if removed.Primary {
		if winner := primaryelection.BestReassignmentCandidate(remaining); winner != nil {
			if err := s.rowStorage.CommitPrimary(ctx, req.UserID, winner.ID); err != nil {
				return err
			}
		} else {
			logger.Warn(ctx, "user left without a primary wallet",
				"user_id", req.UserID,
				"address", req.Address,
			)
		}
	}

	if err := s.invalidate(ctx, req.Address); err != nil {
		return err
	}

	logger.Info(ctx, "wallet network unlinked",
		"user_id", req.UserID,
		"address", req.Address,
		"chain_namespace", req.ChainNamespace,
	)

	return nil
}

// SetPrimary elects the best row for the given address and commits it as the
// user's primary wallet.
func (s *service) SetPrimary(ctx context.Context, userID, address string) error {
	rows, err := s.rowStorage.ListRows(ctx, userID)
	if err != nil {
		return err
	}

	winner := primaryelection.BestInitialCandidate(rowsForAddress(rows, address))
	if winner == nil {
		return ErrNoEligibleRow
	}

	if err := s.rowStorage.CommitPrimary(ctx, userID, winner.ID); err != nil {
		return err
	}

	if err := s.invalidate(ctx, winner.Address); err != nil {
		return err
	}

	logger.Info(ctx, "primary wallet committed",
		"user_id", userID,
		"address", winner.Address,
		"row_id", winner.ID,
	)

	return nil
}

// CheckInvariants runs the read-only primary-wallet diagnostics over the
// user's rows.
func (s *service) CheckInvariants(ctx context.Context, userID string) (InvariantReport, error) {
	rows, err := s.rowStorage.ListRows(ctx, userID)
	if err != nil {
		return InvariantReport{}, err
	}

	ok, violations := primaryelection.VerifyAddressLevelInvariant(rows)
	if !ok {
		for _, violation := range violations {
			logger.Warn(ctx, "address-level primary invariant violated",
				"user_id", userID,
				"address", violation.Address,
				"primary_row_ids", violation.PrimaryIDs,
			)
		}
	}

	return InvariantReport{
		ExactlyOnePrimary: primaryelection.HasExactlyOnePrimary(rows),
		Violations:        violations,
	}, nil
}

// invalidate computes the dependent key set for the address and delivers it to
// the cache layer. It runs strictly after the storage writes have succeeded;
// delivery is retried because a lost invalidation leaves dependent modules
// serving stale derivations.
func (s *service) invalidate(ctx context.Context, address string) error {
	keys := queryinvalidation.DependentKeys(address)

	err := s.retry.Execute(ctx, func() error {
		return s.cacheInvalidator.Invalidate(ctx, keys)
	})
	if err != nil {
		logger.Error(ctx, "failed to deliver cache invalidation keys",
			"address", address,
			"error", err,
		)
	}

	return err
}
