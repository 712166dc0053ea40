package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gabapcia/walletcore/internal/walletidentity"
	"github.com/gabapcia/walletcore/internal/walletregistry"

	"github.com/redis/go-redis/v9"
)

// walletRowsKeyPrefix is the Redis key namespace under which per-network
// wallet rows are stored. Each user owns one hash keyed by row id.
const walletRowsKeyPrefix = "walletrows"

var (
	// ErrRowAlreadyExists is returned by CreateRow when a row for the same
	// (user, address, chain namespace) combination is already stored.
	ErrRowAlreadyExists = errors.New("wallet row already exists")

	// ErrRowNotFound is returned by CommitPrimary when the winning row id is
	// not present in the user's row set.
	ErrRowNotFound = errors.New("wallet row not found")
)

// walletRowsKey builds the Redis key holding all wallet rows of a user.
//
// Format: "walletrows:storage:{userID}"
func walletRowsKey(userID string) string {
	return fmt.Sprintf("%s:storage:%s", walletRowsKeyPrefix, userID)
}

// decodeRows unmarshals every hash field value into a wallet row and returns
// the rows sorted by creation time, then id, so callers observe a stable order.
func decodeRows(fields map[string]string) ([]walletidentity.WalletRow, error) {
	rows := make([]walletidentity.WalletRow, 0, len(fields))
	for _, raw := range fields {
		var row walletidentity.WalletRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})

	return rows, nil
}

// ListRows implements the walletregistry.WalletRowStorage interface using a
// Redis hash per user, with one field per wallet row.
func (c *client) ListRows(ctx context.Context, userID string) ([]walletidentity.WalletRow, error) {
	fields, err := c.conn.HGetAll(ctx, walletRowsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	return decodeRows(fields)
}

// CreateRow stores a new wallet row, rejecting duplicates of the same
// (user, address, chain namespace) combination.
//
// The duplicate check and the write run inside an optimistic WATCH
// transaction, so a concurrent link of the same combination cannot slip
// between the read and the write.
func (c *client) CreateRow(ctx context.Context, row walletidentity.WalletRow) error {
	key := walletRowsKey(row.UserID)

	return c.conn.Watch(ctx, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		rows, err := decodeRows(fields)
		if err != nil {
			return err
		}

		for _, existing := range rows {
			if strings.EqualFold(existing.Address, row.Address) && existing.ChainNamespace == row.ChainNamespace {
				return ErrRowAlreadyExists
			}
		}

		payload, err := json.Marshal(row)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, row.ID, payload)
			return nil
		})
		return err
	}, key)
}

// DeleteRow removes the row with the given id. Removing a missing row is a
// no-op, matching the storage contract.
func (c *client) DeleteRow(ctx context.Context, userID, rowID string) error {
	return c.conn.HDel(ctx, walletRowsKey(userID), rowID).Err()
}

// CommitPrimary atomically flags the winning row as primary and clears the
// flag on every other row sharing the winner's address (compared
// case-insensitively).
//
// The read-decide-write sequence runs inside an optimistic WATCH transaction
// on the user's row hash: if another mutation lands between the read and the
// write, the transaction fails and the caller retries, which is what keeps two
// concurrent elections from committing zero or two primaries for one address.
func (c *client) CommitPrimary(ctx context.Context, userID, winningRowID string) error {
	key := walletRowsKey(userID)

	return c.conn.Watch(ctx, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		rows, err := decodeRows(fields)
		if err != nil {
			return err
		}

		var winner *walletidentity.WalletRow
		for i := range rows {
			if rows[i].ID == winningRowID {
				winner = &rows[i]
				break
			}
		}
		if winner == nil {
			return fmt.Errorf("%w: %s", ErrRowNotFound, winningRowID)
		}

		// Only rows whose flag actually changes are rewritten.
		updated := make(map[string][]byte)
		for i := range rows {
			row := &rows[i]

			wantPrimary := row.ID == winningRowID
			if !wantPrimary && !strings.EqualFold(row.Address, winner.Address) {
				continue
			}
			if row.Primary == wantPrimary {
				continue
			}

			row.Primary = wantPrimary
			payload, err := json.Marshal(*row)
			if err != nil {
				return err
			}
			updated[row.ID] = payload
		}

		if len(updated) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for id, payload := range updated {
				pipe.HSet(ctx, key, id, payload)
			}
			return nil
		})
		return err
	}, key)
}

// Compile-time assertion to ensure *client satisfies the walletregistry.WalletRowStorage interface
var _ walletregistry.WalletRowStorage = new(client)
