// Package chainlist loads network metadata from a chainid.network style JSON
// document over HTTP. It is used to cross-check the built-in network registry
// against the community-maintained chain list, not as a registry source of
// truth: the registry stays a static, injected table.
package chainlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gabapcia/walletcore/internal/chainregistry"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnexpectedStatus is returned when the chain list endpoint responds with a
// non-200 status code.
var ErrUnexpectedStatus = errors.New("unexpected chain list response status")

// chainEntry mirrors one element of the chainid.network JSON document. Only
// the fields needed for cross-checking are decoded.
type chainEntry struct {
	Name           string `json:"name"`
	ChainID        uint64 `json:"chainId"`
	ShortName      string `json:"shortName"`
	NativeCurrency struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
	} `json:"nativeCurrency"`
}

// Mismatch describes one registry entry whose metadata disagrees with the
// remote chain list.
type Mismatch struct {
	ChainNamespace string // registry key of the entry
	Field          string // which field disagrees (e.g. "native currency symbol")
	Registry       string // value held by the registry
	Remote         string // value published by the chain list
}

// client fetches and decodes the remote chain list document.
type client struct {
	conn *retryablehttp.Client // HTTP client with retry behavior
	url  string                // chain list document URL
}

// NewClient creates a chain list client using the provided retrying HTTP
// connection and document URL.
func NewClient(conn *retryablehttp.Client, url string) *client {
	return &client{
		conn: conn,
		url:  url,
	}
}

// fetch downloads and decodes the chain list document.
func (c *client) fetch(ctx context.Context) ([]chainEntry, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.conn.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	var entries []chainEntry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// CrossCheck compares every entry of the given registry against the remote
// chain list and reports the disagreements. Registry entries absent from the
// remote document are reported as a "presence" mismatch; matching entries
// produce nothing.
//
// Returns:
//   - The list of mismatches, empty when the registry agrees with the chain list.
//   - An error if the document cannot be fetched or decoded.
func (c *client) CrossCheck(ctx context.Context, registry chainregistry.Registry) ([]Mismatch, error) {
	entries, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	byChainID := make(map[uint64]chainEntry, len(entries))
	for _, entry := range entries {
		byChainID[entry.ChainID] = entry
	}

	var mismatches []Mismatch
	for _, ns := range registry.Namespaces() {
		cfg, ok := registry.Config(ns)
		if !ok {
			continue
		}

		remote, ok := byChainID[cfg.ChainID]
		if !ok {
			mismatches = append(mismatches, Mismatch{
				ChainNamespace: ns,
				Field:          "presence",
				Registry:       fmt.Sprintf("chain id %d", cfg.ChainID),
				Remote:         "absent",
			})
			continue
		}

		if remote.NativeCurrency.Symbol != cfg.NativeCurrency.Symbol {
			mismatches = append(mismatches, Mismatch{
				ChainNamespace: ns,
				Field:          "native currency symbol",
				Registry:       cfg.NativeCurrency.Symbol,
				Remote:         remote.NativeCurrency.Symbol,
			})
		}

		if remote.NativeCurrency.Decimals != cfg.NativeCurrency.Decimals {
			mismatches = append(mismatches, Mismatch{
				ChainNamespace: ns,
				Field:          "native currency decimals",
				Registry:       fmt.Sprintf("%d", cfg.NativeCurrency.Decimals),
				Remote:         fmt.Sprintf("%d", remote.NativeCurrency.Decimals),
			})
		}
	}

	return mismatches, nil
}
