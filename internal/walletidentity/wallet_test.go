package walletidentity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestAdapt(t *testing.T) {
	t.Run("empty input yields empty result", func(t *testing.T) {
		assert.Empty(t, Adapt(nil))
		assert.Empty(t, Adapt([]WalletRow{}))
	})

	t.Run("single row", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xAbC", ChainNamespace: "eip155:1", Primary: true, CreatedAt: day(1), UpdatedAt: day(2)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, "0xAbC", wallets[0].Address)
		assert.Equal(t, []string{"eip155:1"}, wallets[0].Networks)
		assert.True(t, wallets[0].Primary)
		assert.Equal(t, day(1), wallets[0].CreatedAt)
		assert.Equal(t, day(2), wallets[0].UpdatedAt)
	})

	t.Run("rows sharing an address case-insensitively collapse into one wallet", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xABC123", ChainNamespace: "eip155:137", CreatedAt: day(3), UpdatedAt: day(3)},
			{ID: "w2", Address: "0xabc123", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, "0xABC123", wallets[0].Address, "first-seen casing wins")
		assert.Equal(t, []string{"eip155:137", "eip155:1"}, wallets[0].Networks)
		assert.False(t, wallets[0].Primary)
	})

	t.Run("address casing is order-dependent", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w2", Address: "0xabc123", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w1", Address: "0xABC123", ChainNamespace: "eip155:137", CreatedAt: day(3), UpdatedAt: day(3)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, "0xabc123", wallets[0].Address)
	})

	t.Run("primary flag is the logical OR of constituent rows", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", Primary: false, CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w2", Address: "0xa", ChainNamespace: "eip155:137", Primary: true, CreatedAt: day(2), UpdatedAt: day(2)},
			{ID: "w3", Address: "0xB", ChainNamespace: "eip155:1", Primary: false, CreatedAt: day(1), UpdatedAt: day(1)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 2)
		assert.True(t, wallets[0].Primary)
		assert.False(t, wallets[1].Primary)
	})

	t.Run("timestamps are the min and max across the group", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(5), UpdatedAt: day(5)},
			{ID: "w2", Address: "0xa", ChainNamespace: "eip155:137", CreatedAt: day(2), UpdatedAt: day(9)},
			{ID: "w3", Address: "0xA", ChainNamespace: "eip155:10", CreatedAt: day(3), UpdatedAt: day(4)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, day(2), wallets[0].CreatedAt)
		assert.Equal(t, day(9), wallets[0].UpdatedAt)
	})

	t.Run("duplicate namespaces are recorded once", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w2", Address: "0xa", ChainNamespace: "eip155:1", CreatedAt: day(2), UpdatedAt: day(2)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, []string{"eip155:1"}, wallets[0].Networks)
	})

	t.Run("risk and balance maps merge keyed by namespace", func(t *testing.T) {
		rows := []WalletRow{
			{
				ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1),
				RiskScores: map[string]float64{"eip155:1": 42.5},
				BalanceCaches: map[string]BalanceSnapshot{
					"eip155:1": {Amount: decimal.NewFromFloat(1.5), USDValue: decimal.NewFromInt(4000), FetchedAt: day(1)},
				},
			},
			{
				ID: "w2", Address: "0xa", ChainNamespace: "eip155:137", CreatedAt: day(2), UpdatedAt: day(2),
				RiskScores: map[string]float64{"eip155:137": 12},
			},
			// Row without optional maps is simply skipped during merge.
			{ID: "w3", Address: "0xA", ChainNamespace: "eip155:10", CreatedAt: day(3), UpdatedAt: day(3)},
		}

		wallets := Adapt(rows)
		require.Len(t, wallets, 1)
		assert.Equal(t, map[string]float64{"eip155:1": 42.5, "eip155:137": 12}, wallets[0].RiskScores)
		require.Contains(t, wallets[0].BalanceCaches, "eip155:1")
		assert.True(t, wallets[0].BalanceCaches["eip155:1"].Amount.Equal(decimal.NewFromFloat(1.5)))
	})

	t.Run("output addresses are unique case-insensitively", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xAA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w2", Address: "0xaa", ChainNamespace: "eip155:137", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w3", Address: "0xBB", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w4", Address: "0xbB", ChainNamespace: "eip155:10", CreatedAt: day(1), UpdatedAt: day(1)},
		}

		wallets := Adapt(rows)
		assert.Len(t, wallets, 2)
	})

	t.Run("adapting reconstructed rows reproduces an equivalent wallet set", func(t *testing.T) {
		rows := []WalletRow{
			{ID: "w1", Address: "0xABC", ChainNamespace: "eip155:137", Primary: true, CreatedAt: day(3), UpdatedAt: day(3)},
			{ID: "w2", Address: "0xabc", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(5)},
			{ID: "w3", Address: "0xDEF", ChainNamespace: "eip155:1", CreatedAt: day(2), UpdatedAt: day(2)},
		}

		first := Adapt(rows)

		reconstructed := make([]WalletRow, 0)
		for _, wallet := range first {
			reconstructed = append(reconstructed, wallet.Rows("u1")...)
		}

		second := Adapt(reconstructed)
		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Address, second[i].Address)
			assert.ElementsMatch(t, first[i].Networks, second[i].Networks)
			assert.Equal(t, first[i].Primary, second[i].Primary)
		}
	})
}

func TestHasNetwork(t *testing.T) {
	wallets := Adapt([]WalletRow{
		{ID: "w1", Address: "0xABC", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: "w2", Address: "0xabc", ChainNamespace: "eip155:137", CreatedAt: day(2), UpdatedAt: day(2)},
	})

	t.Run("case-insensitive address match", func(t *testing.T) {
		assert.True(t, HasNetwork(wallets, "0xaBc", "eip155:1"))
	})

	t.Run("namespace match is exact", func(t *testing.T) {
		assert.False(t, HasNetwork(wallets, "0xABC", "EIP155:1"))
	})

	t.Run("unknown address", func(t *testing.T) {
		assert.False(t, HasNetwork(wallets, "0xDEF", "eip155:1"))
	})

	t.Run("unregistered namespace", func(t *testing.T) {
		assert.False(t, HasNetwork(wallets, "0xABC", "eip155:10"))
	})
}

func TestByAddress(t *testing.T) {
	wallets := Adapt([]WalletRow{
		{ID: "w1", Address: "0xABC", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
		{ID: "w2", Address: "0xDEF", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
	})

	t.Run("match ignores casing", func(t *testing.T) {
		wallet := ByAddress(wallets, "0xdef")
		require.NotNil(t, wallet)
		assert.Equal(t, "0xDEF", wallet.Address)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, ByAddress(wallets, "0x123"))
	})
}

func TestPrimaryOf(t *testing.T) {
	t.Run("returns first primary wallet", func(t *testing.T) {
		wallets := Adapt([]WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w2", Address: "0xB", ChainNamespace: "eip155:1", Primary: true, CreatedAt: day(1), UpdatedAt: day(1)},
		})

		wallet := PrimaryOf(wallets)
		require.NotNil(t, wallet)
		assert.Equal(t, "0xB", wallet.Address)
	})

	t.Run("no primary wallet", func(t *testing.T) {
		wallets := Adapt([]WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
		})

		assert.Nil(t, PrimaryOf(wallets))
	})

	t.Run("primaries of different addresses are independent records", func(t *testing.T) {
		wallets := Adapt([]WalletRow{
			{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", Primary: true, CreatedAt: day(1), UpdatedAt: day(1)},
			{ID: "w2", Address: "0xB", ChainNamespace: "eip155:1", Primary: true, CreatedAt: day(1), UpdatedAt: day(1)},
		})

		// The helper reports the first, it does not deduplicate.
		wallet := PrimaryOf(wallets)
		require.NotNil(t, wallet)
		assert.Equal(t, "0xA", wallet.Address)
	})
}

func TestMissingNetworks(t *testing.T) {
	wallet := Adapt([]WalletRow{
		{ID: "w1", Address: "0xA", ChainNamespace: "eip155:1", CreatedAt: day(1), UpdatedAt: day(1)},
	})[0]

	t.Run("set difference preserves supported order", func(t *testing.T) {
		missing := MissingNetworks(wallet, []string{"eip155:1", "eip155:137", "eip155:10"})
		assert.Equal(t, []string{"eip155:137", "eip155:10"}, missing)
	})

	t.Run("nothing missing", func(t *testing.T) {
		assert.Empty(t, MissingNetworks(wallet, []string{"eip155:1"}))
	})

	t.Run("is network missing", func(t *testing.T) {
		assert.False(t, IsNetworkMissing(wallet, "eip155:1"))
		assert.True(t, IsNetworkMissing(wallet, "eip155:137"))
	})
}
