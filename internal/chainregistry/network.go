package chainregistry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// caip2Pattern matches well-formed EVM chain namespaces in CAIP-2 notation,
// e.g. "eip155:1" for Ethereum mainnet. Validation against this pattern is
// case-sensitive on purpose: CAIP-2 namespaces are conventionally lowercase.
var caip2Pattern = regexp.MustCompile(`^eip155:\d+$`)

var (
	// ErrNamespaceMismatch is returned by NewRegistry when the chain id embedded in a
	// config's namespace key does not equal the config's numeric ChainID.
	ErrNamespaceMismatch = errors.New("chain namespace does not match chain id")

	// ErrMalformedNamespace is returned by NewRegistry when a config's namespace key
	// does not follow the "eip155:<positive integer>" CAIP-2 pattern.
	ErrMalformedNamespace = errors.New("malformed chain namespace")

	// ErrDuplicateChainID is returned by NewRegistry when two configs share a chain id.
	ErrDuplicateChainID = errors.New("duplicate chain id")

	// ErrDuplicateShortName is returned by NewRegistry when two configs share a short name.
	ErrDuplicateShortName = errors.New("duplicate short name")
)

// NativeCurrency describes the native asset of an EVM network. All supported
// networks use 18 decimals.
type NativeCurrency struct {
	Name     string // e.g. "Ether"
	Symbol   string // e.g. "ETH"
	Decimals uint8  // always 18 for supported EVM chains
}

// NetworkConfig is a static, immutable registry entry describing one supported
// blockchain network.
//
// The ChainNamespace field is the CAIP-2 identifier ("eip155:<chain id>") and acts
// as the registry key. The numeric reference embedded in it must equal ChainID.
type NetworkConfig struct {
	ChainNamespace        string         // CAIP-2 identifier, e.g. "eip155:137"
	ChainID               uint64         // numeric chain id, e.g. 137
	Name                  string         // display name, e.g. "Polygon"
	ShortName             string         // legacy short name, e.g. "polygon"
	RPCEndpoints          []string       // public RPC endpoints
	BlockExplorerURLs     []string       // block explorer base URLs
	NativeCurrency        NativeCurrency // native asset metadata
	ColorToken            string         // UI display color token
	SupportsDeepRiskScans bool           // whether deep risk scoring is available
}

// Registry is an immutable lookup table of supported networks, indexed by chain
// namespace. It is built once via NewRegistry (or DefaultRegistry) and injected
// into the components that need it; it holds no global or mutable state.
type Registry struct {
	byNamespace map[string]NetworkConfig
	byShortName map[string]string // short name -> chain namespace
}

// NewRegistry builds a Registry from the given network configs.
//
// It enforces the registry invariants up front:
//   - every namespace key matches "eip155:<positive integer>";
//   - the chain id embedded in the namespace equals the config's ChainID;
//   - chain ids are unique across the registry;
//   - short names are unique across the registry.
//
// Returns:
//   - The constructed Registry.
//   - An error wrapping ErrMalformedNamespace, ErrNamespaceMismatch,
//     ErrDuplicateChainID or ErrDuplicateShortName if any invariant is violated.
func NewRegistry(configs ...NetworkConfig) (Registry, error) {
	var (
		byNamespace = make(map[string]NetworkConfig, len(configs))
		byShortName = make(map[string]string, len(configs))
		seenChainID = make(map[uint64]struct{}, len(configs))
	)

	for _, cfg := range configs {
		if !caip2Pattern.MatchString(cfg.ChainNamespace) {
			return Registry{}, fmt.Errorf("%w: %q", ErrMalformedNamespace, cfg.ChainNamespace)
		}

		// The namespace matched the pattern above, so everything after the colon
		// is a plain decimal integer.
		embedded, err := strconv.ParseUint(cfg.ChainNamespace[len("eip155:"):], 10, 64)
		if err != nil {
			return Registry{}, fmt.Errorf("%w: %q", ErrMalformedNamespace, cfg.ChainNamespace)
		}

		if embedded != cfg.ChainID {
			return Registry{}, fmt.Errorf("%w: namespace %q vs chain id %d", ErrNamespaceMismatch, cfg.ChainNamespace, cfg.ChainID)
		}

		if _, ok := seenChainID[cfg.ChainID]; ok {
			return Registry{}, fmt.Errorf("%w: %d", ErrDuplicateChainID, cfg.ChainID)
		}
		seenChainID[cfg.ChainID] = struct{}{}

		if _, ok := byShortName[cfg.ShortName]; ok {
			return Registry{}, fmt.Errorf("%w: %q", ErrDuplicateShortName, cfg.ShortName)
		}
		byShortName[cfg.ShortName] = cfg.ChainNamespace

		byNamespace[cfg.ChainNamespace] = cfg
	}

	return Registry{
		byNamespace: byNamespace,
		byShortName: byShortName,
	}, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid config set.
// It is intended for static registries declared at program startup.
func MustNewRegistry(configs ...NetworkConfig) Registry {
	registry, err := NewRegistry(configs...)
	if err != nil {
		panic(err)
	}
	return registry
}

// DefaultRegistry returns the built-in registry of supported EVM networks.
func DefaultRegistry() Registry {
	return MustNewRegistry(
		NetworkConfig{
			ChainNamespace:        "eip155:1",
			ChainID:               1,
			Name:                  "Ethereum",
			ShortName:             "ethereum",
			RPCEndpoints:          []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"},
			BlockExplorerURLs:     []string{"https://etherscan.io"},
			NativeCurrency:        NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			ColorToken:            "chain-ethereum",
			SupportsDeepRiskScans: true,
		},
		NetworkConfig{
			ChainNamespace:        "eip155:137",
			ChainID:               137,
			Name:                  "Polygon",
			ShortName:             "polygon",
			RPCEndpoints:          []string{"https://polygon-rpc.com", "https://rpc.ankr.com/polygon"},
			BlockExplorerURLs:     []string{"https://polygonscan.com"},
			NativeCurrency:        NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
			ColorToken:            "chain-polygon",
			SupportsDeepRiskScans: true,
		},
		NetworkConfig{
			ChainNamespace:        "eip155:42161",
			ChainID:               42161,
			Name:                  "Arbitrum One",
			ShortName:             "arbitrum",
			RPCEndpoints:          []string{"https://arb1.arbitrum.io/rpc"},
			BlockExplorerURLs:     []string{"https://arbiscan.io"},
			NativeCurrency:        NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			ColorToken:            "chain-arbitrum",
			SupportsDeepRiskScans: true,
		},
		NetworkConfig{
			ChainNamespace:        "eip155:10",
			ChainID:               10,
			Name:                  "Optimism",
			ShortName:             "optimism",
			RPCEndpoints:          []string{"https://mainnet.optimism.io"},
			BlockExplorerURLs:     []string{"https://optimistic.etherscan.io"},
			NativeCurrency:        NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			ColorToken:            "chain-optimism",
			SupportsDeepRiskScans: false,
		},
		NetworkConfig{
			ChainNamespace:        "eip155:8453",
			ChainID:               8453,
			Name:                  "Base",
			ShortName:             "base",
			RPCEndpoints:          []string{"https://mainnet.base.org"},
			BlockExplorerURLs:     []string{"https://basescan.org"},
			NativeCurrency:        NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			ColorToken:            "chain-base",
			SupportsDeepRiskScans: false,
		},
		NetworkConfig{
			ChainNamespace:        "eip155:56",
			ChainID:               56,
			Name:                  "BNB Smart Chain",
			ShortName:             "bsc",
			RPCEndpoints:          []string{"https://bsc-dataseed.binance.org"},
			BlockExplorerURLs:     []string{"https://bscscan.com"},
			NativeCurrency:        NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
			ColorToken:            "chain-bsc",
			SupportsDeepRiskScans: false,
		},
	)
}

// Config returns the NetworkConfig registered under the given chain namespace.
//
// The lookup is an O(1) map access and only succeeds for namespaces that would
// pass Validate: malformed or unregistered namespaces report ok=false.
func (r Registry) Config(chainNamespace string) (NetworkConfig, bool) {
	cfg, ok := r.byNamespace[chainNamespace]
	return cfg, ok
}

// Namespaces returns every chain namespace in the registry. The order is not
// guaranteed.
func (r Registry) Namespaces() []string {
	namespaces := make([]string, 0, len(r.byNamespace))
	for ns := range r.byNamespace {
		namespaces = append(namespaces, ns)
	}
	return namespaces
}

// Len returns the number of registered networks.
func (r Registry) Len() int {
	return len(r.byNamespace)
}
