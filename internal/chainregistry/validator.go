package chainregistry

import "errors"

var (
	// ErrInvalidCAIP2Format reports a chain namespace that does not follow the
	// "eip155:<positive integer>" CAIP-2 pattern. The message is user-facing.
	ErrInvalidCAIP2Format = errors.New("Invalid CAIP-2 format")

	// ErrUnsupportedNetwork reports a well-formed chain namespace that is not
	// present in the registry. The message is user-facing.
	ErrUnsupportedNetwork = errors.New("Unsupported network")
)

// ValidationResult is the structured outcome of validating a chain namespace.
//
// Failures are carried as a value rather than a returned error so callers on
// UI-refresh hot paths can surface the message without error-handling plumbing.
type ValidationResult struct {
	Valid          bool   // whether the namespace is well-formed and registered
	ChainNamespace string // the input echoed back unchanged when Valid
	Err            error  // ErrInvalidCAIP2Format or ErrUnsupportedNetwork when !Valid
}

// Validate checks a chain namespace against the CAIP-2 pattern and the registry.
//
// The check is case-sensitive and deterministic: the same input always yields
// the same result, and no shared state is read or mutated beyond the immutable
// registry table.
//
// Returns:
//   - {Valid: false, Err: ErrInvalidCAIP2Format} if ns does not match "^eip155:\d+$".
//   - {Valid: false, Err: ErrUnsupportedNetwork} if ns is well-formed but unregistered.
//   - {Valid: true, ChainNamespace: ns} otherwise, echoing the input unchanged.
func (r Registry) Validate(ns string) ValidationResult {
	if !caip2Pattern.MatchString(ns) {
		return ValidationResult{Valid: false, Err: ErrInvalidCAIP2Format}
	}

	if _, ok := r.byNamespace[ns]; !ok {
		return ValidationResult{Valid: false, Err: ErrUnsupportedNetwork}
	}

	return ValidationResult{Valid: true, ChainNamespace: ns}
}

// LegacyChainToCAIP2 maps a legacy short chain name (e.g. "ethereum") to its
// CAIP-2 namespace (e.g. "eip155:1").
//
// The mapping is total over the registry's short-name set and is the exact
// inverse of CAIP2ToLegacyChain: round-tripping through both functions returns
// the original value for every supported name.
func (r Registry) LegacyChainToCAIP2(name string) (string, bool) {
	ns, ok := r.byShortName[name]
	return ns, ok
}

// CAIP2ToLegacyChain maps a CAIP-2 namespace (e.g. "eip155:1") back to its
// legacy short chain name (e.g. "ethereum"). Inverse of LegacyChainToCAIP2.
func (r Registry) CAIP2ToLegacyChain(ns string) (string, bool) {
	cfg, ok := r.byNamespace[ns]
	if !ok {
		return "", false
	}
	return cfg.ShortName, true
}
