package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gabapcia/walletcore/internal/chainregistry"

	"github.com/urfave/cli/v3"
)

// listNetworksCommand returns a CLI command that prints every network in the
// registry as a JSON array, sorted by chain id.
//
// Usage example:
//
//	walletcore networks
func listNetworksCommand(registry chainregistry.Registry) *cli.Command {
	return &cli.Command{
		Name:        "networks",
		Description: "List every supported network in the registry.",
		Usage:       "Prints the network registry as JSON, sorted by chain id.",
		Action: func(ctx context.Context, c *cli.Command) error {
			configs := make([]chainregistry.NetworkConfig, 0, registry.Len())
			for _, ns := range registry.Namespaces() {
				if cfg, ok := registry.Config(ns); ok {
					configs = append(configs, cfg)
				}
			}

			sort.Slice(configs, func(i, j int) bool {
				return configs[i].ChainID < configs[j].ChainID
			})

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(configs)
		},
	}
}

// validateNamespaceCommand returns a CLI command that validates a CAIP-2 chain
// namespace against the registry and prints the structured result.
//
// Usage example:
//
//	walletcore validate --network eip155:1
func validateNamespaceCommand(registry chainregistry.Registry) *cli.Command {
	return &cli.Command{
		Name:        "validate",
		Description: "Validate a CAIP-2 chain namespace against the network registry.",
		Usage:       "Checks namespace format and registry membership. Must provide the network flag.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "network",
				Usage:    "CAIP-2 chain namespace (e.g., eip155:1)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			result := registry.Validate(c.String("network"))
			if !result.Valid {
				fmt.Fprintf(os.Stdout, "invalid: %s\n", result.Err.Error())
				return nil
			}

			fmt.Fprintf(os.Stdout, "valid: %s\n", result.ChainNamespace)
			return nil
		},
	}
}
