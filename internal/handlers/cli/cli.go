package cli

import (
	"context"
	"os"

	"github.com/gabapcia/walletcore/internal/chainregistry"
	"github.com/gabapcia/walletcore/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletcore CLI application.
//
// It registers all available commands, including:
//
//   - `networks`: Lists every supported network in the registry.
//   - `validate`: Validates a CAIP-2 chain namespace.
//   - `wallets`: Prints a user's canonical connected-wallet list.
//   - `link` / `unlink`: Registers or removes a wallet on one network.
//   - `set-primary`: Elects and commits the primary wallet for an address.
//   - `check`: Runs the primary-wallet invariant diagnostics.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wr: The walletregistry service implementation used by wallet commands.
//   - registry: The network registry used by the network commands.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, wr walletregistry.Service, registry chainregistry.Registry) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletcore",
		Description:           "Command-line interface for the multi-chain wallet identity core.",
		Usage:                 "walletcore [command] [flags]",
		Commands: []*cli.Command{
			listNetworksCommand(registry),
			validateNamespaceCommand(registry),
			listWalletsCommand(wr),
			linkNetworkCommand(wr),
			unlinkNetworkCommand(wr),
			setPrimaryCommand(wr),
			checkInvariantsCommand(wr),
		},
	}

	return app.Run(ctx, os.Args)
}
