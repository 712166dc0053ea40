package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabapcia/walletcore/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// userFlag is the flag identifying the owning user, shared by every wallet
// command.
func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Usage:    "Identifier of the owning user",
		Required: true,
	}
}

// listWalletsCommand returns a CLI command that prints a user's canonical
// connected-wallet list as JSON.
//
// Usage example:
//
//	walletcore wallets --user u-123
func listWalletsCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "wallets",
		Description: "Derive and print the canonical connected-wallet list for a user.",
		Usage:       "Prints one entry per address with its networks, primary flag and merged caches.",
		Flags:       []cli.Flag{userFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			wallets, err := wr.ConnectedWallets(ctx, c.String("user"))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(wallets)
		},
	}
}

// linkNetworkCommand returns a CLI command that registers a wallet address on
// a network for a user.
//
// Usage example:
//
//	walletcore link --user u-123 --address 0xABC123... --network eip155:1
func linkNetworkCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "link",
		Description: "Register a wallet address on a network for a user.",
		Usage:       "Creates the per-network wallet row. Must provide user, address and network.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to link (checksum casing preserved)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "network",
				Usage:    "CAIP-2 chain namespace (e.g., eip155:1)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			row, err := wr.LinkNetwork(ctx, c.String("user"), c.String("address"), c.String("network"))
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "linked: row %s\n", row.ID)
			return nil
		},
	}
}

// unlinkNetworkCommand returns a CLI command that removes a wallet's
// registration on one network.
//
// Usage example:
//
//	walletcore unlink --user u-123 --address 0xABC123... --network eip155:137
func unlinkNetworkCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "unlink",
		Description: "Remove a wallet's registration on one network.",
		Usage:       "Deletes the per-network wallet row, re-electing the primary when needed.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to unlink",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "network",
				Usage:    "CAIP-2 chain namespace (e.g., eip155:137)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return wr.UnlinkNetwork(ctx, c.String("user"), c.String("address"), c.String("network"))
		},
	}
}

// setPrimaryCommand returns a CLI command that elects and commits the primary
// wallet for an address.
//
// Usage example:
//
//	walletcore set-primary --user u-123 --address 0xABC123...
func setPrimaryCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "set-primary",
		Description: "Elect and commit the primary wallet row for an address.",
		Usage:       "Applies the primary election ordering and commits the winner.",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address to make primary",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return wr.SetPrimary(ctx, c.String("user"), c.String("address"))
		},
	}
}

// checkInvariantsCommand returns a CLI command that runs the primary-wallet
// invariant diagnostics over a user's rows and prints the report.
//
// Usage example:
//
//	walletcore check --user u-123
func checkInvariantsCommand(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "check",
		Description: "Verify the primary-wallet invariants over a user's rows.",
		Usage:       "Reports violations without correcting them.",
		Flags:       []cli.Flag{userFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			report, err := wr.CheckInvariants(ctx, c.String("user"))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
}
