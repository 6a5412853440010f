package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/krazyTry/solanalib/ledger"
	"github.com/urfave/cli/v2"
)

func tokenCommands() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "SPL token commands",
		Subcommands: []*cli.Command{
			tokenCreateCommand(),
			tokenAccountCommand(),
			tokenBalancesCommand(),
			tokenMintInfoCommand(),
			tokenRevokeCommand(),
		},
	}
}

func nftCommands() *cli.Command {
	return &cli.Command{
		Name:  "nft",
		Usage: "NFT commands",
		Subcommands: []*cli.Command{
			nftCreateCommand(),
		},
	}
}

func tokenCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     fmt.Sprintf("Create a %d-decimal token and mint COUNT whole tokens to RECIPIENT", ledger.FungibleDecimals),
		ArgsUsage: "RECIPIENT COUNT",
		Flags:     secretFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("recipient and count are required")
			}
			to := c.Args().Get(0)
			count, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", c.Args().Get(1), err)
			}
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				mint, err := conn.CreateToken(c.Context, secret, to, count)
				if err != nil {
					return fmt.Errorf("failed to create token: %w", err)
				}
				return printMint(c, "token", mint, to)
			})
		},
	}
}

func nftCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Mint a single fixed-supply NFT to RECIPIENT",
		ArgsUsage: "RECIPIENT",
		Flags:     secretFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("recipient is required")
			}
			to := c.Args().Get(0)
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				mint, err := conn.CreateNFT(c.Context, secret, to)
				if err != nil {
					return fmt.Errorf("failed to create NFT: %w", err)
				}
				return printMint(c, "NFT", mint, to)
			})
		},
	}
}

func printMint(c *cli.Context, kind string, mint solana.PublicKey, to string) error {
	if c.Bool("json") {
		return printJSON(c, map[string]any{"mint": mint, "recipient": to})
	}
	success(c, "%s created", kind)
	printf(c, "  Mint:      %s\n", mint)
	printf(c, "  Recipient: %s\n", to)
	return nil
}

func tokenAccountCommand() *cli.Command {
	return &cli.Command{
		Name:      "account",
		Usage:     "Decode an SPL token account",
		ArgsUsage: "TOKEN_ACCOUNT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("token account address is required")
			}
			address := c.Args().Get(0)

			return withConnection(c, func(conn *ledger.Connection) error {
				info, err := conn.GetTokenAccountInfo(c.Context, address)
				if err != nil {
					var tae *ledger.TokenAccountError
					if errors.As(err, &tae) && c.Bool("json") {
						return printJSON(c, map[string]any{
							"address": address,
							"error":   tae.Kind.String(),
							"message": tae.Error(),
						})
					}
					return errors.New(ledger.DescribeTokenAccountError(err))
				}

				if c.Bool("json") {
					return printJSON(c, info)
				}
				printf(c, "Address:  %s\n", info.Address)
				printf(c, "Mint:     %s\n", info.Mint)
				printf(c, "Owner:    %s\n", info.Owner)
				printf(c, "Amount:   %d\n", info.Amount)
				printf(c, "Frozen:   %t\n", info.IsFrozen)
				if info.Delegate != nil {
					printf(c, "Delegate: %s (%d)\n", *info.Delegate, info.DelegatedAmount)
				}
				return nil
			})
		},
	}
}

func tokenBalancesCommand() *cli.Command {
	return &cli.Command{
		Name:      "balances",
		Usage:     "List non-zero token holdings of a wallet",
		ArgsUsage: "OWNER",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("owner address is required")
			}
			owner := c.Args().Get(0)

			return withConnection(c, func(conn *ledger.Connection) error {
				balances, err := conn.GetTokenBalances(c.Context, owner)
				if err != nil {
					return fmt.Errorf("failed to get token balances: %w", err)
				}

				if c.Bool("json") {
					return printJSON(c, balances)
				}
				if len(balances) == 0 {
					printf(c, "No token holdings\n")
					return nil
				}
				for _, b := range balances {
					printf(c, "%s  %s\n", b.Mint, formatUnits(b.Amount, b.Decimals))
				}
				return nil
			})
		},
	}
}

func tokenMintInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "mint-info",
		Usage:     "Show supply, decimals and authorities of a mint",
		ArgsUsage: "MINT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}
			mint := c.Args().Get(0)

			return withConnection(c, func(conn *ledger.Connection) error {
				info, err := conn.GetMintInfo(c.Context, mint)
				if err != nil {
					return fmt.Errorf("failed to read mint: %w", err)
				}

				if c.Bool("json") {
					return printJSON(c, info)
				}
				printf(c, "Mint:             %s\n", info.Address)
				printf(c, "Supply:           %s\n", formatUnits(info.Supply, info.Decimals))
				printf(c, "Decimals:         %d\n", info.Decimals)
				printf(c, "Mint Authority:   %s\n", authorityString(info.MintAuthority))
				printf(c, "Freeze Authority: %s\n", authorityString(info.FreezeAuthority))
				return nil
			})
		},
	}
}

func authorityString(key *solana.PublicKey) string {
	if key == nil {
		return "none"
	}
	return key.String()
}

func tokenRevokeCommand() *cli.Command {
	return &cli.Command{
		Name:      "revoke",
		Usage:     "Permanently give up the mint authority of a token",
		ArgsUsage: "MINT",
		Flags:     secretFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}
			mint := c.Args().Get(0)
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				sig, err := conn.RevokeMintAuthority(c.Context, secret, mint)
				if err != nil {
					return fmt.Errorf("failed to revoke mint authority: %w", err)
				}
				if c.Bool("json") {
					return printJSON(c, map[string]any{"mint": mint, "signature": sig})
				}
				success(c, "Mint authority revoked")
				printf(c, "  Signature: %s\n", sig)
				return nil
			})
		},
	}
}
