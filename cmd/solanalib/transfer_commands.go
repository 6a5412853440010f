package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/krazyTry/solanalib/ledger"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func transferCommands() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Move SOL, tokens or NFTs out of a wallet",
		Subcommands: []*cli.Command{
			transferSOLCommand(),
			transferTokenCommand(),
			transferNFTCommand(),
		},
	}
}

func transferSOLCommand() *cli.Command {
	return &cli.Command{
		Name:      "sol",
		Usage:     "Send SOL to another wallet",
		ArgsUsage: "RECIPIENT AMOUNT_SOL",
		Flags:     secretFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("recipient and amount are required")
			}
			to := c.Args().Get(0)
			lamports, err := parseSOL(c.Args().Get(1))
			if err != nil {
				return err
			}
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				sig, err := conn.TransferSolana(c.Context, secret, to, lamports)
				if err != nil {
					return fmt.Errorf("transfer failed: %w", err)
				}
				return printTransfer(c, to, "", formatSOL(lamports)+" SOL", sig)
			})
		},
	}
}

func transferTokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Send SPL tokens to another wallet",
		ArgsUsage: "RECIPIENT MINT AMOUNT",
		Flags: append(secretFlags(),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "AMOUNT is in base units instead of whole tokens",
			},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("recipient, mint and amount are required")
			}
			to, mint, amount := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				var decimals uint8
				if !c.Bool("raw") {
					info, err := conn.GetMintInfo(c.Context, mint)
					if err != nil {
						return fmt.Errorf("failed to read mint: %w", err)
					}
					decimals = info.Decimals
				}
				units, err := parseUnits(amount, decimals)
				if err != nil {
					return err
				}

				sig, err := conn.TransferToken(c.Context, secret, to, mint, units)
				if err != nil {
					return fmt.Errorf("transfer failed: %w", err)
				}
				return printTransfer(c, to, mint, amount, sig)
			})
		},
	}
}

func transferNFTCommand() *cli.Command {
	return &cli.Command{
		Name:      "nft",
		Usage:     "Send an NFT to another wallet",
		ArgsUsage: "RECIPIENT MINT",
		Flags:     secretFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("recipient and mint are required")
			}
			to, mint := c.Args().Get(0), c.Args().Get(1)
			secret, err := loadSecret(c)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				sig, err := conn.TransferNFT(c.Context, secret, to, mint)
				if err != nil {
					return fmt.Errorf("transfer failed: %w", err)
				}
				return printTransfer(c, to, mint, "1", sig)
			})
		},
	}
}

// parseUnits converts a whole-token amount to base units of a mint with the given decimals.
func parseUnits(amount string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %s", amount)
	}
	units := d.Shift(int32(decimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	n := units.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ledger.ErrAmountOverflow, amount)
	}
	return n.Uint64(), nil
}

func printTransfer(c *cli.Context, to, mint, amount string, sig solana.Signature) error {
	if c.Bool("json") {
		out := map[string]any{
			"to":        to,
			"amount":    amount,
			"signature": sig,
		}
		if mint != "" {
			out["mint"] = mint
		}
		return printJSON(c, out)
	}
	success(c, "Sent %s to %s", amount, to)
	if mint != "" {
		printf(c, "  Mint: %s\n", mint)
	}
	printf(c, "  Signature: %s\n", sig)
	return nil
}
