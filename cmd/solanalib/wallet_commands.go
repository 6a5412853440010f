package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/krazyTry/solanalib/ledger"
	"github.com/urfave/cli/v2"
)

func walletCommands() *cli.Command {
	return &cli.Command{
		Name:  "wallet",
		Usage: "Wallet key and account commands",
		Subcommands: []*cli.Command{
			walletNewCommand(),
			walletRecoverCommand(),
			walletInfoCommand(),
			walletBalanceCommand(),
		},
	}
}

func walletNewCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Generate a new keypair (offline)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"o"},
				Usage:   "Write the keypair to this file in solana-keygen format",
			},
			&cli.IntFlag{
				Name:  "words",
				Usage: "Derive the keypair from a new 12 or 24 word seed phrase (0 for a random key)",
			},
			passphraseFlag(),
		},
		Action: func(c *cli.Context) error {
			var (
				wallet   *solana.Wallet
				mnemonic string
			)
			if words := c.Int("words"); words > 0 {
				phrase, err := ledger.NewMnemonic(words)
				if err != nil {
					return err
				}
				if wallet, err = ledger.WalletFromMnemonic(phrase, c.String("passphrase")); err != nil {
					return err
				}
				mnemonic = phrase
			} else {
				wallet = ledger.CreateWallet()
			}
			return printWallet(c, wallet, mnemonic, "Wallet created")
		},
	}
}

func walletRecoverCommand() *cli.Command {
	return &cli.Command{
		Name:      "recover",
		Usage:     "Recover a keypair from its seed phrase (offline)",
		ArgsUsage: "\"WORD WORD ...\"",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"o"},
				Usage:   "Write the keypair to this file in solana-keygen format",
			},
			passphraseFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("seed phrase is required")
			}
			phrase := strings.Join(strings.Fields(strings.Join(c.Args().Slice(), " ")), " ")
			wallet, err := ledger.WalletFromMnemonic(phrase, c.String("passphrase"))
			if err != nil {
				return err
			}
			return printWallet(c, wallet, "", "Wallet recovered")
		},
	}
}

func printWallet(c *cli.Context, wallet *solana.Wallet, mnemonic, headline string) error {
	if path := c.String("outfile"); path != "" {
		if err := writeKeygenFile(path, wallet.PrivateKey); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		out := map[string]any{
			"publicKey": wallet.PublicKey(),
			"secretKey": wallet.PrivateKey.String(),
		}
		if mnemonic != "" {
			out["mnemonic"] = mnemonic
		}
		return printJSON(c, out)
	}
	success(c, "%s", headline)
	printf(c, "  Public Key: %s\n", wallet.PublicKey())
	printf(c, "  Secret Key: %s\n", wallet.PrivateKey)
	if mnemonic != "" {
		printf(c, "  Seed Phrase: %s\n", mnemonic)
	}
	return nil
}

// writeKeygenFile stores key as the JSON byte array solana-keygen reads.
func writeKeygenFile(path string, key solana.PrivateKey) error {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keypair file: %w", err)
	}
	return nil
}

func walletInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show account metadata of a wallet",
		ArgsUsage: "ADDRESS",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			return withConnection(c, func(conn *ledger.Connection) error {
				info, err := conn.GetWalletInfo(c.Context, address)
				if err != nil {
					return fmt.Errorf("failed to get wallet info: %w", err)
				}

				if c.Bool("json") {
					return printJSON(c, info)
				}
				printf(c, "Address:    %s\n", info.Address)
				printf(c, "Balance:    %s SOL (%d lamports)\n", info.SOL(), info.Lamports)
				printf(c, "Owner:      %s\n", info.Owner)
				printf(c, "Executable: %t\n", info.IsExecutable)
				printf(c, "Rent Epoch: %d\n", info.RentEpoch)
				return nil
			})
		},
	}
}

func walletBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show SOL and token balances of a wallet",
		ArgsUsage: "ADDRESS",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tokens",
				Usage: "Include SPL token holdings",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			return withConnection(c, func(conn *ledger.Connection) error {
				lamports, err := conn.GetBalance(c.Context, address)
				if err != nil {
					return fmt.Errorf("failed to get balance: %w", err)
				}

				var tokens []ledger.TokenBalance
				if c.Bool("tokens") {
					tokens, err = conn.GetTokenBalances(c.Context, address)
					if err != nil {
						return fmt.Errorf("failed to get token balances: %w", err)
					}
				}

				if c.Bool("json") {
					out := map[string]any{"address": address, "lamports": lamports}
					if c.Bool("tokens") {
						out["tokens"] = tokens
					}
					return printJSON(c, out)
				}
				printf(c, "%s SOL\n", formatSOL(lamports))
				for _, t := range tokens {
					printf(c, "  %s  %s (account %s)\n", t.Mint, formatUnits(t.Amount, t.Decimals), t.Account)
				}
				return nil
			})
		},
	}
}

func airdropCommand() *cli.Command {
	return &cli.Command{
		Name:      "airdrop",
		Usage:     "Request SOL from the cluster faucet (devnet, testnet, localnet)",
		ArgsUsage: "ADDRESS [SOL]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)
			amount := "1"
			if c.NArg() > 1 {
				amount = c.Args().Get(1)
			}
			lamports, err := parseSOL(amount)
			if err != nil {
				return err
			}

			return withConnection(c, func(conn *ledger.Connection) error {
				sig, err := conn.AirdropSolana(c.Context, address, lamports)
				if err != nil {
					return fmt.Errorf("airdrop failed: %w", err)
				}

				if c.Bool("json") {
					return printJSON(c, map[string]any{
						"address":   address,
						"lamports":  lamports,
						"signature": sig,
					})
				}
				success(c, "Airdropped %s SOL to %s", formatSOL(lamports), address)
				printf(c, "  Signature: %s\n", sig)
				return nil
			})
		},
	}
}
