package main

import (
	"fmt"
	"log"
	"os"

	"github.com/krazyTry/solanalib/ledger"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "solanalib",
		Usage: "Solana wallet, SOL and SPL token helper",
		Description: `A command-line tool for everyday ledger chores.

Create wallets, request devnet airdrops, move SOL and tokens, and mint
fungible tokens or NFTs against any Solana cluster.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			walletCommands(),
			airdropCommand(),
			transferCommands(),
			tokenCommands(),
			nftCommands(),
		},
		// Global flags available to all commands. Each one overrides the
		// environment variable config.FromEnv reads for the same setting.
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cluster",
				Usage: "Cluster to talk to (devnet, testnet, mainnet-beta, localnet) [$SOLANA_CLUSTER]",
				Value: string(ledger.Devnet),
			},
			&cli.StringFlag{
				Name:  "rpc-url",
				Usage: "Custom RPC endpoint, overrides the cluster default [$SOLANA_RPC_URL]",
			},
			&cli.StringFlag{
				Name:  "ws-url",
				Usage: "Websocket endpoint used for signature subscriptions [$SOLANA_WS_URL]",
			},
			&cli.StringFlag{
				Name:  "commitment",
				Usage: "Commitment level (processed, confirmed, finalized) [$SOLANA_COMMITMENT]",
				Value: string(ledger.DefaultCommitment),
			},
			&cli.DurationFlag{
				Name:  "confirm-timeout",
				Usage: "How long to wait for a transaction to be confirmed [$SOLANA_CONFIRM_TIMEOUT]",
				Value: ledger.DefaultConfirmTimeout,
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Signature status polling interval [$SOLANA_POLL_INTERVAL]",
				Value: ledger.DefaultPollInterval,
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "Maximum RPC calls per second, 0 for no limit [$SOLANA_RPC_RATE_LIMIT]",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error) [$LOG_LEVEL]",
				Value: "warn",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}
}
