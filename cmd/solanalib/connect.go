package main

import (
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jsoniter "github.com/json-iterator/go"
	"github.com/krazyTry/solanalib/config"
	"github.com/krazyTry/solanalib/ledger"
	solanago "github.com/krazyTry/solanalib/solana"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// connect opens the connection described by the global flags.
// Replaced in tests.
var connect = func(c *cli.Context) (*ledger.Connection, error) {
	cfg, err := configFromFlags(c)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(c, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	conn, err := cfg.Connect(ledger.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if cfg.WSURL != "" {
		if err := conn.DialWebsocket(c.Context); err != nil {
			logger.Warn("websocket unavailable, polling signature status", "error", err)
		}
	}
	return conn, nil
}

// configFromFlags starts from the environment and applies the flags given on the command line.
func configFromFlags(c *cli.Context) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	// the CLI logs at warn unless LOG_LEVEL or the flag says otherwise
	if c.IsSet("log-level") || os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("cluster") {
		cluster, err := ledger.ParseCluster(c.String("cluster"))
		if err != nil {
			return nil, err
		}
		cfg.Cluster = cluster
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("ws-url") {
		cfg.WSURL = c.String("ws-url")
	}
	if c.IsSet("commitment") {
		cfg.Commitment = rpc.CommitmentType(c.String("commitment"))
	}
	if c.IsSet("rate-limit") {
		cfg.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("confirm-timeout") {
		cfg.ConfirmTimeout = c.Duration("confirm-timeout")
	}
	if c.IsSet("poll-interval") {
		cfg.PollInterval = c.Duration("poll-interval")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// withConnection runs fn against a freshly opened connection and closes it afterwards.
func withConnection(c *cli.Context, fn func(conn *ledger.Connection) error) error {
	conn, err := connect(c)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func secretFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "keypair",
			Aliases: []string{"k"},
			Usage:   "Path to a solana-keygen JSON keypair file",
			EnvVars: []string{"SOLANA_KEYPAIR"},
		},
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "Base58 encoded 64-byte secret key",
			EnvVars: []string{"SOLANA_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "mnemonic",
			Usage:   "BIP-39 seed phrase (solana-keygen derivation, no path)",
			EnvVars: []string{"SOLANA_MNEMONIC"},
		},
		passphraseFlag(),
	}
}

func passphraseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "passphrase",
		Usage:   "Optional BIP-39 passphrase",
		EnvVars: []string{"SOLANA_PASSPHRASE"},
	}
}

// loadSecret reads the signing key from exactly one of --keypair, --secret or --mnemonic.
func loadSecret(c *cli.Context) ([]byte, error) {
	path := c.String("keypair")
	secret := strings.TrimSpace(c.String("secret"))
	mnemonic := strings.Join(strings.Fields(c.String("mnemonic")), " ")

	set := 0
	for _, v := range []string{path, secret, mnemonic} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("use only one of --keypair, --secret or --mnemonic")
	}

	switch {
	case path != "":
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read keypair %s: %w", path, err)
		}
		return key, nil
	case secret != "":
		key, err := base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("secret is not valid base58: %w", err)
		}
		return key, nil
	case mnemonic != "":
		wallet, err := ledger.WalletFromMnemonic(mnemonic, c.String("passphrase"))
		if err != nil {
			return nil, err
		}
		return wallet.PrivateKey, nil
	default:
		return nil, fmt.Errorf("a signing key is required (--keypair, --secret or --mnemonic)")
	}
}

// parseSOL converts a decimal SOL amount such as "0.25" to lamports.
func parseSOL(amount string) (uint64, error) {
	sol, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", amount, err)
	}
	if !sol.IsPositive() {
		return 0, fmt.Errorf("SOL amount must be positive, got %s", amount)
	}
	return solanago.SOLToLamports(sol)
}

func formatSOL(lamports uint64) string {
	return solanago.LamportsToSOL(lamports).String()
}

// formatUnits renders base units as a decimal amount of whole tokens.
func formatUnits(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

func printJSON(c *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}

func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}

// success prints a green check mark followed by the message.
func success(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}
