package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/krazyTry/solanalib/ledger"
)

// Config holds the connection settings read from the environment.
type Config struct {
	LogLevel string

	// Solana configuration
	Cluster    ledger.Cluster
	RPCURL     string // overrides the cluster's public endpoint when set
	WSURL      string
	Commitment rpc.CommitmentType
	RateLimit  float64 // RPC calls per second, 0 for no limit

	// Confirmation configuration
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Load reads configuration from environment variables and validates it.
// Every problem found is reported at once.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// the combination, so callers can layer overrides on top before Validate.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cluster, err := ledger.ParseCluster(getEnvOrDefault("SOLANA_CLUSTER", string(ledger.Devnet)))
	if err != nil {
		errs = append(errs, fmt.Errorf("SOLANA_CLUSTER: %w", err))
	}
	cfg.Cluster = cluster

	cfg.RPCURL = os.Getenv("SOLANA_RPC_URL")
	cfg.WSURL = os.Getenv("SOLANA_WS_URL")
	cfg.Commitment = rpc.CommitmentType(getEnvOrDefault("SOLANA_COMMITMENT", string(ledger.DefaultCommitment)))

	if v := os.Getenv("SOLANA_RPC_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SOLANA_RPC_RATE_LIMIT: invalid number %q: %w", v, err))
		}
		cfg.RateLimit = rps
	}

	confirmTimeout, err := parseDuration("SOLANA_CONFIRM_TIMEOUT", ledger.DefaultConfirmTimeout.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmTimeout = confirmTimeout
	}

	pollInterval, err := parseDuration("SOLANA_POLL_INTERVAL", ledger.DefaultPollInterval.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.PollInterval = pollInterval
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if _, _, err := c.Cluster.Endpoints(); err != nil {
		errs = append(errs, err)
	}

	switch c.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		errs = append(errs, fmt.Errorf("commitment %q must be processed, confirmed or finalized", c.Commitment))
	}

	if c.WSURL != "" && c.RPCURL == "" {
		errs = append(errs, fmt.Errorf("a websocket URL requires a custom RPC URL"))
	}

	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("RateLimit cannot be negative"))
	}

	if c.ConfirmTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ConfirmTimeout must be positive"))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("PollInterval must be positive"))
	}

	if c.PollInterval > c.ConfirmTimeout {
		errs = append(errs, fmt.Errorf("PollInterval (%v) cannot be greater than ConfirmTimeout (%v)",
			c.PollInterval, c.ConfirmTimeout))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// Connect opens a ledger connection with these settings; opts are applied last.
func (c *Config) Connect(opts ...ledger.Option) (*ledger.Connection, error) {
	base := []ledger.Option{
		ledger.WithCommitment(c.Commitment),
		ledger.WithConfirmTimeout(c.ConfirmTimeout),
		ledger.WithPollInterval(c.PollInterval),
	}
	if c.RateLimit > 0 {
		base = append(base, ledger.WithRateLimit(c.RateLimit, int(math.Ceil(c.RateLimit))))
	}
	if c.WSURL != "" {
		base = append(base, ledger.WithWebsocket(c.WSURL))
	}
	opts = append(base, opts...)

	if c.RPCURL != "" {
		return ledger.NewConnection(c.Cluster, c.RPCURL, opts...), nil
	}
	return ledger.GetConnection(c.Cluster, opts...)
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
