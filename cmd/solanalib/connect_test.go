package main

import (
	"io"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/krazyTry/solanalib/config"
	"github.com/krazyTry/solanalib/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseSOL(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "1", want: 1_000_000_000},
		{in: "0.000000001", want: 1},
		{in: "2.5", want: 2_500_000_000},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "lots", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
		{in: "0.0000000001", wantErr: true},
		{in: "0.0000000009", wantErr: true},
		{in: "1.0000000001", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSOL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnits(t *testing.T) {
	got, err := parseUnits("1.25", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_250_000), got)

	got, err = parseUnits("7", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got)

	_, err = parseUnits("0.5", 0)
	assert.ErrorContains(t, err, "decimal places")

	_, err = parseUnits("18446744073709551616", 0)
	assert.ErrorIs(t, err, ledger.ErrAmountOverflow)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "12.34", formatUnits(1234, 2))
	assert.Equal(t, "1", formatUnits(1, 0))
	assert.Equal(t, "0.000001", formatUnits(1, 6))
	assert.Equal(t, "1.5", formatSOL(1_500_000_000))
}

// loadConfig runs the app with args and returns the configuration its command would connect with.
func loadConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var (
		cfg *config.Config
		err error
	)
	app := newApp()
	app.Writer, app.ErrWriter = io.Discard, io.Discard
	app.Commands = []*cli.Command{{
		Name: "show",
		Action: func(c *cli.Context) error {
			cfg, err = configFromFlags(c)
			return nil
		},
	}}
	require.NoError(t, app.Run(append(append([]string{"solanalib"}, args...), "show")))
	return cfg, err
}

func TestConfigFromFlags(t *testing.T) {
	for _, key := range []string{
		"LOG_LEVEL", "SOLANA_CLUSTER", "SOLANA_RPC_URL", "SOLANA_WS_URL", "SOLANA_COMMITMENT",
		"SOLANA_CONFIRM_TIMEOUT", "SOLANA_POLL_INTERVAL", "SOLANA_RPC_RATE_LIMIT",
	} {
		t.Setenv(key, "")
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(t)
		require.NoError(t, err)
		assert.Equal(t, ledger.Devnet, cfg.Cluster)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, ledger.DefaultConfirmTimeout, cfg.ConfirmTimeout)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("SOLANA_CLUSTER", "mainnet")
		t.Setenv("SOLANA_RPC_URL", "https://rpc.example.com")
		t.Setenv("SOLANA_RPC_RATE_LIMIT", "4")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := loadConfig(t)
		require.NoError(t, err)
		assert.Equal(t, ledger.MainnetBeta, cfg.Cluster)
		assert.Equal(t, "https://rpc.example.com", cfg.RPCURL)
		assert.Equal(t, 4.0, cfg.RateLimit)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("SOLANA_CLUSTER", "mainnet")
		t.Setenv("SOLANA_COMMITMENT", "processed")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := loadConfig(t,
			"--cluster", "testnet",
			"--commitment", "finalized",
			"--confirm-timeout", "30s",
			"--log-level", "error",
		)
		require.NoError(t, err)
		assert.Equal(t, ledger.Testnet, cfg.Cluster)
		assert.Equal(t, rpc.CommitmentFinalized, cfg.Commitment)
		assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Setenv("SOLANA_POLL_INTERVAL", "often")

		_, err := loadConfig(t)
		assert.ErrorContains(t, err, "SOLANA_POLL_INTERVAL")
	})

	t.Run("invalid combination", func(t *testing.T) {
		_, err := loadConfig(t, "--ws-url", "wss://rpc.example.com")
		assert.ErrorContains(t, err, "websocket")
	})
}
