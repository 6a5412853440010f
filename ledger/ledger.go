// Package ledger is a small facade over solana-go for wallet, SOL and SPL token chores:
// key generation, airdrops, account lookups, transfers and token/NFT minting.
//
// Example:
//
//	conn, _ := ledger.GetConnection(ledger.Devnet)
//	defer conn.Close()
//
//	wallet := ledger.CreateWallet()
//	sig, _ := conn.AirdropSolana(ctx, wallet.PublicKey().String(), solana.LAMPORTS_PER_SOL)
//	mint, _ := conn.CreateToken(ctx, wallet.PrivateKey, wallet.PublicKey().String(), 1000)
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/krazyTry/solanalib/metrics"
	solanago "github.com/krazyTry/solanalib/solana"
	"golang.org/x/time/rate"
)

// Cluster names a Solana network.
type Cluster string

const (
	Devnet      Cluster = "devnet"
	Testnet     Cluster = "testnet"
	MainnetBeta Cluster = "mainnet-beta"
	Localnet    Cluster = "localnet"
)

const (
	DefaultCommitment     = rpc.CommitmentConfirmed
	DefaultConfirmTimeout = 90 * time.Second
	DefaultPollInterval   = time.Second
)

var ErrUnknownCluster = errors.New("unknown cluster")

// Endpoints returns the public RPC and websocket URLs of the cluster.
func (c Cluster) Endpoints() (rpcURL, wsURL string, err error) {
	switch c {
	case Devnet:
		return rpc.DevNet_RPC, rpc.DevNet_WS, nil
	case Testnet:
		return rpc.TestNet_RPC, rpc.TestNet_WS, nil
	case MainnetBeta:
		return rpc.MainNetBeta_RPC, rpc.MainNetBeta_WS, nil
	case Localnet:
		return rpc.LocalNet_RPC, rpc.LocalNet_WS, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownCluster, string(c))
	}
}

// ParseCluster accepts the cluster names used by the Solana CLI.
func ParseCluster(name string) (Cluster, error) {
	switch name {
	case "devnet", "d":
		return Devnet, nil
	case "testnet", "t":
		return Testnet, nil
	case "mainnet-beta", "mainnet", "m":
		return MainnetBeta, nil
	case "localnet", "localhost", "l":
		return Localnet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCluster, name)
	}
}

// Connection is a handle to one RPC endpoint. It is safe for concurrent use;
// every operation is an independent sequence of round trips.
type Connection struct {
	cluster    Cluster
	rpcURL     string
	wsURL      string
	commitment rpc.CommitmentType

	rpc    solanago.RPCClient
	closer func() error

	logger         *slog.Logger
	metrics        *metrics.Metrics
	confirmTimeout time.Duration
	pollInterval   time.Duration
	limiter        *rate.Limiter

	mu       sync.Mutex
	wsClient *ws.Client
}

// Option configures a Connection.
type Option func(*Connection)

// WithRPCClient replaces the HTTP RPC client, e.g. with a fake in tests.
// A nil client is ignored.
func WithRPCClient(client solanago.RPCClient) Option {
	return func(c *Connection) {
		if client != nil {
			c.rpc = client
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) { c.logger = logger }
}

// WithMetrics enables Prometheus recording. A nil value disables it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Connection) { c.metrics = m }
}

func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(c *Connection) { c.commitment = commitment }
}

// WithConfirmTimeout bounds how long an operation waits for its transaction to confirm.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Connection) { c.confirmTimeout = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Connection) { c.pollInterval = d }
}

// WithRateLimit caps outgoing RPC calls at rps per second with the given burst.
// rps <= 0 removes the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Connection) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithWebsocket overrides the websocket endpoint used by DialWebsocket.
func WithWebsocket(url string) Option {
	return func(c *Connection) { c.wsURL = url }
}

// GetConnection returns a connection to the public endpoint of cluster at "confirmed" commitment.
func GetConnection(cluster Cluster, opts ...Option) (*Connection, error) {
	rpcURL, wsURL, err := cluster.Endpoints()
	if err != nil {
		return nil, err
	}
	return newConnection(cluster, rpcURL, wsURL, opts...), nil
}

// NewConnection returns a connection to a custom RPC endpoint. The cluster is
// only used for labels and the airdrop guard.
func NewConnection(cluster Cluster, rpcURL string, opts ...Option) *Connection {
	return newConnection(cluster, rpcURL, "", opts...)
}

func newConnection(cluster Cluster, rpcURL, wsURL string, opts ...Option) *Connection {
	c := &Connection{
		cluster:        cluster,
		rpcURL:         rpcURL,
		wsURL:          wsURL,
		commitment:     DefaultCommitment,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		confirmTimeout: DefaultConfirmTimeout,
		pollInterval:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rpc == nil {
		client := rpc.New(rpcURL)
		c.rpc = client
		c.closer = client.Close
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.rpc = &observedRPC{
		next:    c.rpc,
		cluster: string(c.cluster),
		logger:  c.logger,
		metrics: c.metrics,
		limiter: c.limiter,
	}
	return c
}

func (c *Connection) Cluster() Cluster { return c.cluster }

func (c *Connection) Endpoint() string { return c.rpcURL }

func (c *Connection) Commitment() rpc.CommitmentType { return c.commitment }

// RPC exposes the instrumented client for calls the facade does not wrap.
func (c *Connection) RPC() solanago.RPCClient { return c.rpc }

func (c *Connection) websocket() *ws.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsClient
}

// DialWebsocket opens the websocket endpoint so that confirmations use
// signature subscriptions instead of status polling.
func (c *Connection) DialWebsocket(ctx context.Context) error {
	if c.wsURL == "" {
		return fmt.Errorf("no websocket endpoint configured for %s", c.rpcURL)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsClient != nil {
		return nil
	}
	client, err := ws.Connect(ctx, c.wsURL)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.wsURL, err)
	}
	c.wsClient = client
	return nil
}

// Close releases the websocket and HTTP clients.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.wsClient != nil {
		c.wsClient.Close()
		c.wsClient = nil
	}
	c.mu.Unlock()
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

func (c *Connection) confirmer() solanago.Confirmer {
	if client := c.websocket(); client != nil {
		return &solanago.WSConfirmer{Client: client, RPC: c.rpc, Commitment: c.commitment}
	}
	return &solanago.PollConfirmer{RPC: c.rpc, Commitment: c.commitment, Interval: c.pollInterval}
}

// send signs and submits instructions, then waits for confirmation within confirmTimeout.
func (c *Connection) send(
	ctx context.Context,
	instructions []solana.Instruction,
	payer *solana.Wallet,
	extraSigners ...*solana.Wallet,
) (solana.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	signers := append([]*solana.Wallet{payer}, extraSigners...)
	return solanago.SendTransaction(
		ctx,
		c.rpc,
		c.confirmer(),
		c.commitment,
		instructions,
		payer.PublicKey(),
		solanago.Signer(signers...),
	)
}

// observe logs and records an operation's outcome; call it deferred with the named error.
func (c *Connection) observe(ctx context.Context, operation string, start time.Time, err error, attrs ...any) {
	duration := time.Since(start)
	c.metrics.RecordOperation(operation, err, duration.Seconds())

	attrs = append(attrs, "operation", operation, "cluster", string(c.cluster), "duration", duration)
	if err != nil {
		c.logger.ErrorContext(ctx, "ledger operation failed", append(attrs, "error", err)...)
		return
	}
	c.logger.InfoContext(ctx, "ledger operation completed", attrs...)
}
