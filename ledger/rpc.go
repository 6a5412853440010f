package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/krazyTry/solanalib/metrics"
	solanago "github.com/krazyTry/solanalib/solana"
	"golang.org/x/time/rate"
)

// observedRPC records a metric and a debug log line for every round trip.
// With a limiter set, calls wait for a token first.
type observedRPC struct {
	next    solanago.RPCClient
	cluster string
	logger  *slog.Logger
	metrics *metrics.Metrics
	limiter *rate.Limiter
}

var _ solanago.RPCClient = (*observedRPC)(nil)

func (o *observedRPC) begin(ctx context.Context) (time.Time, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return time.Time{}, fmt.Errorf("rpc rate limit: %w", err)
		}
	}
	return time.Now(), nil
}

func (o *observedRPC) record(ctx context.Context, method string, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	if err != nil && err != rpc.ErrNotFound {
		status = "error"
	}
	o.metrics.RecordRPCCall(method, status, o.cluster, duration.Seconds())
	o.logger.DebugContext(ctx, "rpc call",
		"method", method,
		"status", status,
		"duration", duration,
		"error", err,
	)
}

func (o *observedRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.next.GetAccountInfoWithOpts(ctx, account, opts)
	o.record(ctx, "getAccountInfo", start, err)
	return out, err
}

func (o *observedRPC) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.next.GetBalance(ctx, account, commitment)
	o.record(ctx, "getBalance", start, err)
	return out, err
}

func (o *observedRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.next.GetLatestBlockhash(ctx, commitment)
	o.record(ctx, "getLatestBlockhash", start, err)
	return out, err
}

func (o *observedRPC) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return 0, err
	}
	out, err := o.next.GetMinimumBalanceForRentExemption(ctx, dataSize, commitment)
	o.record(ctx, "getMinimumBalanceForRentExemption", start, err)
	return out, err
}

func (o *observedRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.next.GetSignatureStatuses(ctx, searchTransactionHistory, transactionSignatures...)
	o.record(ctx, "getSignatureStatuses", start, err)
	return out, err
}

func (o *observedRPC) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	out, err := o.next.GetTokenAccountsByOwner(ctx, owner, conf, opts)
	o.record(ctx, "getTokenAccountsByOwner", start, err)
	return out, err
}

func (o *observedRPC) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	out, err := o.next.RequestAirdrop(ctx, account, lamports, commitment)
	o.record(ctx, "requestAirdrop", start, err)
	return out, err
}

func (o *observedRPC) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	start, err := o.begin(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	out, err := o.next.SendTransactionWithOpts(ctx, transaction, opts)
	o.record(ctx, "sendTransaction", start, err)
	return out, err
}
