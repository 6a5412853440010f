package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// Confirmer blocks until a submitted signature reaches its commitment level.
type Confirmer interface {
	Confirm(ctx context.Context, sig solana.Signature) error
}

// SendTransaction builds a legacy transaction paid by payer, signs it with sign,
// submits it with preflight at commitment and waits for confirmer.
func SendTransaction(
	ctx context.Context,
	rpcClient RPCClient,
	confirmer Confirmer,
	commitment rpc.CommitmentType,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	sign func(key solana.PublicKey) *solana.PrivateKey,
) (solana.Signature, error) {

	latestBlockhash, err := GetLatestBlockhash(ctx, rpcClient, commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, latestBlockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if _, err = tx.Sign(sign); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: commitment,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err = confirmer.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// PollConfirmer confirms by polling getSignatureStatuses.
type PollConfirmer struct {
	RPC        RPCClient
	Commitment rpc.CommitmentType
	Interval   time.Duration
}

func (c *PollConfirmer) Confirm(ctx context.Context, sig solana.Signature) error {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := signatureStatus(ctx, c.RPC, sig, c.Commitment)
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrConfirmationTimeout, sig)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// signatureStatus reports whether sig has reached commitment. A failed
// transaction is returned as ErrTransactionFailed with done set.
func signatureStatus(ctx context.Context, client RPCClient, sig solana.Signature, commitment rpc.CommitmentType) (bool, error) {
	statusResp, err := client.GetSignatureStatuses(ctx, true, sig)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			// surfaced by the caller's select
			return false, nil
		}
		return false, fmt.Errorf("rpc GetSignatureStatuses error: %w", err)
	}
	if statusResp == nil || len(statusResp.Value) == 0 || statusResp.Value[0] == nil {
		// not seen by the node yet
		return false, nil
	}
	status := statusResp.Value[0]
	if status.Err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
	}
	return reached(status.ConfirmationStatus, commitment), nil
}

func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	default:
		return false
	}
}

// WSConfirmer confirms through a signatureSubscribe notification.
// When RPC is set the status is also checked once after subscribing, since the
// notification is never sent for a signature that landed before the subscription.
type WSConfirmer struct {
	Client     *ws.Client
	RPC        RPCClient
	Commitment rpc.CommitmentType
}

func (c *WSConfirmer) Confirm(ctx context.Context, sig solana.Signature) error {
	sub, err := c.Client.SignatureSubscribe(sig, c.Commitment)
	if err != nil {
		return fmt.Errorf("signature subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	if c.RPC != nil {
		done, err := signatureStatus(ctx, c.RPC, sig, c.Commitment)
		if errors.Is(err, ErrTransactionFailed) {
			return err
		}
		if err == nil && done {
			return nil
		}
	}

	resp, err := sub.Recv(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrConfirmationTimeout, sig)
		}
		return err
	}
	if resp.Value.Err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, resp.Value.Err)
	}
	return nil
}
