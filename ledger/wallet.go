package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	solanago "github.com/krazyTry/solanalib/solana"
	"github.com/shopspring/decimal"
)

// MaxAirdropLamports is the most the public faucets reliably grant per request.
const MaxAirdropLamports = solana.LAMPORTS_PER_SOL

// WalletInfo is the account metadata returned by GetWalletInfo.
type WalletInfo struct {
	Address      solana.PublicKey `json:"address"`
	IsExecutable bool             `json:"isExecutable"`
	Lamports     uint64           `json:"lamports"`
	Owner        solana.PublicKey `json:"owner"`
	RentEpoch    uint64           `json:"rentEpoch"`
}

// SOL is the balance in whole SOL.
func (w *WalletInfo) SOL() decimal.Decimal {
	return solanago.LamportsToSOL(w.Lamports)
}

// CreateWallet generates a fresh keypair. Nothing is sent to the network.
func CreateWallet() *solana.Wallet {
	return solana.NewWallet()
}

// AirdropSolana requests lamports from the cluster faucet and waits until the
// airdrop transaction is confirmed.
func (c *Connection) AirdropSolana(ctx context.Context, toPubkey string, lamports uint64) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "AirdropSolana", start, err, "to", toPubkey, "lamports", lamports) }()

	if c.cluster == MainnetBeta {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrAirdropUnavailable, c.cluster)
	}
	to, err := solanago.ParsePublicKey("toPubkey", toPubkey)
	if err != nil {
		return solana.Signature{}, err
	}
	if lamports > MaxAirdropLamports {
		c.logger.WarnContext(ctx, "airdrop above faucet limit may be rejected",
			"lamports", lamports,
			"limit", MaxAirdropLamports,
		)
	}

	sig, err = c.rpc.RequestAirdrop(ctx, to, lamports, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("request airdrop: %w", err)
	}

	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()
	if err = c.confirmer().Confirm(confirmCtx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// GetWalletInfo reads the account's executable flag, balance, owner and rent epoch.
func (c *Connection) GetWalletInfo(ctx context.Context, pubkey string) (info *WalletInfo, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "GetWalletInfo", start, err, "pubkey", pubkey) }()

	address, err := solanago.ParsePublicKey("pubkey", pubkey)
	if err != nil {
		return nil, err
	}
	account, err := solanago.GetAccountInfo(ctx, c.rpc, address, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	info = &WalletInfo{
		Address:      address,
		IsExecutable: account.Executable,
		Lamports:     account.Lamports,
		Owner:        account.Owner,
	}
	if account.RentEpoch != nil && account.RentEpoch.IsUint64() {
		info.RentEpoch = account.RentEpoch.Uint64()
	}
	return info, nil
}

// GetBalance returns the account balance in lamports; a missing account has zero.
func (c *Connection) GetBalance(ctx context.Context, pubkey string) (lamports uint64, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "GetBalance", start, err, "pubkey", pubkey) }()

	address, err := solanago.ParsePublicKey("pubkey", pubkey)
	if err != nil {
		return 0, err
	}
	out, err := c.rpc.GetBalance(ctx, address, c.commitment)
	if errors.Is(err, rpc.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", address, err)
	}
	return out.Value, nil
}

// TransferSolana sends lamports from the wallet behind fromSecretKey to toPubkey.
func (c *Connection) TransferSolana(ctx context.Context, fromSecretKey []byte, toPubkey string, lamports uint64) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "TransferSolana", start, err, "to", toPubkey, "lamports", lamports) }()

	from, err := solanago.KeypairFromSecretKey(fromSecretKey)
	if err != nil {
		return solana.Signature{}, err
	}
	to, err := solanago.ParsePublicKey("toPubkey", toPubkey)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.send(ctx, solanago.TransferSOLInstructions(from.PublicKey(), to, lamports), from)
}
