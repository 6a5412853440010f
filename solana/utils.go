package solana

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

func GetLatestBlockhash(ctx context.Context, rpcClient RPCClient, commitment rpc.CommitmentType) (solana.Hash, error) {

	recent, err := rpcClient.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Hash{}, err
	}
	if recent == nil || recent.Value == nil {
		return solana.Hash{}, fmt.Errorf("empty latest blockhash response")
	}
	return recent.Value.Blockhash, nil
}

// GetAccountInfo returns the account at the given commitment, or nil with no error when it does not exist.
func GetAccountInfo(ctx context.Context, rpcClient RPCClient, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.Account, error) {
	out, err := rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err == rpc.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.Value, nil
}

// ParsePublicKey parses a base-58 address; name identifies the argument in errors.
func ParsePublicKey(name, address string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidPublicKey, name, address, err)
	}
	return key, nil
}

// ToBaseUnits scales a whole-token count by 10^decimals.
func ToBaseUnits(count uint64, decimals uint8) (uint64, error) {
	amount := decimal.NewFromBigInt(new(big.Int).SetUint64(count), int32(decimals)).BigInt()
	if !amount.IsUint64() {
		return 0, fmt.Errorf("%w: %d with %d decimals", ErrAmountOverflow, count, decimals)
	}
	return amount.Uint64(), nil
}

// LamportsToSOL converts lamports to SOL without float rounding.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}

// SOLToLamports converts a SOL amount to lamports. Fractions of a lamport are rejected.
func SOLToLamports(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", sol)
	}
	shifted := sol.Shift(9)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s SOL", ErrFractionalLamports, sol)
	}
	lamports := shifted.BigInt()
	if !lamports.IsUint64() {
		return 0, fmt.Errorf("%w: %s SOL", ErrAmountOverflow, sol)
	}
	return lamports.Uint64(), nil
}
