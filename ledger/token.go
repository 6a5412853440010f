package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	solanago "github.com/krazyTry/solanalib/solana"
	"github.com/tidwall/gjson"
)

// TokenAccountInfo is a decoded SPL token account.
type TokenAccountInfo = solanago.Account

// TokenBalance is a non-zero holding of one mint.
type TokenBalance struct {
	Account  solana.PublicKey `json:"account"`
	Mint     solana.PublicKey `json:"mint"`
	Amount   uint64           `json:"amount"`
	Decimals uint8            `json:"decimals"`
}

// GetTokenAccountInfo fetches and decodes a token account. Every failure is a
// *TokenAccountError.
func (c *Connection) GetTokenAccountInfo(ctx context.Context, pubkey string) (info *TokenAccountInfo, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "GetTokenAccountInfo", start, err, "pubkey", pubkey) }()

	address, err := solanago.ParsePublicKey("pubkey", pubkey)
	if err != nil {
		return nil, classifyTokenAccountError(solana.PublicKey{}, err)
	}
	account, err := solanago.GetAccountInfo(ctx, c.rpc, address, c.commitment)
	if err != nil {
		return nil, classifyTokenAccountError(address, err)
	}
	info, err = solanago.UnpackTokenAccount(address, account)
	if err != nil {
		return nil, classifyTokenAccountError(address, err)
	}
	return info, nil
}

// TransferToken moves amount base units of tokenAddress to toPubkey's associated
// token account. Missing associated accounts are created in the same transaction,
// paid by the sender.
func (c *Connection) TransferToken(
	ctx context.Context,
	fromSecretKey []byte,
	toPubkey string,
	tokenAddress string,
	amount uint64,
) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() {
		c.observe(ctx, "TransferToken", start, err, "to", toPubkey, "mint", tokenAddress, "amount", amount)
	}()

	return c.transferToken(ctx, fromSecretKey, toPubkey, tokenAddress, amount)
}

// TransferNFT transfers the single unit of an NFT mint.
func (c *Connection) TransferNFT(ctx context.Context, fromSecretKey []byte, toPubkey string, tokenAddress string) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "TransferNFT", start, err, "to", toPubkey, "mint", tokenAddress) }()

	return c.transferToken(ctx, fromSecretKey, toPubkey, tokenAddress, 1)
}

func (c *Connection) transferToken(ctx context.Context, fromSecretKey []byte, toPubkey, tokenAddress string, amount uint64) (solana.Signature, error) {
	from, err := solanago.KeypairFromSecretKey(fromSecretKey)
	if err != nil {
		return solana.Signature{}, err
	}
	to, err := solanago.ParsePublicKey("toPubkey", toPubkey)
	if err != nil {
		return solana.Signature{}, err
	}
	mintAddress, err := solanago.ParsePublicKey("tokenAddress", tokenAddress)
	if err != nil {
		return solana.Signature{}, err
	}

	mint, err := c.getMint(ctx, mintAddress)
	if err != nil {
		return solana.Signature{}, err
	}

	instructions, err := solanago.TransferTokenInstructions(
		ctx,
		c.rpc,
		c.commitment,
		from.PublicKey(),
		from.PublicKey(),
		to,
		mintAddress,
		mint.Decimals,
		amount,
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("prepare token transfer: %w", err)
	}
	return c.send(ctx, instructions, from)
}

// GetTokenBalances lists the owner's non-zero token-program holdings.
func (c *Connection) GetTokenBalances(ctx context.Context, owner string) (balances []TokenBalance, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "GetTokenBalances", start, err, "owner", owner) }()

	ownerKey, err := solanago.ParsePublicKey("owner", owner)
	if err != nil {
		return nil, err
	}

	programID := solana.TokenProgramID
	out, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		ownerKey,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("get token accounts of %s: %w", ownerKey, err)
	}

	for _, v := range out.Value {
		if v == nil || v.Account.Data == nil {
			continue
		}
		raw := v.Account.Data.GetRawJSON()
		if len(raw) == 0 {
			continue
		}
		balance, ok, err := parseTokenBalance(v.Pubkey, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			balances = append(balances, balance)
		}
	}
	return balances, nil
}

// parseTokenBalance reads a jsonParsed token account; ok is false for empty accounts.
func parseTokenBalance(account solana.PublicKey, raw []byte) (TokenBalance, bool, error) {
	parsed := gjson.ParseBytes(raw)
	mint, err := solana.PublicKeyFromBase58(parsed.Get("parsed.info.mint").String())
	if err != nil {
		return TokenBalance{}, false, fmt.Errorf("token account %s: mint: %w", account, err)
	}
	amount, err := strconv.ParseUint(parsed.Get("parsed.info.tokenAmount.amount").String(), 10, 64)
	if err != nil {
		return TokenBalance{}, false, fmt.Errorf("token account %s: amount: %w", account, err)
	}
	if amount == 0 {
		return TokenBalance{}, false, nil
	}
	return TokenBalance{
		Account:  account,
		Mint:     mint,
		Amount:   amount,
		Decimals: uint8(parsed.Get("parsed.info.tokenAmount.decimals").Uint()),
	}, true, nil
}
