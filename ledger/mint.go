package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	solanago "github.com/krazyTry/solanalib/solana"
)

const (
	// FungibleDecimals is the decimals of mints created by CreateToken.
	FungibleDecimals uint8 = 9
	// NFTDecimals is the decimals of mints created by CreateNFT.
	NFTDecimals uint8 = 0
)

// MintInfo is the state of a token mint.
type MintInfo struct {
	Address         solana.PublicKey  `json:"address"`
	MintAuthority   *solana.PublicKey `json:"mintAuthority"`
	FreezeAuthority *solana.PublicKey `json:"freezeAuthority"`
	Supply          uint64            `json:"supply"`
	Decimals        uint8             `json:"decimals"`
	IsInitialized   bool              `json:"isInitialized"`
}

// CreateToken creates a fungible mint with the payer as mint authority and
// mints count whole tokens to toPubkey. It returns the mint address.
func (c *Connection) CreateToken(ctx context.Context, payerSecretKey []byte, toPubkey string, count uint64) (mint solana.PublicKey, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "CreateToken", start, err, "to", toPubkey, "count", count, "mint", mint) }()

	amount, err := solanago.ToBaseUnits(count, FungibleDecimals)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return c.createMint(ctx, payerSecretKey, toPubkey, FungibleDecimals, amount, false)
}

// CreateNFT creates a 0-decimal mint, mints a single unit to toPubkey and revokes
// the mint authority in the same transaction, so the supply is fixed at 1 once
// the call returns.
func (c *Connection) CreateNFT(ctx context.Context, payerSecretKey []byte, toPubkey string) (mint solana.PublicKey, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "CreateNFT", start, err, "to", toPubkey, "mint", mint) }()

	return c.createMint(ctx, payerSecretKey, toPubkey, NFTDecimals, 1, true)
}

func (c *Connection) createMint(
	ctx context.Context,
	payerSecretKey []byte,
	toPubkey string,
	decimals uint8,
	amount uint64,
	fixedSupply bool,
) (solana.PublicKey, error) {
	payer, err := solanago.KeypairFromSecretKey(payerSecretKey)
	if err != nil {
		return solana.PublicKey{}, err
	}
	to, err := solanago.ParsePublicKey("toPubkey", toPubkey)
	if err != nil {
		return solana.PublicKey{}, err
	}

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, c.commitment)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("get mint rent exemption: %w", err)
	}

	mint := solana.NewWallet()
	instructions, _, err := solanago.CreateMintInstructions(solanago.MintParams{
		Payer:        payer.PublicKey(),
		Mint:         mint.PublicKey(),
		Recipient:    to,
		Decimals:     decimals,
		Amount:       amount,
		RentLamports: rent,
		FixedSupply:  fixedSupply,
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	if _, err = c.send(ctx, instructions, payer, mint); err != nil {
		return solana.PublicKey{}, err
	}
	return mint.PublicKey(), nil
}

// RevokeMintAuthority permanently disables minting for tokenAddress. The
// secret key must belong to the current mint authority.
func (c *Connection) RevokeMintAuthority(ctx context.Context, authoritySecretKey []byte, tokenAddress string) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "RevokeMintAuthority", start, err, "mint", tokenAddress) }()

	authority, err := solanago.KeypairFromSecretKey(authoritySecretKey)
	if err != nil {
		return solana.Signature{}, err
	}
	mint, err := solanago.ParsePublicKey("tokenAddress", tokenAddress)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.send(ctx, []solana.Instruction{
		solanago.RevokeMintAuthorityInstruction(mint, authority.PublicKey()),
	}, authority)
}

// GetMintInfo reads supply, decimals and authorities of a mint.
func (c *Connection) GetMintInfo(ctx context.Context, tokenAddress string) (info *MintInfo, err error) {
	start := time.Now()
	defer func() { c.observe(ctx, "GetMintInfo", start, err, "mint", tokenAddress) }()

	address, err := solanago.ParsePublicKey("tokenAddress", tokenAddress)
	if err != nil {
		return nil, err
	}
	mint, err := c.getMint(ctx, address)
	if err != nil {
		return nil, err
	}
	return &MintInfo{
		Address:         address,
		MintAuthority:   mint.MintAuthority,
		FreezeAuthority: mint.FreezeAuthority,
		Supply:          mint.Supply,
		Decimals:        mint.Decimals,
		IsInitialized:   mint.IsInitialized,
	}, nil
}

func (c *Connection) getMint(ctx context.Context, address solana.PublicKey) (*solanago.Token, error) {
	account, err := solanago.GetAccountInfo(ctx, c.rpc, address, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get mint %s: %w", address, err)
	}
	return solanago.UnpackMint(address, account)
}
