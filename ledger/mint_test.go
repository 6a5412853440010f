package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/krazyTry/solanalib/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToken(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)
	recipient := solana.NewWallet().PublicKey()

	mint, err := conn.CreateToken(ctx, payer.PrivateKey, recipient.String(), 1000)
	require.NoError(t, err)

	state, err := fake.Mint(mint)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), state.Decimals)
	assert.Equal(t, uint64(1000_000_000_000), state.Supply, "count is scaled by 10^9")
	require.NotNil(t, state.MintAuthority, "fungible mints keep their authority")
	assert.Equal(t, payer.PublicKey(), *state.MintAuthority)
	assert.Nil(t, state.FreezeAuthority)

	holding, err := fake.TokenAccount(associatedTokenAddress(t, recipient, mint))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_000_000_000), holding.Amount)
	assert.Equal(t, recipient, holding.Owner)

	require.Len(t, fake.Sent, 1, "one transaction")
	tx := fake.Sent[0]
	assert.Len(t, tx.Signatures, 2, "payer and mint sign")
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])

	ixs := sentInstructions(t, tx)
	require.Len(t, ixs, 4)
	assert.Equal(t, solana.SystemProgramID, ixs[0].program)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ixs[2].program)
	mintTo, ok := decodeTokenInstruction(t, ixs[3]).Impl.(*token.MintTo)
	require.True(t, ok)
	assert.Equal(t, uint64(1000_000_000_000), *mintTo.Amount)
	assert.Equal(t, payer.PublicKey(), mintTo.Accounts[2].PublicKey, "payer is the mint authority")

	assert.Equal(t,
		solana.LAMPORTS_PER_SOL-ledgertest.Rent(token.MINT_SIZE)-ledgertest.Rent(165),
		fake.Lamports(payer.PublicKey()),
	)
}

func TestCreateToken_MintAgain(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)

	mint, err := conn.CreateToken(ctx, payer.PrivateKey, payer.PublicKey().String(), 1)
	require.NoError(t, err)

	info, err := conn.GetMintInfo(ctx, mint.String())
	require.NoError(t, err)
	require.NotNil(t, info.MintAuthority)
	assert.Equal(t, payer.PublicKey(), *info.MintAuthority)
	assert.Equal(t, uint64(solana.LAMPORTS_PER_SOL), info.Supply)
}

func TestCreateToken_Overflow(t *testing.T) {
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)

	_, err := conn.CreateToken(context.Background(), payer.PrivateKey, payer.PublicKey().String(), math.MaxUint64/1_000_000_000+1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Empty(t, fake.Sent)
}

func TestCreateToken_InsufficientFunds(t *testing.T) {
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, 1000)

	mint, err := conn.CreateToken(context.Background(), payer.PrivateKey, payer.PublicKey().String(), 1)
	require.Error(t, err)
	assert.True(t, mint.IsZero())
	assert.Equal(t, uint64(1000), fake.Lamports(payer.PublicKey()))
}

func TestCreateNFT(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)
	recipient := solana.NewWallet().PublicKey()

	mint, err := conn.CreateNFT(ctx, payer.PrivateKey, recipient.String())
	require.NoError(t, err)

	info, err := conn.GetMintInfo(ctx, mint.String())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Supply)
	assert.Equal(t, uint8(0), info.Decimals)
	assert.Nil(t, info.MintAuthority, "authority is revoked before CreateNFT returns")
	assert.True(t, info.IsInitialized)

	holding, err := fake.TokenAccount(associatedTokenAddress(t, recipient, mint))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), holding.Amount)

	require.Len(t, fake.Sent, 1, "minting and revocation are atomic")
	ixs := sentInstructions(t, fake.Sent[0])
	require.Len(t, ixs, 5)
	revoke, ok := decodeTokenInstruction(t, ixs[4]).Impl.(*token.SetAuthority)
	require.True(t, ok)
	assert.Equal(t, token.AuthorityMintTokens, *revoke.AuthorityType)
	assert.Nil(t, revoke.NewAuthority)
}

func TestCreateNFT_CannotMintMore(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)

	mint, err := conn.CreateNFT(ctx, payer.PrivateKey, payer.PublicKey().String())
	require.NoError(t, err)

	_, err = conn.RevokeMintAuthority(ctx, payer.PrivateKey, mint.String())
	require.Error(t, err, "no authority left to revoke")

	state, err := fake.Mint(mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Supply)
}

func TestRevokeMintAuthority(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	payer := fundedWallet(fake, solana.LAMPORTS_PER_SOL)

	mint, err := conn.CreateToken(ctx, payer.PrivateKey, payer.PublicKey().String(), 10)
	require.NoError(t, err)

	other := fundedWallet(fake, solana.LAMPORTS_PER_SOL)
	_, err = conn.RevokeMintAuthority(ctx, other.PrivateKey, mint.String())
	require.Error(t, err, "only the current authority can revoke")

	sig, err := conn.RevokeMintAuthority(ctx, payer.PrivateKey, mint.String())
	require.NoError(t, err)
	assert.False(t, sig.IsZero())

	info, err := conn.GetMintInfo(ctx, mint.String())
	require.NoError(t, err)
	assert.Nil(t, info.MintAuthority)
	assert.Equal(t, uint64(10_000_000_000), info.Supply)
}

func TestGetMintInfo_Errors(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	wallet := fundedWallet(fake, 1)

	_, err := conn.GetMintInfo(ctx, wallet.PublicKey().String())
	assert.ErrorIs(t, err, ErrNotTokenMint)

	_, err = conn.GetMintInfo(ctx, solana.NewWallet().PublicKey().String())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = conn.GetMintInfo(ctx, "xyz")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}
