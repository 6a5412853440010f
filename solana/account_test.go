package solana

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLayoutDecode(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	delegate := solana.NewWallet().PublicKey()
	closer := solana.NewWallet().PublicKey()
	reserve := uint64(2039280)

	data := encodeAccountData(token.Account{
		Mint:            mint,
		Owner:           owner,
		Amount:          42,
		Delegate:        &delegate,
		State:           token.Frozen,
		IsNative:        &reserve,
		DelegatedAmount: 7,
		CloseAuthority:  &closer,
	})
	require.Len(t, data, TokenAccountSize)

	account, err := new(AccountLayout).Decode(data)
	require.NoError(t, err)
	assert.Equal(t, mint, account.Mint)
	assert.Equal(t, owner, account.Owner)
	assert.Equal(t, uint64(42), account.Amount)
	require.NotNil(t, account.Delegate)
	assert.Equal(t, delegate, *account.Delegate)
	assert.Equal(t, uint64(7), account.DelegatedAmount)
	assert.True(t, account.IsInitialized)
	assert.True(t, account.IsFrozen)
	assert.True(t, account.IsNative)
	require.NotNil(t, account.RentExemptReserve)
	assert.Equal(t, reserve, *account.RentExemptReserve)
	require.NotNil(t, account.CloseAuthority)
	assert.Equal(t, closer, *account.CloseAuthority)
}

func TestAccountLayoutDecode_EmptyOptions(t *testing.T) {
	data := encodeAccountData(token.Account{
		Mint:  solana.NewWallet().PublicKey(),
		Owner: solana.NewWallet().PublicKey(),
		State: token.Initialized,
	})

	account, err := new(AccountLayout).Decode(data)
	require.NoError(t, err)
	assert.Nil(t, account.Delegate)
	assert.Nil(t, account.RentExemptReserve)
	assert.Nil(t, account.CloseAuthority)
	assert.False(t, account.IsNative)
	assert.False(t, account.IsFrozen)
}

func TestUnpackTokenAccount(t *testing.T) {
	address := solana.NewWallet().PublicKey()
	data := encodeAccountData(token.Account{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  solana.NewWallet().PublicKey(),
		Amount: 5,
		State:  token.Initialized,
	})

	account, err := UnpackTokenAccount(address, tokenProgramAccount(data))
	require.NoError(t, err)
	assert.Equal(t, address, account.Address)
	assert.Equal(t, uint64(5), account.Amount)

	_, err = UnpackTokenAccount(address, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = UnpackTokenAccount(address, &rpc.Account{
		Owner: solana.SystemProgramID,
		Data:  rpc.DataBytesOrJSONFromBytes(data),
	})
	assert.ErrorIs(t, err, ErrAccountInvalidOwner)

	_, err = UnpackTokenAccount(address, tokenProgramAccount(data[:token.MINT_SIZE]))
	assert.ErrorIs(t, err, ErrAccountInvalidSize)

	_, err = UnpackTokenAccount(address, &rpc.Account{Owner: solana.TokenProgramID})
	assert.ErrorIs(t, err, ErrAccountInvalidSize)
}

func TestUnpackMint(t *testing.T) {
	address := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	data := encodeAccountData(token.Mint{
		MintAuthority: &authority,
		Supply:        1_000_000,
		Decimals:      6,
		IsInitialized: true,
	})
	require.Len(t, data, token.MINT_SIZE)

	mint, err := UnpackMint(address, tokenProgramAccount(data))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), mint.Supply)
	assert.Equal(t, uint8(6), mint.Decimals)
	require.NotNil(t, mint.MintAuthority)
	assert.Equal(t, authority, *mint.MintAuthority)
	assert.Nil(t, mint.FreezeAuthority)
	assert.Equal(t, solana.TokenProgramID, mint.Owner)

	_, err = UnpackMint(address, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = UnpackMint(address, &rpc.Account{Owner: solana.SystemProgramID})
	assert.ErrorIs(t, err, ErrNotTokenMint)

	_, err = UnpackMint(address, tokenProgramAccount(make([]byte, TokenAccountSize)))
	assert.ErrorIs(t, err, ErrNotTokenMint)
}
