package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/krazyTry/solanalib/ledger/ledgertest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWallet(t *testing.T) {
	a, b := CreateWallet(), CreateWallet()
	require.NoError(t, a.PrivateKey.Validate())
	assert.NotEqual(t, a.PublicKey(), b.PublicKey())
	assert.Len(t, []byte(a.PrivateKey), 64)
}

func TestAirdropSolana(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	to := solana.NewWallet().PublicKey()

	sig, err := conn.AirdropSolana(ctx, to.String(), solana.LAMPORTS_PER_SOL)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())

	require.Len(t, fake.Airdrops, 1)
	assert.Equal(t, ledgertest.Airdrop{
		To:         to,
		Lamports:   solana.LAMPORTS_PER_SOL,
		Commitment: rpc.CommitmentConfirmed,
	}, fake.Airdrops[0])
	assert.Equal(t, solana.LAMPORTS_PER_SOL, fake.Lamports(to))
}

func TestAirdropSolana_RefusedOnMainnet(t *testing.T) {
	fake := ledgertest.New()
	conn := NewConnection(MainnetBeta, "http://ledger.test", WithRPCClient(fake))

	_, err := conn.AirdropSolana(context.Background(), solana.NewWallet().PublicKey().String(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAirdropUnavailable)
	assert.Empty(t, fake.Airdrops)
}

func TestAirdropSolana_WarnsAboveFaucetLimit(t *testing.T) {
	logger, logs := newBufferedLogger()
	conn, fake := newTestConnection(t, WithLogger(logger))

	_, err := conn.AirdropSolana(context.Background(), solana.NewWallet().PublicKey().String(), 2*solana.LAMPORTS_PER_SOL)
	require.NoError(t, err)
	assert.Len(t, fake.Airdrops, 1, "the request is still sent")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "airdrop above faucet limit")
}

func TestAirdropSolana_InvalidAddress(t *testing.T) {
	conn, fake := newTestConnection(t)
	_, err := conn.AirdropSolana(context.Background(), "not-a-key", 1)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	assert.Empty(t, fake.Airdrops)
}

func TestGetWalletInfo(t *testing.T) {
	conn, fake := newTestConnection(t)
	w := fundedWallet(fake, 1_500_000_000)

	info, err := conn.GetWalletInfo(context.Background(), w.PublicKey().String())
	require.NoError(t, err)
	assert.Equal(t, &WalletInfo{
		Address:      w.PublicKey(),
		IsExecutable: false,
		Lamports:     1_500_000_000,
		Owner:        solana.SystemProgramID,
		RentEpoch:    ledgertest.RentEpoch,
	}, info)
	assert.True(t, decimal.RequireFromString("1.5").Equal(info.SOL()))
}

func TestGetWalletInfo_Executable(t *testing.T) {
	conn, fake := newTestConnection(t)
	program := solana.NewWallet().PublicKey()
	fake.SetAccount(program, ledgertest.Account{
		Lamports:   1,
		Owner:      solana.BPFLoaderUpgradeableProgramID,
		Executable: true,
	})

	info, err := conn.GetWalletInfo(context.Background(), program.String())
	require.NoError(t, err)
	assert.True(t, info.IsExecutable)
	assert.Equal(t, solana.BPFLoaderUpgradeableProgramID, info.Owner)
}

func TestGetWalletInfo_NotFound(t *testing.T) {
	conn, _ := newTestConnection(t)
	info, err := conn.GetWalletInfo(context.Background(), solana.NewWallet().PublicKey().String())
	require.Error(t, err)
	assert.Nil(t, info)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetBalance(t *testing.T) {
	conn, fake := newTestConnection(t)
	w := fundedWallet(fake, 42)

	lamports, err := conn.GetBalance(context.Background(), w.PublicKey().String())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), lamports)

	lamports, err = conn.GetBalance(context.Background(), solana.NewWallet().PublicKey().String())
	require.NoError(t, err)
	assert.Zero(t, lamports)
}

func TestTransferSolana(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	from := fundedWallet(fake, solana.LAMPORTS_PER_SOL)
	to := solana.NewWallet().PublicKey()

	sig, err := conn.TransferSolana(ctx, from.PrivateKey, to.String(), 250_000)
	require.NoError(t, err)

	require.Len(t, fake.Sent, 1)
	tx := fake.Sent[0]
	assert.Equal(t, sig, tx.Signatures[0])
	assert.Equal(t, from.PublicKey(), tx.Message.AccountKeys[0], "sender pays")

	ixs := sentInstructions(t, tx)
	require.Len(t, ixs, 1)
	require.Equal(t, solana.SystemProgramID, ixs[0].program)
	inst, err := system.DecodeInstruction(ixs[0].accounts, ixs[0].data)
	require.NoError(t, err)
	transfer, ok := inst.Impl.(*system.Transfer)
	require.True(t, ok)
	assert.Equal(t, uint64(250_000), *transfer.Lamports)
	assert.Equal(t, from.PublicKey(), transfer.GetFundingAccount().PublicKey)
	assert.Equal(t, to, transfer.GetRecipientAccount().PublicKey)

	assert.Equal(t, uint64(250_000), fake.Lamports(to))
	assert.Equal(t, solana.LAMPORTS_PER_SOL-250_000, fake.Lamports(from.PublicKey()))
}

func TestTransferSolana_InvalidInput(t *testing.T) {
	ctx := context.Background()
	conn, fake := newTestConnection(t)
	from := fundedWallet(fake, solana.LAMPORTS_PER_SOL)

	_, err := conn.TransferSolana(ctx, []byte{1, 2, 3}, solana.NewWallet().PublicKey().String(), 1)
	assert.ErrorIs(t, err, ErrInvalidSecretKey)

	tampered := append([]byte(nil), from.PrivateKey...)
	tampered[40] ^= 0xff
	_, err = conn.TransferSolana(ctx, tampered, solana.NewWallet().PublicKey().String(), 1)
	assert.ErrorIs(t, err, ErrInvalidSecretKey)

	_, err = conn.TransferSolana(ctx, from.PrivateKey, "0OIl", 1)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	assert.Empty(t, fake.Sent)
}
