package ledger

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/krazyTry/solanalib/ledger/ledgertest"
	"github.com/stretchr/testify/require"
)

func newTestConnection(t *testing.T, opts ...Option) (*Connection, *ledgertest.Ledger) {
	t.Helper()
	fake := ledgertest.New()
	opts = append([]Option{
		WithRPCClient(fake),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithPollInterval(time.Millisecond),
		WithConfirmTimeout(2 * time.Second),
	}, opts...)
	conn := NewConnection(Devnet, "http://ledger.test", opts...)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, fake
}

func newBufferedLogger() (*slog.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// fundedWallet returns a new wallet holding lamports on the fake ledger.
func fundedWallet(fake *ledgertest.Ledger, lamports uint64) *solana.Wallet {
	w := solana.NewWallet()
	fake.Fund(w.PublicKey(), lamports)
	return w
}

func associatedTokenAddress(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	return ata
}

// decodedInstruction is one instruction of a sent transaction with its program and accounts resolved.
type decodedInstruction struct {
	program  solana.PublicKey
	accounts []*solana.AccountMeta
	data     []byte
}

func sentInstructions(t *testing.T, tx *solana.Transaction) []decodedInstruction {
	t.Helper()
	var out []decodedInstruction
	for i := range tx.Message.Instructions {
		ix := &tx.Message.Instructions[i]
		program, err := tx.Message.ResolveProgramIDIndex(ix.ProgramIDIndex)
		require.NoError(t, err)
		accounts, err := ix.ResolveInstructionAccounts(&tx.Message)
		require.NoError(t, err)
		out = append(out, decodedInstruction{program: program, accounts: accounts, data: ix.Data})
	}
	return out
}

func decodeTokenInstruction(t *testing.T, ix decodedInstruction) *token.Instruction {
	t.Helper()
	require.Equal(t, solana.TokenProgramID, ix.program)
	inst, err := token.DecodeInstruction(ix.accounts, ix.data)
	require.NoError(t, err)
	return inst
}
