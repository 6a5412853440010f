package solana

import (
	"bytes"
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// mockRPCClient implements RPCClient for testing.
// Methods not overridden panic through the nil embedded interface.
type mockRPCClient struct {
	RPCClient

	accounts map[solana.PublicKey]*rpc.Account
	statuses []*rpc.SignatureStatusesResult
	err      error

	statusCalls int
	sent        []*solana.Transaction
}

func (m *mockRPCClient) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: a}, nil
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1}}}, nil
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if m.err != nil {
		return solana.Signature{}, m.err
	}
	m.sent = append(m.sent, tx)
	return tx.Signatures[0], nil
}

// GetSignatureStatuses replays statuses one call at a time, repeating the last.
func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	i := m.statusCalls
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	m.statusCalls++
	if i < 0 {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{m.statuses[i]}}, nil
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func encodeAccountData(v marshaler) []byte {
	buf := new(bytes.Buffer)
	if err := v.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func tokenProgramAccount(data []byte) *rpc.Account {
	return &rpc.Account{
		Lamports: 2039280,
		Owner:    solana.TokenProgramID,
		Data:     rpc.DataBytesOrJSONFromBytes(data),
	}
}
