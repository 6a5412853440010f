// Package ledgertest provides an in-memory Solana ledger that implements
// solana.RPCClient for tests. It executes the system, token and
// associated-token-account instructions used by package ledger, verifies
// signatures and reports every accepted transaction as confirmed.
package ledgertest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	solanago "github.com/krazyTry/solanalib/solana"
)

// RentEpoch is reported for every account.
const RentEpoch = 361

var _ solanago.RPCClient = (*Ledger)(nil)

// Account is a raw ledger entry.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
	Executable bool
}

// Airdrop records one RequestAirdrop call.
type Airdrop struct {
	To         solana.PublicKey
	Lamports   uint64
	Commitment rpc.CommitmentType
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	accounts map[solana.PublicKey]*Account
	statuses map[solana.Signature]*rpc.SignatureStatusesResult

	blockhash solana.Hash
	slot      uint64

	// Sent holds every transaction accepted by SendTransactionWithOpts.
	Sent []*solana.Transaction
	// Airdrops holds every RequestAirdrop call.
	Airdrops []Airdrop

	// Errors makes the named RPC method fail, e.g. Errors["getAccountInfo"].
	Errors map[string]error
	// FailOnChain makes accepted transactions report an instruction error
	// through getSignatureStatuses instead of applying them.
	FailOnChain bool
	// Unconfirmed leaves accepted transactions without a status.
	Unconfirmed bool
}

func New() *Ledger {
	return &Ledger{
		accounts:  make(map[solana.PublicKey]*Account),
		statuses:  make(map[solana.Signature]*rpc.SignatureStatusesResult),
		blockhash: solana.HashFromBytes(bytes.Repeat([]byte{7}, 32)),
		slot:      1,
		Errors:    make(map[string]error),
	}
}

// Rent is the rent-exempt minimum for dataSize bytes.
func Rent(dataSize uint64) uint64 {
	return (128 + dataSize) * 6960
}

// Fund credits lamports to a system account, creating it when missing.
func (l *Ledger) Fund(address solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(l.accounts, address, lamports)
}

// SetAccount stores a raw account.
func (l *Ledger) SetAccount(address solana.PublicKey, account Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[address] = &account
}

// Account returns a copy of the stored account.
func (l *Ledger) Account(address solana.PublicKey) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[address]
	if !ok {
		return Account{}, false
	}
	out := *a
	out.Data = append([]byte(nil), a.Data...)
	return out, true
}

// Lamports returns the balance of address, zero when missing.
func (l *Ledger) Lamports(address solana.PublicKey) uint64 {
	a, _ := l.Account(address)
	return a.Lamports
}

// Mint decodes the mint stored at address.
func (l *Ledger) Mint(address solana.PublicKey) (token.Mint, error) {
	a, ok := l.Account(address)
	if !ok {
		return token.Mint{}, fmt.Errorf("mint %s: not found", address)
	}
	return decodeMint(a.Data)
}

// TokenAccount decodes the token account stored at address.
func (l *Ledger) TokenAccount(address solana.PublicKey) (token.Account, error) {
	a, ok := l.Account(address)
	if !ok {
		return token.Account{}, fmt.Errorf("token account %s: not found", address)
	}
	return decodeTokenAccount(a.Data)
}

// AddMint stores an initialized mint.
func (l *Ledger) AddMint(address solana.PublicKey, mint token.Mint) {
	mint.IsInitialized = true
	l.SetAccount(address, Account{
		Lamports: Rent(token.MINT_SIZE),
		Owner:    solana.TokenProgramID,
		Data:     encode(mint),
	})
}

// AddTokenAccount stores the owner's associated token account for mint
// holding amount and returns its address.
func (l *Ledger) AddTokenAccount(owner, mint solana.PublicKey, amount uint64) solana.PublicKey {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		panic(err)
	}
	l.SetAccount(ata, Account{
		Lamports: Rent(solanago.TokenAccountSize),
		Owner:    solana.TokenProgramID,
		Data: encode(token.Account{
			Mint:   mint,
			Owner:  owner,
			Amount: amount,
			State:  token.Initialized,
		}),
	})
	return ata
}

func (l *Ledger) fail(method string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Errors[method]
}

func (l *Ledger) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if err := l.fail("getAccountInfo"); err != nil {
		return nil, err
	}
	a, ok := l.Account(account)
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{
		RPCContext: l.context(),
		Value: &rpc.Account{
			Lamports:   a.Lamports,
			Owner:      a.Owner,
			Data:       rpc.DataBytesOrJSONFromBytes(a.Data),
			Executable: a.Executable,
			RentEpoch:  big.NewInt(RentEpoch),
		},
	}, nil
}

func (l *Ledger) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if err := l.fail("getBalance"); err != nil {
		return nil, err
	}
	return &rpc.GetBalanceResult{RPCContext: l.context(), Value: l.Lamports(account)}, nil
}

func (l *Ledger) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if err := l.fail("getLatestBlockhash"); err != nil {
		return nil, err
	}
	return &rpc.GetLatestBlockhashResult{
		RPCContext: l.context(),
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            l.blockhash,
			LastValidBlockHeight: 150,
		},
	}, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error) {
	if err := l.fail("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return Rent(dataSize), nil
}

func (l *Ledger) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if err := l.fail("getSignatureStatuses"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := &rpc.GetSignatureStatusesResult{RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: l.slot}}}
	for _, sig := range transactionSignatures {
		out.Value = append(out.Value, l.statuses[sig])
	}
	return out, nil
}

func (l *Ledger) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	if err := l.fail("getTokenAccountsByOwner"); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &rpc.GetTokenAccountsResult{RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: l.slot}}}
	for address, a := range l.accounts {
		if !a.Owner.Equals(solana.TokenProgramID) || len(a.Data) != solanago.TokenAccountSize {
			continue
		}
		acc, err := decodeTokenAccount(a.Data)
		if err != nil || !acc.Owner.Equals(owner) {
			continue
		}
		if conf != nil && conf.Mint != nil && !acc.Mint.Equals(*conf.Mint) {
			continue
		}
		var decimals uint8
		if m, ok := l.accounts[acc.Mint]; ok {
			if mint, err := decodeMint(m.Data); err == nil {
				decimals = mint.Decimals
			}
		}

		data := new(rpc.DataBytesOrJSON)
		if err := data.UnmarshalJSON([]byte(fmt.Sprintf(
			`{"program":"spl-token","parsed":{"type":"account","info":{"mint":%q,"owner":%q,"state":"initialized","isNative":false,"tokenAmount":{"amount":"%d","decimals":%d}}},"space":%d}`,
			acc.Mint, acc.Owner, acc.Amount, decimals, solanago.TokenAccountSize,
		))); err != nil {
			return nil, err
		}
		out.Value = append(out.Value, &rpc.TokenAccount{
			Pubkey: address,
			Account: rpc.Account{
				Lamports:  a.Lamports,
				Owner:     a.Owner,
				Data:      data,
				RentEpoch: big.NewInt(RentEpoch),
			},
		})
	}
	return out, nil
}

func (l *Ledger) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	if err := l.fail("requestAirdrop"); err != nil {
		return solana.Signature{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Airdrops = append(l.Airdrops, Airdrop{To: account, Lamports: lamports, Commitment: commitment})
	l.credit(l.accounts, account, lamports)

	var sig solana.Signature
	copy(sig[:], account[:])
	sig[63] = byte(len(l.Airdrops))
	l.confirm(sig, nil)
	return sig, nil
}

// SendTransactionWithOpts verifies and applies the transaction atomically.
// A failing instruction rejects the whole transaction, as preflight would.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if err := l.fail("sendTransaction"); err != nil {
		return solana.Signature{}, err
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, errors.New("transaction is not signed")
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("signature verification failed: %w", err)
	}
	if !tx.Message.RecentBlockhash.Equals(l.blockhash) {
		return solana.Signature{}, errors.New("blockhash not found")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sig := tx.Signatures[0]
	if _, seen := l.statuses[sig]; seen {
		return solana.Signature{}, errors.New("transaction already processed")
	}

	if l.FailOnChain {
		l.Sent = append(l.Sent, tx)
		l.confirm(sig, map[string]any{"InstructionError": []any{0, "Custom"}})
		return sig, nil
	}

	state := l.snapshot()
	for i := range tx.Message.Instructions {
		if err := execute(state, tx, &tx.Message.Instructions[i]); err != nil {
			return solana.Signature{}, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	l.accounts = state
	l.Sent = append(l.Sent, tx)
	if !l.Unconfirmed {
		l.confirm(sig, nil)
	}
	return sig, nil
}

func (l *Ledger) context() rpc.RPCContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return rpc.RPCContext{Context: rpc.Context{Slot: l.slot}}
}

func (l *Ledger) confirm(sig solana.Signature, txErr any) {
	l.slot++
	l.statuses[sig] = &rpc.SignatureStatusesResult{
		Slot:               l.slot,
		Err:                txErr,
		ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
	}
}

func (l *Ledger) snapshot() map[solana.PublicKey]*Account {
	out := make(map[solana.PublicKey]*Account, len(l.accounts))
	for k, v := range l.accounts {
		a := *v
		a.Data = append([]byte(nil), v.Data...)
		out[k] = &a
	}
	return out
}

func (l *Ledger) credit(state map[solana.PublicKey]*Account, address solana.PublicKey, lamports uint64) {
	a, ok := state[address]
	if !ok {
		a = &Account{Owner: solana.SystemProgramID}
		state[address] = a
	}
	a.Lamports += lamports
}

func execute(state map[solana.PublicKey]*Account, tx *solana.Transaction, ix *solana.CompiledInstruction) error {
	programID, err := tx.Message.ResolveProgramIDIndex(ix.ProgramIDIndex)
	if err != nil {
		return err
	}
	accounts, err := ix.ResolveInstructionAccounts(&tx.Message)
	if err != nil {
		return err
	}

	switch {
	case programID.Equals(solana.SystemProgramID):
		inst, err := system.DecodeInstruction(accounts, ix.Data)
		if err != nil {
			return err
		}
		return executeSystem(state, inst)
	case programID.Equals(solana.TokenProgramID):
		inst, err := token.DecodeInstruction(accounts, ix.Data)
		if err != nil {
			return err
		}
		return executeToken(state, inst)
	case programID.Equals(associatedtokenaccount.ProgramID):
		return executeCreateATA(state, accounts)
	default:
		return fmt.Errorf("unsupported program %s", programID)
	}
}

func executeSystem(state map[solana.PublicKey]*Account, inst *system.Instruction) error {
	switch ix := inst.Impl.(type) {
	case *system.Transfer:
		from, to := ix.AccountMetaSlice[0].PublicKey, ix.AccountMetaSlice[1].PublicKey
		if err := debit(state, from, *ix.Lamports); err != nil {
			return err
		}
		a, ok := state[to]
		if !ok {
			a = &Account{Owner: solana.SystemProgramID}
			state[to] = a
		}
		a.Lamports += *ix.Lamports
		return nil
	case *system.CreateAccount:
		funding, newAccount := ix.AccountMetaSlice[0].PublicKey, ix.AccountMetaSlice[1].PublicKey
		if a, ok := state[newAccount]; ok && (len(a.Data) > 0 || !a.Owner.Equals(solana.SystemProgramID)) {
			return fmt.Errorf("account %s already in use", newAccount)
		}
		if err := debit(state, funding, *ix.Lamports); err != nil {
			return err
		}
		state[newAccount] = &Account{
			Lamports: *ix.Lamports,
			Owner:    *ix.Owner,
			Data:     make([]byte, *ix.Space),
		}
		return nil
	default:
		return fmt.Errorf("unsupported system instruction %T", inst.Impl)
	}
}

func executeToken(state map[solana.PublicKey]*Account, inst *token.Instruction) error {
	switch ix := inst.Impl.(type) {
	case *token.InitializeMint2:
		address := ix.AccountMetaSlice[0].PublicKey
		a, ok := state[address]
		if !ok || !a.Owner.Equals(solana.TokenProgramID) || len(a.Data) != token.MINT_SIZE {
			return fmt.Errorf("mint %s: invalid account", address)
		}
		if mint, err := decodeMint(a.Data); err == nil && mint.IsInitialized {
			return fmt.Errorf("mint %s: already initialized", address)
		}
		a.Data = encode(token.Mint{
			MintAuthority:   ix.MintAuthority,
			Decimals:        *ix.Decimals,
			IsInitialized:   true,
			FreezeAuthority: ix.FreezeAuthority,
		})
		return nil

	case *token.MintTo:
		mintAddress, dest, authority := ix.Accounts[0].PublicKey, ix.Accounts[1].PublicKey, ix.Accounts[2]
		mint, err := loadMint(state, mintAddress)
		if err != nil {
			return err
		}
		if mint.MintAuthority == nil || !mint.MintAuthority.Equals(authority.PublicKey) || !authority.IsSigner {
			return fmt.Errorf("mint %s: owner does not match", mintAddress)
		}
		acc, err := loadTokenAccount(state, dest)
		if err != nil {
			return err
		}
		if !acc.Mint.Equals(mintAddress) {
			return fmt.Errorf("token account %s: mint mismatch", dest)
		}
		mint.Supply += *ix.Amount
		acc.Amount += *ix.Amount
		state[mintAddress].Data = encode(mint)
		state[dest].Data = encode(acc)
		return nil

	case *token.TransferChecked:
		src, mintAddress, dst, owner := ix.Accounts[0].PublicKey, ix.Accounts[1].PublicKey, ix.Accounts[2].PublicKey, ix.Accounts[3]
		mint, err := loadMint(state, mintAddress)
		if err != nil {
			return err
		}
		if mint.Decimals != *ix.Decimals {
			return fmt.Errorf("mint %s: decimals mismatch", mintAddress)
		}
		from, err := loadTokenAccount(state, src)
		if err != nil {
			return err
		}
		if !from.Owner.Equals(owner.PublicKey) || !owner.IsSigner {
			return fmt.Errorf("token account %s: owner does not match", src)
		}
		if from.Amount < *ix.Amount {
			return fmt.Errorf("token account %s: insufficient funds", src)
		}
		from.Amount -= *ix.Amount
		state[src].Data = encode(from)

		to, err := loadTokenAccount(state, dst)
		if err != nil {
			return err
		}
		if !to.Mint.Equals(mintAddress) || !from.Mint.Equals(mintAddress) {
			return fmt.Errorf("token account %s: mint mismatch", dst)
		}
		to.Amount += *ix.Amount
		state[dst].Data = encode(to)
		return nil

	case *token.SetAuthority:
		subject, authority := ix.Accounts[0].PublicKey, ix.Accounts[1]
		if *ix.AuthorityType != token.AuthorityMintTokens {
			return fmt.Errorf("unsupported authority type %d", *ix.AuthorityType)
		}
		mint, err := loadMint(state, subject)
		if err != nil {
			return err
		}
		if mint.MintAuthority == nil || !mint.MintAuthority.Equals(authority.PublicKey) || !authority.IsSigner {
			return fmt.Errorf("mint %s: owner does not match", subject)
		}
		mint.MintAuthority = ix.NewAuthority
		state[subject].Data = encode(mint)
		return nil

	default:
		return fmt.Errorf("unsupported token instruction %T", inst.Impl)
	}
}

// executeCreateATA reads the resolved accounts: [0] payer, [1] ata, [2] wallet, [3] mint.
func executeCreateATA(state map[solana.PublicKey]*Account, accounts []*solana.AccountMeta) error {
	if len(accounts) < 4 {
		return errors.New("create associated token account: missing accounts")
	}
	payer, ata, wallet, mintAddress := accounts[0].PublicKey, accounts[1].PublicKey, accounts[2].PublicKey, accounts[3].PublicKey

	expected, _, err := solana.FindAssociatedTokenAddress(wallet, mintAddress)
	if err != nil {
		return err
	}
	if !expected.Equals(ata) {
		return fmt.Errorf("associated address %s does not match seeds", ata)
	}
	if _, ok := state[ata]; ok {
		return fmt.Errorf("account %s already in use", ata)
	}
	if _, err := loadMint(state, mintAddress); err != nil {
		return err
	}

	rent := Rent(solanago.TokenAccountSize)
	if err := debit(state, payer, rent); err != nil {
		return err
	}
	state[ata] = &Account{
		Lamports: rent,
		Owner:    solana.TokenProgramID,
		Data: encode(token.Account{
			Mint:  mintAddress,
			Owner: wallet,
			State: token.Initialized,
		}),
	}
	return nil
}

func debit(state map[solana.PublicKey]*Account, address solana.PublicKey, lamports uint64) error {
	a, ok := state[address]
	if !ok || a.Lamports < lamports {
		return fmt.Errorf("account %s: insufficient lamports", address)
	}
	a.Lamports -= lamports
	return nil
}

func loadMint(state map[solana.PublicKey]*Account, address solana.PublicKey) (token.Mint, error) {
	a, ok := state[address]
	if !ok || !a.Owner.Equals(solana.TokenProgramID) {
		return token.Mint{}, fmt.Errorf("mint %s: invalid account", address)
	}
	mint, err := decodeMint(a.Data)
	if err != nil {
		return token.Mint{}, err
	}
	if !mint.IsInitialized {
		return token.Mint{}, fmt.Errorf("mint %s: uninitialized", address)
	}
	return mint, nil
}

func loadTokenAccount(state map[solana.PublicKey]*Account, address solana.PublicKey) (token.Account, error) {
	a, ok := state[address]
	if !ok || !a.Owner.Equals(solana.TokenProgramID) {
		return token.Account{}, fmt.Errorf("token account %s: invalid account", address)
	}
	return decodeTokenAccount(a.Data)
}

func decodeMint(data []byte) (token.Mint, error) {
	var mint token.Mint
	if len(data) != token.MINT_SIZE {
		return mint, fmt.Errorf("mint data has %d bytes", len(data))
	}
	err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(data))
	return mint, err
}

func decodeTokenAccount(data []byte) (token.Account, error) {
	var acc token.Account
	if len(data) != solanago.TokenAccountSize {
		return acc, fmt.Errorf("token account data has %d bytes", len(data))
	}
	err := acc.UnmarshalWithDecoder(bin.NewBinDecoder(data))
	return acc, err
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func encode(v marshaler) []byte {
	buf := new(bytes.Buffer)
	if err := v.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
