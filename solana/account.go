package solana

import (
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInvalidOwner = errors.New("account not owned by the token program")
	ErrAccountInvalidSize  = errors.New("account size mismatch")
)

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// Account is a decoded SPL token account.
type Account struct {
	Address solana.PublicKey `json:"address"`

	Mint  solana.PublicKey `json:"mint"`
	Owner solana.PublicKey `json:"owner"`

	// Balance in base units
	Amount uint64 `json:"amount"`

	// Authority allowed to transfer DelegatedAmount out of the account
	Delegate        *solana.PublicKey `json:"delegate"`
	DelegatedAmount uint64            `json:"delegatedAmount"`

	IsInitialized bool `json:"isInitialized"`
	IsFrozen      bool `json:"isFrozen"`

	// Wrapped SOL accounts are native; they keep RentExemptReserve lamports until closed.
	IsNative          bool    `json:"isNative"`
	RentExemptReserve *uint64 `json:"rentExemptReserve"`

	CloseAuthority *solana.PublicKey `json:"closeAuthority"`
}

// https://github.com/solana-labs/solana-program-library/blob/d72289c79a04411c69a8bf1054f7156b6196f9b3/token/js/src/state/account.ts#L69
type tokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             *solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             *uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       *solana.PublicKey
}

type AccountLayout struct {
}

func (l *AccountLayout) Decode(data []byte) (*Account, error) {
	rawAccount := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(data).Decode(rawAccount); err != nil {
		return nil, err
	}
	return &Account{
		Mint:   rawAccount.Mint,
		Owner:  rawAccount.Owner,
		Amount: rawAccount.Amount,
		Delegate: func() *solana.PublicKey {
			if rawAccount.DelegateOption > 0 {
				return rawAccount.Delegate
			}
			return nil
		}(),
		DelegatedAmount: rawAccount.DelegatedAmount,
		IsInitialized:   AccountState(rawAccount.State) != AccountStateUninitialized,
		IsFrozen:        AccountState(rawAccount.State) == AccountStateFrozen,
		IsNative:        rawAccount.IsNativeOption > 0,
		RentExemptReserve: func() *uint64 {
			if rawAccount.IsNativeOption > 0 {
				return rawAccount.IsNative
			}
			return nil
		}(),
		CloseAuthority: func() *solana.PublicKey {
			if rawAccount.CloseAuthorityOption > 0 {
				return rawAccount.CloseAuthority
			}
			return nil
		}(),
	}, nil
}

// UnpackTokenAccount checks that info describes an SPL token account and decodes it.
// A nil info is reported as ErrAccountNotFound.
func UnpackTokenAccount(address solana.PublicKey, info *rpc.Account) (*Account, error) {
	if info == nil {
		return nil, ErrAccountNotFound
	}
	if !info.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: owner %s", ErrAccountInvalidOwner, info.Owner)
	}

	var data []byte
	if info.Data != nil {
		data = info.Data.GetBinary()
	}
	if len(data) != TokenAccountSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrAccountInvalidSize, len(data), TokenAccountSize)
	}

	account, err := new(AccountLayout).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode token account %s: %w", address, err)
	}
	account.Address = address
	return account, nil
}
