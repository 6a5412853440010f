package solana

import (
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

var ErrNotTokenMint = errors.New("account is not a token mint")

// Token represents a Solana token with mint information and owner
type Token struct {
	token.Mint
	// Owner account of the token
	Owner solana.PublicKey
}

// TokenLayout provides methods for decoding token data
type TokenLayout struct {
}

func (l *TokenLayout) Decode(data []byte) (*Token, error) {
	mint := token.Mint{}

	if err := mint.UnmarshalWithDecoder(binary.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return &Token{Mint: mint}, nil
}

// UnpackMint decodes a mint account owned by the token program.
func UnpackMint(address solana.PublicKey, info *rpc.Account) (*Token, error) {
	if info == nil {
		return nil, fmt.Errorf("mint %s: %w", address, ErrAccountNotFound)
	}
	if !info.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrNotTokenMint, address, info.Owner)
	}

	var data []byte
	if info.Data != nil {
		data = info.Data.GetBinary()
	}
	if len(data) != token.MINT_SIZE {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrNotTokenMint, address, len(data))
	}

	mint, err := new(TokenLayout).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", address, err)
	}
	mint.Owner = info.Owner
	return mint, nil
}
