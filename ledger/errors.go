package ledger

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	solanago "github.com/krazyTry/solanalib/solana"
)

var (
	ErrAirdropUnavailable = errors.New("airdrops are only served on devnet, testnet and localnet")

	ErrAccountNotFound     = solanago.ErrAccountNotFound
	ErrInvalidPublicKey    = solanago.ErrInvalidPublicKey
	ErrInvalidSecretKey    = solanago.ErrInvalidSecretKey
	ErrAmountOverflow      = solanago.ErrAmountOverflow
	ErrFractionalLamports  = solanago.ErrFractionalLamports
	ErrNotTokenMint        = solanago.ErrNotTokenMint
	ErrTransactionFailed   = solanago.ErrTransactionFailed
	ErrConfirmationTimeout = solanago.ErrConfirmationTimeout
)

// TokenAccountErrorKind classifies why a token account lookup failed.
type TokenAccountErrorKind int

const (
	TokenAccountUnknown TokenAccountErrorKind = iota
	TokenAccountNotFound
	TokenAccountInvalidOwner
	TokenAccountInvalidSize
)

// Message is the fixed human-readable text of the kind.
func (k TokenAccountErrorKind) Message() string {
	switch k {
	case TokenAccountNotFound:
		return "Account is not found at the expected address. Please ensure the public key is a token account and not a wallet."
	case TokenAccountInvalidOwner:
		return "Account is not owned by the expected token program. Please ensure the public key is a token account and not a wallet."
	case TokenAccountInvalidSize:
		return "The byte length of an program state account doesn't match the expected size."
	default:
		return "An Unknown error occurred"
	}
}

func (k TokenAccountErrorKind) String() string {
	switch k {
	case TokenAccountNotFound:
		return "not_found"
	case TokenAccountInvalidOwner:
		return "invalid_owner"
	case TokenAccountInvalidSize:
		return "invalid_size"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against a *TokenAccountError.
var (
	ErrTokenAccountNotFound     = &TokenAccountError{Kind: TokenAccountNotFound}
	ErrTokenInvalidAccountOwner = &TokenAccountError{Kind: TokenAccountInvalidOwner}
	ErrTokenInvalidAccountSize  = &TokenAccountError{Kind: TokenAccountInvalidSize}
	ErrTokenAccountUnknown      = &TokenAccountError{Kind: TokenAccountUnknown}
)

// TokenAccountError is the failure variant of GetTokenAccountInfo.
// Error returns the kind's fixed message; the underlying cause is kept for Unwrap.
type TokenAccountError struct {
	Kind    TokenAccountErrorKind
	Address solana.PublicKey
	Err     error
}

func (e *TokenAccountError) Error() string {
	return e.Kind.Message()
}

func (e *TokenAccountError) Unwrap() error {
	return e.Err
}

// Is matches any *TokenAccountError of the same kind.
func (e *TokenAccountError) Is(target error) bool {
	t, ok := target.(*TokenAccountError)
	return ok && t.Kind == e.Kind
}

func classifyTokenAccountError(address solana.PublicKey, err error) *TokenAccountError {
	kind := TokenAccountUnknown
	switch {
	case errors.Is(err, solanago.ErrAccountNotFound):
		kind = TokenAccountNotFound
	case errors.Is(err, solanago.ErrAccountInvalidOwner):
		kind = TokenAccountInvalidOwner
	case errors.Is(err, solanago.ErrAccountInvalidSize):
		kind = TokenAccountInvalidSize
	}
	return &TokenAccountError{Kind: kind, Address: address, Err: err}
}

// DescribeTokenAccountError renders any error from GetTokenAccountInfo as one of
// the four fixed messages; anything unrecognised is reported as unknown.
func DescribeTokenAccountError(err error) string {
	var tokenErr *TokenAccountError
	if errors.As(err, &tokenErr) {
		return tokenErr.Error()
	}
	return TokenAccountUnknown.Message()
}
