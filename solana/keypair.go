package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// KeypairFromSecretKey rebuilds a keypair from the 64-byte secret key layout
// (32-byte seed followed by the public key) produced by keygen tools and wallets.
func KeypairFromSecretKey(secretKey []byte) (*solana.Wallet, error) {
	key := make(solana.PrivateKey, len(secretKey))
	copy(key, secretKey)

	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
	}
	// the trailing half must be the key derived from the seed
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: public key half does not match the seed", ErrInvalidSecretKey)
	}
	return &solana.Wallet{PrivateKey: key}, nil
}

// Signer returns a key getter for Transaction.Sign that knows the given wallets.
func Signer(wallets ...*solana.Wallet) func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		for _, w := range wallets {
			if key.Equals(w.PublicKey()) {
				return &w.PrivateKey
			}
		}
		return nil
	}
}
