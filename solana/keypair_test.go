package solana

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairFromSecretKey(t *testing.T) {
	w := solana.NewWallet()

	got, err := KeypairFromSecretKey(w.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), got.PublicKey())

	want := w.PublicKey()
	secret := append([]byte(nil), w.PrivateKey...)
	got, err = KeypairFromSecretKey(secret)
	require.NoError(t, err)
	secret[40] ^= 0xff
	assert.Equal(t, want, got.PublicKey(), "the input slice is copied")
}

func TestKeypairFromSecretKey_Invalid(t *testing.T) {
	w := solana.NewWallet()

	for name, secret := range map[string][]byte{
		"empty":     nil,
		"too short": w.PrivateKey[:32],
		"too long":  append(append([]byte(nil), w.PrivateKey...), 0),
		"mismatched public half": func() []byte {
			other := solana.NewWallet()
			out := append([]byte(nil), w.PrivateKey[:32]...)
			return append(out, other.PublicKey().Bytes()...)
		}(),
	} {
		_, err := KeypairFromSecretKey(secret)
		assert.ErrorIs(t, err, ErrInvalidSecretKey, name)
	}
}

func TestSigner(t *testing.T) {
	a, b := solana.NewWallet(), solana.NewWallet()
	sign := Signer(a, b)

	require.NotNil(t, sign(b.PublicKey()))
	assert.Equal(t, b.PrivateKey, *sign(b.PublicKey()))
	assert.Nil(t, sign(solana.NewWallet().PublicKey()))
}
