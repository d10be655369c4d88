package snapshot

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/azkeys"
	"github.com/stretchr/testify/require"
)

func TestGenerateECKey(t *testing.T, curve elliptic.Curve) ecdsa.PrivateKey {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return *privateKey
}

// TestNewSigningKey returns a P-256 signing key backed by an in memory test
// signer.
func TestNewSigningKey(t *testing.T) SigningKey {
	key := TestGenerateECKey(t, elliptic.P256())
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	pubKey, err := coseSigner.PublicKey()
	require.NoError(t, err)
	return SigningKey{
		Signer:    coseSigner,
		KeyID:     coseSigner.KeyIdentifier(),
		PublicKey: pubKey,
	}
}

func TestNewSealer(t *testing.T, issuer string) Sealer {
	codec, err := NewCodec()
	require.NoError(t, err)
	return NewSealer(issuer, codec)
}
