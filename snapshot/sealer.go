package snapshot

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

// SealedState is what a seal commits to: one snapshot of one cell.
type SealedState struct {
	CellID []byte `cbor:"1,keyasint"`
	Seq    uint32 `cbor:"2,keyasint"`
	// Digest is the sha256 of the encoded snapshot. It is signed over but
	// removed from the published seal, so a verifier must read the
	// snapshot to check it.
	Digest []byte `cbor:"3,keyasint"`
	// Timestamp is the unix time in milliseconds the seal was made.
	Timestamp int64 `cbor:"4,keyasint"`
}

// Digest returns the digest a seal records for the encoded snapshot data.
func Digest(data []byte) []byte {
	d := sha256.Sum256(data)
	return d[:]
}

// Sealer signs snapshot states as COSE Sign1 messages. The public key is
// carried in a CWT confirmation claim in the protected header.
type Sealer struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewSealer(issuer string, cborCodec dtcbor.CBORCodec) Sealer {
	return Sealer{
		issuer:    issuer,
		cborCodec: cborCodec,
	}
}

// Sign1 signs state and returns the encoded message with the digest
// detached.
func (s Sealer) Sign1(
	coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey,
	subject string, state SealedState, external []byte,
) ([]byte, error) {
	payload, err := s.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	coseHeaders := cose.Headers{
		Protected: cose.ProtectedHeader{
			dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
				s.issuer, subject, keyIdentifier, coseSigner.Algorithm(), *publicKey),
		},
	}

	msg := cose.Sign1Message{
		Headers: coseHeaders,
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}

	state.Digest = nil
	if msg.Payload, err = s.cborCodec.MarshalCBOR(state); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}
