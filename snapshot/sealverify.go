package snapshot

import (
	"crypto"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

type publicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// DecodeSeal decodes a published seal. The returned state has no digest and
// will not verify until the digest of the snapshot it names is restored.
func DecodeSeal(codec dtcbor.CBORCodec, msg []byte) (*dtcose.CoseSign1Message, SealedState, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg, newDecOptions()...)
	if err != nil {
		return nil, SealedState{}, err
	}

	var unverifiedState SealedState
	if err = codec.UnmarshalInto(signed.Payload, &unverifiedState); err != nil {
		return nil, SealedState{}, err
	}
	return signed, unverifiedState, nil
}

// VerifySeal re-attaches the payload described by state and checks the
// signature.
//
// Verification is:
//  1. DecodeSeal to obtain the cell id and sequence number.
//  2. Read the snapshot at that sequence and set state.Digest to its Digest.
//  3. VerifySeal with that state.
func VerifySeal(
	codec dtcbor.CBORCodec, keyProvider publicKeyProvider,
	signed *dtcose.CoseSign1Message, state SealedState, external []byte,
) error {
	var err error
	if signed.Payload, err = codec.MarshalCBOR(state); err != nil {
		return err
	}
	return signed.VerifyWithProvider(keyProvider, external)
}
