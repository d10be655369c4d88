package snapshot

import (
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
)

// NewCodec returns the deterministic CBOR codec used for snapshots and
// seals. Encoding the same snapshot twice gives identical bytes, which is
// what lets a seal commit to a digest of them.
func NewCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

func newDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}

// Marshal encodes s.
func Marshal(codec dtcbor.CBORCodec, s Snapshot) ([]byte, error) {
	return codec.MarshalCBOR(s)
}

// Unmarshal decodes a snapshot, rejecting versions this package does not
// understand.
func Unmarshal(codec dtcbor.CBORCodec, data []byte) (Snapshot, error) {
	var s Snapshot
	if err := codec.UnmarshalInto(data, &s); err != nil {
		return Snapshot{}, err
	}
	if s.Version != Version {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return s, nil
}
