package snapshot

import (
	"testing"

	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_Sign1(t *testing.T) {
	logger.New("TEST")
	defer logger.OnExit()

	id := uuid.New()
	type args struct {
		subject  string
		state    SealedState
		external []byte
	}
	tests := []struct {
		name   string
		issuer string
		args   args
	}{
		{
			name:   "common case P-256 & ES256",
			issuer: "synsation.org",
			args: args{
				subject: "cell-snapshot",
				state: SealedState{
					CellID:    id[:],
					Seq:       1,
					Digest:    Digest([]byte("snapshot")),
					Timestamp: 1234,
				},
			},
		},
		{
			name:   "external data",
			issuer: "synsation.org",
			args: args{
				subject: "cell-snapshot",
				state: SealedState{
					CellID: id[:],
					Digest: Digest(nil),
				},
				external: []byte("context"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := TestNewSigningKey(t)
			s := TestNewSealer(t, tt.issuer)

			msg, err := s.Sign1(key.Signer, key.KeyID, key.PublicKey, tt.args.subject, tt.args.state, tt.args.external)
			require.NoError(t, err)

			signed, state, err := DecodeSeal(s.cborCodec, msg)
			require.NoError(t, err)
			assert.Nil(t, state.Digest, "the digest must not be published")
			assert.Equal(t, tt.args.state.Seq, state.Seq)
			assert.Equal(t, tt.args.state.CellID, state.CellID)

			err = VerifySeal(s.cborCodec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, tt.args.external)
			assert.Error(t, err)

			state.Digest = Digest([]byte("tampered"))
			err = VerifySeal(s.cborCodec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, tt.args.external)
			assert.Error(t, err)

			state.Digest = tt.args.state.Digest
			err = VerifySeal(s.cborCodec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, tt.args.external)
			assert.NoError(t, err)
		})
	}
}
