package snapshot

import (
	"crypto/ecdsa"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/veraison/go-cose"
)

const (
	DefaultIssuer  = "celldb"
	DefaultSubject = "cell-snapshot"
)

// SigningKey is the key a Committer seals snapshots with.
type SigningKey struct {
	Signer    cose.Signer
	KeyID     string
	PublicKey *ecdsa.PublicKey
}

type Options struct {
	codec *dtcbor.CBORCodec
	log   logger.Logger

	issuer  string
	subject string
	signer  *SigningKey
	// when set, seals made with any other key fail verification
	trustedSealerPubKey *ecdsa.PublicKey
	requireSeal         bool
	pathPrefix          string
}

type Option func(*Options)

func WithCodec(codec dtcbor.CBORCodec) Option {
	return func(o *Options) {
		o.codec = &codec
	}
}

// WithSigner makes every commit publish a seal alongside the snapshot.
func WithSigner(key SigningKey) Option {
	return func(o *Options) {
		o.signer = &key
	}
}

func WithIssuer(issuer, subject string) Option {
	return func(o *Options) {
		o.issuer = issuer
		o.subject = subject
	}
}

func WithTrustedSealerPub(pub *ecdsa.PublicKey) Option {
	return func(o *Options) {
		o.trustedSealerPubKey = pub
	}
}

// WithRequireSeal makes restoring from storage verify the snapshot's seal
// first.
func WithRequireSeal() Option {
	return func(o *Options) {
		o.requireSeal = true
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.log = log
	}
}

// WithPathPrefix places every object below prefix, for stores shared with
// other data.
func WithPathPrefix(prefix string) Option {
	return func(o *Options) {
		o.pathPrefix = prefix
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{
		issuer:  DefaultIssuer,
		subject: DefaultSubject,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil && logger.Sugar != nil {
		o.log = logger.Sugar.WithServiceName("celldb-snapshot")
	}
	return o
}
