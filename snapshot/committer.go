package snapshot

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldb/cell"
	"github.com/google/uuid"
)

// Receipt describes a committed snapshot.
type Receipt struct {
	Seq      uint32
	Path     string
	SealPath string // empty when the committer has no signer
	Digest   []byte
}

// Committer writes numbered snapshots of cells to an ObjectStore and reads
// them back. Snapshots of a cell are numbered from zero; each commit takes
// the number after the current head. Objects are never overwritten, so two
// committers racing on the same cell see one of them fail with ErrExists.
type Committer struct {
	Log   logger.Logger
	Store ObjectStore

	opts   Options
	codec  dtcbor.CBORCodec
	sealer Sealer
}

func NewCommitter(store ObjectStore, opts ...Option) (*Committer, error) {
	o := NewOptions(opts...)
	if o.codec == nil {
		codec, err := NewCodec()
		if err != nil {
			return nil, err
		}
		o.codec = &codec
	}
	c := &Committer{
		Log:    o.log,
		Store:  store,
		opts:   o,
		codec:  *o.codec,
		sealer: NewSealer(o.issuer, *o.codec),
	}
	return c, nil
}

func (c *Committer) Codec() dtcbor.CBORCodec { return c.codec }

func (c *Committer) objectPath(p string) string {
	return c.opts.pathPrefix + p
}

// Head returns the sequence number of the newest snapshot of the cell. ok is
// false when nothing has been committed for it.
func (c *Committer) Head(ctx context.Context, id uuid.UUID) (seq uint32, ok bool, err error) {
	paths, err := c.Store.List(ctx, c.objectPath(SnapshotPrefix(id)))
	if err != nil {
		return 0, false, err
	}
	for _, p := range paths {
		otype, n, err := ObjectFromPath(p)
		if err != nil {
			return 0, false, err
		}
		if otype != ObjectSnapshot {
			continue
		}
		if !ok || n > seq {
			seq, ok = n, true
		}
	}
	return seq, ok, nil
}

// Commit encodes the cell and writes it as the next snapshot. With a signer
// configured a seal over the snapshot digest is written after it.
func (c *Committer) Commit(ctx context.Context, cl *cell.Cell) (Receipt, error) {
	head, ok, err := c.Head(ctx, cl.ID())
	if err != nil {
		return Receipt{}, err
	}
	var seq uint32
	if ok {
		seq = head + 1
	}

	s, err := Encode(cl)
	if err != nil {
		return Receipt{}, err
	}
	s.Seq = seq
	data, err := Marshal(c.codec, s)
	if err != nil {
		return Receipt{}, err
	}

	rc := Receipt{
		Seq:    seq,
		Path:   c.objectPath(SnapshotPath(cl.ID(), seq)),
		Digest: Digest(data),
	}
	if err := c.Store.Put(ctx, rc.Path, data); err != nil {
		return Receipt{}, err
	}
	c.infof("cell %s snapshot %d committed, %d bytes", cl.ID(), seq, len(data))

	if c.opts.signer == nil {
		return rc, nil
	}
	seal, err := c.seal(cl.ID(), seq, rc.Digest)
	if err != nil {
		return Receipt{}, err
	}
	rc.SealPath = c.objectPath(SealPath(cl.ID(), seq))
	if err := c.Store.Put(ctx, rc.SealPath, seal); err != nil {
		return Receipt{}, err
	}
	c.infof("cell %s snapshot %d sealed", cl.ID(), seq)
	return rc, nil
}

func (c *Committer) seal(id uuid.UUID, seq uint32, digest []byte) ([]byte, error) {
	key := c.opts.signer
	state := SealedState{
		CellID:    id[:],
		Seq:       seq,
		Digest:    digest,
		Timestamp: time.Now().UnixMilli(),
	}
	return c.sealer.Sign1(key.Signer, key.KeyID, key.PublicKey, c.opts.subject, state, nil)
}

// Load reads and decodes snapshot seq of the cell. The encoded bytes are
// returned too, they are what a seal's digest covers.
func (c *Committer) Load(ctx context.Context, id uuid.UUID, seq uint32) (Snapshot, []byte, error) {
	data, err := c.Store.Get(ctx, c.objectPath(SnapshotPath(id, seq)))
	if err != nil {
		return Snapshot{}, nil, err
	}
	s, err := Unmarshal(c.codec, data)
	if err != nil {
		return Snapshot{}, nil, err
	}
	if !bytes.Equal(s.CellID, id[:]) {
		return Snapshot{}, nil, fmt.Errorf("%w: %s at %d", ErrCellIDMismatch, id, seq)
	}
	return s, data, nil
}

// LoadHead loads the newest snapshot of the cell.
func (c *Committer) LoadHead(ctx context.Context, id uuid.UUID) (Snapshot, []byte, error) {
	seq, ok, err := c.Head(ctx, id)
	if err != nil {
		return Snapshot{}, nil, err
	}
	if !ok {
		return Snapshot{}, nil, fmt.Errorf("%w: no snapshots for cell %s", ErrNotFound, id)
	}
	return c.Load(ctx, id, seq)
}

// Verify checks the seal of snapshot seq against the snapshot as it is
// currently stored.
//
// The key in the seal is used to check the signature. To require a specific
// key, supply it with WithTrustedSealerPub.
func (c *Committer) Verify(ctx context.Context, id uuid.UUID, seq uint32) (SealedState, error) {
	msg, err := c.Store.Get(ctx, c.objectPath(SealPath(id, seq)))
	if errors.Is(err, ErrNotFound) {
		return SealedState{}, fmt.Errorf("%w: cell %s snapshot %d", ErrSealNotFound, id, seq)
	}
	if err != nil {
		return SealedState{}, err
	}
	signed, state, err := DecodeSeal(c.codec, msg)
	if err != nil {
		return SealedState{}, err
	}
	if !bytes.Equal(state.CellID, id[:]) || state.Seq != seq {
		return SealedState{}, fmt.Errorf("%w: seal at %d names snapshot %d", ErrSealMismatch, seq, state.Seq)
	}

	_, data, err := c.Load(ctx, id, seq)
	if err != nil {
		return SealedState{}, err
	}
	state.Digest = Digest(data)

	pubKeyProvider := dtcose.NewCWTPublicKeyProvider(signed)
	if c.opts.trustedSealerPubKey != nil {
		var remotePub crypto.PublicKey
		remotePub, _, err = pubKeyProvider.PublicKey()
		if err != nil {
			return SealedState{}, err
		}
		if !c.opts.trustedSealerPubKey.Equal(remotePub) {
			return SealedState{}, ErrSealKeyMismatch
		}
	}

	if err := VerifySeal(c.codec, pubKeyProvider, signed, state, nil); err != nil {
		return SealedState{}, fmt.Errorf(
			"%w: cell %s snapshot %d: %v", ErrSealVerifyFailed, id, seq, err)
	}
	return state, nil
}

// Restore loads snapshot seq and builds a cell from it. With WithRequireSeal
// the seal is verified first.
func (c *Committer) Restore(ctx context.Context, id uuid.UUID, seq uint32, opts ...cell.Option) (*cell.Cell, error) {
	if c.opts.requireSeal {
		if _, err := c.Verify(ctx, id, seq); err != nil {
			return nil, err
		}
	}
	s, _, err := c.Load(ctx, id, seq)
	if err != nil {
		return nil, err
	}
	cl, err := Restore(s, opts...)
	if err != nil {
		return nil, err
	}
	c.infof("cell %s restored from snapshot %d", id, seq)
	return cl, nil
}

func (c *Committer) infof(format string, args ...any) {
	if c.Log != nil {
		c.Log.Infof(format, args...)
	}
}
