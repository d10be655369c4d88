package snapshot

import (
	"context"
	"io"

	"github.com/datatrails/go-datatrails-common/azblob"
)

// BlobStore is an ObjectStore on azure blob storage.
type BlobStore struct {
	Storer *azblob.Storer
	Tags   map[string]string
}

func NewBlobStore(storer *azblob.Storer) *BlobStore {
	return &BlobStore{Storer: storer}
}

// Put creates the blob. The write carries an If-None-Match of "*" so an
// existing blob is never replaced.
func (b *BlobStore) Put(ctx context.Context, path string, data []byte) error {
	opts := []azblob.Option{azblob.WithEtagNoneMatch("*")}
	if len(b.Tags) != 0 {
		opts = append(opts, azblob.WithTags(b.Tags))
	}
	_, err := b.Storer.Put(ctx, path, azblob.NewBytesReaderCloser(data), opts...)
	return wrapBlobExists(err)
}

func (b *BlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	rr, err := b.Storer.Reader(ctx, path)
	if err != nil {
		return nil, wrapBlobNotFound(err)
	}
	defer rr.Reader.Close()
	return io.ReadAll(rr.Reader)
}

func (b *BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	var marker azblob.ListMarker
	for {
		r, err := b.Storer.List(ctx, azblob.WithListPrefix(prefix), azblob.WithListMarker(marker))
		if err != nil {
			return nil, err
		}
		for _, i := range r.Items {
			paths = append(paths, *i.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	return paths, nil
}

func (b *BlobStore) Delete(ctx context.Context, path string) error {
	return wrapBlobNotFound(b.Storer.Delete(ctx, path))
}

// DeletePrefix removes every blob under prefix.
func (b *BlobStore) DeletePrefix(ctx context.Context, prefix string) error {
	paths, err := b.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := b.Delete(ctx, path); err != nil {
			return err
		}
	}
	return nil
}
