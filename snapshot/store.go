package snapshot

import "context"

// ObjectStore is the path based storage snapshots and seals are written to.
//
// Put must fail with ErrExists rather than replace an existing object, Get
// must fail with ErrNotFound for a missing one. List returns the paths
// below prefix in lexical order.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
