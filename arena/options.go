package arena

import "github.com/forestrie/go-celldb/handle"

const (
	// DefaultPageSlots is the number of records carved from each page.
	DefaultPageSlots = 1024
	minPageSlots     = 1
)

type Options struct {
	// PageSlots is the fixed number of records per page. Pages are never
	// resized, which is what keeps record addresses stable.
	PageSlots int
	// Owner is recorded against every record allocated with Alloc.
	Owner handle.Handle
}

type Option func(*Options)

func WithPageSlots(n int) Option {
	return func(o *Options) {
		o.PageSlots = max(n, minPageSlots)
	}
}

func WithOwner(owner handle.Handle) Option {
	return func(o *Options) {
		o.Owner = owner
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{PageSlots: DefaultPageSlots}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
