package cell

import (
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/segmented"
	"github.com/google/uuid"
)

type Options struct {
	// PageSlots is the number of records per arena page.
	PageSlots int
	// SegmentSize is used for every segmented array the cell creates.
	SegmentSize segmented.Size
	Log         logger.Logger
	// ID is normally generated. Snapshots restore it to keep storage paths
	// stable.
	ID uuid.UUID
}

type Option func(*Options)

func WithPageSlots(n int) Option {
	return func(o *Options) { o.PageSlots = n }
}

func WithSegmentSize(n segmented.Size) Option {
	return func(o *Options) { o.SegmentSize = n }
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) { o.Log = log }
}

func WithID(id uuid.UUID) Option {
	return func(o *Options) { o.ID = id }
}

func NewOptions(opts ...Option) Options {
	o := Options{
		PageSlots:   arena.DefaultPageSlots,
		SegmentSize: segmented.DefaultSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Log == nil && logger.Sugar != nil {
		o.Log = logger.Sugar.WithServiceName("celldb")
	}
	return o
}
