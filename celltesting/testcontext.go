package celltesting

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/segmented"
	"github.com/stretchr/testify/require"
)

type TestConfig struct {
	TestLabelPrefix string
	// LogLevel defaults to NOOP. Use INFO or DEBUG when triaging.
	LogLevel    string
	CellName    string // can be "" defaults to TestLabelPrefix
	Container   string // can be "" defaults to TestLabelPrefix
	PageSlots   int
	SegmentSize segmented.Size
}

type TestContext struct {
	Log    logger.Logger
	Storer *azblob.Storer
	Cell   *cell.Cell
	T      *testing.T
}

// NewTestContext creates a fresh cell for a test. The cell is closed when
// the test completes.
func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T: t,
	}
	level := cfg.LogLevel
	if level == "" {
		level = "NOOP"
	}
	logger.New(level)
	t.Cleanup(logger.OnExit)
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)

	name := cfg.CellName
	if name == "" {
		name = cfg.TestLabelPrefix
	}
	opts := []cell.Option{cell.WithLogger(c.Log)}
	if cfg.PageSlots > 0 {
		opts = append(opts, cell.WithPageSlots(cfg.PageSlots))
	}
	if cfg.SegmentSize != 0 {
		opts = append(opts, cell.WithSegmentSize(cfg.SegmentSize))
	}

	var err error
	c.Cell, err = cell.New(name, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Cell.Close)
	return c
}

// NewAzuriteTestContext is NewTestContext plus a blob store connected to the
// emulator configured in the environment.
func NewAzuriteTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := NewTestContext(t, cfg)

	container := cfg.Container
	if container == "" {
		container = cfg.TestLabelPrefix
	}

	var err error
	c.Storer, err = azblob.NewDev(azblob.NewDevConfigFromEnv(), container)
	if err != nil {
		t.Fatalf("failed to connect to blob store emulator: %v", err)
	}
	client := c.Storer.GetServiceClient()
	// Note: we expect a 'already exists' error here and  ignore it.
	_, _ = client.CreateContainer(context.Background(), container, nil)

	return c
}

// NewCell opens an additional cell sharing the context's logger.
func (c *TestContext) NewCell(name string, opts ...cell.Option) *cell.Cell {
	cl, err := cell.New(name, append([]cell.Option{cell.WithLogger(c.Log)}, opts...)...)
	require.NoError(c.T, err)
	c.T.Cleanup(cl.Close)
	return cl
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

func (c *TestContext) GetStorer() *azblob.Storer {
	return c.Storer
}
