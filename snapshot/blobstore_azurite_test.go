//go:build integration && azurite

package snapshot

import (
	"context"
	"testing"

	"github.com/forestrie/go-celldb/celltesting"
	"github.com/forestrie/go-celldb/tech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreCommit(t *testing.T) {
	ctx := context.Background()
	tc := celltesting.NewAzuriteTestContext(t, celltesting.TestConfig{
		TestLabelPrefix: "Test_BlobStoreCommit",
		Container:       "test-blobstore-commit",
	})
	tech.TestNewSampleTech(t, tc.Cell)

	store := NewBlobStore(tc.GetStorer())
	prefix := CellPrefix(tc.Cell.ID())
	require.NoError(t, store.DeletePrefix(ctx, prefix))
	t.Cleanup(func() { require.NoError(t, store.DeletePrefix(context.Background(), prefix)) })
	committer := newTestCommitter(t, store, WithLogger(tc.GetLog()), WithSigner(TestNewSigningKey(t)))

	first, err := committer.Commit(ctx, tc.Cell)
	require.NoError(t, err)
	second, err := committer.Commit(ctx, tc.Cell)
	require.NoError(t, err)
	assert.Equal(t, first.Seq+1, second.Seq)

	paths, err := store.List(ctx, SnapshotPrefix(tc.Cell.ID()))
	require.NoError(t, err)
	assert.Equal(t, []string{first.Path, second.Path}, paths)

	_, err = store.Get(ctx, SnapshotPath(tc.Cell.ID(), 9))
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, first.Path, []byte("replaced"))
	assert.ErrorIs(t, err, ErrExists)

	_, err = committer.Verify(ctx, tc.Cell.ID(), second.Seq)
	require.NoError(t, err)

	restored, err := committer.Restore(ctx, tc.Cell.ID(), second.Seq)
	require.NoError(t, err)
	defer restored.Close()
	assert.Equal(t, tc.Cell.ID(), restored.ID())

	require.NoError(t, store.DeletePrefix(ctx, prefix))
	paths, err = store.List(ctx, prefix)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
