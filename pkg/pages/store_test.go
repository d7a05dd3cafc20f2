package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wikisync/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "catalog/wikis")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Put(ctx, "catalog/wikis", "wikis: {}\n", "initial write"))
	text, err := store.Get(ctx, "catalog/wikis")
	require.NoError(t, err)
	assert.Equal(t, "wikis: {}\n", text)
	assert.Equal(t, []string{"initial write"}, store.Summaries("catalog/wikis"))
}

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	store := NewFS(t.TempDir())

	_, err := store.Get(ctx, "catalog/wikis")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Put(ctx, "catalog/wikis", "first\n", "write one"))
	require.NoError(t, store.Put(ctx, "catalog/wikis", "second\n", "write two"))

	text, err := store.Get(ctx, "catalog/wikis")
	require.NoError(t, err)
	assert.Equal(t, "second\n", text)

	revisions, err := store.Revisions(ctx, "catalog/wikis")
	require.NoError(t, err)
	require.Len(t, revisions, 2, "current revision plus one backup")
	assert.Equal(t, "second\n", revisions[0])
	assert.Equal(t, "first\n", revisions[1])
}

func TestFSStoreNestedNames(t *testing.T) {
	ctx := context.Background()
	store := NewFS(t.TempDir())

	require.NoError(t, store.Put(ctx, "catalog/deep/queue", "- 42\n", "queue"))
	text, err := store.Get(ctx, "catalog/deep/queue")
	require.NoError(t, err)
	assert.Equal(t, "- 42\n", text)
}
