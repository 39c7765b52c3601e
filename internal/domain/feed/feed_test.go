package feed

import (
	"context"
	"testing"

	"github.com/mediashare/backend/internal/model"
	"github.com/stretchr/testify/require"
)

func Test_Feed_Load(t *testing.T) {
	items := newMediaItems(3, "Alice")
	items = append(items, model.MediaItem{ID: "blog0", CreatorName: "Dave", Type: "blog"})
	store := newEdgeStore(items...)
	store.likes["media1"] = map[string]bool{"user1": true}

	f := New()
	err := f.Load(context.Background(), store, NewEnricher(store, 0), "stream", "", "user1")
	require.NoError(t, err)
	require.Equal(t, "user1", f.Viewer())
	require.Len(t, f.Items(), 3)

	item, ok := f.Item("media1")
	require.True(t, ok)
	require.True(t, item.IsLiked)
	require.Equal(t, int64(1), item.LikesCount)

	_, ok = f.Item("blog0")
	require.False(t, ok)
}

func Test_Feed_StaleViewer(t *testing.T) {
	f := New()

	stale := f.Begin("user1")
	current := f.Begin("user2")

	require.False(t, f.Apply(stale, newMediaItems(2, "Alice")))
	require.Empty(t, f.Items())

	require.True(t, f.Apply(current, newMediaItems(1, "Bob")))
	require.Len(t, f.Items(), 1)
	require.Equal(t, "user2", f.Viewer())
}
