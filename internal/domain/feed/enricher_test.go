package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Enricher_EmptyInput(t *testing.T) {
	store := newEdgeStore()
	enricher := NewEnricher(store, 0)

	result := enricher.Enrich(context.Background(), nil, "user1")
	require.NotNil(t, result)
	require.Empty(t, result)
	require.Zero(t, store.calls.Load())
}

func Test_Enricher_NoViewer(t *testing.T) {
	items := newMediaItems(3, "Alice")
	items[0].LikesCount = 7
	items[1].IsLiked = true
	items[2].IsFollowing = true

	store := newEdgeStore(items...)
	enricher := NewEnricher(store, 0)

	result := enricher.Enrich(context.Background(), items, "")
	require.Len(t, result, 3)
	for i, item := range result {
		require.Equal(t, items[i].ID, item.ID)
		require.Zero(t, item.LikesCount)
		require.False(t, item.IsLiked)
		require.False(t, item.IsFollowing)
	}
	require.Zero(t, store.calls.Load())
}

func Test_Enricher_NoLikes(t *testing.T) {
	items := newMediaItems(10, "Alice")
	enricher := NewEnricher(newEdgeStore(items...), 4)

	result := enricher.Enrich(context.Background(), items, "user1")
	require.Len(t, result, 10)
	for i, item := range result {
		require.Equal(t, items[i].ID, item.ID)
		require.Zero(t, item.LikesCount)
		require.False(t, item.IsLiked)
	}
}

func Test_Enricher_OneLookupFails(t *testing.T) {
	items := newMediaItems(10, "Alice")
	store := newEdgeStore(items...)
	for _, item := range items {
		store.likes[item.ID] = map[string]bool{"user1": true, "user2": true}
	}
	store.follows["Alice"] = map[string]bool{"user1": true}
	store.failCount["media4"] = true

	result := NewEnricher(store, 0).Enrich(context.Background(), items, "user1")
	require.Len(t, result, 10)

	for i, item := range result {
		require.Equal(t, items[i].ID, item.ID)
		if item.ID == "media4" {
			require.Zero(t, item.LikesCount)
			require.False(t, item.IsLiked)
			require.False(t, item.IsFollowing)
			continue
		}

		require.Equal(t, int64(2), item.LikesCount)
		require.True(t, item.IsLiked)
		require.True(t, item.IsFollowing)
	}
}

func Test_Enricher_EnrichOne(t *testing.T) {
	items := newMediaItems(1, "Alice")
	store := newEdgeStore(items...)
	store.likes["media0"] = map[string]bool{"user2": true}

	item, err := NewEnricher(store, 0).EnrichOne(context.Background(), items[0], "user1")
	require.NoError(t, err)
	require.Equal(t, int64(1), item.LikesCount)
	require.False(t, item.IsLiked)
	require.False(t, item.IsFollowing)

	store.failCount["media0"] = true
	_, err = NewEnricher(store, 0).EnrichOne(context.Background(), items[0], "user1")
	require.ErrorIs(t, err, errLookup)
}
