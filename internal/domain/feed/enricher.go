package feed

import (
	"context"

	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

type Enricher struct {
	store       Store
	concurrency int
}

// NewEnricher returns an Enricher reading from store. At most concurrency
// items are enriched at the same time, zero means no limit.
func NewEnricher(store Store, concurrency int) *Enricher {
	return &Enricher{store: store, concurrency: concurrency}
}

// Enrich fills the derived fields of items for the viewer. Without a viewer
// every derived field keeps its default and the store is not touched. An item
// whose lookups fail gets the defaults, the other items are unaffected. The
// output has the order of the input.
func (e *Enricher) Enrich(ctx context.Context, items []model.MediaItem, viewerID string) []model.MediaItem {
	result := make([]model.MediaItem, len(items))
	if viewerID == "" {
		for i := range items {
			result[i] = items[i].WithDefaults()
		}
		return result
	}

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i := range items {
		i := i
		g.Go(func() error {
			item, err := e.EnrichOne(ctx, items[i], viewerID)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot enrich media %s: %v", items[i].ID, err)
				common.PromCounters[common.EnrichLookupFailure].WithLabelValues("item").Inc()
				item = items[i].WithDefaults()
			}

			result[i] = item
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// EnrichOne runs the three lookups of item concurrently. It fails if any of
// them fails.
func (e *Enricher) EnrichOne(ctx context.Context, item model.MediaItem, viewerID string) (model.MediaItem, error) {
	item = item.WithDefaults()
	if viewerID == "" {
		return item, nil
	}

	var likesCount int64
	var isLiked, isFollowing bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likesCount, err = e.store.CountLikes(gctx, item.ID)
		return err
	})

	g.Go(func() error {
		var err error
		isLiked, err = e.store.HasLiked(gctx, viewerID, item.ID)
		return err
	})

	g.Go(func() error {
		var err error
		isFollowing, err = e.store.IsFollowing(gctx, viewerID, item.CreatorName)
		return err
	})

	if err := g.Wait(); err != nil {
		return item, err
	}

	item.LikesCount = likesCount
	item.IsLiked = isLiked
	item.IsFollowing = isFollowing
	return item, nil
}
