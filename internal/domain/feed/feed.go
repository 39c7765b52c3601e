package feed

import (
	"context"
	"sync"

	"github.com/mediashare/backend/internal/model"
)

// Feed holds the enriched items of one tab for one viewer.
type Feed struct {
	mu         sync.RWMutex
	viewerID   string
	generation uint64
	items      []model.MediaItem
}

func New() *Feed {
	return &Feed{}
}

// Ticket identifies a load started by Begin.
type Ticket struct {
	viewerID   string
	generation uint64
}

// Begin starts a load for viewerID. Any load started before becomes stale.
func (f *Feed) Begin(viewerID string) Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	f.viewerID = viewerID
	return Ticket{viewerID: viewerID, generation: f.generation}
}

// Apply stores items if t is the latest load. It reports whether the items
// were stored.
func (f *Feed) Apply(t Ticket, items []model.MediaItem) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.generation != f.generation {
		return false
	}

	f.items = items
	return true
}

// Load fetches the items of mediaType and enriches them for viewerID. A result
// arriving after another load started is dropped.
func (f *Feed) Load(
	ctx context.Context,
	source MediaSource,
	enricher *Enricher,
	mediaType, category, viewerID string,
) error {
	ticket := f.Begin(viewerID)

	items, err := source.GetMediaList(ctx, mediaType, category)
	if err != nil {
		return err
	}

	f.Apply(ticket, enricher.Enrich(ctx, items, viewerID))
	return nil
}

func (f *Feed) Viewer() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.viewerID
}

func (f *Feed) Items() []model.MediaItem {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]model.MediaItem(nil), f.items...)
}

func (f *Feed) Item(id string) (model.MediaItem, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, item := range f.items {
		if item.ID == id {
			return item, true
		}
	}

	return model.MediaItem{}, false
}

// update runs fn on the items if the feed still belongs to viewerID.
func (f *Feed) update(viewerID string, fn func(items []model.MediaItem)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.viewerID != viewerID {
		return false
	}

	fn(f.items)
	return true
}
