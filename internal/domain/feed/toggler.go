package feed

import (
	"context"

	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

// Toggler flips likes and follows in the store and in a Feed together. Each
// toggle is tried once.
type Toggler struct {
	mutator  Mutator
	source   MediaSource
	enricher *Enricher
}

func NewToggler(mutator Mutator, source MediaSource, enricher *Enricher) *Toggler {
	return &Toggler{mutator: mutator, source: source, enricher: enricher}
}

var errReauthenticate = errorx.New(errorx.TokenExpired, "Your session is expired, please sign in again")

func (t *Toggler) ToggleLike(ctx context.Context, f *Feed, itemID, viewerID string) error {
	item, ok := f.Item(itemID)
	if !ok {
		return errorx.New(errorx.NotFound, "Not found media %s", itemID)
	}

	liked := item.IsLiked

	var err error
	if viewerID == "" {
		err = errorx.New(errorx.Unauthenticated, "No active session")
	} else if liked {
		err = t.mutator.Unlike(ctx, viewerID, itemID)
	} else {
		err = t.mutator.Like(ctx, viewerID, itemID)
	}

	if err != nil {
		return t.handleError(ctx, f, err, viewerID, func(m model.MediaItem) bool { return m.ID == itemID })
	}

	// The counter moves only if the item still shows the state the toggle was
	// decided on. A reload or another toggle in between already counted it.
	f.update(viewerID, func(items []model.MediaItem) {
		for i := range items {
			if items[i].ID != itemID {
				continue
			}

			if items[i].IsLiked == liked {
				if liked {
					if items[i].LikesCount > 0 {
						items[i].LikesCount--
					}
				} else {
					items[i].LikesCount++
				}
			}

			items[i].IsLiked = !liked
		}
	})

	return nil
}

// ToggleFollow flips the follow state of creatorName on every item of that
// creator.
func (t *Toggler) ToggleFollow(ctx context.Context, f *Feed, creatorName, viewerID string) error {
	var following, found bool
	for _, item := range f.Items() {
		if item.CreatorName == creatorName {
			following, found = item.IsFollowing, true
			break
		}
	}

	if !found {
		return errorx.New(errorx.NotFound, "Not found creator %s", creatorName)
	}

	var err error
	if viewerID == "" {
		err = errorx.New(errorx.Unauthenticated, "No active session")
	} else if following {
		err = t.mutator.Unfollow(ctx, viewerID, creatorName)
	} else {
		err = t.mutator.Follow(ctx, viewerID, creatorName)
	}

	if err != nil {
		return t.handleError(ctx, f, err, viewerID, func(m model.MediaItem) bool {
			return m.CreatorName == creatorName
		})
	}

	f.update(viewerID, func(items []model.MediaItem) {
		for i := range items {
			if items[i].CreatorName == creatorName {
				items[i].IsFollowing = !following
			}
		}
	})

	return nil
}

// handleError maps a failed mutation to its outcome. An expired or missing
// session re-fetches the matching items so the feed shows the stored truth,
// then asks for a new sign in. Anything else is a retryable failure.
func (t *Toggler) handleError(
	ctx context.Context, f *Feed, err error, viewerID string, match func(model.MediaItem) bool,
) error {
	if errorx.Is(err, errorx.TokenExpired) || errorx.Is(err, errorx.Unauthenticated) {
		xcontext.Logger(ctx).Warnf("Toggle rejected, session is expired: %v", err)
		t.refresh(ctx, f, viewerID, match)
		return errReauthenticate
	}

	xcontext.Logger(ctx).Errorf("Cannot toggle: %v", err)
	return errorx.New(errorx.Unavailable, "Something went wrong, please try again")
}

func (t *Toggler) refresh(ctx context.Context, f *Feed, viewerID string, match func(model.MediaItem) bool) {
	fresh := map[string]model.MediaItem{}
	for _, item := range f.Items() {
		if !match(item) {
			continue
		}

		raw, err := t.source.GetMedia(ctx, item.ID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot re-fetch media %s: %v", item.ID, err)
			continue
		}

		enriched, err := t.enricher.EnrichOne(ctx, *raw, viewerID)
		if err != nil {
			enriched = raw.WithDefaults()
		}

		fresh[item.ID] = enriched
	}

	f.update(viewerID, func(items []model.MediaItem) {
		for i := range items {
			if item, ok := fresh[items[i].ID]; ok {
				items[i] = item
			}
		}
	})
}
