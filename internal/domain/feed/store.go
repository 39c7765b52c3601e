package feed

import (
	"context"

	"github.com/mediashare/backend/internal/model"
)

// Store answers the per-viewer lookups of the edge tables.
type Store interface {
	CountLikes(ctx context.Context, mediaID string) (int64, error)
	HasLiked(ctx context.Context, viewerID, mediaID string) (bool, error)
	IsFollowing(ctx context.Context, viewerID, creatorName string) (bool, error)
}

// Mutator writes the edge tables. Inserting an existing edge and deleting a
// missing one both succeed.
type Mutator interface {
	Like(ctx context.Context, viewerID, mediaID string) error
	Unlike(ctx context.Context, viewerID, mediaID string) error
	Follow(ctx context.Context, viewerID, creatorName string) error
	Unfollow(ctx context.Context, viewerID, creatorName string) error
}

// MediaSource reads the raw media items, without derived fields.
type MediaSource interface {
	GetMediaList(ctx context.Context, mediaType, category string) ([]model.MediaItem, error)
	GetMedia(ctx context.Context, id string) (*model.MediaItem, error)
}
