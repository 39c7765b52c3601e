package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/pubsub"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// mediaStore serves the feed package from the repositories. Every effective
// edge change is published to its topic.
type mediaStore struct {
	mediaRepo  repository.MediaRepository
	likeRepo   repository.LikeRepository
	followRepo repository.FollowRepository
	publisher  pubsub.Publisher

	idGenerator *snowflake.Node
}

func newMediaStore(
	mediaRepo repository.MediaRepository,
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
	publisher pubsub.Publisher,
	idGenerator *snowflake.Node,
) *mediaStore {
	return &mediaStore{
		mediaRepo:   mediaRepo,
		likeRepo:    likeRepo,
		followRepo:  followRepo,
		publisher:   publisher,
		idGenerator: idGenerator,
	}
}

func (s *mediaStore) CountLikes(ctx context.Context, mediaID string) (int64, error) {
	return s.likeRepo.Count(ctx, mediaID)
}

func (s *mediaStore) HasLiked(ctx context.Context, viewerID, mediaID string) (bool, error) {
	return s.likeRepo.Exists(ctx, viewerID, mediaID)
}

func (s *mediaStore) IsFollowing(ctx context.Context, viewerID, creatorName string) (bool, error) {
	return s.followRepo.Exists(ctx, viewerID, creatorName)
}

// Following returns the creators followed by viewerID.
func (s *mediaStore) Following(ctx context.Context, viewerID string) ([]string, error) {
	follows, err := s.followRepo.GetListByFollowerID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(follows))
	for _, f := range follows {
		names = append(names, f.CreatorName)
	}

	return names, nil
}

func (s *mediaStore) Like(ctx context.Context, viewerID, mediaID string) error {
	changed, err := s.likeRepo.Create(ctx, &entity.MediaLike{UserID: viewerID, MediaID: mediaID})
	if err != nil {
		return repositoryError(ctx, err, "like")
	}

	if changed {
		s.publish(ctx, model.ChangeEvent{
			Kind:    model.ChangeLike,
			Action:  model.ChangeInsert,
			UserID:  viewerID,
			MediaID: mediaID,
		})
	}

	return nil
}

func (s *mediaStore) Unlike(ctx context.Context, viewerID, mediaID string) error {
	changed, err := s.likeRepo.Delete(ctx, viewerID, mediaID)
	if err != nil {
		return repositoryError(ctx, err, "unlike")
	}

	if changed {
		s.publish(ctx, model.ChangeEvent{
			Kind:    model.ChangeLike,
			Action:  model.ChangeDelete,
			UserID:  viewerID,
			MediaID: mediaID,
		})
	}

	return nil
}

func (s *mediaStore) Follow(ctx context.Context, viewerID, creatorName string) error {
	changed, err := s.followRepo.Create(ctx, &entity.CreatorFollow{
		FollowerID:  viewerID,
		CreatorName: creatorName,
	})
	if err != nil {
		return repositoryError(ctx, err, "follow")
	}

	if changed {
		s.publish(ctx, model.ChangeEvent{
			Kind:        model.ChangeFollow,
			Action:      model.ChangeInsert,
			UserID:      viewerID,
			CreatorName: creatorName,
		})
	}

	return nil
}

func (s *mediaStore) Unfollow(ctx context.Context, viewerID, creatorName string) error {
	changed, err := s.followRepo.Delete(ctx, viewerID, creatorName)
	if err != nil {
		return repositoryError(ctx, err, "unfollow")
	}

	if changed {
		s.publish(ctx, model.ChangeEvent{
			Kind:        model.ChangeFollow,
			Action:      model.ChangeDelete,
			UserID:      viewerID,
			CreatorName: creatorName,
		})
	}

	return nil
}

func (s *mediaStore) GetMediaList(ctx context.Context, mediaType, category string) ([]model.MediaItem, error) {
	medias, err := s.mediaRepo.GetList(ctx, repository.GetListMediaFilter{
		Type:     entity.MediaType(mediaType),
		Category: category,
	})
	if err != nil {
		return nil, err
	}

	return model.ConvertMediaItems(medias), nil
}

func (s *mediaStore) GetMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	media, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found media")
		}

		return nil, err
	}

	item := model.ConvertMediaItem(media)
	return &item, nil
}

// publish never fails the change, the edge is already stored.
func (s *mediaStore) publish(ctx context.Context, event model.ChangeEvent) {
	if s.publisher == nil {
		return
	}

	cfg := xcontext.Configs(ctx).Notification
	topic, key := cfg.LikeTopic, event.MediaID
	if event.Kind == model.ChangeFollow {
		topic, key = cfg.FollowTopic, event.CreatorName
	}

	event.ID = s.idGenerator.Generate().String()
	event.CreatedAt = time.Now().Format(model.DefaultTimeLayout)
	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal change event: %v", err)
		return
	}

	err = s.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish change event to %s: %v", topic, err)
		return
	}

	common.PromCounters[common.ChangeEventPublished].WithLabelValues(topic).Inc()
}
