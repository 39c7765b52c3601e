package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mediashare/backend/internal/domain/feed"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/pubsub"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type MediaDomain interface {
	GetMediaList(context.Context, *model.GetMediaListRequest) (*model.GetMediaListResponse, error)
	GetFeed(context.Context, *model.GetFeedRequest) (*model.GetFeedResponse, error)
	GetMedia(context.Context, *model.GetMediaRequest) (*model.GetMediaResponse, error)
	CountLikes(context.Context, *model.CountLikesRequest) (*model.CountLikesResponse, error)
	HasLiked(context.Context, *model.HasLikedRequest) (*model.HasLikedResponse, error)
	IsFollowing(context.Context, *model.IsFollowingRequest) (*model.IsFollowingResponse, error)
	GetFollowing(context.Context, *model.GetFollowingRequest) (*model.GetFollowingResponse, error)
	Like(context.Context, *model.LikeRequest) (*model.LikeResponse, error)
	Unlike(context.Context, *model.UnlikeRequest) (*model.UnlikeResponse, error)
	Follow(context.Context, *model.FollowRequest) (*model.FollowResponse, error)
	Unfollow(context.Context, *model.UnfollowRequest) (*model.UnfollowResponse, error)
	ToggleLike(context.Context, *model.ToggleLikeRequest) (*model.ToggleLikeResponse, error)
	ToggleFollow(context.Context, *model.ToggleFollowRequest) (*model.ToggleFollowResponse, error)
	CreateMedia(context.Context, *model.CreateMediaRequest) (*model.CreateMediaResponse, error)
}

type mediaDomain struct {
	mediaRepo   repository.MediaRepository
	profileRepo repository.ProfileRepository
	store       *mediaStore
	enricher    *feed.Enricher
	toggler     *feed.Toggler
}

func NewMediaDomain(
	ctx context.Context,
	mediaRepo repository.MediaRepository,
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
	profileRepo repository.ProfileRepository,
	publisher pubsub.Publisher,
) *mediaDomain {
	nodeID := xcontext.Configs(ctx).Notification.NodeID
	idGenerator, err := snowflake.NewNode(nodeID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid change event node %d, fallback to 0: %v", nodeID, err)
		idGenerator, _ = snowflake.NewNode(0)
	}

	store := newMediaStore(mediaRepo, likeRepo, followRepo, publisher, idGenerator)
	enricher := feed.NewEnricher(store, xcontext.Configs(ctx).Feed.EnrichConcurrency)

	return &mediaDomain{
		mediaRepo:   mediaRepo,
		profileRepo: profileRepo,
		store:       store,
		enricher:    enricher,
		toggler:     feed.NewToggler(store, store, enricher),
	}
}

func (d *mediaDomain) GetMediaList(
	ctx context.Context, req *model.GetMediaListRequest,
) (*model.GetMediaListResponse, error) {
	items, err := d.store.GetMediaList(ctx, req.Type, req.Category)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get media list: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMediaListResponse{Items: items}, nil
}

// GetFeed returns the media list enriched for the requester. Anonymous
// requests get every derived field at its default.
func (d *mediaDomain) GetFeed(
	ctx context.Context, req *model.GetFeedRequest,
) (*model.GetFeedResponse, error) {
	items, err := d.store.GetMediaList(ctx, req.Type, req.Category)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get media list: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetFeedResponse{
		Items: d.enricher.Enrich(ctx, items, xcontext.RequestUserID(ctx)),
	}, nil
}

func (d *mediaDomain) GetMedia(
	ctx context.Context, req *model.GetMediaRequest,
) (*model.GetMediaResponse, error) {
	item, err := d.getMedia(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	enriched := d.enricher.Enrich(ctx, []model.MediaItem{*item}, xcontext.RequestUserID(ctx))
	return &model.GetMediaResponse{Item: enriched[0]}, nil
}

func (d *mediaDomain) CountLikes(
	ctx context.Context, req *model.CountLikesRequest,
) (*model.CountLikesResponse, error) {
	if req.MediaID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty media id")
	}

	count, err := d.store.CountLikes(ctx, req.MediaID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count likes: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CountLikesResponse{Count: count}, nil
}

func (d *mediaDomain) HasLiked(
	ctx context.Context, req *model.HasLikedRequest,
) (*model.HasLikedResponse, error) {
	if req.MediaID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty media id")
	}

	liked, err := d.store.HasLiked(ctx, xcontext.RequestUserID(ctx), req.MediaID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check like: %v", err)
		return nil, errorx.Unknown
	}

	return &model.HasLikedResponse{Liked: liked}, nil
}

func (d *mediaDomain) IsFollowing(
	ctx context.Context, req *model.IsFollowingRequest,
) (*model.IsFollowingResponse, error) {
	if req.CreatorName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty creator name")
	}

	following, err := d.store.IsFollowing(ctx, xcontext.RequestUserID(ctx), req.CreatorName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check follow: %v", err)
		return nil, errorx.Unknown
	}

	return &model.IsFollowingResponse{Following: following}, nil
}

func (d *mediaDomain) GetFollowing(
	ctx context.Context, req *model.GetFollowingRequest,
) (*model.GetFollowingResponse, error) {
	names, err := d.store.Following(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get followed creators: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetFollowingResponse{CreatorNames: names}, nil
}

func (d *mediaDomain) Like(ctx context.Context, req *model.LikeRequest) (*model.LikeResponse, error) {
	if _, err := d.getMedia(ctx, req.MediaID); err != nil {
		return nil, err
	}

	if err := d.store.Like(ctx, xcontext.RequestUserID(ctx), req.MediaID); err != nil {
		return nil, err
	}

	return &model.LikeResponse{}, nil
}

func (d *mediaDomain) Unlike(ctx context.Context, req *model.UnlikeRequest) (*model.UnlikeResponse, error) {
	if req.MediaID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty media id")
	}

	if err := d.store.Unlike(ctx, xcontext.RequestUserID(ctx), req.MediaID); err != nil {
		return nil, err
	}

	return &model.UnlikeResponse{}, nil
}

func (d *mediaDomain) Follow(ctx context.Context, req *model.FollowRequest) (*model.FollowResponse, error) {
	if req.CreatorName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty creator name")
	}

	if err := d.store.Follow(ctx, xcontext.RequestUserID(ctx), req.CreatorName); err != nil {
		return nil, err
	}

	return &model.FollowResponse{}, nil
}

func (d *mediaDomain) Unfollow(
	ctx context.Context, req *model.UnfollowRequest,
) (*model.UnfollowResponse, error) {
	if req.CreatorName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty creator name")
	}

	if err := d.store.Unfollow(ctx, xcontext.RequestUserID(ctx), req.CreatorName); err != nil {
		return nil, err
	}

	return &model.UnfollowResponse{}, nil
}

func (d *mediaDomain) ToggleLike(
	ctx context.Context, req *model.ToggleLikeRequest,
) (*model.ToggleLikeResponse, error) {
	f, err := d.loadOne(ctx, req.MediaID)
	if err != nil {
		return nil, err
	}

	if err := d.toggler.ToggleLike(ctx, f, req.MediaID, f.Viewer()); err != nil {
		return nil, err
	}

	item, _ := f.Item(req.MediaID)
	return &model.ToggleLikeResponse{Item: item}, nil
}

// ToggleFollow flips the follow state of the creator of req.MediaID.
func (d *mediaDomain) ToggleFollow(
	ctx context.Context, req *model.ToggleFollowRequest,
) (*model.ToggleFollowResponse, error) {
	f, err := d.loadOne(ctx, req.MediaID)
	if err != nil {
		return nil, err
	}

	item, _ := f.Item(req.MediaID)
	if err := d.toggler.ToggleFollow(ctx, f, item.CreatorName, f.Viewer()); err != nil {
		return nil, err
	}

	item, _ = f.Item(req.MediaID)
	return &model.ToggleFollowResponse{Item: item}, nil
}

func (d *mediaDomain) CreateMedia(
	ctx context.Context, req *model.CreateMediaRequest,
) (*model.CreateMediaResponse, error) {
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	profile, err := d.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found profile")
		}

		xcontext.Logger(ctx).Errorf("Cannot get profile: %v", err)
		return nil, errorx.Unknown
	}

	if profile.AccountType != entity.AccountCreator {
		return nil, errorx.New(errorx.PermissionDenied, "Only creators can publish media")
	}

	media := &entity.MediaContent{
		SoftDeleteBase: entity.SoftDeleteBase{Base: entity.Base{ID: uuid.NewString()}},
		Title:          req.Title,
		CreatorName:    profile.Name,
		CreatorID:      sql.NullString{Valid: true, String: profile.ID},
		ThumbnailURL:   nullString(req.ThumbnailURL),
		ContentURL:     nullString(req.ContentURL),
		Duration:       nullString(req.Duration),
		ReadTime:       nullString(req.ReadTime),
		Category:       req.Category,
		Type:           entity.MediaType(req.Type),
		ContentType:    nullString(req.ContentType),
		Description:    nullString(req.Description),
		IsPremium:      req.IsPremium,
	}

	if req.Price != nil {
		media.Price = sql.NullFloat64{Valid: true, Float64: *req.Price}
	}

	if err := d.mediaRepo.Create(ctx, media); err != nil {
		return nil, repositoryError(ctx, err, "create media")
	}

	return &model.CreateMediaResponse{Item: model.ConvertMediaItem(media)}, nil
}

func (d *mediaDomain) getMedia(ctx context.Context, id string) (*model.MediaItem, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty media id")
	}

	item, err := d.store.GetMedia(ctx, id)
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot get media: %v", err)
		return nil, errorx.Unknown
	}

	return item, nil
}

// loadOne builds a feed holding only the media id, enriched for the requester.
func (d *mediaDomain) loadOne(ctx context.Context, id string) (*feed.Feed, error) {
	item, err := d.getMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	viewerID := xcontext.RequestUserID(ctx)
	f := feed.New()
	ticket := f.Begin(viewerID)
	f.Apply(ticket, d.enricher.Enrich(ctx, []model.MediaItem{*item}, viewerID))
	return f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{Valid: s != "", String: s}
}
