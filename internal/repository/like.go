package repository

import (
	"context"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type LikeRepository interface {
	Count(ctx context.Context, mediaID string) (int64, error)
	Exists(ctx context.Context, userID, mediaID string) (bool, error)

	// Create inserts the like edge of the requester. It returns false without
	// error if the edge already exists.
	Create(ctx context.Context, data *entity.MediaLike) (bool, error)

	// Delete removes the like edge of the requester. It returns false without
	// error if there is no such edge.
	Delete(ctx context.Context, userID, mediaID string) (bool, error)
}

type likeRepository struct{}

func NewLikeRepository() *likeRepository {
	return &likeRepository{}
}

func (r *likeRepository) Count(ctx context.Context, mediaID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.MediaLike{}).
		Where("media_id=?", mediaID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, mediaID string) (bool, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.MediaLike{}).
		Where("user_id=? AND media_id=?", userID, mediaID).
		Count(&result).Error
	if err != nil {
		return false, err
	}

	return result > 0, nil
}

func (r *likeRepository) Create(ctx context.Context, data *entity.MediaLike) (bool, error) {
	if err := requireOwner(ctx, data.UserID); err != nil {
		return false, err
	}

	tx := xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, mediaID string) (bool, error) {
	if err := requireOwner(ctx, userID); err != nil {
		return false, err
	}

	tx := xcontext.DB(ctx).
		Where("user_id=? AND media_id=?", userID, mediaID).
		Delete(&entity.MediaLike{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
