package repository

import (
	"context"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Exists(ctx context.Context, followerID, creatorName string) (bool, error)
	GetListByFollowerID(ctx context.Context, followerID string) ([]entity.CreatorFollow, error)

	// Create inserts the follow edge of the requester. It returns false
	// without error if the edge already exists.
	Create(ctx context.Context, data *entity.CreatorFollow) (bool, error)

	// Delete removes the follow edge of the requester. It returns false
	// without error if there is no such edge.
	Delete(ctx context.Context, followerID, creatorName string) (bool, error)
}

type followRepository struct{}

func NewFollowRepository() *followRepository {
	return &followRepository{}
}

func (r *followRepository) Exists(ctx context.Context, followerID, creatorName string) (bool, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.CreatorFollow{}).
		Where("follower_id=? AND creator_name=?", followerID, creatorName).
		Count(&result).Error
	if err != nil {
		return false, err
	}

	return result > 0, nil
}

func (r *followRepository) GetListByFollowerID(
	ctx context.Context, followerID string,
) ([]entity.CreatorFollow, error) {
	var result []entity.CreatorFollow
	if err := xcontext.DB(ctx).Where("follower_id=?", followerID).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *followRepository) Create(ctx context.Context, data *entity.CreatorFollow) (bool, error) {
	if err := requireOwner(ctx, data.FollowerID); err != nil {
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

func (r *followRepository) Delete(ctx context.Context, followerID, creatorName string) (bool, error) {
	if err := requireOwner(ctx, followerID); err != nil {
		return false, err
	}

	tx := xcontext.DB(ctx).
		Where("follower_id=? AND creator_name=?", followerID, creatorName).
		Delete(&entity.CreatorFollow{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
