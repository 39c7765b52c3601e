package repository

import (
	"context"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GetListMediaFilter struct {
	Type     entity.MediaType
	Category string
}

type MediaRepository interface {
	// Create inserts a media item. The creator of the item must be the
	// requester.
	Create(ctx context.Context, data *entity.MediaContent) error
	GetByID(ctx context.Context, id string) (*entity.MediaContent, error)
	GetList(ctx context.Context, filter GetListMediaFilter) ([]entity.MediaContent, error)
}

type mediaRepository struct{}

func NewMediaRepository() *mediaRepository {
	return &mediaRepository{}
}

func (r *mediaRepository) Create(ctx context.Context, data *entity.MediaContent) error {
	if err := requireOwner(ctx, data.CreatorID.String); err != nil {
		return err
	}

	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*entity.MediaContent, error) {
	var result entity.MediaContent
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *mediaRepository) GetList(
	ctx context.Context, filter GetListMediaFilter,
) ([]entity.MediaContent, error) {
	tx := xcontext.DB(ctx).Model(&entity.MediaContent{}).Order("created_at DESC")

	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if filter.Category != "" {
		tx = tx.Where("category=?", filter.Category)
	}

	var result []entity.MediaContent
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
