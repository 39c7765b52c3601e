package repository

import (
	"context"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	Create(ctx context.Context, data *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByName(ctx context.Context, name string) (*entity.Profile, error)

	// UpdateByID writes the non-zero fields of data. Only the owner of the
	// profile is allowed to update it.
	UpdateByID(ctx context.Context, id string, data *entity.Profile) error
}

type profileRepository struct{}

func NewProfileRepository() *profileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(ctx context.Context, data *entity.Profile) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(data).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var result entity.Profile
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *profileRepository) GetByName(ctx context.Context, name string) (*entity.Profile, error) {
	var result entity.Profile
	if err := xcontext.DB(ctx).Take(&result, "name=?", name).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *profileRepository) UpdateByID(ctx context.Context, id string, data *entity.Profile) error {
	if err := requireOwner(ctx, id); err != nil {
		return err
	}

	updateMap := map[string]any{}
	if data.Name != "" {
		updateMap["name"] = data.Name
	}

	if data.AvatarURL.Valid {
		updateMap["avatar_url"] = data.AvatarURL
	}

	if data.AccountType != "" {
		updateMap["account_type"] = data.AccountType
	}

	if data.Role != "" {
		updateMap["role"] = data.Role
	}

	if len(updateMap) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.Profile{}).Where("id=?", id).Updates(updateMap)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
