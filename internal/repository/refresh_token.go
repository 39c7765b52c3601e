package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleCounter is returned by Rotate when the family was rotated by
// someone else since the caller read it.
var ErrStaleCounter = errors.New("refresh token counter is stale")

type RefreshTokenRepository interface {
	Create(ctx context.Context, data *entity.RefreshToken) error
	Rotate(ctx context.Context, family string, counter uint64, ttl time.Duration) error
	Get(ctx context.Context, family string) (*entity.RefreshToken, error)
	Delete(ctx context.Context, family string) error
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() *refreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(token).Error
}

// Rotate advances the family counter only if it still equals counter, and
// pushes the expiration ttl into the future.
func (r *refreshTokenRepository) Rotate(
	ctx context.Context, family string, counter uint64, ttl time.Duration,
) error {
	tx := xcontext.DB(ctx).Model(&entity.RefreshToken{}).
		Where("family=? AND counter=?", family, counter).
		Updates(map[string]any{
			"counter":    counter + 1,
			"expiration": time.Now().Add(ttl),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 1 {
		return nil
	}

	var exists int64
	if err := xcontext.DB(ctx).Model(&entity.RefreshToken{}).
		Where("family=?", family).Count(&exists).Error; err != nil {
		return err
	}

	if exists == 0 {
		return gorm.ErrRecordNotFound
	}

	return ErrStaleCounter
}

func (r *refreshTokenRepository) Get(ctx context.Context, family string) (*entity.RefreshToken, error) {
	var result entity.RefreshToken
	if err := xcontext.DB(ctx).Take(&result, "family=?", family).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *refreshTokenRepository) Delete(ctx context.Context, family string) error {
	return xcontext.DB(ctx).Delete(&entity.RefreshToken{}, "family=?", family).Error
}
