package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/enum"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ProfileDomain interface {
	GetProfile(context.Context, *model.GetProfileRequest) (*model.GetProfileResponse, error)
	UpdateProfile(context.Context, *model.UpdateProfileRequest) (*model.UpdateProfileResponse, error)
}

type profileDomain struct {
	profileRepo repository.ProfileRepository
}

func NewProfileDomain(profileRepo repository.ProfileRepository) *profileDomain {
	return &profileDomain{profileRepo: profileRepo}
}

// GetProfile returns the profile of req.ID, or of the requester if no id is
// given.
func (d *profileDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	id := req.ID
	if id == "" {
		id = xcontext.RequestUserID(ctx)
	}

	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty id")
	}

	profile, err := d.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found profile")
		}

		xcontext.Logger(ctx).Errorf("Cannot get profile: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetProfileResponse(model.ConvertProfile(profile))
	return &resp, nil
}

func (d *profileDomain) UpdateProfile(
	ctx context.Context, req *model.UpdateProfileRequest,
) (*model.UpdateProfileResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	update := &entity.Profile{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
		}
		update.Name = name
	}

	if req.AvatarURL != nil {
		update.AvatarURL = sql.NullString{Valid: true, String: *req.AvatarURL}
	}

	// Role mirrors the account type, one of them is enough to switch both.
	if req.AccountType != nil || req.Role != nil {
		if req.AccountType != nil && req.Role != nil && *req.AccountType != *req.Role {
			return nil, errorx.New(errorx.BadRequest, "Role and account type must be the same")
		}

		value := req.Role
		if req.AccountType != nil {
			value = req.AccountType
		}

		accountType, err := enum.ToEnum[entity.AccountType](*value)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid account type: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid account type %s", *value)
		}

		update.AccountType = accountType
		update.Role = accountType
	}

	if err := d.profileRepo.UpdateByID(ctx, userID, update); err != nil {
		return nil, repositoryError(ctx, err, "update profile")
	}

	profile, err := d.profileRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get profile: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.UpdateProfileResponse(model.ConvertProfile(profile))
	return &resp, nil
}
