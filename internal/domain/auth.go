package domain

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/mediashare/backend/pkg/crypto"
	"github.com/mediashare/backend/pkg/enum"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/mediashare/backend/pkg/xredis"
	"gorm.io/gorm"
)

// refreshFamilySize is the number of random bytes of a refresh token family.
const refreshFamilySize = 32

type AuthDomain interface {
	SignUp(context.Context, *model.SignUpRequest) (*model.SignUpResponse, error)
	SignIn(context.Context, *model.SignInRequest) (*model.SignInResponse, error)
	Refresh(context.Context, *model.RefreshTokenRequest) (*model.RefreshTokenResponse, error)
	SignOut(context.Context, *model.SignOutRequest) (*model.SignOutResponse, error)
	GetSession(context.Context, *model.GetSessionRequest) (*model.GetSessionResponse, error)
}

type authDomain struct {
	accountRepo      repository.AccountRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	redisClient      xredis.Client
}

func NewAuthDomain(
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	redisClient xredis.Client,
) *authDomain {
	return &authDomain{
		accountRepo:      accountRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		redisClient:      redisClient,
	}
}

func (d *authDomain) SignUp(
	ctx context.Context, req *model.SignUpRequest,
) (*model.SignUpResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	accountType := entity.AccountMember
	if req.AccountType != "" {
		var err error
		accountType, err = enum.ToEnum[entity.AccountType](req.AccountType)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid account type: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid account type %s", req.AccountType)
		}
	}

	_, err := d.accountRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "This email has been registered before")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get account by email: %v", err)
		return nil, errorx.Unknown
	}

	hashedPassword, err := authenticator.HashPassword(req.Password, xcontext.Configs(ctx).Auth.PasswordCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	// The profile is provisioned with the account, a signed up user never
	// observes a missing profile.
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	account := &entity.Account{
		Base:     entity.Base{ID: uuid.NewString()},
		Email:    req.Email,
		Password: hashedPassword,
	}
	if err := d.accountRepo.Create(ctx, account); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create account: %v", err)
		return nil, errorx.Unknown
	}

	profile := &entity.Profile{
		ID:          account.ID,
		Email:       account.Email,
		Name:        req.Name,
		Tier:        entity.TierFree,
		AccountType: accountType,
		Role:        accountType,
	}
	if err := d.profileRepo.Create(ctx, profile); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create profile: %v", err)
		return nil, errorx.Unknown
	}

	session, err := d.generateSession(ctx, account)
	if err != nil {
		return nil, err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	return &model.SignUpResponse{
		Session: *session,
		Profile: model.ConvertProfile(profile),
	}, nil
}

func (d *authDomain) SignIn(
	ctx context.Context, req *model.SignInRequest,
) (*model.SignInResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Auth
	failedKey := common.RedisKeyFailedSignIn(req.Email)

	failed, err := d.redisClient.Get(ctx, failedKey)
	if err != nil && !xredis.IsNil(err) {
		xcontext.Logger(ctx).Errorf("Cannot get failed sign in attempts: %v", err)
		return nil, errorx.Unknown
	}

	if failed != "" {
		n, err := strconv.Atoi(failed)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Invalid failed sign in attempts %q: %v", failed, err)
		} else if cfg.MaxFailedAttempts > 0 && n >= cfg.MaxFailedAttempts {
			return nil, errorx.New(errorx.TooManyRequests, "Too many failed attempts, please try again later")
		}
	}

	account, err := d.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get account by email: %v", err)
		return nil, errorx.Unknown
	}

	if account == nil || authenticator.ComparePassword(account.Password, req.Password) != nil {
		if _, err := d.redisClient.IncrWithTTL(ctx, failedKey, cfg.FailedAttemptWindow); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count failed sign in attempt: %v", err)
		}

		return nil, errorx.New(errorx.BadRequest, "Invalid email or password")
	}

	if failed != "" {
		if err := d.redisClient.Del(ctx, failedKey); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot reset failed sign in attempts: %v", err)
		}
	}

	session, err := d.generateSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return &model.SignInResponse{Session: *session}, nil
}

func (d *authDomain) Refresh(
	ctx context.Context, req *model.RefreshTokenRequest,
) (*model.RefreshTokenResponse, error) {
	// Verify the refresh token from client.
	refreshToken := model.RefreshToken{}
	err := xcontext.TokenEngine(ctx).Verify(req.RefreshToken, &refreshToken)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Failed to verify refresh token: %v", err)
		if errors.Is(err, authenticator.ErrTokenExpired) {
			return nil, errorx.New(errorx.TokenExpired, "Your refresh token is expired")
		}

		return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
	}

	// Load the storage refresh token from database.
	hashedFamily := crypto.SHA256([]byte(refreshToken.Family))
	storageToken, err := d.refreshTokenRepo.Get(ctx, hashedFamily)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "Your refresh token has been revoked")
		}

		xcontext.Logger(ctx).Errorf("Cannot get refresh token family %s: %v", refreshToken.Family, err)
		return nil, errorx.Unknown
	}

	// Check the expiration of storage refresh token.
	if storageToken.Expiration.Before(time.Now()) {
		return nil, errorx.New(errorx.TokenExpired, "Your refresh token is expired")
	}

	// Check if refresh token is stolen or invalid.
	// NOTE: DO NOT create transaction here. The delete and rotate query is independent.
	if refreshToken.Counter != storageToken.Counter {
		err = d.refreshTokenRepo.Delete(ctx, hashedFamily)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete refresh token: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.StolenDectected,
			"Your refresh token will be revoked because it is detected as stolen")
	}

	// Rotate the refresh token by increasing counter by 1. A concurrent
	// rotation means the same token was presented twice.
	err = d.refreshTokenRepo.Rotate(ctx, hashedFamily, storageToken.Counter,
		xcontext.Configs(ctx).Auth.RefreshToken.Expiration)
	if err != nil {
		if errors.Is(err, repository.ErrStaleCounter) {
			return nil, errorx.New(errorx.StolenDectected,
				"Your refresh token will be revoked because it is detected as stolen")
		}

		xcontext.Logger(ctx).Errorf("Cannot rotate the refresh token: %v", err)
		return nil, errorx.Unknown
	}

	newRefreshToken, err := xcontext.TokenEngine(ctx).Generate(
		xcontext.Configs(ctx).Auth.RefreshToken.Expiration,
		model.RefreshToken{
			Family:  refreshToken.Family,
			Counter: refreshToken.Counter + 1,
		})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate refresh token: %v", err)
		return nil, errorx.Unknown
	}

	account, err := d.accountRepo.GetByID(ctx, storageToken.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	session, err := d.generateAccessSession(ctx, account)
	if err != nil {
		return nil, err
	}
	session.RefreshToken = newRefreshToken

	return &model.RefreshTokenResponse{Session: *session}, nil
}

func (d *authDomain) SignOut(
	ctx context.Context, req *model.SignOutRequest,
) (*model.SignOutResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	if req.RefreshToken != "" {
		refreshToken := model.RefreshToken{}
		err := xcontext.TokenEngine(ctx).Verify(req.RefreshToken, &refreshToken)
		if err != nil && !errors.Is(err, authenticator.ErrTokenExpired) {
			return nil, errorx.New(errorx.BadRequest, "Invalid refresh token")
		}

		if err == nil {
			if err := d.revokeFamily(ctx, userID, refreshToken.Family); err != nil {
				return nil, err
			}
		}
	}

	// The access token stays valid until it expires, deny it until then.
	token := xcontext.RequestToken(ctx)
	if token.ID != "" {
		ttl := time.Until(token.ExpiresAt)
		if token.ExpiresAt.IsZero() {
			ttl = xcontext.Configs(ctx).Auth.AccessToken.Expiration
		}

		if ttl > 0 {
			err := d.redisClient.Set(ctx, common.RedisKeyRevokedToken(token.ID), userID, ttl)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot revoke access token: %v", err)
				return nil, errorx.Unknown
			}
		}
	}

	return &model.SignOutResponse{}, nil
}

func (d *authDomain) GetSession(
	ctx context.Context, req *model.GetSessionRequest,
) (*model.GetSessionResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "Your account no longer exists")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetSessionResponse{
		User:      model.AuthUser{ID: account.ID, Email: account.Email},
		ExpiresAt: xcontext.RequestToken(ctx).ExpiresAt,
	}, nil
}

func (d *authDomain) revokeFamily(ctx context.Context, userID, family string) error {
	hashedFamily := crypto.SHA256([]byte(family))
	storageToken, err := d.refreshTokenRepo.Get(ctx, hashedFamily)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get refresh token family: %v", err)
		return errorx.Unknown
	}

	if storageToken.UserID != userID {
		return errorx.New(errorx.PermissionDenied, "The refresh token does not belong to you")
	}

	if err := d.refreshTokenRepo.Delete(ctx, hashedFamily); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete refresh token: %v", err)
		return errorx.Unknown
	}

	return nil
}

// generateSession creates a new refresh token family for account and returns
// a session holding it.
func (d *authDomain) generateSession(ctx context.Context, account *entity.Account) (*model.Session, error) {
	refreshToken, err := d.generateRefreshToken(ctx, account.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate refresh token: %v", err)
		return nil, errorx.Unknown
	}

	session, err := d.generateAccessSession(ctx, account)
	if err != nil {
		return nil, err
	}

	session.RefreshToken = refreshToken
	return session, nil
}

func (d *authDomain) generateAccessSession(
	ctx context.Context, account *entity.Account,
) (*model.Session, error) {
	expiration := xcontext.Configs(ctx).Auth.AccessToken.Expiration
	accessToken, err := xcontext.TokenEngine(ctx).Generate(expiration, model.AccessToken{
		ID:    account.ID,
		Email: account.Email,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.Session{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(expiration),
		User:        model.AuthUser{ID: account.ID, Email: account.Email},
	}, nil
}

func (d *authDomain) generateRefreshToken(ctx context.Context, userID string) (string, error) {
	refreshTokenFamily, err := crypto.RandomString(refreshFamilySize)
	if err != nil {
		return "", err
	}

	refreshToken, err := xcontext.TokenEngine(ctx).Generate(
		xcontext.Configs(ctx).Auth.RefreshToken.Expiration,
		model.RefreshToken{
			Family:  refreshTokenFamily,
			Counter: 0,
		})
	if err != nil {
		return "", err
	}

	err = d.refreshTokenRepo.Create(ctx, &entity.RefreshToken{
		UserID:     userID,
		Family:     crypto.SHA256([]byte(refreshTokenFamily)),
		Counter:    0,
		Expiration: time.Now().Add(xcontext.Configs(ctx).Auth.RefreshToken.Expiration),
	})
	if err != nil {
		return "", err
	}

	return refreshToken, nil
}
