package domain

import (
	"context"
	"testing"
	"time"

	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/mediashare/backend/pkg/crypto"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/testutil"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestAuthDomain(redisClient *testutil.MockRedisClient) *authDomain {
	return NewAuthDomain(
		repository.NewAccountRepository(),
		repository.NewProfileRepository(),
		repository.NewRefreshTokenRepository(),
		redisClient,
	)
}

func signUp(t *testing.T, ctx context.Context, domain *authDomain, email, name string) *model.SignUpResponse {
	resp, err := domain.SignUp(ctx, &model.SignUpRequest{
		Email:       email,
		Password:    "password",
		Name:        name,
		AccountType: "creator",
	})
	require.NoError(t, err)
	return resp
}

func Test_authDomain_SignUp(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(testutil.NewMockRedisClient())

	resp := signUp(t, ctx, domain, "Eve@MediaShare.app", "Eve")
	require.Equal(t, "eve@mediashare.app", resp.Session.User.Email)
	require.NotEmpty(t, resp.Session.AccessToken)
	require.NotEmpty(t, resp.Session.RefreshToken)
	require.Equal(t, resp.Session.User.ID, resp.Profile.ID)
	require.Equal(t, "creator", resp.Profile.AccountType)
	require.Equal(t, "creator", resp.Profile.Role)
	require.Equal(t, "free", resp.Profile.Tier)

	// The profile is readable as soon as sign up returns.
	profile, err := domain.profileRepo.GetByID(ctx, resp.Session.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Eve", profile.Name)

	accessToken := model.AccessToken{}
	err = xcontext.TokenEngine(ctx).Verify(resp.Session.AccessToken, &accessToken)
	require.NoError(t, err)
	require.Equal(t, resp.Session.User.ID, accessToken.ID)
}

func Test_authDomain_SignUp_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		req      *model.SignUpRequest
		wantCode errorx.Code
	}{
		{
			name:     "invalid email",
			req:      &model.SignUpRequest{Email: "eve", Password: "password", Name: "Eve"},
			wantCode: errorx.BadRequest,
		},
		{
			name:     "short password",
			req:      &model.SignUpRequest{Email: "eve@mediashare.app", Password: "123", Name: "Eve"},
			wantCode: errorx.BadRequest,
		},
		{
			name: "invalid account type",
			req: &model.SignUpRequest{
				Email: "eve@mediashare.app", Password: "password", Name: "Eve", AccountType: "admin",
			},
			wantCode: errorx.BadRequest,
		},
		{
			name:     "registered email",
			req:      &model.SignUpRequest{Email: testutil.Profile1.Email, Password: "password", Name: "Eve"},
			wantCode: errorx.AlreadyExists,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.InsertProfiles(ctx)
			domain := newTestAuthDomain(testutil.NewMockRedisClient())

			_, err := domain.SignUp(ctx, tt.req)
			require.Error(t, err)
			require.Equal(t, tt.wantCode, errorx.CodeOf(err))
		})
	}
}

func Test_authDomain_SignIn(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMockRedisClient()
	domain := newTestAuthDomain(redisClient)
	signUp(t, ctx, domain, "eve@mediashare.app", "Eve")

	resp, err := domain.SignIn(ctx, &model.SignInRequest{Email: "eve@mediashare.app", Password: "password"})
	require.NoError(t, err)
	require.Equal(t, "eve@mediashare.app", resp.Session.User.Email)

	// Failed attempts are counted, the limit of mock configs is 3.
	for i := 0; i < 3; i++ {
		_, err = domain.SignIn(ctx, &model.SignInRequest{Email: "eve@mediashare.app", Password: "wrong"})
		require.Equal(t, errorx.BadRequest, errorx.CodeOf(err))
	}
	require.Equal(t, time.Minute, redisClient.TTL(common.RedisKeyFailedSignIn("eve@mediashare.app")))

	_, err = domain.SignIn(ctx, &model.SignInRequest{Email: "eve@mediashare.app", Password: "password"})
	require.Equal(t, errorx.TooManyRequests, errorx.CodeOf(err))
}

func Test_authDomain_SignIn_ResetFailedAttempts(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMockRedisClient()
	domain := newTestAuthDomain(redisClient)
	signUp(t, ctx, domain, "eve@mediashare.app", "Eve")

	for i := 0; i < 2; i++ {
		_, err := domain.SignIn(ctx, &model.SignInRequest{Email: "eve@mediashare.app", Password: "wrong"})
		require.Error(t, err)
	}

	_, err := domain.SignIn(ctx, &model.SignInRequest{Email: "eve@mediashare.app", Password: "password"})
	require.NoError(t, err)

	exists, err := redisClient.Exist(ctx, common.RedisKeyFailedSignIn("eve@mediashare.app"))
	require.NoError(t, err)
	require.False(t, exists)

	// An unknown email fails the same way as a wrong password.
	_, err = domain.SignIn(ctx, &model.SignInRequest{Email: "nobody@mediashare.app", Password: "password"})
	require.Equal(t, errorx.BadRequest, errorx.CodeOf(err))
}

func Test_authDomain_Refresh(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestAuthDomain(testutil.NewMockRedisClient())

	refreshTokenObj := model.RefreshToken{
		Family:  "Foo",
		Counter: 0,
	}

	err := domain.refreshTokenRepo.Create(ctx, &entity.RefreshToken{
		UserID:     testutil.Profile1.ID,
		Family:     crypto.SHA256([]byte(refreshTokenObj.Family)),
		Counter:    0,
		Expiration: time.Now().Add(time.Minute),
	})
	require.NoError(t, err)

	refreshToken, err := xcontext.TokenEngine(ctx).Generate(time.Minute, refreshTokenObj)
	require.NoError(t, err)

	// Successfully for the first refresh.
	resp, err := domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	require.NoError(t, err)
	require.NotEqual(t, refreshToken, resp.Session.RefreshToken)

	// Verify access token.
	accessToken := model.AccessToken{}
	err = xcontext.TokenEngine(ctx).Verify(resp.Session.AccessToken, &accessToken)
	require.NoError(t, err)
	require.Equal(t, testutil.Profile1.ID, accessToken.ID)

	// Detect stolen for the second refresh, the refresh token will be deleted after this call.
	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	require.Equal(t, errorx.StolenDectected, errorx.CodeOf(err))

	// The rotated token belongs to the revoked family too.
	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: resp.Session.RefreshToken})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
}

func Test_authDomain_Refresh_Expired(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestAuthDomain(testutil.NewMockRedisClient())

	err := domain.refreshTokenRepo.Create(ctx, &entity.RefreshToken{
		UserID:     testutil.Profile1.ID,
		Family:     crypto.SHA256([]byte("Bar")),
		Expiration: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	refreshToken, err := xcontext.TokenEngine(ctx).Generate(time.Minute, model.RefreshToken{Family: "Bar"})
	require.NoError(t, err)

	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	require.Equal(t, errorx.TokenExpired, errorx.CodeOf(err))

	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: "invalid"})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
}

func Test_authDomain_SignOut(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMockRedisClient()
	domain := newTestAuthDomain(redisClient)
	resp := signUp(t, ctx, domain, "eve@mediashare.app", "Eve")

	_, err := domain.SignOut(ctx, &model.SignOutRequest{})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))

	var accessToken model.AccessToken
	info, err := xcontext.TokenEngine(ctx).VerifyInfo(resp.Session.AccessToken, &accessToken)
	require.NoError(t, err)

	userCtx := xcontext.WithRequestUserID(ctx, accessToken.ID)
	userCtx = xcontext.WithRequestToken(userCtx, info)

	_, err = domain.SignOut(userCtx, &model.SignOutRequest{RefreshToken: resp.Session.RefreshToken})
	require.NoError(t, err)

	revoked, err := redisClient.Exist(ctx, common.RedisKeyRevokedToken(info.ID))
	require.NoError(t, err)
	require.True(t, revoked)
	require.LessOrEqual(t, redisClient.TTL(common.RedisKeyRevokedToken(info.ID)), time.Minute)

	// The refresh token family is gone.
	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: resp.Session.RefreshToken})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
}

func Test_authDomain_GetSession(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertProfiles(ctx)
	domain := newTestAuthDomain(testutil.NewMockRedisClient())

	_, err := domain.GetSession(ctx, &model.GetSessionRequest{})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))

	expiresAt := time.Now().Add(time.Minute)
	userCtx := xcontext.WithRequestUserID(ctx, testutil.Profile2.ID)
	userCtx = xcontext.WithRequestToken(userCtx, authenticator.TokenInfo{ID: "jti", ExpiresAt: expiresAt})

	resp, err := domain.GetSession(userCtx, &model.GetSessionRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.Profile2.ID, resp.User.ID)
	require.Equal(t, testutil.Profile2.Email, resp.User.Email)
	require.Equal(t, expiresAt, resp.ExpiresAt)

	_, err = domain.GetSession(xcontext.WithRequestUserID(ctx, "ghost"), &model.GetSessionRequest{})
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
}
