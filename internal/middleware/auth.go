package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/router"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/mediashare/backend/pkg/xredis"
)

func Authenticate(ctx context.Context) (context.Context, error) {
	if xcontext.RequestUserID(ctx) == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	return nil, nil
}

// AuthVerifier identifies the requester by the access token in the
// Authorization header or in the access token cookie.
type AuthVerifier struct {
	useAccessToken bool
	optional       bool
	redisClient    xredis.Client
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

// WithDenylist rejects access tokens revoked by a sign out.
func (a *AuthVerifier) WithDenylist(redisClient xredis.Client) *AuthVerifier {
	a.redisClient = redisClient
	return a
}

// WithOptional lets requests without any token pass anonymously. A token
// which is given must still be valid.
func (a *AuthVerifier) WithOptional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if a.useAccessToken {
			token := getAccessToken(xcontext.HTTPRequest(ctx))
			if token != "" {
				return a.verifyAccessToken(ctx, token)
			}
		}

		if a.optional {
			return nil, nil
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func (a *AuthVerifier) verifyAccessToken(ctx context.Context, token string) (context.Context, error) {
	var accessToken model.AccessToken
	info, err := xcontext.TokenEngine(ctx).VerifyInfo(token, &accessToken)
	if err != nil {
		if errors.Is(err, authenticator.ErrTokenExpired) {
			return nil, errorx.New(errorx.TokenExpired, "Your access token is expired")
		}

		xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	if a.redisClient != nil && info.ID != "" {
		revoked, err := a.redisClient.Exist(ctx, common.RedisKeyRevokedToken(info.ID))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check revoked access token: %v", err)
			return nil, errorx.Unknown
		}

		if revoked {
			return nil, errorx.New(errorx.Unauthenticated, "Your access token has been revoked")
		}
	}

	ctx = xcontext.WithRequestUserID(ctx, accessToken.ID)
	ctx = xcontext.WithRequestToken(ctx, info)
	return ctx, nil
}

func getAccessToken(req *http.Request) string {
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	cookie, err := req.Cookie(model.AccessTokenCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}
