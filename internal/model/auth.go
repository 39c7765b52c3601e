package model

import (
	"net/http"
	"time"
)

// Access Token and Refresh Token
type AccessToken struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type RefreshToken struct {
	Family  string `json:"family"`
	Counter uint64 `json:"counter"`
}

// Sign up
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"account_type" validate:"omitempty,oneof=creator member"`
}

type SignUpResponse struct {
	Session Session `json:"session"`
	Profile Profile `json:"profile"`
}

func (r SignUpResponse) CookieInfo() []http.Cookie {
	return sessionCookies(r.Session)
}

func (r SignUpResponse) SessionInfo() map[string]any {
	return sessionInfo(r.Session)
}

// Sign in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	Session Session `json:"session"`
}

func (r SignInResponse) CookieInfo() []http.Cookie {
	return sessionCookies(r.Session)
}

func (r SignInResponse) SessionInfo() map[string]any {
	return sessionInfo(r.Session)
}

// Refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	Session Session `json:"session"`
}

func (r RefreshTokenResponse) CookieInfo() []http.Cookie {
	return sessionCookies(r.Session)
}

func (r RefreshTokenResponse) SessionInfo() map[string]any {
	return sessionInfo(r.Session)
}

// Sign out
type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutResponse struct{}

// Get session
type GetSessionRequest struct{}

type GetSessionResponse struct {
	User      AuthUser  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccessTokenCookieName is the cookie carrying the access token for browser
// clients.
const AccessTokenCookieName = "access_token"

func sessionCookies(session Session) []http.Cookie {
	return []http.Cookie{
		{
			Name:     AccessTokenCookieName,
			Value:    session.AccessToken,
			Path:     "/",
			Expires:  session.ExpiresAt,
			Secure:   true,
			HttpOnly: true,
		},
	}
}

// SessionUserIDKey is the cookie session value holding the signed in user.
const SessionUserIDKey = "user_id"

func sessionInfo(session Session) map[string]any {
	return map[string]any{SessionUserIDKey: session.User.ID}
}
