package authenticator

import (
	"errors"
	"time"
)

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenInfo describes the registered claims of a verified token.
type TokenInfo struct {
	ID        string
	Subject   string
	ExpiresAt time.Time
}

type TokenEngine interface {
	// Generate signs obj into a token which expires after expiration.
	Generate(expiration time.Duration, obj any) (string, error)

	// Verify checks the token and decodes its object into obj. An expired
	// token returns ErrTokenExpired, any other failure ErrTokenInvalid.
	Verify(token string, obj any) error

	// VerifyInfo is Verify which also returns the registered claims.
	VerifyInfo(token string, obj any) (TokenInfo, error)
}
