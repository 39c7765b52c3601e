package session

import (
	"context"

	"github.com/mediashare/backend/internal/model"
)

type AuthEvent string

const (
	SignedIn           AuthEvent = "SIGNED_IN"
	TokenRefreshed     AuthEvent = "TOKEN_REFRESHED"
	TokenRefreshFailed AuthEvent = "TOKEN_REFRESH_FAILED"
	UserUpdated        AuthEvent = "USER_UPDATED"
	SignedOut          AuthEvent = "SIGNED_OUT"
	UserDeleted        AuthEvent = "USER_DELETED"
)

// AuthListener receives auth lifecycle events. The session is nil for events
// which end the session.
type AuthListener func(event AuthEvent, session *model.Session)

// Provider is the auth service boundary.
type Provider interface {
	// GetSession returns the current session, or nil if there is none.
	GetSession(ctx context.Context) (*model.Session, error)

	// OnAuthStateChange registers listener and returns the function which
	// unregisters it.
	OnAuthStateChange(listener AuthListener) func()

	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, req model.SignUpRequest) (*model.Session, error)
	SignOut(ctx context.Context) error
	UpdateUser(ctx context.Context, req model.UpdateProfileRequest) error
}

// ProfileStore reads profiles from the data store.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
}

// TokenCache is the locally persisted token artifact.
type TokenCache interface {
	Clear() error
}
