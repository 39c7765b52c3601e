package session

import (
	"context"

	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

type ProfileLoader struct {
	store ProfileStore
}

func NewProfileLoader(store ProfileStore) *ProfileLoader {
	return &ProfileLoader{store: store}
}

// Load builds the user view of the profile id merged with the session email.
// It returns nil when the profile is absent or cannot be read. Errors are only
// logged.
func (l *ProfileLoader) Load(ctx context.Context, id, email string) *model.User {
	profile, err := l.store.GetProfile(ctx, id)
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			xcontext.Logger(ctx).Warnf("Profile of %s is not found", id)
		} else {
			xcontext.Logger(ctx).Errorf("Cannot load profile of %s: %v", id, err)
		}

		return nil
	}

	if profile == nil {
		xcontext.Logger(ctx).Warnf("Profile of %s is not found", id)
		return nil
	}

	return model.NewUser(*profile, email)
}
