package entity

import (
	"context"

	"github.com/mediashare/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Account{},
		&RefreshToken{},
		&Profile{},
		&MediaContent{},
		&MediaLike{},
		&CreatorFollow{},
	)
}
