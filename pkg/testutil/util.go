package testutil

import (
	"context"
	"time"

	"github.com/gorilla/sessions"
	"github.com/mediashare/backend/config"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/authenticator"
	"github.com/mediashare/backend/pkg/logger"
	"github.com/mediashare/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Auth.TokenSecret = "secret"
	cfg.Auth.AccessToken = config.TokenConfigs{Name: "access_token", Expiration: time.Minute}
	cfg.Auth.RefreshToken = config.TokenConfigs{Name: "refresh_token", Expiration: time.Hour}
	cfg.Auth.PasswordCost = 4
	cfg.Auth.MaxFailedAttempts = 3
	cfg.Auth.FailedAttemptWindow = time.Minute
	cfg.Session = config.SessionConfigs{Secret: "session-secret", Name: "mediashare"}
	cfg.Client.ProvisionAttempts = 3
	cfg.Client.ProvisionBaseDelay = time.Millisecond
	cfg.Notification.ReconnectAttempts = 3
	cfg.Notification.ReconnectBaseDelay = time.Millisecond
	cfg.Notification.ReconnectMaxDelay = 10 * time.Millisecond
	return cfg
}

// MockContext returns a context carrying an empty, migrated in-memory
// database and test configurations.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens a distinct database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := MockConfigs()

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSessionStore(ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
