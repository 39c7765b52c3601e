package migration

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mediashare/backend/internal/entity"
	"github.com/mediashare/backend/pkg/logger"
	"github.com/mediashare/backend/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

type migrateLogger struct {
	logger logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}

// Migrate brings the database schema up to date. MySQL databases run the
// embedded sql migrations, sqlite databases are auto migrated from the
// entities.
func Migrate(ctx context.Context) error {
	cfg := xcontext.Configs(ctx).Database
	if cfg.Driver == "sqlite" {
		return entity.MigrateTable(ctx)
	}

	m, err := newMigrate(cfg.MigrationURL())
	if err != nil {
		return err
	}
	defer m.Close()

	m.Log = migrateLogger{logger: xcontext.Logger(ctx)}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	xcontext.Logger(ctx).Infof("Database schema is at version %d (dirty=%t)", version, dirty)
	return nil
}

// Rollback reverts the last applied mysql migration.
func Rollback(ctx context.Context) error {
	cfg := xcontext.Configs(ctx).Database
	if cfg.Driver == "sqlite" {
		return errors.New("rollback is not supported by the sqlite driver")
	}

	m, err := newMigrate(cfg.MigrationURL())
	if err != nil {
		return err
	}
	defer m.Close()

	m.Log = migrateLogger{logger: xcontext.Logger(ctx)}
	return m.Steps(-1)
}

func newMigrate(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(mysqlFS, "mysql")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithSourceInstance("iofs", source, databaseURL)
}
