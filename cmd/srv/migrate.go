package main

import (
	"github.com/mediashare/backend/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if cctx.Bool("down") {
		return migration.Rollback(s.ctx)
	}

	return migration.Migrate(s.ctx)
}
