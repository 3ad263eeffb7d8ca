package main

import (
	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func (s *srv) startMigrate(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated database")
	return nil
}
