package main

import (
	"fmt"
	"os"

	"github.com/schollz/sqlite3dump"
	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func (s *srv) startSeed(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	testutil.CreateFixtureDb(s.ctx)
	xcontext.Logger(s.ctx).Infof("Seeded demo registry")

	dumpPath := cctx.String("dump")
	if dumpPath == "" {
		return nil
	}

	if xcontext.Configs(s.ctx).Database.Driver != "sqlite" {
		return fmt.Errorf("dump needs the sqlite driver")
	}

	sqlDB, err := xcontext.DB(s.ctx).DB()
	if err != nil {
		return err
	}

	f, err := os.Create(dumpPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := sqlite3dump.DumpDB(sqlDB, f); err != nil {
		return fmt.Errorf("cannot dump database: %w", err)
	}

	xcontext.Logger(s.ctx).Infof("Dumped database to %s", dumpPath)
	return nil
}
