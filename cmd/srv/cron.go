package main

import (
	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/internal/domain/cron"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func (s *srv) startCron(*cli.Context) error {
	defer s.close()

	if err := s.setup(nil); err != nil {
		return err
	}

	if err := s.loadEthClient(false); err != nil {
		return err
	}

	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewDailyRotationCronJob(s.lifecycleDomain))
	cronJobManager.Register(cron.NewInvariantCheckCronJob(s.lifecycleDomain))

	xcontext.Logger(s.ctx).Infof("Cron started")
	cronJobManager.Start(s.ctx)
	xcontext.Logger(s.ctx).Infof("Cron stopped")

	return nil
}
