package main

import (
	"context"
	"sync"

	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/internal/domain/cron"
	"github.com/wtfpad/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startWatcher(*cli.Context) error {
	defer s.close()

	if err := s.setup(nil); err != nil {
		return err
	}

	if err := s.loadEthClient(true); err != nil {
		return err
	}

	s.loadDomains()
	if err := s.loadMintWatcher(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(s.ctx)
	for _, fn := range s.background {
		fn := fn
		g.Go(func() error {
			fn(ctx)
			return nil
		})
	}

	g.Go(func() error {
		s.startMintWatcher(ctx)
		return nil
	})

	g.Go(func() error {
		cfg := xcontext.Configs(ctx)
		xcontext.Logger(ctx).Infof("Started prometheus server at %s", cfg.PrometheusServer.Address())
		return serveHTTP(ctx, s.prometheusServer())
	})

	return g.Wait()
}

// startMintWatcher polls until ctx is done. Old mint events are cleaned up on
// the side.
func (s *srv) startMintWatcher(ctx context.Context) {
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewMintCleanupCronJob(s.mintWatcher))

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		cronJobManager.Start(ctx)
	}()

	xcontext.Logger(ctx).Infof("Mint watcher started")
	s.mintWatcher.Start(ctx)
	wg.Wait()
}
