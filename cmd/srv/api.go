package main

import (
	"context"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/internal/domain/stream"
	"github.com/wtfpad/backend/internal/middleware"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(cctx *cli.Context) error {
	defer s.close()

	// The hub only needs the leaderboard, which needs the repositories. Events
	// reach it through the local publisher, or through kafka.
	var hub *stream.Hub
	if err := s.setup(func(ctx context.Context, pack *pubsub.Pack, t time.Time) {
		hub.HandleEvent(ctx, pack, t)
	}); err != nil {
		return err
	}

	withWatcher := cctx.Bool("watcher")
	if err := s.loadEthClient(withWatcher); err != nil {
		return err
	}

	s.loadDomains()
	hub = stream.NewHub(s.leaderboard)
	s.hub = hub

	if err := s.loadSubscriber(hub.HandleEvent); err != nil {
		return err
	}

	if withWatcher {
		if err := s.loadMintWatcher(); err != nil {
			return err
		}
	}

	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	apiServer := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.hub.Start(ctx)
		return nil
	})

	for _, fn := range s.background {
		fn := fn
		g.Go(func() error {
			fn(ctx)
			return nil
		})
	}

	if s.subscriber != nil {
		g.Go(func() error {
			s.subscriber.Subscribe(ctx)
			return s.subscriber.Stop(ctx)
		})
	}

	if s.mintWatcher != nil {
		g.Go(func() error {
			s.startMintWatcher(ctx)
			return nil
		})
	}

	g.Go(func() error {
		xcontext.Logger(ctx).Infof("Started prometheus server at %s", cfg.PrometheusServer.Address())
		return serveHTTP(ctx, s.prometheusServer())
	})

	g.Go(func() error {
		xcontext.Logger(ctx).Infof("Starting api server on %s", cfg.ApiServer.Address())
		return serveHTTP(ctx, apiServer)
	})

	return g.Wait()
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx))
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger(), middleware.Prometheus())

	authVerifier := middleware.NewAuthVerifier(s.tokenEngine)
	s.router.Before(authVerifier.Middleware())

	// Wallet auth.
	{
		router.GET(s.router, "/getNonce", s.authDomain.GetNonce)

		tokenRouter := s.router.Branch()
		tokenRouter.After(middleware.HandleSetAccessToken())
		router.POST(tokenRouter, "/verifyWallet", s.authDomain.VerifyWallet)
	}

	// Anonymous users may read and submit.
	{
		router.POST(s.router, "/submitProject", s.projectDomain.Submit)
		router.GET(s.router, "/getActiveProjects", s.projectDomain.GetActiveProjects)
		router.GET(s.router, "/getSubmissions", s.projectDomain.GetSubmissions)
		router.GET(s.router, "/getArchivedProjects", s.projectDomain.GetArchivedProjects)
		router.GET(s.router, "/getCurrentWinner", s.projectDomain.GetCurrentWinner)
		router.GET(s.router, "/getProject", s.projectDomain.GetProject)

		router.GET(s.router, "/getLeaderboard", s.xpDomain.GetLeaderboard)
		router.GET(s.router, "/getRank", s.xpDomain.GetRank)
		router.GET(s.router, "/getXPAccount", s.xpDomain.GetXPAccount)
		router.GET(s.router, "/getTier", s.xpDomain.GetTier)
		router.GET(s.router, "/getRemainingVotes", s.voteDomain.GetRemainingVotes)

		router.Stream(s.router, "/streamLeaderboard", s.hub.Serve)
	}

	// Authenticated wallets.
	{
		authRouter := s.router.Branch()
		authRouter.Before(middleware.Authenticate())
		router.POST(authRouter, "/castVote", s.voteDomain.CastVote)
		router.POST(authRouter, "/recordMint", s.presaleDomain.RecordMint)
	}

	// Indexer callbacks, signed with the webhook secret.
	{
		rateLimiter := middleware.NewRateLimiter(cfg.Webhook.RateLimit, cfg.Webhook.RateWindow)

		webhookRouter := s.router.Branch()
		webhookRouter.Before(rateLimiter.Middleware(), middleware.VerifyWebhookSignature())
		router.POST(webhookRouter, "/webhooks/presaleMint", s.webhookDomain.RecordWebhookMint)
	}

	// Operators.
	{
		adminRouter := s.router.Branch()
		adminRouter.Before(middleware.Authenticate(), middleware.OnlyAdmin())
		router.POST(adminRouter, "/admin/runDailyRotation", s.lifecycleDomain.RunDailyRotation)
		router.POST(adminRouter, "/admin/checkInvariants", s.lifecycleDomain.CheckInvariants)
		router.GET(adminRouter, "/admin/getWatcherStatus", s.watcherDomain.GetWatcherStatus)
		router.POST(adminRouter, "/admin/processRecentBlocks", s.watcherDomain.ProcessRecentBlocks)
		router.GET(adminRouter, "/admin/getTrackedContracts", s.watcherDomain.GetTrackedContracts)
	}
}
