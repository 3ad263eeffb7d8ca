package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain"
	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/domain/statistic"
	"github.com/wtfpad/backend/internal/domain/stream"
	"github.com/wtfpad/backend/internal/domain/tier"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/authenticator"
	"github.com/wtfpad/backend/pkg/idutil"
	"github.com/wtfpad/backend/pkg/kafka"
	"github.com/wtfpad/backend/pkg/logger"
	"github.com/wtfpad/backend/pkg/prometheus"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
	"github.com/wtfpad/backend/pkg/xredis"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber
	ethClient   blockchain.EthClient
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	tiers       *tier.Table
	lock        *common.RegistryLock
	closers     []func()
	background  []func(context.Context)

	projectRepo   repository.ProjectRepository
	winnerRepo    repository.WinningProjectRepository
	allowanceRepo repository.VoteAllowanceRepository
	rotationRepo  repository.RotationRepository
	xpRepo        repository.XPRepository
	contractRepo  repository.TrackedContractRepository
	mintEventRepo repository.MintEventRepository

	leaderboard   statistic.Leaderboard
	balanceOracle blockchain.BalanceOracle
	mintWatcher   *blockchain.MintWatcher
	hub           *stream.Hub

	xpDomain        domain.XPDomain
	projectDomain   domain.ProjectDomain
	voteDomain      domain.VoteDomain
	presaleDomain   domain.PresaleDomain
	lifecycleDomain domain.LifecycleDomain
	authDomain      domain.AuthDomain
	watcherDomain   domain.WatcherDomain
	webhookDomain   domain.MintWebhookDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := idutil.Init(cctx.Int64("node-id")); err != nil {
		return fmt.Errorf("cannot init id generator: %w", err)
	}

	var log logger.Logger
	if cfg.IsDevelopment() {
		log = logger.NewLogger(logger.ParseLevel(cfg.LogLevel))
	} else {
		log = logger.NewJSONLogger(logger.ParseLevel(cfg.LogLevel))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s.closers = append(s.closers, stop)
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, log)
	s.ctx = ctx
	s.lock = common.NewRegistryLock()

	return nil
}

func (s *srv) loadDatabase() error {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.ConnectionString())
	case "sqlite":
		dialector = sqlite.Open(cfg.SqlitePath)
	default:
		return fmt.Errorf("unsupported database driver %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("cannot connect database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite has a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) migrateDB() error {
	if err := entity.MigrateTable(s.ctx); err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}

	return nil
}

func (s *srv) loadRedisClient() error {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return fmt.Errorf("cannot connect redis: %w", err)
	}

	s.redisClient = client
	s.closers = append(s.closers, func() { client.Close() })
	return nil
}

func (s *srv) loadRepos() {
	s.projectRepo = repository.NewProjectRepository()
	s.winnerRepo = repository.NewWinningProjectRepository()
	s.allowanceRepo = repository.NewVoteAllowanceRepository()
	s.rotationRepo = repository.NewRotationRepository()
	s.xpRepo = repository.NewXPRepository()
	s.contractRepo = repository.NewTrackedContractRepository()
	s.mintEventRepo = repository.NewMintEventRepository()
}

func (s *srv) loadTiers() error {
	tiers, err := tier.LoadTable(xcontext.Configs(s.ctx).Tiers)
	if err != nil {
		return fmt.Errorf("invalid tier table: %w", err)
	}

	s.tiers = tiers
	return nil
}

// loadEthClient leaves ethClient nil when no rpc is reachable and required is
// false. Balances then come from the cache and the configured fallback.
func (s *srv) loadEthClient(required bool) error {
	client, err := blockchain.NewEthClient(s.ctx, xcontext.Configs(s.ctx).Eth)
	if err != nil {
		if required {
			return err
		}

		xcontext.Logger(s.ctx).Warnf("Run without chain access: %v", err)
		return nil
	}

	s.ethClient = client
	s.closers = append(s.closers, client.Close)
	s.background = append(s.background, client.Start)
	return nil
}

// loadPublisher publishes to kafka when it is configured. Otherwise events go
// straight to local, or are dropped when local is nil.
func (s *srv) loadPublisher(local pubsub.SubscribeHandler) error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		if local != nil {
			s.publisher = pubsub.NewLocalPublisher(local)
		} else {
			s.publisher = pubsub.NewNopPublisher()
		}
		return nil
	}

	publisher, err := kafka.NewPublisher(uuid.NewString(), []string{cfg.Addr})
	if err != nil {
		return fmt.Errorf("cannot connect kafka: %w", err)
	}

	s.publisher = publisher
	s.closers = append(s.closers, func() { publisher.Stop(s.ctx) })
	return nil
}

func (s *srv) loadSubscriber(handler pubsub.SubscribeHandler) error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		return nil
	}

	// Every api instance serves its own stream clients, so each one needs all
	// events.
	groupID := fmt.Sprintf("%s-%s", cfg.GroupID, uuid.NewString())
	subscriber, err := kafka.NewSubscriber(
		groupID,
		[]string{cfg.Addr},
		[]string{common.TopicXPAwarded, common.TopicRotationCompleted},
		handler,
	)
	if err != nil {
		return fmt.Errorf("cannot subscribe kafka: %w", err)
	}

	s.subscriber = subscriber
	return nil
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	s.leaderboard = statistic.New(s.xpRepo, s.redisClient)
	s.balanceOracle = blockchain.NewBalanceOracle(s.ethClient, s.redisClient)
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken)

	xpDomain := domain.NewXPDomain(s.xpRepo, s.leaderboard, s.balanceOracle, s.tiers, s.publisher)
	s.xpDomain = xpDomain
	s.projectDomain = domain.NewProjectDomain(s.projectRepo, s.winnerRepo, xpDomain, s.lock)
	s.voteDomain = domain.NewVoteDomain(s.projectRepo, s.allowanceRepo, xpDomain, s.balanceOracle, s.tiers, s.lock)
	s.presaleDomain = domain.NewPresaleDomain(s.winnerRepo, xpDomain, s.lock)
	s.lifecycleDomain = domain.NewLifecycleDomain(
		s.projectRepo, s.winnerRepo, s.allowanceRepo, s.rotationRepo, s.xpRepo, s.publisher, s.lock)
	s.authDomain = domain.NewAuthDomain(s.redisClient, s.tokenEngine)
	s.watcherDomain = domain.NewWatcherDomain(s.mintWatcher, s.contractRepo)
	s.webhookDomain = domain.NewMintWebhookDomain(s.mintEventRepo, s.presaleDomain)
}

// loadMintWatcher needs the eth client and the presale domain.
func (s *srv) loadMintWatcher() error {
	s.mintWatcher = blockchain.NewMintWatcher(s.ethClient, s.contractRepo, s.mintEventRepo, s.presaleDomain)
	s.watcherDomain = domain.NewWatcherDomain(s.mintWatcher, s.contractRepo)

	return s.mintWatcher.SyncContracts(s.ctx, xcontext.Configs(s.ctx).Eth.Contracts)
}

// setup loads everything the domains need, in order.
func (s *srv) setup(local pubsub.SubscribeHandler) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	if err := s.loadTiers(); err != nil {
		return err
	}

	if err := s.loadPublisher(local); err != nil {
		return err
	}

	s.loadRepos()
	return nil
}

func (s *srv) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// serveHTTP runs server until ctx is done, then shuts it down.
func serveHTTP(ctx context.Context, server *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *srv) prometheusServer() *http.Server {
	return &http.Server{
		Addr:    xcontext.Configs(s.ctx).PrometheusServer.Address(),
		Handler: prometheus.NewHandler(),
	}
}
