package testutil

import (
	"context"
	"time"

	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/logger"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env:      "test",
		LogLevel: "debug",
		ApiServer: config.APIServerConfigs{
			DefaultLimit: 100,
			MaxLimit:     500,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			NonceTTL:     time.Minute,
			AdminWallets: []string{AdminWallet},
		},
		Lifecycle: config.LifecycleConfigs{
			MaxDaysActive: 5,
			PresaleReseed: 1200,
			PresaleWindow: 24 * time.Hour,
			BuilderXP:     10,
		},
		Voting: config.VotingConfigs{
			BaseAllowance: 10,
		},
		Leaderboard: config.LeaderboardConfigs{
			DailyTTL:   2 * time.Minute,
			WeeklyTTL:  5 * time.Minute,
			MonthlyTTL: 10 * time.Minute,
			AllTimeTTL: 15 * time.Minute,
		},
		Stream: config.StreamConfigs{
			HeartbeatInterval: 30 * time.Second,
			IdleTimeout:       5 * time.Minute,
		},
		Webhook: config.WebhookConfigs{
			Secret:     WebhookSecret,
			RateLimit:  100,
			RateWindow: time.Minute,
		},
		Eth: config.EthConfigs{
			Chain:               "base",
			TokenAddress:        "0x00000000000000000000000000000000000077f0",
			BalanceTTLSeconds:   60,
			PollIntervalSeconds: 12,
			StartBlockOffset:    10,
		},
	}
}

// MockContext returns a context with a fresh in-memory database. Every call
// gets its own database.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Each connection of an in-memory sqlite has its own database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(wallet string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), wallet)
}
