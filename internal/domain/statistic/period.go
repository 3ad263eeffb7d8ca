package statistic

import (
	"context"
	"time"

	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/xcontext"
)

// window returns how far back a timeframe looks. AllTime has no window.
func window(timeframe model.Timeframe) time.Duration {
	switch timeframe {
	case model.Daily:
		return 24 * time.Hour
	case model.Weekly:
		return 7 * 24 * time.Hour
	case model.Monthly:
		return 30 * 24 * time.Hour
	}

	return 0
}

func cacheTTL(ctx context.Context, timeframe model.Timeframe) time.Duration {
	cfg := xcontext.Configs(ctx).Leaderboard
	switch timeframe {
	case model.Daily:
		return cfg.DailyTTL
	case model.Weekly:
		return cfg.WeeklyTTL
	case model.Monthly:
		return cfg.MonthlyTTL
	}

	return cfg.AllTimeTTL
}
