package statistic

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/xcontext"
	"github.com/wtfpad/backend/pkg/xredis"
)

type Leaderboard interface {
	// GetLeaderboard returns at most limit entries, all of them when limit is
	// not positive.
	GetLeaderboard(
		ctx context.Context,
		sortKey model.SortKey,
		timeframe model.Timeframe,
		limit int,
	) ([]model.LeaderboardEntry, error)

	// GetRank returns the 1-based rank of wallet, or 0 when it is not ranked.
	GetRank(
		ctx context.Context,
		wallet string,
		sortKey model.SortKey,
		timeframe model.Timeframe,
	) (int, error)

	Invalidate(ctx context.Context)
}

type leaderboard struct {
	xpRepo      repository.XPRepository
	redisClient xredis.Client
}

func New(xpRepo repository.XPRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{xpRepo: xpRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context,
	sortKey model.SortKey,
	timeframe model.Timeframe,
	limit int,
) ([]model.LeaderboardEntry, error) {
	entries, err := l.load(ctx, sortKey, timeframe)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (l *leaderboard) GetRank(
	ctx context.Context,
	wallet string,
	sortKey model.SortKey,
	timeframe model.Timeframe,
) (int, error) {
	entries, err := l.load(ctx, sortKey, timeframe)
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		if e.Wallet == wallet {
			return e.Rank, nil
		}
	}

	return 0, nil
}

func (l *leaderboard) Invalidate(ctx context.Context) {
	keys, err := l.redisClient.Keys(ctx, common.RedisKeyLeaderboardPattern)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot list leaderboard keys: %v", err)
		return
	}

	if err := l.redisClient.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete leaderboard keys: %v", err)
	}
}

// load serves the whole ranked board from cache, computing it on a miss.
func (l *leaderboard) load(
	ctx context.Context, sortKey model.SortKey, timeframe model.Timeframe,
) ([]model.LeaderboardEntry, error) {
	key := common.RedisKeyLeaderboard(string(sortKey), string(timeframe))

	var entries []model.LeaderboardEntry
	err := l.redisClient.GetObj(ctx, key, &entries)
	if err == nil {
		return entries, nil
	}

	if !errors.Is(err, redis.Nil) {
		xcontext.Logger(ctx).Warnf("Cannot get leaderboard %s from cache: %v", key, err)
	}

	entries, err = l.compute(ctx, sortKey, timeframe)
	if err != nil {
		return nil, err
	}

	if err := l.redisClient.SetObj(ctx, key, entries, cacheTTL(ctx, timeframe)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache leaderboard %s: %v", key, err)
	}

	return entries, nil
}

func (l *leaderboard) compute(
	ctx context.Context, sortKey model.SortKey, timeframe model.Timeframe,
) ([]model.LeaderboardEntry, error) {
	// Accounts come in creation order, which is the tie order.
	accounts, err := l.xpRepo.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(accounts))
	if timeframe == model.AllTime {
		for _, a := range accounts {
			entries = append(entries, model.LeaderboardEntry{
				Wallet:    a.Wallet,
				VoteXP:    a.VoteXP,
				PresaleXP: a.PresaleXP,
				BuilderXP: a.BuilderXP,
				TotalXP:   a.TotalXP,
			})
		}
	} else {
		sums, err := l.xpRepo.SumSince(ctx, time.Now().Add(-window(timeframe)))
		if err != nil {
			return nil, err
		}

		windowed := map[string]*model.LeaderboardEntry{}
		for _, s := range sums {
			e, ok := windowed[s.Wallet]
			if !ok {
				e = &model.LeaderboardEntry{Wallet: s.Wallet}
				windowed[s.Wallet] = e
			}

			switch s.Type {
			case entity.XPVote:
				e.VoteXP += s.Total
			case entity.XPPresale:
				e.PresaleXP += s.Total
			case entity.XPBuilder:
				e.BuilderXP += s.Total
			}
			e.TotalXP += s.Total
		}

		for _, a := range accounts {
			if e, ok := windowed[a.Wallet]; ok {
				entries = append(entries, *e)
			}
		}
	}

	slices.SortStableFunc(entries, func(a, b model.LeaderboardEntry) int {
		return cmp.Compare(sortValue(b, sortKey), sortValue(a, sortKey))
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

func sortValue(e model.LeaderboardEntry, sortKey model.SortKey) int64 {
	switch sortKey {
	case model.SortByVoteXP:
		return e.VoteXP
	case model.SortByPresaleXP:
		return e.PresaleXP
	case model.SortByBuilderXP:
		return e.BuilderXP
	}

	return e.TotalXP
}
