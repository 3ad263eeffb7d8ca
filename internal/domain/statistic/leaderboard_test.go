package statistic

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/testutil"
)

func wallets(entries []model.LeaderboardEntry) []string {
	result := []string{}
	for _, e := range entries {
		result = append(result, e.Wallet)
	}
	return result
}

func Test_leaderboard_AllTime(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := New(repository.NewXPRepository(), &testutil.MockRedisClient{})

	entries, err := l.GetLeaderboard(ctx, model.SortByTotalXP, model.AllTime, 0)
	require.NoError(t, err)
	require.Equal(t, []string{
		testutil.Wallet1, testutil.Wallet2, testutil.Wallet3, testutil.Wallet4, testutil.Wallet5,
	}, wallets(entries))
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, int64(127), entries[0].TotalXP)

	entries, err = l.GetLeaderboard(ctx, model.SortByBuilderXP, model.AllTime, 3)
	require.NoError(t, err)
	// Wallet2 and Wallet3 tie on builder XP and keep creation order.
	require.Equal(t, []string{testutil.Wallet1, testutil.Wallet2, testutil.Wallet3}, wallets(entries))
}

func Test_leaderboard_Windows(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := New(repository.NewXPRepository(), &testutil.MockRedisClient{})

	testCases := []struct {
		timeframe model.Timeframe
		want      []string
		top       int64
	}{
		{model.Daily, []string{testutil.Wallet1, testutil.Wallet2, testutil.Wallet3, testutil.Wallet4}, 42},
		{model.Weekly, []string{testutil.Wallet1, testutil.Wallet4, testutil.Wallet2, testutil.Wallet3}, 107},
		{model.Monthly, []string{testutil.Wallet1, testutil.Wallet2, testutil.Wallet3, testutil.Wallet4}, 107},
	}

	for _, tt := range testCases {
		t.Run(string(tt.timeframe), func(t *testing.T) {
			entries, err := l.GetLeaderboard(ctx, model.SortByTotalXP, tt.timeframe, 0)
			require.NoError(t, err)
			require.Equal(t, tt.want, wallets(entries))
			require.Equal(t, tt.top, entries[0].TotalXP)
		})
	}
}

func Test_leaderboard_StableTies(t *testing.T) {
	ctx := testutil.MockContext()
	xpRepo := repository.NewXPRepository()
	for i, w := range []string{testutil.Wallet3, testutil.Wallet1, testutil.Wallet2} {
		require.NoError(t, xpRepo.CreateAccountIfNotExists(ctx, &entity.XPAccount{
			Wallet: w, VoteXP: 5, TotalXP: 5, Seq: int64(i + 1),
		}))
	}

	l := New(xpRepo, &testutil.MockRedisClient{})
	entries, err := l.GetLeaderboard(ctx, model.SortByVoteXP, model.AllTime, 0)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Wallet3, testutil.Wallet1, testutil.Wallet2}, wallets(entries))
}

func Test_leaderboard_GetRank(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := New(repository.NewXPRepository(), &testutil.MockRedisClient{})

	rank, err := l.GetRank(ctx, testutil.Wallet4, model.SortByTotalXP, model.Weekly)
	require.NoError(t, err)
	require.Equal(t, 2, rank)

	rank, err = l.GetRank(ctx, testutil.Wallet5, model.SortByTotalXP, model.Daily)
	require.NoError(t, err)
	require.Equal(t, 0, rank)
}

func Test_leaderboard_CacheAndInvalidate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var ttls []time.Duration
	redisClient := &testutil.MockRedisClient{}
	redisClient.SetObjFunc = func(ctx context.Context, key string, obj any, ttl time.Duration) error {
		ttls = append(ttls, ttl)
		b, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		return redisClient.Set(ctx, key, string(b), ttl)
	}

	xpRepo := repository.NewXPRepository()
	l := New(xpRepo, redisClient)

	_, err := l.GetLeaderboard(ctx, model.SortByTotalXP, model.Daily, 0)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{2 * time.Minute}, ttls)

	exist, err := redisClient.Exist(ctx, common.RedisKeyLeaderboard("totalXP", "daily"))
	require.NoError(t, err)
	require.True(t, exist)

	// A cached board does not see new XP until it is invalidated.
	require.NoError(t, xpRepo.IncreaseXP(ctx, testutil.Wallet5, entity.XPVote, 500))
	entries, err := l.GetLeaderboard(ctx, model.SortByTotalXP, model.AllTime, 1)
	require.NoError(t, err)
	require.Equal(t, testutil.Wallet5, entries[0].Wallet)

	_, err = l.GetLeaderboard(ctx, model.SortByTotalXP, model.AllTime, 1)
	require.NoError(t, err)

	require.NoError(t, xpRepo.IncreaseXP(ctx, testutil.Wallet4, entity.XPVote, 1000))
	entries, err = l.GetLeaderboard(ctx, model.SortByTotalXP, model.AllTime, 1)
	require.NoError(t, err)
	require.Equal(t, testutil.Wallet5, entries[0].Wallet)

	l.Invalidate(ctx)
	entries, err = l.GetLeaderboard(ctx, model.SortByTotalXP, model.AllTime, 1)
	require.NoError(t, err)
	require.Equal(t, testutil.Wallet4, entries[0].Wallet)
}
