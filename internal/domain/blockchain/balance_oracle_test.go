package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func wholeTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func Test_balanceOracle_GetBalance(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := &testutil.MockRedisClient{}

	calls := 0
	client := &testutil.MockEthClient{
		ERC20BalanceOfFunc: func(ctx context.Context, token, account string) (*big.Int, error) {
			calls++
			return wholeTokens(25_000_000), nil
		},
	}

	oracle := NewBalanceOracle(client, redisClient)
	require.Equal(t, uint64(25_000_000), oracle.GetBalance(ctx, testutil.Wallet1))
	require.Equal(t, uint64(25_000_000), oracle.GetBalance(ctx, testutil.Wallet1))
	require.Equal(t, 1, calls)

	last, err := redisClient.Get(ctx, common.RedisKeyLastBalance(testutil.Wallet1))
	require.NoError(t, err)
	require.Equal(t, "25000000", last)
}

func Test_balanceOracle_Fallback(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Eth.FallbackBalances = map[string]uint64{testutil.Wallet2: 1_000_000}
	ctx = xcontext.WithConfigs(ctx, cfg)

	redisClient := &testutil.MockRedisClient{}
	require.NoError(t, redisClient.Set(ctx, common.RedisKeyLastBalance(testutil.Wallet1), "42", 0))

	client := &testutil.MockEthClient{
		ERC20BalanceOfFunc: func(ctx context.Context, token, account string) (*big.Int, error) {
			return nil, errors.New("rpc down")
		},
	}

	oracle := NewBalanceOracle(client, redisClient)
	require.Equal(t, uint64(42), oracle.GetBalance(ctx, testutil.Wallet1))
	require.Equal(t, uint64(1_000_000), oracle.GetBalance(ctx, testutil.Wallet2))
	require.Equal(t, uint64(0), oracle.GetBalance(ctx, testutil.Wallet3))

	// Without a client only fallbacks are served.
	oracle = NewBalanceOracle(nil, redisClient)
	require.Equal(t, uint64(1_000_000), oracle.GetBalance(ctx, testutil.Wallet2))
}

func Test_balanceOracle_DecimalsRetried(t *testing.T) {
	ctx := testutil.MockContext()

	fail := true
	client := &testutil.MockEthClient{
		ERC20DecimalsFunc: func(ctx context.Context, token string) (uint8, error) {
			if fail {
				return 0, errors.New("timeout")
			}
			return 6, nil
		},
		ERC20BalanceOfFunc: func(ctx context.Context, token, account string) (*big.Int, error) {
			return big.NewInt(3_000_000), nil
		},
	}

	oracle := NewBalanceOracle(client, &testutil.MockRedisClient{})
	require.Equal(t, uint64(0), oracle.GetBalance(ctx, testutil.Wallet1))

	fail = false
	require.Equal(t, uint64(3), oracle.GetBalance(ctx, testutil.Wallet1))
}
