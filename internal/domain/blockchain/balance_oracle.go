package blockchain

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"sync"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/pkg/xcontext"
	"github.com/wtfpad/backend/pkg/xredis"
)

var (
	errNoClient = errors.New("no eth client")
	errNoToken  = errors.New("no token address configured")
)

// BalanceOracle reports the whole-token WTF balance of a wallet. It never
// fails: when the chain cannot be read it degrades to the last known balance,
// then to the configured fallback, then to zero.
type BalanceOracle interface {
	GetBalance(ctx context.Context, wallet string) uint64
}

type balanceOracle struct {
	client      EthClient
	redisClient xredis.Client

	mutex   sync.Mutex
	divisor *big.Int
}

// NewBalanceOracle accepts a nil client, in which case only fallbacks are
// served.
func NewBalanceOracle(client EthClient, redisClient xredis.Client) *balanceOracle {
	return &balanceOracle{client: client, redisClient: redisClient}
}

func (o *balanceOracle) GetBalance(ctx context.Context, wallet string) uint64 {
	if cached, err := o.redisClient.Get(ctx, common.RedisKeyBalance(wallet)); err == nil {
		if balance, err := strconv.ParseUint(cached, 10, 64); err == nil {
			return balance
		}
	}

	balance, err := o.readChain(ctx, wallet)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read balance of %s: %v", wallet, err)
		return o.fallback(ctx, wallet)
	}

	value := strconv.FormatUint(balance, 10)
	ttl := xcontext.Configs(ctx).Eth.BalanceTTL()
	if err := o.redisClient.Set(ctx, common.RedisKeyBalance(wallet), value, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache balance of %s: %v", wallet, err)
	}

	if err := o.redisClient.Set(ctx, common.RedisKeyLastBalance(wallet), value, 0); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot store last balance of %s: %v", wallet, err)
	}

	return balance
}

func (o *balanceOracle) readChain(ctx context.Context, wallet string) (uint64, error) {
	if o.client == nil {
		return 0, errNoClient
	}

	token := xcontext.Configs(ctx).Eth.TokenAddress
	if token == "" {
		return 0, errNoToken
	}

	divisor, err := o.getDivisor(ctx, token)
	if err != nil {
		return 0, err
	}

	raw, err := o.client.ERC20BalanceOf(ctx, token, wallet)
	if err != nil {
		return 0, err
	}

	whole := new(big.Int).Quo(raw, divisor)
	if !whole.IsUint64() {
		return ^uint64(0), nil
	}

	return whole.Uint64(), nil
}

// getDivisor reads the token decimals once. A failed read is retried on the
// next call.
func (o *balanceOracle) getDivisor(ctx context.Context, token string) (*big.Int, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.divisor != nil {
		return o.divisor, nil
	}

	decimals, err := o.client.ERC20Decimals(ctx, token)
	if err != nil {
		return nil, err
	}

	o.divisor = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return o.divisor, nil
}

func (o *balanceOracle) fallback(ctx context.Context, wallet string) uint64 {
	if last, err := o.redisClient.Get(ctx, common.RedisKeyLastBalance(wallet)); err == nil {
		if balance, err := strconv.ParseUint(last, 10, 64); err == nil {
			return balance
		}
	}

	if balance, ok := xcontext.Configs(ctx).Eth.FallbackBalances[wallet]; ok {
		return balance
	}

	return 0
}
