package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/pkg/xcontext"
)

const (
	rpcTimeout           = 5 * time.Second
	healthCheckFrequency = time.Minute
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}

	return parsed
}

// A wrapper around ethclient so that oracle and watcher tests can mock it.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	ERC20BalanceOf(ctx context.Context, tokenAddress, accountAddress string) (*big.Int, error)
	ERC20Decimals(ctx context.Context, tokenAddress string) (uint8, error)
}

// defaultEthClient keeps one connection per configured RPC. Public RPCs are
// flaky, so a call falls through to the next healthy endpoint on failure.
type defaultEthClient struct {
	chain string

	mutex     sync.RWMutex
	rpcs      []string
	clients   []*ethclient.Client
	healthies []bool
}

func NewEthClient(ctx context.Context, cfg config.EthConfigs) (*defaultEthClient, error) {
	if len(cfg.Rpcs) == 0 {
		return nil, fmt.Errorf("no rpc configured for chain %s", cfg.Chain)
	}

	c := &defaultEthClient{chain: cfg.Chain}
	for _, rpc := range cfg.Rpcs {
		client, err := ethclient.DialContext(ctx, rpc)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", rpc, err)
			continue
		}

		c.rpcs = append(c.rpcs, rpc)
		c.clients = append(c.clients, client)
		c.healthies = append(c.healthies, true)
	}

	if len(c.clients) == 0 {
		return nil, fmt.Errorf("cannot connect to any rpc of chain %s", cfg.Chain)
	}

	return c, nil
}

// Start re-checks unhealthy endpoints until ctx is done.
func (c *defaultEthClient) Start(ctx context.Context) {
	ticker := time.NewTicker(healthCheckFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkHealth(ctx)
		}
	}
}

func (c *defaultEthClient) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, client := range c.clients {
		client.Close()
	}
}

func (c *defaultEthClient) checkHealth(ctx context.Context) {
	c.mutex.RLock()
	clients := c.clients
	c.mutex.RUnlock()

	healthies := make([]bool, len(clients))
	for i, client := range clients {
		callCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		_, err := client.BlockNumber(callCtx)
		cancel()

		healthies[i] = err == nil
		if err != nil {
			xcontext.Logger(ctx).Warnf("Rpc %s of chain %s is unhealthy: %v", c.rpcs[i], c.chain, err)
		}
	}

	c.mutex.Lock()
	c.healthies = healthies
	c.mutex.Unlock()
}

func (c *defaultEthClient) markUnhealthy(index int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.healthies[index] = false
}

// candidates returns the healthy client indexes in random order. When every
// endpoint is marked unhealthy, all of them are tried anyway.
func (c *defaultEthClient) candidates() []int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	healthy := []int{}
	all := []int{}
	for i, ok := range c.healthies {
		all = append(all, i)
		if ok {
			healthy = append(healthy, i)
		}
	}

	if len(healthy) == 0 {
		healthy = all
	}

	rand.Shuffle(len(healthy), func(i, j int) { healthy[i], healthy[j] = healthy[j], healthy[i] })
	return healthy
}

func execute[T any](
	ctx context.Context, c *defaultEthClient, f func(ctx context.Context, client *ethclient.Client) (T, error),
) (T, error) {
	var zero T
	var lastErr error
	for _, i := range c.candidates() {
		c.mutex.RLock()
		client, rpc := c.clients[i], c.rpcs[i]
		c.mutex.RUnlock()

		callCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		ret, err := f(callCtx, client)
		cancel()
		if err == nil {
			return ret, nil
		}

		if errors.Is(ctx.Err(), context.Canceled) {
			return zero, ctx.Err()
		}

		xcontext.Logger(ctx).Warnf("Call to rpc %s failed: %v", rpc, err)
		c.markUnhealthy(i)
		lastErr = err
	}

	return zero, fmt.Errorf("all rpcs of chain %s failed: %w", c.chain, lastErr)
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

func (c *defaultEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) ([]ethtypes.Log, error) {
		return client.FilterLogs(ctx, q)
	})
}

func (c *defaultEthClient) ERC20BalanceOf(ctx context.Context, tokenAddress, accountAddress string) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", common.HexToAddress(accountAddress))
	if err != nil {
		return nil, err
	}

	out, err := c.call(ctx, tokenAddress, data)
	if err != nil {
		return nil, err
	}

	values, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output %T", values[0])
	}

	return balance, nil
}

func (c *defaultEthClient) ERC20Decimals(ctx context.Context, tokenAddress string) (uint8, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, err
	}

	out, err := c.call(ctx, tokenAddress, data)
	if err != nil {
		return 0, err
	}

	values, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, err
	}

	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output %T", values[0])
	}

	return decimals, nil
}

func (c *defaultEthClient) call(ctx context.Context, to string, data []byte) ([]byte, error) {
	address := common.HexToAddress(to)
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
	})
}
