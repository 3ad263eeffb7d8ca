package testutil

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var ErrNotMocked = errors.New("not mocked")

type MockEthClient struct {
	BlockNumberFunc    func(ctx context.Context) (uint64, error)
	FilterLogsFunc     func(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	ERC20BalanceOfFunc func(ctx context.Context, tokenAddress, accountAddress string) (*big.Int, error)
	ERC20DecimalsFunc  func(ctx context.Context, tokenAddress string) (uint8, error)
}

func (m *MockEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	if m.BlockNumberFunc != nil {
		return m.BlockNumberFunc(ctx)
	}

	return 0, ErrNotMocked
}

func (m *MockEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	if m.FilterLogsFunc != nil {
		return m.FilterLogsFunc(ctx, q)
	}

	return nil, nil
}

func (m *MockEthClient) ERC20BalanceOf(ctx context.Context, tokenAddress, accountAddress string) (*big.Int, error) {
	if m.ERC20BalanceOfFunc != nil {
		return m.ERC20BalanceOfFunc(ctx, tokenAddress, accountAddress)
	}

	return nil, ErrNotMocked
}

func (m *MockEthClient) ERC20Decimals(ctx context.Context, tokenAddress string) (uint8, error) {
	if m.ERC20DecimalsFunc != nil {
		return m.ERC20DecimalsFunc(ctx, tokenAddress)
	}

	return 18, nil
}

// MockBalanceOracle serves Balances, or GetBalanceFunc when set.
type MockBalanceOracle struct {
	GetBalanceFunc func(ctx context.Context, wallet string) uint64
	Balances       map[string]uint64
}

func (m *MockBalanceOracle) GetBalance(ctx context.Context, wallet string) uint64 {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, wallet)
	}

	return m.Balances[wallet]
}
