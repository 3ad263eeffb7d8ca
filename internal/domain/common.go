package domain

import (
	"context"

	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/ethutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

// requestWallet returns the wallet of the request, or the authenticated
// wallet when none is given.
func requestWallet(ctx context.Context, wallet string) (string, error) {
	if wallet == "" {
		wallet = xcontext.RequestUserID(ctx)
	}

	if wallet == "" {
		return "", errorx.New(errorx.BadRequest, "Require wallet")
	}

	normalized, err := ethutil.NormalizeAddress(wallet)
	if err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid wallet %s", wallet)
	}

	return normalized, nil
}

func authenticatedWallet(ctx context.Context) (string, error) {
	wallet := xcontext.RequestUserID(ctx)
	if wallet == "" {
		return "", errorx.New(errorx.Unauthenticated, "Require a signed in wallet")
	}

	return wallet, nil
}

func checkLimit(ctx context.Context, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		return apiCfg.DefaultLimit, nil
	}

	if limit < 0 {
		return 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}
