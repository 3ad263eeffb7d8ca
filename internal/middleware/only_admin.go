package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

// OnlyAdmin allows wallets listed in Auth.AdminWallets.
func OnlyAdmin() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		wallet := xcontext.RequestUserID(ctx)
		if wallet == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		isAdmin := slices.ContainsFunc(xcontext.Configs(ctx).Auth.AdminWallets, func(admin string) bool {
			return strings.EqualFold(admin, wallet)
		})
		if !isAdmin {
			return ctx, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return ctx, nil
	}
}
