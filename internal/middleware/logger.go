package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		elapsed := time.Since(xcontext.StartTime(ctx))

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %s | %d | %s", req.Method, req.URL.Path, errx.Code, elapsed)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %s | %d | %s | %v", req.Method, req.URL.Path, -1, elapsed, err)
			}
		} else {
			xcontext.Logger(ctx).Infof("%s | %s | %s", req.Method, req.URL.Path, elapsed)
		}
	}
}
