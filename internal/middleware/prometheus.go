package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)

		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		path := xcontext.HTTPRequest(ctx).URL.Path
		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(path, fmt.Sprint(code)).Inc()
		common.PromHistograms[common.HTTPRequestDurationSeconds].
			WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
	}
}
