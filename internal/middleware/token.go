package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type AccessTokenResponse interface {
	AccessTokenInfo() string
}

// HandleSetAccessToken mirrors an issued access token into a cookie, for
// clients which cannot set the Authorization header (e.g. EventSource).
func HandleSetAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		tokenResp, ok := xcontext.Response(ctx).(AccessTokenResponse)
		if !ok {
			return ctx, nil
		}

		cfg := xcontext.Configs(ctx).Auth.AccessToken
		http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
			Name:     cfg.Name,
			Value:    tokenResp.AccessTokenInfo(),
			Path:     "/",
			Expires:  time.Now().Add(cfg.Expiration),
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return ctx, nil
	}
}
