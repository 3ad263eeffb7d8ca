package middleware

import (
	"context"
	"strings"

	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/authenticator"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// Middleware sets the request wallet when an access token is present. A
// request without a token passes through anonymously.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := accessToken(ctx)
		if token == "" {
			return ctx, nil
		}

		info, err := a.tokenEngine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
			return ctx, errorx.New(errorx.TokenExpired, "Invalid or expired access token")
		}

		return xcontext.WithRequestUserID(ctx, info.Wallet), nil
	}
}

func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return ctx, nil
	}
}

func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	if auth := req.Header.Get("Authorization"); auth != "" {
		scheme, token, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil || cookie.Value == "" {
		return ""
	}

	return cookie.Value
}

