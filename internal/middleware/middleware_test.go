package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/authenticator"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func TestAuthVerifier(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx).Auth
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.TokenSecret, cfg.AccessToken)
	verifier := NewAuthVerifier(engine)

	token, err := engine.Generate(testutil.Wallet1, model.AccessToken{Wallet: testutil.Wallet1})
	require.NoError(t, err)

	expiredEngine := authenticator.NewTokenEngine[model.AccessToken](
		cfg.TokenSecret, config.TokenConfigs{Expiration: -time.Minute})
	expired, err := expiredEngine.Generate(testutil.Wallet1, model.AccessToken{Wallet: testutil.Wallet1})
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		wallet string
		code   errorx.Code
	}{
		{
			name:  "anonymous",
			setup: func(*http.Request) {},
		},
		{
			name:   "bearer",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wallet: testutil.Wallet1,
		},
		{
			name:   "cookie",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cfg.AccessToken.Name, Value: token}) },
			wallet: testutil.Wallet1,
		},
		{
			name:  "expired",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			code:  errorx.TokenExpired,
		},
		{
			name:  "garbage",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			code:  errorx.TokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/getRank", nil)
			tt.setup(req)

			got, err := verifier.Middleware()(xcontext.WithHTTPRequest(ctx, req))
			if tt.code != 0 {
				require.True(t, errorx.Is(err, tt.code))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wallet, xcontext.RequestUserID(got))

			_, err = Authenticate()(got)
			require.Equal(t, tt.wallet == "", errorx.Is(err, errorx.Unauthenticated))
		})
	}
}

func TestOnlyAdmin(t *testing.T) {
	ctx := testutil.MockContext()

	_, err := OnlyAdmin()(ctx)
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = OnlyAdmin()(xcontext.WithRequestUserID(ctx, testutil.Wallet1))
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = OnlyAdmin()(xcontext.WithRequestUserID(ctx, testutil.AdminWallet))
	require.NoError(t, err)
}

func TestHandleSetAccessToken(t *testing.T) {
	ctx := testutil.MockContext()
	w := httptest.NewRecorder()
	ctx = xcontext.WithHTTPWriter(ctx, w)
	ctx = xcontext.WithResponse(ctx, &model.VerifyWalletResponse{Wallet: testutil.Wallet1, AccessToken: "tok"})

	_, err := HandleSetAccessToken()(ctx)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "access_token", cookies[0].Name)
	require.Equal(t, "tok", cookies[0].Value)
}
