package middleware

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
)

const maxWebhookBody = 1 << 20

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body against
// the X-Signature (or X-Hub-Signature-256) header. The body is put back for
// the binder.
func VerifyWebhookSignature() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		secret := xcontext.Configs(ctx).Webhook.Secret
		if secret == "" {
			xcontext.Logger(ctx).Warnf("Webhook secret is not configured")
			return ctx, errorx.New(errorx.Unavailable, "Webhook is not enabled")
		}

		req := xcontext.HTTPRequest(ctx)
		signature := req.Header.Get("X-Signature")
		if signature == "" {
			signature = req.Header.Get("X-Hub-Signature-256")
		}
		signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
		if signature == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "Missing webhook signature")
		}

		received, err := hex.DecodeString(signature)
		if err != nil {
			return ctx, errorx.New(errorx.PermissionDenied, "Invalid webhook signature")
		}

		var body []byte
		if req.Body != nil {
			body, err = io.ReadAll(io.LimitReader(req.Body, maxWebhookBody+1))
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot read webhook body: %v", err)
				return ctx, errorx.New(errorx.BadRequest, "Cannot read request body")
			}
		}

		if len(body) > maxWebhookBody {
			return ctx, errorx.New(errorx.BadRequest, "Request body is too large")
		}

		req.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		if !hmac.Equal(mac.Sum(nil), received) {
			return ctx, errorx.New(errorx.PermissionDenied, "Invalid webhook signature")
		}

		return ctx, nil
	}
}
