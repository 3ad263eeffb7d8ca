package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/authenticator"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/ethutil"
	"github.com/wtfpad/backend/pkg/xcontext"
	"github.com/wtfpad/backend/pkg/xredis"
)

type AuthDomain interface {
	GetNonce(context.Context, *model.GetNonceRequest) (*model.GetNonceResponse, error)
	VerifyWallet(context.Context, *model.VerifyWalletRequest) (*model.VerifyWalletResponse, error)
}

type authDomain struct {
	redisClient xredis.Client
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthDomain(
	redisClient xredis.Client,
	tokenEngine authenticator.TokenEngine[model.AccessToken],
) *authDomain {
	return &authDomain{redisClient: redisClient, tokenEngine: tokenEngine}
}

// SignInMessage is the text a wallet signs to prove it owns the address.
func SignInMessage(wallet, nonce string) string {
	return fmt.Sprintf("Sign in to WTF with %s\nNonce: %s", wallet, nonce)
}

func (d *authDomain) GetNonce(ctx context.Context, req *model.GetNonceRequest) (*model.GetNonceResponse, error) {
	wallet, err := ethutil.NormalizeAddress(req.Wallet)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet %s", req.Wallet)
	}

	nonce, err := common.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate nonce: %v", err)
		return nil, errorx.Unknown
	}

	ttl := xcontext.Configs(ctx).Auth.NonceTTL
	if err := d.redisClient.Set(ctx, common.RedisKeyNonce(wallet), nonce, ttl); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store nonce: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetNonceResponse{
		Wallet:  wallet,
		Nonce:   nonce,
		Message: SignInMessage(wallet, nonce),
	}, nil
}

func (d *authDomain) VerifyWallet(
	ctx context.Context, req *model.VerifyWalletRequest,
) (*model.VerifyWalletResponse, error) {
	wallet, err := ethutil.NormalizeAddress(req.Wallet)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet %s", req.Wallet)
	}

	// A nonce is consumed by the first verification attempt.
	nonce, err := d.redisClient.GetDel(ctx, common.RedisKeyNonce(wallet))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errorx.New(errorx.NonceUsed, "Nonce expired or already used")
		}

		xcontext.Logger(ctx).Errorf("Cannot get nonce: %v", err)
		return nil, errorx.Unknown
	}

	recovered, err := ethutil.RecoverPersonalSign(SignInMessage(wallet, nonce), req.Signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot recover signature: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if strings.ToLower(recovered.Hex()) != wallet {
		return nil, errorx.New(errorx.PermissionDenied, "Mismatched address")
	}

	token, err := d.tokenEngine.Generate(wallet, model.AccessToken{Wallet: wallet})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.VerifyWalletResponse{Wallet: wallet, AccessToken: token}, nil
}
