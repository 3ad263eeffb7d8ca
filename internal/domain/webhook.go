package domain

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/ethutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

// webhookLogIndex marks stored webhook mints. A webhook delivery has no log of
// its own, so one tx hash credits at most once.
const webhookLogIndex = math.MaxUint32

var txHashRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

type MintWebhookDomain interface {
	RecordWebhookMint(context.Context, *model.WebhookMintRequest) (*model.WebhookMintResponse, error)
}

type mintWebhookDomain struct {
	mintEventRepo repository.MintEventRepository
	presaleDomain PresaleDomain
}

func NewMintWebhookDomain(
	mintEventRepo repository.MintEventRepository,
	presaleDomain PresaleDomain,
) *mintWebhookDomain {
	return &mintWebhookDomain{mintEventRepo: mintEventRepo, presaleDomain: presaleDomain}
}

// RecordWebhookMint credits a mint reported by the indexer. The caller is
// authenticated by the request signature, not by a wallet session.
func (d *mintWebhookDomain) RecordWebhookMint(
	ctx context.Context, req *model.WebhookMintRequest,
) (*model.WebhookMintResponse, error) {
	wallet, err := ethutil.NormalizeAddress(req.Wallet)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address format")
	}

	if !txHashRegex.MatchString(req.TxHash) {
		return nil, errorx.New(errorx.BadRequest, "Invalid transaction hash format")
	}

	if req.NFTs < 1 || req.NFTs > blockchain.MaxMintAmount {
		return nil, errorx.New(errorx.BadRequest,
			"Invalid NFT count (must be between 1 and %d)", blockchain.MaxMintAmount)
	}

	event := &entity.MintEvent{
		TxHash:      strings.ToLower(req.TxHash),
		LogIndex:    webhookLogIndex,
		Contract:    strings.ToLower(req.ContractAddress),
		Wallet:      wallet,
		Amount:      int64(req.NFTs),
		BlockNumber: req.BlockNumber,
		ProjectID:   req.ProjectID,
		EventType:   entity.MintWebhook,
	}

	created, err := d.mintEventRepo.CreateIfNotExists(ctx, event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store webhook mint %s: %v", event.TxHash, err)
		return nil, errorx.Unknown
	}

	if !created {
		return nil, errorx.New(errorx.AlreadyExists, "Transaction already processed")
	}

	recorded, err := d.presaleDomain.RecordContractMint(ctx, req.ProjectID, wallet, req.NFTs)
	if err != nil || !recorded {
		// Forget the delivery so the indexer can retry it.
		if err := d.mintEventRepo.Delete(ctx, event.TxHash, event.LogIndex); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete webhook mint %s: %v", event.TxHash, err)
		}

		if err != nil {
			return nil, err
		}

		return nil, errorx.New(errorx.BadRequest, "Project %s is not in presale", req.ProjectID)
	}

	if err := d.mintEventRepo.MarkRecorded(ctx, event.TxHash, event.LogIndex); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot mark webhook mint %s: %v", event.TxHash, err)
	}

	common.PromCounters[common.MintEventTotal].WithLabelValues(string(entity.MintWebhook)).Inc()
	xcontext.Logger(ctx).Infof("Webhook mint of %d by %s in %s", req.NFTs, wallet, event.TxHash)

	return &model.WebhookMintResponse{
		Wallet:   wallet,
		NFTs:     req.NFTs,
		XPEarned: int64(req.NFTs),
		TxHash:   event.TxHash,
	}, nil
}
