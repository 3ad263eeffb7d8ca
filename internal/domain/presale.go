package domain

import (
	"context"
	"errors"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PresaleDomain interface {
	RecordMint(context.Context, *model.RecordMintRequest) (*model.RecordMintResponse, error)

	// RecordContractMint credits a mint observed on chain. It reports false
	// when projectID is not the current winner.
	RecordContractMint(ctx context.Context, projectID, wallet string, count int) (bool, error)
}

type presaleDomain struct {
	winnerRepo repository.WinningProjectRepository
	xpDomain   XPDomain
	lock       *common.RegistryLock
}

func NewPresaleDomain(
	winnerRepo repository.WinningProjectRepository,
	xpDomain XPDomain,
	lock *common.RegistryLock,
) *presaleDomain {
	return &presaleDomain{winnerRepo: winnerRepo, xpDomain: xpDomain, lock: lock}
}

func (d *presaleDomain) RecordMint(
	ctx context.Context, req *model.RecordMintRequest,
) (*model.RecordMintResponse, error) {
	wallet, err := authenticatedWallet(ctx)
	if err != nil {
		return nil, err
	}

	if req.NFTCount < 1 {
		return nil, errorx.New(errorx.BadRequest, "NFT count must be at least 1")
	}

	winner, err := d.recordMint(ctx, "", wallet, req.NFTCount)
	if err != nil {
		return nil, err
	}

	return &model.RecordMintResponse{Winner: *convertWinningProject(winner)}, nil
}

func (d *presaleDomain) RecordContractMint(
	ctx context.Context, projectID, wallet string, count int,
) (bool, error) {
	if count < 1 {
		return false, nil
	}

	winner, err := d.recordMint(ctx, projectID, wallet, count)
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			return false, nil
		}

		return false, err
	}

	return winner != nil, nil
}

// recordMint credits the current winner. With a non-empty projectID nothing
// happens unless that project holds the winner slot.
func (d *presaleDomain) recordMint(
	ctx context.Context, projectID, wallet string, count int,
) (*entity.WinningProject, error) {
	defer d.lock.Mutate()()

	winner, err := d.winnerRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "No project is in presale")
		}

		xcontext.Logger(ctx).Errorf("Cannot get current winner: %v", err)
		return nil, errorx.Unknown
	}

	if projectID != "" && winner.ID != projectID {
		return nil, nil
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.winnerRepo.IncreasePresaleMints(ctx, winner.ID, count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase presale mints of %s: %v", winner.ID, err)
		return nil, errorx.Unknown
	}

	if err := d.xpDomain.Award(ctx, wallet, entity.XPPresale, int64(count)); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	winner.PresaleMints += count
	xcontext.Logger(ctx).Infof("Recorded %d mints of %s by %s", count, winner.ID, wallet)

	return winner, nil
}
