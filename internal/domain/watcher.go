package domain

import (
	"context"

	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type WatcherDomain interface {
	GetWatcherStatus(context.Context, *model.GetWatcherStatusRequest) (*model.GetWatcherStatusResponse, error)
	ProcessRecentBlocks(context.Context, *model.ProcessRecentBlocksRequest) (*model.ProcessRecentBlocksResponse, error)
	GetTrackedContracts(context.Context, *model.GetTrackedContractsRequest) (*model.GetTrackedContractsResponse, error)
}

type watcherDomain struct {
	watcher      *blockchain.MintWatcher
	contractRepo repository.TrackedContractRepository
}

// NewWatcherDomain accepts a nil watcher when this process does not watch the
// chain.
func NewWatcherDomain(
	watcher *blockchain.MintWatcher,
	contractRepo repository.TrackedContractRepository,
) *watcherDomain {
	return &watcherDomain{watcher: watcher, contractRepo: contractRepo}
}

func (d *watcherDomain) GetWatcherStatus(
	ctx context.Context, req *model.GetWatcherStatusRequest,
) (*model.GetWatcherStatusResponse, error) {
	if d.watcher == nil {
		return nil, errorx.New(errorx.Unavailable, "Mint watcher is not running in this process")
	}

	return &model.GetWatcherStatusResponse{Stats: convertWatcherStats(d.watcher.Stats())}, nil
}

func (d *watcherDomain) ProcessRecentBlocks(
	ctx context.Context, req *model.ProcessRecentBlocksRequest,
) (*model.ProcessRecentBlocksResponse, error) {
	if d.watcher == nil {
		return nil, errorx.New(errorx.Unavailable, "Mint watcher is not running in this process")
	}

	processed, err := d.watcher.ProcessRecentBlocks(ctx, req.Blocks)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot process recent blocks: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot read the chain")
	}

	return &model.ProcessRecentBlocksResponse{Processed: processed}, nil
}

// GetTrackedContracts reads the synced contracts, so it works in any process.
func (d *watcherDomain) GetTrackedContracts(
	ctx context.Context, req *model.GetTrackedContractsRequest,
) (*model.GetTrackedContractsResponse, error) {
	contracts, err := d.contractRepo.GetActive(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tracked contracts: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetTrackedContractsResponse{Contracts: convertTrackedContracts(contracts)}, nil
}
