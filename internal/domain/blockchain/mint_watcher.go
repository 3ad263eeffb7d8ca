package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/enum"
	"github.com/wtfpad/backend/pkg/xcontext"
)

const maxBlockRange = 1_000

// MintRecorder credits a mint of a tracked contract to the presale of the
// project. It returns false when the project is not the current winner.
type MintRecorder interface {
	RecordContractMint(ctx context.Context, projectID, wallet string, count int) (bool, error)
}

type WatcherStats struct {
	IsRunning          bool
	EventsProcessed    int64
	Errors             int64
	LastProcessedBlock uint64
	LastEventTime      time.Time
}

type MintWatcher struct {
	client        EthClient
	contractRepo  repository.TrackedContractRepository
	mintEventRepo repository.MintEventRepository
	recorder      MintRecorder

	// processMutex serializes polling and manual reprocessing.
	processMutex sync.Mutex

	statsMutex sync.RWMutex
	stats      WatcherStats
}

func NewMintWatcher(
	client EthClient,
	contractRepo repository.TrackedContractRepository,
	mintEventRepo repository.MintEventRepository,
	recorder MintRecorder,
) *MintWatcher {
	return &MintWatcher{
		client:        client,
		contractRepo:  contractRepo,
		mintEventRepo: mintEventRepo,
		recorder:      recorder,
	}
}

// SyncContracts upserts the configured contracts into the tracked list.
func (w *MintWatcher) SyncContracts(ctx context.Context, contracts []config.ContractConfig) error {
	for _, c := range contracts {
		contractType, err := enum.ToEnum[entity.ContractType](c.Type)
		if err != nil {
			return fmt.Errorf("invalid type of contract %s: %w", c.Address, err)
		}

		err = w.contractRepo.Upsert(ctx, &entity.TrackedContract{
			Address:    strings.ToLower(c.Address),
			Name:       c.Name,
			Type:       contractType,
			ProjectID:  c.ProjectID,
			StartBlock: c.StartBlock,
			IsActive:   c.IsActive,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Start polls the chain until ctx is done.
func (w *MintWatcher) Start(ctx context.Context) {
	interval := xcontext.Configs(ctx).Eth.PollInterval()
	xcontext.Logger(ctx).Infof("Mint watcher started, polling every %s", interval)

	w.setRunning(true)
	defer w.setRunning(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot poll mint events: %v", err)
		}

		select {
		case <-ctx.Done():
			xcontext.Logger(ctx).Infof("Mint watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll processes the blocks produced since the previous poll. The first poll
// starts a few blocks behind the head.
func (w *MintWatcher) Poll(ctx context.Context) error {
	w.processMutex.Lock()
	defer w.processMutex.Unlock()

	current, err := w.client.BlockNumber(ctx)
	if err != nil {
		w.addError()
		return err
	}

	from := w.Stats().LastProcessedBlock + 1
	if w.Stats().LastProcessedBlock == 0 {
		from = startBlock(current, xcontext.Configs(ctx).Eth.StartBlockOffset)
	}

	if from > current {
		return nil
	}

	_, err = w.processRange(ctx, from, current)
	return err
}

// ProcessRecentBlocks reprocesses the last n blocks. Already stored events are
// skipped.
func (w *MintWatcher) ProcessRecentBlocks(ctx context.Context, n uint64) (int, error) {
	w.processMutex.Lock()
	defer w.processMutex.Unlock()

	current, err := w.client.BlockNumber(ctx)
	if err != nil {
		w.addError()
		return 0, err
	}

	return w.processRange(ctx, startBlock(current, n), current)
}

func (w *MintWatcher) Stats() WatcherStats {
	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()
	return w.stats
}

func startBlock(current, offset uint64) uint64 {
	if offset == 0 {
		offset = 10
	}

	if current < offset {
		return 0
	}

	return current - offset
}

func (w *MintWatcher) processRange(ctx context.Context, from, to uint64) (int, error) {
	contracts, err := w.contractRepo.GetActive(ctx)
	if err != nil {
		w.addError()
		return 0, err
	}

	if len(contracts) == 0 {
		w.setLastBlock(to)
		return 0, nil
	}

	contractMap := make(map[string]entity.TrackedContract, len(contracts))
	addresses := make([]ethcommon.Address, 0, len(contracts))
	for _, c := range contracts {
		contractMap[c.Address] = c
		addresses = append(addresses, ethcommon.HexToAddress(c.Address))
	}

	processed := 0
	for start := from; start <= to; start += maxBlockRange {
		end := min(start+maxBlockRange-1, to)

		logs, err := w.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: addresses,
			Topics:    [][]ethcommon.Hash{{TransferTopic, TransferSingleTopic, TransferBatchTopic}},
		})
		if err != nil {
			w.addError()
			return processed, err
		}

		for _, log := range logs {
			event, err := ParseMintLog(log)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot parse log %s:%d: %v", log.TxHash.Hex(), log.Index, err)
				w.addError()
				continue
			}

			if event == nil {
				continue
			}

			contract, ok := contractMap[event.Contract]
			if !ok {
				continue
			}

			event.ProjectID = contract.ProjectID
			if w.handleEvent(ctx, event) {
				processed++
			}
		}

		w.setLastBlock(end)
	}

	return processed, nil
}

// handleEvent stores the event and credits it. It reports whether the event
// was new.
func (w *MintWatcher) handleEvent(ctx context.Context, event *entity.MintEvent) bool {
	if event.Amount < 1 || event.Amount > MaxMintAmount {
		xcontext.Logger(ctx).Warnf("Ignore mint %s:%d of %d tokens", event.TxHash, event.LogIndex, event.Amount)
		w.addError()
		return false
	}

	created, err := w.mintEventRepo.CreateIfNotExists(ctx, event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store mint event %s:%d: %v", event.TxHash, event.LogIndex, err)
		w.addError()
		return false
	}

	if !created {
		return false
	}

	common.PromCounters[common.MintEventTotal].WithLabelValues(string(event.EventType)).Inc()

	if event.ProjectID != "" {
		recorded, err := w.recorder.RecordContractMint(ctx, event.ProjectID, event.Wallet, int(event.Amount))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot record mint %s:%d: %v", event.TxHash, event.LogIndex, err)
			w.addError()

			// Forget the event so a later reprocess can credit it.
			if err := w.mintEventRepo.Delete(ctx, event.TxHash, event.LogIndex); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot delete mint event %s:%d: %v", event.TxHash, event.LogIndex, err)
			}

			return false
		}

		if recorded {
			if err := w.mintEventRepo.MarkRecorded(ctx, event.TxHash, event.LogIndex); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot mark mint event %s:%d: %v", event.TxHash, event.LogIndex, err)
			}
		}
	}

	w.statsMutex.Lock()
	w.stats.EventsProcessed++
	w.stats.LastEventTime = time.Now()
	w.statsMutex.Unlock()

	xcontext.Logger(ctx).Infof("Mint of %d by %s on %s", event.Amount, event.Wallet, event.Contract)
	return true
}

// CleanupEvents drops stored events older than retention. Replays older than
// that are not expected.
func (w *MintWatcher) CleanupEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return w.mintEventRepo.DeleteBefore(ctx, time.Now().Add(-retention))
}

func (w *MintWatcher) setRunning(running bool) {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	w.stats.IsRunning = running
}

func (w *MintWatcher) setLastBlock(block uint64) {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	if block > w.stats.LastProcessedBlock {
		w.stats.LastProcessedBlock = block
	}
}

func (w *MintWatcher) addError() {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	w.stats.Errors++
}
