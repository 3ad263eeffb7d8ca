package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/domain/statistic"
	"github.com/wtfpad/backend/internal/domain/tier"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/enum"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/idutil"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const defaultLogLimit = 50

type XPDomain interface {
	// Award credits XP to wallet, creating its account on first use. It joins
	// the transaction of ctx if there is one.
	Award(ctx context.Context, wallet string, xpType entity.XPType, amount int64) error

	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetRank(context.Context, *model.GetRankRequest) (*model.GetRankResponse, error)
	GetXPAccount(context.Context, *model.GetXPAccountRequest) (*model.GetXPAccountResponse, error)
	GetTier(context.Context, *model.GetTierRequest) (*model.GetTierResponse, error)
}

type xpDomain struct {
	xpRepo        repository.XPRepository
	leaderboard   statistic.Leaderboard
	balanceOracle blockchain.BalanceOracle
	tiers         *tier.Table
	publisher     pubsub.Publisher
}

func NewXPDomain(
	xpRepo repository.XPRepository,
	leaderboard statistic.Leaderboard,
	balanceOracle blockchain.BalanceOracle,
	tiers *tier.Table,
	publisher pubsub.Publisher,
) *xpDomain {
	return &xpDomain{
		xpRepo:        xpRepo,
		leaderboard:   leaderboard,
		balanceOracle: balanceOracle,
		tiers:         tiers,
		publisher:     publisher,
	}
}

func (d *xpDomain) Award(ctx context.Context, wallet string, xpType entity.XPType, amount int64) error {
	if amount <= 0 {
		return errorx.New(errorx.BadRequest, "XP amount must be positive")
	}

	if _, err := enum.ToEnum[entity.XPType](string(xpType)); err != nil {
		return errorx.New(errorx.BadRequest, "Invalid xp type %s", xpType)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.xpRepo.CreateAccountIfNotExists(ctx, &entity.XPAccount{
		Wallet: wallet,
		Seq:    idutil.NextSeq(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create xp account of %s: %v", wallet, err)
		return errorx.Unknown
	}

	if err := d.xpRepo.IncreaseXP(ctx, wallet, xpType, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase %s xp of %s: %v", xpType, wallet, err)
		return errorx.Unknown
	}

	err = d.xpRepo.CreateLog(ctx, &entity.XPLog{
		ID:        idutil.NextSeq(),
		Wallet:    wallet,
		Type:      xpType,
		Amount:    amount,
		CreatedAt: time.Now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append xp log of %s: %v", wallet, err)
		return errorx.Unknown
	}

	account, err := d.xpRepo.GetAccount(ctx, wallet)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get xp account of %s: %v", wallet, err)
		return errorx.Unknown
	}

	// Readers must not rebuild the board before the outer transaction lands.
	xcontext.AfterCommit(ctx, func(ctx context.Context) {
		d.leaderboard.Invalidate(ctx)
		d.publishAwarded(ctx, model.XPAwardedEvent{
			Wallet:  wallet,
			Type:    string(xpType),
			Amount:  amount,
			TotalXP: account.TotalXP,
		})
	})

	xcontext.WithCommitDBTransaction(ctx)

	xcontext.Logger(ctx).Debugf("Awarded %d %s xp to %s", amount, xpType, wallet)
	return nil
}

func (d *xpDomain) publishAwarded(ctx context.Context, event model.XPAwardedEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal xp event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, common.TopicXPAwarded, &pubsub.Pack{
		Key: []byte(event.Wallet),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish xp event: %v", err)
	}
}

func (d *xpDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	sortKey, timeframe, err := parseBoard(req.SortKey, req.Timeframe)
	if err != nil {
		return nil, err
	}

	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	entries, err := d.leaderboard.GetLeaderboard(ctx, sortKey, timeframe, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetLeaderboardResponse{
		SortKey:   string(sortKey),
		Timeframe: string(timeframe),
		Entries:   entries,
	}, nil
}

func (d *xpDomain) GetRank(ctx context.Context, req *model.GetRankRequest) (*model.GetRankResponse, error) {
	wallet, err := requestWallet(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}

	sortKey, timeframe, err := parseBoard(req.SortKey, req.Timeframe)
	if err != nil {
		return nil, err
	}

	rank, err := d.leaderboard.GetRank(ctx, wallet, sortKey, timeframe)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get rank: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetRankResponse{Wallet: wallet, Rank: rank}, nil
}

func (d *xpDomain) GetXPAccount(
	ctx context.Context, req *model.GetXPAccountRequest,
) (*model.GetXPAccountResponse, error) {
	wallet, err := requestWallet(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}

	limit := req.LogLimit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	account, err := d.xpRepo.GetAccount(ctx, wallet)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Wallets without XP have no account yet.
			return &model.GetXPAccountResponse{Logs: []model.XPLog{}}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get xp account: %v", err)
		return nil, errorx.Unknown
	}

	logs, err := d.xpRepo.GetLogs(ctx, wallet, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get xp logs: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetXPAccountResponse{
		Account: convertXPAccount(account),
		Logs:    convertXPLogs(logs),
	}, nil
}

func (d *xpDomain) GetTier(ctx context.Context, req *model.GetTierRequest) (*model.GetTierResponse, error) {
	wallet, err := requestWallet(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}

	balance := d.balanceOracle.GetBalance(ctx, wallet)
	progress := d.tiers.Progress(balance)

	return &model.GetTierResponse{
		Wallet:     wallet,
		Balance:    balance,
		Tier:       convertTier(d.tiers.TierFor(balance)),
		NextTier:   convertTier(d.tiers.NextTier(balance)),
		Current:    progress.Current,
		Required:   progress.Required,
		Percentage: progress.Percentage,
	}, nil
}

func parseBoard(sortKey, timeframe string) (model.SortKey, model.Timeframe, error) {
	if sortKey == "" {
		sortKey = string(model.SortByTotalXP)
	}

	if timeframe == "" {
		timeframe = string(model.AllTime)
	}

	key, err := enum.ToEnum[model.SortKey](sortKey)
	if err != nil {
		return "", "", errorx.New(errorx.BadRequest, "Invalid sort key %s", sortKey)
	}

	tf, err := enum.ToEnum[model.Timeframe](timeframe)
	if err != nil {
		return "", "", errorx.New(errorx.BadRequest, "Invalid timeframe %s", timeframe)
	}

	return key, tf, nil
}
