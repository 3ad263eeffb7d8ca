package domain

import (
	"context"
	"errors"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/domain/tier"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// A project gains one priority point each time its votes cross a multiple of
// this value.
const voteMilestone = 10

type VoteDomain interface {
	CastVote(context.Context, *model.CastVoteRequest) (*model.CastVoteResponse, error)
	GetRemainingVotes(context.Context, *model.GetRemainingVotesRequest) (*model.GetRemainingVotesResponse, error)
}

type voteDomain struct {
	projectRepo   repository.ProjectRepository
	allowanceRepo repository.VoteAllowanceRepository
	xpDomain      XPDomain
	balanceOracle blockchain.BalanceOracle
	tiers         *tier.Table
	lock          *common.RegistryLock
}

func NewVoteDomain(
	projectRepo repository.ProjectRepository,
	allowanceRepo repository.VoteAllowanceRepository,
	xpDomain XPDomain,
	balanceOracle blockchain.BalanceOracle,
	tiers *tier.Table,
	lock *common.RegistryLock,
) *voteDomain {
	return &voteDomain{
		projectRepo:   projectRepo,
		allowanceRepo: allowanceRepo,
		xpDomain:      xpDomain,
		balanceOracle: balanceOracle,
		tiers:         tiers,
		lock:          lock,
	}
}

type allowance struct {
	base      int
	bonus     int
	spent     int
	remaining int
}

func (d *voteDomain) allowance(ctx context.Context, wallet string, bonus int) (allowance, error) {
	spent, err := d.allowanceRepo.GetSpent(ctx, wallet)
	if err != nil {
		return allowance{}, err
	}

	a := allowance{
		base:  xcontext.Configs(ctx).Voting.BaseAllowance,
		bonus: bonus,
		spent: spent,
	}
	a.remaining = max(0, a.base+a.bonus-a.spent)

	return a, nil
}

func (d *voteDomain) CastVote(ctx context.Context, req *model.CastVoteRequest) (*model.CastVoteResponse, error) {
	wallet, err := authenticatedWallet(ctx)
	if err != nil {
		return nil, err
	}

	if req.Count < 1 {
		common.PromCounters[common.VotesCastTotal].WithLabelValues("rejected").Inc()
		return nil, errorx.New(errorx.BadRequest, "Vote count must be at least 1")
	}

	// The balance read may hit the chain, keep it out of the locks.
	bonus := d.tiers.BonusVotes(d.balanceOracle.GetBalance(ctx, wallet))

	defer d.lock.Mutate()()
	defer d.lock.LockKeys(common.WalletLockKey(wallet), common.ProjectLockKey(req.ProjectID))()

	project, err := d.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownProject, "Not found project %s", req.ProjectID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get project: %v", err)
		return nil, errorx.Unknown
	}

	if project.Phase != entity.ProjectActive {
		return nil, errorx.New(errorx.BadRequest, "Project %s is not open for voting", project.ID)
	}

	a, err := d.allowance(ctx, wallet, bonus)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get vote allowance: %v", err)
		return nil, errorx.Unknown
	}

	if req.Count > a.remaining {
		common.PromCounters[common.VotesCastTotal].WithLabelValues("insufficient").Inc()
		return nil, errorx.New(errorx.InsufficientAllowance,
			"Not enough votes left (%d remaining)", a.remaining)
	}

	newVotes := project.Votes + req.Count
	milestones := newVotes/voteMilestone - project.Votes/voteMilestone

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.projectRepo.IncreaseVotes(ctx, project.ID, req.Count, milestones); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase votes of project %s: %v", project.ID, err)
		return nil, errorx.Unknown
	}

	if err := d.allowanceRepo.IncreaseSpent(ctx, wallet, req.Count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase spent votes of %s: %v", wallet, err)
		return nil, errorx.Unknown
	}

	if err := d.xpDomain.Award(ctx, wallet, entity.XPVote, int64(req.Count)); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)
	common.PromCounters[common.VotesCastTotal].WithLabelValues("accepted").Add(float64(req.Count))

	project.Votes = newVotes
	project.PriorityScore += milestones

	return &model.CastVoteResponse{
		Project:        convertProject(project),
		RemainingVotes: a.remaining - req.Count,
	}, nil
}

func (d *voteDomain) GetRemainingVotes(
	ctx context.Context, req *model.GetRemainingVotesRequest,
) (*model.GetRemainingVotesResponse, error) {
	wallet, err := requestWallet(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}

	bonus := d.tiers.BonusVotes(d.balanceOracle.GetBalance(ctx, wallet))
	a, err := d.allowance(ctx, wallet, bonus)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get vote allowance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetRemainingVotesResponse{
		Wallet:         wallet,
		BaseAllowance:  a.base,
		BonusVotes:     a.bonus,
		Spent:          a.spent,
		RemainingVotes: a.remaining,
	}, nil
}
