package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/dateutil"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/idutil"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type LifecycleDomain interface {
	RunDailyRotation(context.Context, *model.RunDailyRotationRequest) (*model.RunDailyRotationResponse, error)
	CheckInvariants(context.Context, *model.CheckInvariantsRequest) (*model.CheckInvariantsResponse, error)
}

type lifecycleDomain struct {
	projectRepo   repository.ProjectRepository
	winnerRepo    repository.WinningProjectRepository
	allowanceRepo repository.VoteAllowanceRepository
	rotationRepo  repository.RotationRepository
	xpRepo        repository.XPRepository
	publisher     pubsub.Publisher
	lock          *common.RegistryLock
}

func NewLifecycleDomain(
	projectRepo repository.ProjectRepository,
	winnerRepo repository.WinningProjectRepository,
	allowanceRepo repository.VoteAllowanceRepository,
	rotationRepo repository.RotationRepository,
	xpRepo repository.XPRepository,
	publisher pubsub.Publisher,
	lock *common.RegistryLock,
) *lifecycleDomain {
	return &lifecycleDomain{
		projectRepo:   projectRepo,
		winnerRepo:    winnerRepo,
		allowanceRepo: allowanceRepo,
		rotationRepo:  rotationRepo,
		xpRepo:        xpRepo,
		publisher:     publisher,
		lock:          lock,
	}
}

func (d *lifecycleDomain) RunDailyRotation(
	ctx context.Context, req *model.RunDailyRotationRequest,
) (*model.RunDailyRotationResponse, error) {
	resp, err := d.rotate(ctx, time.Now())
	if err != nil {
		status := "failed"
		if errorx.Is(err, errorx.AlreadyRotated) {
			status = "skipped"
		}
		common.PromCounters[common.RotationTotal].WithLabelValues(status).Inc()
		return nil, err
	}

	common.PromCounters[common.RotationTotal].WithLabelValues("completed").Inc()
	return resp, nil
}

func (d *lifecycleDomain) rotate(ctx context.Context, now time.Time) (*model.RunDailyRotationResponse, error) {
	cfg := xcontext.Configs(ctx).Lifecycle
	date := dateutil.Date(now)

	defer d.lock.Rotate()()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	_, err := d.rotationRepo.GetByDate(ctx, date)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyRotated, "Projects were already rotated on %s", date)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get rotation of %s: %v", date, err)
		return nil, errorx.Unknown
	}

	active, err := d.projectRepo.GetByPhase(ctx, entity.ProjectActive)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active projects: %v", err)
		return nil, errorx.Unknown
	}

	submissions, err := d.projectRepo.GetByPhase(ctx, entity.ProjectSubmission)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submissions: %v", err)
		return nil, errorx.Unknown
	}

	plan := planRotation(active, submissions, cfg.MaxDaysActive)

	if err := d.applyRotation(ctx, plan, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot apply rotation of %s: %v", date, err)
		return nil, errorx.Unknown
	}

	walletsReset, err := d.allowanceRepo.ResetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset vote allowances: %v", err)
		return nil, errorx.Unknown
	}

	rotation := &entity.Rotation{
		Date:     date,
		Aged:     projectIDs(plan.aged),
		Archived: projectIDs(plan.archived),
		Promoted: projectIDs(plan.promoted),
		Wallets:  walletsReset,
	}
	if plan.winner != nil {
		rotation.WinnerID = sql.NullString{Valid: true, String: plan.winner.ID}
	}

	if err := d.rotationRepo.Create(ctx, rotation); err != nil {
		// Another process may have rotated in the meantime.
		xcontext.Logger(ctx).Errorf("Cannot record rotation of %s: %v", date, err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	xcontext.Logger(ctx).Infof(
		"Rotation %s done: winner=%q aged=%d archived=%d promoted=%d wallets reset=%d",
		date, rotation.WinnerID.String, len(plan.aged), len(plan.archived), len(plan.promoted), walletsReset,
	)

	d.publishRotation(ctx, model.RotationCompletedEvent{
		Date:     date,
		WinnerID: rotation.WinnerID.String,
		Archived: rotation.Archived,
		Promoted: rotation.Promoted,
	})

	return &model.RunDailyRotationResponse{
		Date:         date,
		WinnerID:     rotation.WinnerID.String,
		Aged:         rotation.Aged,
		Archived:     rotation.Archived,
		Promoted:     rotation.Promoted,
		WalletsReset: walletsReset,
	}, nil
}

func (d *lifecycleDomain) applyRotation(ctx context.Context, plan rotationPlan, now time.Time) error {
	if plan.winner != nil {
		cfg := xcontext.Configs(ctx).Lifecycle
		winner := plan.winner

		replaced, err := d.winnerRepo.Replace(ctx, &entity.WinningProject{
			Base:          entity.Base{ID: winner.ID},
			Name:          winner.Name,
			Ticker:        winner.Ticker,
			Logo:          winner.Logo,
			IsImageLogo:   winner.IsImageLogo,
			URL:           winner.URL,
			VaultedSupply: winner.VaultedSupply,
			PresaleMints:  cfg.PresaleReseed,
			EndsAt:        now.Add(cfg.PresaleWindow),
		})
		if err != nil {
			return fmt.Errorf("replace winner: %w", err)
		}

		// The previous winner is dropped from the registry.
		for _, id := range replaced {
			err := d.projectRepo.DeleteByID(ctx, id)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("drop previous winner %s: %w", id, err)
			}
		}

		if err := d.projectRepo.PromoteToWinner(ctx, winner.ID); err != nil {
			return fmt.Errorf("promote winner %s: %w", winner.ID, err)
		}
	}

	for _, p := range plan.aged {
		if err := d.projectRepo.ResetVotes(ctx, p.ID, p.DaysActive); err != nil {
			return fmt.Errorf("age %s: %w", p.ID, err)
		}
	}

	for _, p := range plan.archived {
		if err := d.projectRepo.Archive(ctx, p.ID, p.DaysActive); err != nil {
			return fmt.Errorf("archive %s: %w", p.ID, err)
		}
	}

	// New positions keep promoted projects behind the aged ones, in
	// submission order.
	for _, p := range plan.promoted {
		if err := d.projectRepo.PromoteToActive(ctx, p.ID, idutil.NextSeq()); err != nil {
			return fmt.Errorf("promote %s: %w", p.ID, err)
		}
	}

	return nil
}

func (d *lifecycleDomain) publishRotation(ctx context.Context, event model.RotationCompletedEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal rotation event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, common.TopicRotationCompleted, &pubsub.Pack{
		Key: []byte(event.Date),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish rotation event: %v", err)
	}
}

func (d *lifecycleDomain) CheckInvariants(
	ctx context.Context, req *model.CheckInvariantsRequest,
) (*model.CheckInvariantsResponse, error) {
	violations, err := d.findViolations(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check invariants: %v", err)
		return nil, errorx.Unknown
	}

	if len(violations) == 0 {
		return &model.CheckInvariantsResponse{Violations: []string{}}, nil
	}

	if xcontext.Configs(ctx).IsDevelopment() {
		return nil, errorx.New(errorx.InvariantViolation, "%s", strings.Join(violations, "; "))
	}

	for _, v := range violations {
		xcontext.Logger(ctx).Errorf("Invariant violation: %s", v)
	}

	drifted, err := d.xpRepo.GetDriftedAccounts(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drifted accounts: %v", err)
		return nil, errorx.Unknown
	}

	for _, a := range drifted {
		if err := d.xpRepo.FixTotal(ctx, a.Wallet); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot fix total xp of %s: %v", a.Wallet, err)
			return nil, errorx.Unknown
		}
	}

	return &model.CheckInvariantsResponse{Violations: violations, Corrected: len(drifted) > 0}, nil
}

func (d *lifecycleDomain) findViolations(ctx context.Context) ([]string, error) {
	// Read a consistent registry, not one in the middle of a rotation.
	defer d.lock.Mutate()()

	violations := []string{}

	winners, err := d.winnerRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(winners) > 1 {
		violations = append(violations, fmt.Sprintf("winner slot holds %d projects", len(winners)))
	}

	for _, w := range winners {
		p, err := d.projectRepo.GetByID(ctx, w.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if p == nil || p.Phase != entity.ProjectWinner {
			violations = append(violations, fmt.Sprintf("winner %s is not in the winner phase", w.ID))
		}
	}

	winnerPhase, err := d.projectRepo.CountByPhase(ctx, entity.ProjectWinner)
	if err != nil {
		return nil, err
	}

	if int(winnerPhase) != len(winners) {
		violations = append(violations, fmt.Sprintf(
			"%d projects in the winner phase but %d in the winner slot", winnerPhase, len(winners)))
	}

	drifted, err := d.xpRepo.GetDriftedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range drifted {
		violations = append(violations, fmt.Sprintf(
			"total xp of %s is %d, expected %d", a.Wallet, a.TotalXP, a.SumXP()))
	}

	return violations, nil
}
