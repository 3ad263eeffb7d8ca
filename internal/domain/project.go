package domain

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/idutil"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const maxVaultedSupply = 30

type ProjectDomain interface {
	Submit(context.Context, *model.SubmitProjectRequest) (*model.SubmitProjectResponse, error)
	GetActiveProjects(context.Context, *model.GetActiveProjectsRequest) (*model.GetActiveProjectsResponse, error)
	GetSubmissions(context.Context, *model.GetSubmissionsRequest) (*model.GetSubmissionsResponse, error)
	GetArchivedProjects(context.Context, *model.GetArchivedProjectsRequest) (*model.GetArchivedProjectsResponse, error)
	GetCurrentWinner(context.Context, *model.GetCurrentWinnerRequest) (*model.GetCurrentWinnerResponse, error)
	GetProject(context.Context, *model.GetProjectRequest) (*model.GetProjectResponse, error)
}

type projectDomain struct {
	projectRepo repository.ProjectRepository
	winnerRepo  repository.WinningProjectRepository
	xpDomain    XPDomain
	lock        *common.RegistryLock
}

func NewProjectDomain(
	projectRepo repository.ProjectRepository,
	winnerRepo repository.WinningProjectRepository,
	xpDomain XPDomain,
	lock *common.RegistryLock,
) *projectDomain {
	return &projectDomain{
		projectRepo: projectRepo,
		winnerRepo:  winnerRepo,
		xpDomain:    xpDomain,
		lock:        lock,
	}
}

func (d *projectDomain) Submit(
	ctx context.Context, req *model.SubmitProjectRequest,
) (*model.SubmitProjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	ticker := strings.TrimSpace(req.Ticker)
	url := strings.TrimSpace(req.URL)
	if name == "" || ticker == "" || url == "" {
		return nil, errorx.New(errorx.BadRequest, "Name, ticker and url are required")
	}

	if req.VaultedSupply < 0 || req.VaultedSupply > maxVaultedSupply {
		return nil, errorx.New(errorx.BadRequest, "Vaulted supply must be between 0 and %d", maxVaultedSupply)
	}

	// Submitting is open, the builder is only known when signed in.
	builder := xcontext.RequestUserID(ctx)

	project := &entity.Project{
		Base:           entity.Base{ID: idutil.NewProjectID()},
		Name:           name,
		Ticker:         strings.ToUpper(ticker),
		Logo:           req.Logo,
		IsImageLogo:    req.IsImageLogo,
		URL:            url,
		BuilderWallet:  sql.NullString{Valid: builder != "", String: builder},
		VaultedSupply:  req.VaultedSupply,
		Phase:          entity.ProjectSubmission,
		Position:       idutil.NextSeq(),
		PhaseChangedAt: time.Now(),
	}

	defer d.lock.Mutate()()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.projectRepo.Create(ctx, project); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create project: %v", err)
		return nil, errorx.Unknown
	}

	if builder != "" {
		builderXP := int64(xcontext.Configs(ctx).Lifecycle.BuilderXP)
		if err := d.xpDomain.Award(ctx, builder, entity.XPBuilder, builderXP); err != nil {
			return nil, err
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	xcontext.Logger(ctx).Infof("Project %s (%s) submitted by %q", project.ID, project.Ticker, builder)

	return &model.SubmitProjectResponse{Project: convertProject(project)}, nil
}

func (d *projectDomain) GetActiveProjects(
	ctx context.Context, req *model.GetActiveProjectsRequest,
) (*model.GetActiveProjectsResponse, error) {
	projects, err := d.projectRepo.GetByPhase(ctx, entity.ProjectActive)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active projects: %v", err)
		return nil, errorx.Unknown
	}

	// Display order. Rotation uses the promotion order instead.
	slices.SortStableFunc(projects, func(a, b entity.Project) int {
		if a.Votes != b.Votes {
			return b.Votes - a.Votes
		}

		return b.PriorityScore - a.PriorityScore
	})

	return &model.GetActiveProjectsResponse{Projects: convertProjects(projects)}, nil
}

func (d *projectDomain) GetSubmissions(
	ctx context.Context, req *model.GetSubmissionsRequest,
) (*model.GetSubmissionsResponse, error) {
	projects, err := d.projectRepo.GetByPhase(ctx, entity.ProjectSubmission)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submissions: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetSubmissionsResponse{Projects: convertProjects(projects)}, nil
}

func (d *projectDomain) GetArchivedProjects(
	ctx context.Context, req *model.GetArchivedProjectsRequest,
) (*model.GetArchivedProjectsResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	projects, err := d.projectRepo.GetArchived(ctx, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get archived projects: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetArchivedProjectsResponse{Projects: convertProjects(projects)}, nil
}

func (d *projectDomain) GetCurrentWinner(
	ctx context.Context, req *model.GetCurrentWinnerRequest,
) (*model.GetCurrentWinnerResponse, error) {
	winner, err := d.winnerRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetCurrentWinnerResponse{}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get current winner: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetCurrentWinnerResponse{Winner: convertWinningProject(winner)}, nil
}

func (d *projectDomain) GetProject(
	ctx context.Context, req *model.GetProjectRequest,
) (*model.GetProjectResponse, error) {
	project, err := d.projectRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.UnknownProject, "Not found project %s", req.ID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get project: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetProjectResponse{Project: convertProject(project)}, nil
}
