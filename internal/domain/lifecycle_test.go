package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func insertProjects(t *testing.T, ctx context.Context, projects ...*entity.Project) {
	projectRepo := repository.NewProjectRepository()
	for _, p := range projects {
		require.NoError(t, projectRepo.Create(ctx, p))
	}
}

func Test_lifecycleDomain_RunDailyRotation_WinnerAndPromotion(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains()

	insertProjects(t, ctx,
		&entity.Project{
			Base: entity.Base{ID: "a"}, Name: "A", Ticker: "A", URL: "https://a.io",
			Phase: entity.ProjectActive, Votes: 23, DaysActive: 1, Position: 1,
		},
		&entity.Project{
			Base: entity.Base{ID: "b"}, Name: "B", Ticker: "B", URL: "https://b.io",
			Phase: entity.ProjectActive, Votes: 18, DaysActive: 1, Position: 2,
		},
		&entity.Project{
			Base: entity.Base{ID: "c"}, Name: "C", Ticker: "C", URL: "https://c.io",
			Phase: entity.ProjectSubmission, Position: 1,
		},
	)

	resp, err := d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.NoError(t, err)
	require.Equal(t, "a", resp.WinnerID)
	require.Equal(t, []string{"b"}, resp.Aged)
	require.Empty(t, resp.Archived)
	require.Equal(t, []string{"c"}, resp.Promoted)

	winner, err := repository.NewWinningProjectRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", winner.ID)
	require.Equal(t, 1200, winner.PresaleMints)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), winner.EndsAt, time.Minute)

	projectRepo := repository.NewProjectRepository()
	active, err := projectRepo.GetByPhase(ctx, entity.ProjectActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "b", active[0].ID)
	require.Equal(t, 0, active[0].Votes)
	require.Equal(t, 2, active[0].DaysActive)
	require.Equal(t, "c", active[1].ID)
	require.Equal(t, 0, active[1].Votes)
	require.Equal(t, 1, active[1].DaysActive)

	submissions, err := projectRepo.GetByPhase(ctx, entity.ProjectSubmission)
	require.NoError(t, err)
	require.Empty(t, submissions)

	a, err := projectRepo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entity.ProjectWinner, a.Phase)

	require.Equal(t, 1, d.publisher.Count(common.TopicRotationCompleted))
}

func Test_lifecycleDomain_RunDailyRotation_AlreadyRotated(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	_, err := d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.NoError(t, err)

	_, err = d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.True(t, errorx.Is(err, errorx.AlreadyRotated))

	active, err := repository.NewProjectRepository().GetByPhase(ctx, entity.ProjectActive)
	require.NoError(t, err)
	// Five aged fixture projects plus two promoted submissions.
	require.Len(t, active, 7)
	require.Equal(t, 1, d.publisher.Count(common.TopicRotationCompleted))
}

func Test_lifecycleDomain_RunDailyRotation_ArchivesOldProjects(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.ActiveProject1.ID, resp.WinnerID)
	require.Equal(t, []string{testutil.ActiveProject7.ID}, resp.Archived)
	require.Equal(t, []string{
		testutil.ActiveProject2.ID, testutil.ActiveProject3.ID, testutil.ActiveProject4.ID,
		testutil.ActiveProject5.ID, testutil.ActiveProject6.ID,
	}, resp.Aged)
	require.Equal(t, []string{testutil.Submission1.ID, testutil.Submission2.ID}, resp.Promoted)

	projectRepo := repository.NewProjectRepository()
	archived, err := projectRepo.GetByID(ctx, testutil.ActiveProject7.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProjectArchived, archived.Phase)
	require.Equal(t, 6, archived.DaysActive)
	require.Equal(t, 0, archived.Votes)

	aged, err := projectRepo.GetByID(ctx, testutil.ActiveProject4.ID)
	require.NoError(t, err)
	require.Equal(t, 5, aged.DaysActive)
	require.Equal(t, 0, aged.Votes)
	require.Equal(t, testutil.ActiveProject4.PriorityScore, aged.PriorityScore)

	// The previous winner leaves the registry.
	_, err = projectRepo.GetByID(ctx, testutil.WinnerProject.ID)
	require.Error(t, err)

	winners, err := repository.NewWinningProjectRepository().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	require.Equal(t, testutil.ActiveProject1.ID, winners[0].ID)

	invariants, err := d.lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
	require.NoError(t, err)
	require.Empty(t, invariants.Violations)
}

func Test_lifecycleDomain_RunDailyRotation_NoActiveProjects(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertWinner(ctx)
	d := newTestDomains()

	sub := *testutil.Submission1
	insertProjects(t, ctx, &sub)

	resp, err := d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.WinnerID)
	require.Equal(t, []string{testutil.Submission1.ID}, resp.Promoted)

	// The winner slot keeps its project.
	winner, err := repository.NewWinningProjectRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, testutil.WinnerProject.ID, winner.ID)
}

func Test_lifecycleDomain_RunDailyRotation_ResetsAllowances(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	allowanceRepo := repository.NewVoteAllowanceRepository()
	require.NoError(t, allowanceRepo.IncreaseSpent(ctx, testutil.Wallet1, 4))
	require.NoError(t, allowanceRepo.IncreaseSpent(ctx, testutil.Wallet2, 10))

	resp, err := d.lifecycle.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.WalletsReset)

	spent, err := allowanceRepo.GetSpent(ctx, testutil.Wallet2)
	require.NoError(t, err)
	require.Equal(t, 0, spent)
}

func Test_lifecycleDomain_CheckInvariants(t *testing.T) {
	drift := func(t *testing.T, ctx context.Context) {
		err := repository.NewXPRepository().CreateAccountIfNotExists(ctx, &entity.XPAccount{
			Wallet:  testutil.Wallet5,
			Seq:     1,
			VoteXP:  5,
			TotalXP: 3,
		})
		require.NoError(t, err)
	}

	t.Run("clean", func(t *testing.T) {
		ctx := testutil.MockContext()
		testutil.CreateFixtureDb(ctx)

		resp, err := newTestDomains().lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
		require.NoError(t, err)
		require.Empty(t, resp.Violations)
		require.False(t, resp.Corrected)
	})

	t.Run("development fails fast", func(t *testing.T) {
		ctx := testutil.MockContext()
		cfg := xcontext.Configs(ctx)
		cfg.Env = "local"
		ctx = xcontext.WithConfigs(ctx, cfg)
		drift(t, ctx)

		_, err := newTestDomains().lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
		require.True(t, errorx.Is(err, errorx.InvariantViolation))
	})

	t.Run("production corrects drift", func(t *testing.T) {
		ctx := testutil.MockContext()
		cfg := xcontext.Configs(ctx)
		cfg.Env = "prod"
		ctx = xcontext.WithConfigs(ctx, cfg)
		drift(t, ctx)

		resp, err := newTestDomains().lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Violations, 1)
		require.True(t, resp.Corrected)

		account, err := repository.NewXPRepository().GetAccount(ctx, testutil.Wallet5)
		require.NoError(t, err)
		require.Equal(t, int64(5), account.TotalXP)
	})

	t.Run("winner slot out of phase", func(t *testing.T) {
		ctx := testutil.MockContext()
		testutil.InsertWinner(ctx)

		resp, err := newTestDomains().lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Violations, 2)
		require.False(t, resp.Corrected)
	})
}

func Test_lifecycleDomain_rotate_AgesOncePerDay(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains()
	projectRepo := repository.NewProjectRepository()

	insertProjects(t, ctx, &entity.Project{
		Base: entity.Base{ID: "old"}, Name: "Old", Ticker: "OLD", URL: "https://old.io",
		Phase: entity.ProjectActive, DaysActive: 1, Position: 1,
	})

	start := time.Date(2026, 3, 1, 0, 0, 5, 0, time.UTC)
	for day := 1; day <= 5; day++ {
		// A fresh project with one vote takes the winner slot every day.
		id := fmt.Sprintf("day-%d", day)
		insertProjects(t, ctx, &entity.Project{
			Base: entity.Base{ID: id}, Name: id, Ticker: fmt.Sprintf("D%d", day), URL: "https://" + id + ".io",
			Phase: entity.ProjectActive, Votes: 1, DaysActive: 1, Position: int64(100 + day),
		})

		resp, err := d.lifecycle.rotate(ctx, start.AddDate(0, 0, day))
		require.NoError(t, err)
		require.Equal(t, id, resp.WinnerID)

		old, err := projectRepo.GetByID(ctx, "old")
		require.NoError(t, err)
		require.Equal(t, day+1, old.DaysActive)

		if day < 5 {
			require.Equal(t, entity.ProjectActive, old.Phase)
			require.Equal(t, []string{"old"}, resp.Aged)
			require.Empty(t, resp.Archived)
		} else {
			require.Equal(t, entity.ProjectArchived, old.Phase)
			require.Empty(t, resp.Aged)
			require.Equal(t, []string{"old"}, resp.Archived)
		}
	}

	check, err := d.lifecycle.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
	require.NoError(t, err)
	require.Empty(t, check.Violations)
}
