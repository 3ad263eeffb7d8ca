package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func Test_projectRepository_GetByPhase(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	r := repository.NewProjectRepository()

	active, err := r.GetByPhase(ctx, entity.ProjectActive)
	require.NoError(t, err)
	require.Len(t, active, 7)
	for i, p := range active {
		require.Equal(t, testutil.ActiveProjects[i].ID, p.ID)
	}

	submissions, err := r.GetByPhase(ctx, entity.ProjectSubmission)
	require.NoError(t, err)
	require.Len(t, submissions, 2)
	require.Equal(t, testutil.Submission1.ID, submissions[0].ID)
	require.Equal(t, testutil.Submission2.ID, submissions[1].ID)
}

func Test_projectRepository_IncreaseVotes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	r := repository.NewProjectRepository()

	require.NoError(t, r.IncreaseVotes(ctx, testutil.ActiveProject1.ID, 7, 1))

	p, err := r.GetByID(ctx, testutil.ActiveProject1.ID)
	require.NoError(t, err)
	require.Equal(t, 30, p.Votes)
	require.Equal(t, 3, p.PriorityScore)

	err = r.IncreaseVotes(ctx, testutil.ArchivedProject1.ID, 1, 0)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_projectRepository_ArchivedIsImmutable(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	r := repository.NewProjectRepository()

	require.ErrorIs(t, r.ResetVotes(ctx, testutil.ArchivedProject1.ID, 9), gorm.ErrRecordNotFound)
	require.ErrorIs(t, r.Archive(ctx, testutil.ArchivedProject1.ID, 9), gorm.ErrRecordNotFound)
	require.ErrorIs(t, r.PromoteToActive(ctx, testutil.ArchivedProject1.ID, 9), gorm.ErrRecordNotFound)

	p, err := r.GetByID(ctx, testutil.ArchivedProject1.ID)
	require.NoError(t, err)
	require.Equal(t, 5, p.DaysActive)
}

func Test_projectRepository_PhaseTransitions(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	r := repository.NewProjectRepository()

	require.NoError(t, r.Archive(ctx, testutil.ActiveProject7.ID, 6))
	require.NoError(t, r.PromoteToActive(ctx, testutil.Submission1.ID, 100))
	require.NoError(t, r.PromoteToWinner(ctx, testutil.ActiveProject1.ID))

	archived, err := r.GetArchived(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, archived, 2)
	require.Equal(t, testutil.ActiveProject7.ID, archived[0].ID)
	require.Equal(t, 6, archived[0].DaysActive)
	require.Equal(t, 0, archived[0].Votes)

	promoted, err := r.GetByID(ctx, testutil.Submission1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProjectActive, promoted.Phase)
	require.Equal(t, 1, promoted.DaysActive)

	count, err := r.CountByPhase(ctx, entity.ProjectWinner)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func Test_projectRepository_DeleteByID(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	r := repository.NewProjectRepository()

	require.NoError(t, r.DeleteByID(ctx, testutil.WinnerProject.ID))

	_, err := r.GetByID(ctx, testutil.WinnerProject.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var p entity.Project
	err = xcontext.DB(ctx).Unscoped().Where("deleted_at IS NOT NULL").Take(&p, "id=?", testutil.WinnerProject.ID).Error
	require.NoError(t, err)
	require.NotEmpty(t, p.DeletedAt)
}
