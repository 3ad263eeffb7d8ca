package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
)

func Test_projectDomain_Submit(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet3)
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.project.Submit(ctx, &model.SubmitProjectRequest{
		Name:          "  Onchain Oracle ",
		Ticker:        "orcl",
		Logo:          "🔮",
		URL:           "https://oracle.xyz",
		VaultedSupply: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Project.ID)
	require.Equal(t, "Onchain Oracle", resp.Project.Name)
	require.Equal(t, "ORCL", resp.Project.Ticker)
	require.Equal(t, "submission", resp.Project.Phase)
	require.Equal(t, testutil.Wallet3, resp.Project.BuilderWallet)

	submissions, err := d.project.GetSubmissions(ctx, &model.GetSubmissionsRequest{})
	require.NoError(t, err)
	require.Len(t, submissions.Projects, 3)
	require.Equal(t, resp.Project.ID, submissions.Projects[2].ID)

	account, err := repository.NewXPRepository().GetAccount(ctx, testutil.Wallet3)
	require.NoError(t, err)
	require.Equal(t, testutil.XPAccount3.BuilderXP+10, account.BuilderXP)
	require.Equal(t, testutil.XPAccount3.ProjectsSubmitted+1, account.ProjectsSubmitted)
}

func Test_projectDomain_Submit_Anonymous(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains()

	resp, err := d.project.Submit(ctx, &model.SubmitProjectRequest{
		Name:   "Anon",
		Ticker: "ANON",
		URL:    "https://anon.io",
	})
	require.NoError(t, err)
	require.Empty(t, resp.Project.BuilderWallet)

	accounts, err := repository.NewXPRepository().GetAccounts(ctx)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func Test_projectDomain_Submit_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *model.SubmitProjectRequest
	}{
		{
			name: "blank name",
			req:  &model.SubmitProjectRequest{Name: "  ", Ticker: "X", URL: "https://x.io"},
		},
		{
			name: "no url",
			req:  &model.SubmitProjectRequest{Name: "X", Ticker: "X"},
		},
		{
			name: "vaulted supply too high",
			req:  &model.SubmitProjectRequest{Name: "X", Ticker: "X", URL: "https://x.io", VaultedSupply: 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			_, err := newTestDomains().project.Submit(ctx, tt.req)
			require.True(t, errorx.Is(err, errorx.BadRequest))
		})
	}
}

func Test_projectDomain_Reads(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	active, err := d.project.GetActiveProjects(ctx, &model.GetActiveProjectsRequest{})
	require.NoError(t, err)
	require.Len(t, active.Projects, len(testutil.ActiveProjects))
	for i := 1; i < len(active.Projects); i++ {
		require.GreaterOrEqual(t, active.Projects[i-1].Votes, active.Projects[i].Votes)
	}

	archived, err := d.project.GetArchivedProjects(ctx, &model.GetArchivedProjectsRequest{})
	require.NoError(t, err)
	require.Len(t, archived.Projects, 1)
	require.Equal(t, testutil.ArchivedProject1.ID, archived.Projects[0].ID)

	winner, err := d.project.GetCurrentWinner(ctx, &model.GetCurrentWinnerRequest{})
	require.NoError(t, err)
	require.NotNil(t, winner.Winner)
	require.Equal(t, testutil.WinnerProject.ID, winner.Winner.ID)
	require.Equal(t, 1200, winner.Winner.PresaleMints)

	project, err := d.project.GetProject(ctx, &model.GetProjectRequest{ID: testutil.ActiveProject3.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.ActiveProject3.Name, project.Project.Name)

	_, err = d.project.GetProject(ctx, &model.GetProjectRequest{ID: "missing"})
	require.True(t, errorx.Is(err, errorx.UnknownProject))
}

func Test_projectDomain_GetCurrentWinner_Empty(t *testing.T) {
	ctx := testutil.MockContext()

	resp, err := newTestDomains().project.GetCurrentWinner(ctx, &model.GetCurrentWinnerRequest{})
	require.NoError(t, err)
	require.Nil(t, resp.Winner)
}
