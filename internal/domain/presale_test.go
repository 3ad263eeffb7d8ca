package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
)

func Test_presaleDomain_RecordMint(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet4)
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.presale.RecordMint(ctx, &model.RecordMintRequest{NFTCount: 3})
	require.NoError(t, err)
	require.Equal(t, testutil.WinnerProject.ID, resp.Winner.ID)
	require.Equal(t, 1203, resp.Winner.PresaleMints)

	winner, err := repository.NewWinningProjectRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1203, winner.PresaleMints)

	account, err := repository.NewXPRepository().GetAccount(ctx, testutil.Wallet4)
	require.NoError(t, err)
	require.Equal(t, testutil.XPAccount4.PresaleXP+3, account.PresaleXP)
	require.Equal(t, testutil.XPAccount4.TotalXP+3, account.TotalXP)

	_, err = d.presale.RecordMint(ctx, &model.RecordMintRequest{NFTCount: 0})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_presaleDomain_RecordMint_NoWinner(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Wallet4)

	_, err := newTestDomains().presale.RecordMint(ctx, &model.RecordMintRequest{NFTCount: 1})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_presaleDomain_RecordContractMint(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	recorded, err := d.presale.RecordContractMint(ctx, testutil.WinnerProject.ID, testutil.Wallet5, 2)
	require.NoError(t, err)
	require.True(t, recorded)

	// Mints of a project that no longer holds the slot are ignored.
	recorded, err = d.presale.RecordContractMint(ctx, testutil.ActiveProject1.ID, testutil.Wallet5, 2)
	require.NoError(t, err)
	require.False(t, recorded)

	winner, err := repository.NewWinningProjectRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1202, winner.PresaleMints)

	empty := testutil.MockContext()
	recorded, err = d.presale.RecordContractMint(empty, testutil.WinnerProject.ID, testutil.Wallet5, 1)
	require.NoError(t, err)
	require.False(t, recorded)
}
