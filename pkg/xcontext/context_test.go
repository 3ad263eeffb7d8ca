package xcontext_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/testutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func countAccounts(t *testing.T, ctx context.Context) int64 {
	var n int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.XPAccount{}).Count(&n).Error)
	return n
}

func TestAfterCommit_NoTransaction(t *testing.T) {
	ctx := testutil.MockContext()

	ran := false
	xcontext.AfterCommit(ctx, func(context.Context) { ran = true })
	require.True(t, ran)
}

func TestAfterCommit_RunsAfterOutermostCommit(t *testing.T) {
	ctx := testutil.MockContext()

	outer := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(outer)

	inner := xcontext.WithDBTransaction(outer)
	require.NoError(t, xcontext.DB(inner).Create(&entity.XPAccount{Wallet: testutil.Wallet1}).Error)

	seen := int64(-1)
	xcontext.AfterCommit(inner, func(ctx context.Context) {
		seen = countAccounts(t, ctx)
	})

	xcontext.WithCommitDBTransaction(inner)
	require.Equal(t, int64(-1), seen)

	xcontext.WithCommitDBTransaction(outer)
	require.Equal(t, int64(1), seen)
}

func TestAfterCommit_DroppedOnRollback(t *testing.T) {
	ctx := testutil.MockContext()

	txCtx := xcontext.WithDBTransaction(ctx)
	require.NoError(t, xcontext.DB(txCtx).Create(&entity.XPAccount{Wallet: testutil.Wallet1}).Error)

	ran := false
	xcontext.AfterCommit(txCtx, func(context.Context) { ran = true })
	xcontext.WithRollbackDBTransaction(txCtx)

	require.False(t, ran)
	require.Equal(t, int64(0), countAccounts(t, ctx))
}
