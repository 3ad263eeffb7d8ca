package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/testutil"
)

func Test_rotationRepository(t *testing.T) {
	ctx := testutil.MockContext()
	r := repository.NewRotationRepository()

	require.NoError(t, r.Create(ctx, &entity.Rotation{Date: "2026-01-01", Archived: entity.Array[string]{"7"}}))
	require.NoError(t, r.Create(ctx, &entity.Rotation{Date: "2026-01-02"}))
	require.Error(t, r.Create(ctx, &entity.Rotation{Date: "2026-01-02"}))

	latest, err := r.GetLatest(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-01-02", latest.Date)

	first, err := r.GetByDate(ctx, "2026-01-01")
	require.NoError(t, err)
	require.Equal(t, []string{"7"}, []string(first.Archived))
}
