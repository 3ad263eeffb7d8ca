package entity

import (
	"context"

	"github.com/wtfpad/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Project{},
		&WinningProject{},
		&XPAccount{},
		&XPLog{},
		&VoteAllowance{},
		&Rotation{},
		&TrackedContract{},
		&MintEvent{},
	)
}
