package repository

import (
	"context"
	"errors"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteAllowanceRepository interface {
	GetSpent(ctx context.Context, wallet string) (int, error)
	IncreaseSpent(ctx context.Context, wallet string, votes int) error
	ResetAll(ctx context.Context) (int64, error)
}

type voteAllowanceRepository struct{}

func NewVoteAllowanceRepository() *voteAllowanceRepository {
	return &voteAllowanceRepository{}
}

func (r *voteAllowanceRepository) GetSpent(ctx context.Context, wallet string) (int, error) {
	var result entity.VoteAllowance
	err := xcontext.DB(ctx).Take(&result, "wallet=?", wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return result.Spent, nil
}

func (r *voteAllowanceRepository) IncreaseSpent(ctx context.Context, wallet string, votes int) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "wallet"}},
			DoUpdates: clause.Assignments(map[string]any{
				"spent": gorm.Expr("spent+?", votes),
			}),
		}).
		Create(&entity.VoteAllowance{Wallet: wallet, Spent: votes}).Error
}

// ResetAll clears every spent counter and returns how many wallets had voted.
func (r *voteAllowanceRepository) ResetAll(ctx context.Context) (int64, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.VoteAllowance{}).
		Where("spent>?", 0).
		Update("spent", 0)
	return tx.RowsAffected, tx.Error
}
