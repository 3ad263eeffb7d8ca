package repository

import (
	"context"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type WinningProjectRepository interface {
	Get(ctx context.Context) (*entity.WinningProject, error)
	GetAll(ctx context.Context) ([]entity.WinningProject, error)
	Replace(ctx context.Context, e *entity.WinningProject) ([]string, error)
	IncreasePresaleMints(ctx context.Context, id string, amount int) error
}

type winningProjectRepository struct{}

func NewWinningProjectRepository() *winningProjectRepository {
	return &winningProjectRepository{}
}

func (r *winningProjectRepository) Get(ctx context.Context) (*entity.WinningProject, error) {
	var result entity.WinningProject
	if err := xcontext.DB(ctx).Order("created_at DESC").Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *winningProjectRepository) GetAll(ctx context.Context) ([]entity.WinningProject, error) {
	var result []entity.WinningProject
	if err := xcontext.DB(ctx).Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Replace soft-deletes the current slot and inserts e. It returns the ids of
// the replaced winners.
func (r *winningProjectRepository) Replace(ctx context.Context, e *entity.WinningProject) ([]string, error) {
	var previousIDs []string
	err := xcontext.DB(ctx).Model(&entity.WinningProject{}).Pluck("id", &previousIDs).Error
	if err != nil {
		return nil, err
	}

	if len(previousIDs) > 0 {
		err := xcontext.DB(ctx).Delete(&entity.WinningProject{}, "id IN (?)", previousIDs).Error
		if err != nil {
			return nil, err
		}
	}

	if err := xcontext.DB(ctx).Create(e).Error; err != nil {
		return nil, err
	}

	return previousIDs, nil
}

func (r *winningProjectRepository) IncreasePresaleMints(ctx context.Context, id string, amount int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.WinningProject{}).
		Where("id=?", id).
		Update("presale_mints", gorm.Expr("presale_mints+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
