package repository

import (
	"context"
	"time"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type TrackedContractRepository interface {
	Upsert(ctx context.Context, e *entity.TrackedContract) error
	GetActive(ctx context.Context) ([]entity.TrackedContract, error)
	GetByAddress(ctx context.Context, address string) (*entity.TrackedContract, error)
}

type trackedContractRepository struct{}

func NewTrackedContractRepository() *trackedContractRepository {
	return &trackedContractRepository{}
}

func (r *trackedContractRepository) Upsert(ctx context.Context, e *entity.TrackedContract) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "type", "project_id", "is_active", "updated_at"}),
		}).
		Create(e).Error
}

func (r *trackedContractRepository) GetActive(ctx context.Context) ([]entity.TrackedContract, error) {
	var result []entity.TrackedContract
	err := xcontext.DB(ctx).Where("is_active=?", true).Order("address ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *trackedContractRepository) GetByAddress(ctx context.Context, address string) (*entity.TrackedContract, error) {
	var result entity.TrackedContract
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

type MintEventRepository interface {
	CreateIfNotExists(ctx context.Context, e *entity.MintEvent) (bool, error)
	MarkRecorded(ctx context.Context, txHash string, logIndex uint) error
	Delete(ctx context.Context, txHash string, logIndex uint) error
	GetByWallet(ctx context.Context, wallet string, limit int) ([]entity.MintEvent, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

type mintEventRepository struct{}

func NewMintEventRepository() *mintEventRepository {
	return &mintEventRepository{}
}

// CreateIfNotExists reports false when the event was already stored.
func (r *mintEventRepository) CreateIfNotExists(ctx context.Context, e *entity.MintEvent) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *mintEventRepository) MarkRecorded(ctx context.Context, txHash string, logIndex uint) error {
	return xcontext.DB(ctx).
		Model(&entity.MintEvent{}).
		Where("tx_hash=? AND log_index=?", txHash, logIndex).
		Update("recorded", true).Error
}

func (r *mintEventRepository) Delete(ctx context.Context, txHash string, logIndex uint) error {
	return xcontext.DB(ctx).
		Where("tx_hash=? AND log_index=?", txHash, logIndex).
		Delete(&entity.MintEvent{}).Error
}

func (r *mintEventRepository) GetByWallet(ctx context.Context, wallet string, limit int) ([]entity.MintEvent, error) {
	var result []entity.MintEvent
	err := xcontext.DB(ctx).
		Where("wallet=?", wallet).
		Order("block_number DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *mintEventRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Where("created_at<?", t).Delete(&entity.MintEvent{})
	return tx.RowsAffected, tx.Error
}
