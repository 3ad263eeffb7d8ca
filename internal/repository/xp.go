package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XPSum is the XP a wallet earned for one type inside a window.
type XPSum struct {
	Wallet string
	Type   entity.XPType
	Total  int64
}

type XPRepository interface {
	CreateAccountIfNotExists(ctx context.Context, e *entity.XPAccount) error
	GetAccount(ctx context.Context, wallet string) (*entity.XPAccount, error)
	GetAccounts(ctx context.Context) ([]entity.XPAccount, error)
	IncreaseXP(ctx context.Context, wallet string, xpType entity.XPType, amount int64) error
	CreateLog(ctx context.Context, e *entity.XPLog) error
	GetLogs(ctx context.Context, wallet string, limit int) ([]entity.XPLog, error)
	SumSince(ctx context.Context, since time.Time) ([]XPSum, error)
	GetDriftedAccounts(ctx context.Context) ([]entity.XPAccount, error)
	FixTotal(ctx context.Context, wallet string) error
}

type xpRepository struct{}

func NewXPRepository() *xpRepository {
	return &xpRepository{}
}

func (r *xpRepository) CreateAccountIfNotExists(ctx context.Context, e *entity.XPAccount) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e).Error
}

func (r *xpRepository) GetAccount(ctx context.Context, wallet string) (*entity.XPAccount, error) {
	var result entity.XPAccount
	if err := xcontext.DB(ctx).Take(&result, "wallet=?", wallet).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *xpRepository) GetAccounts(ctx context.Context) ([]entity.XPAccount, error) {
	var result []entity.XPAccount
	if err := xcontext.DB(ctx).Order("seq ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// IncreaseXP adds amount to the sub-total of xpType, its activity counter and
// the total in one statement.
func (r *xpRepository) IncreaseXP(
	ctx context.Context, wallet string, xpType entity.XPType, amount int64,
) error {
	values := map[string]any{
		"total_xp": gorm.Expr("total_xp+?", amount),
	}

	switch xpType {
	case entity.XPVote:
		values["vote_xp"] = gorm.Expr("vote_xp+?", amount)
		values["votes_cast"] = gorm.Expr("votes_cast+?", amount)
	case entity.XPPresale:
		values["presale_xp"] = gorm.Expr("presale_xp+?", amount)
		values["mints_contributed"] = gorm.Expr("mints_contributed+?", amount)
	case entity.XPBuilder:
		values["builder_xp"] = gorm.Expr("builder_xp+?", amount)
		values["projects_submitted"] = gorm.Expr("projects_submitted+?", 1)
	default:
		return fmt.Errorf("invalid xp type %s", xpType)
	}

	tx := xcontext.DB(ctx).
		Model(&entity.XPAccount{}).
		Where("wallet=?", wallet).
		Updates(values)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *xpRepository) CreateLog(ctx context.Context, e *entity.XPLog) error {
	return xcontext.DB(ctx).Create(e).Error
}

func (r *xpRepository) GetLogs(ctx context.Context, wallet string, limit int) ([]entity.XPLog, error) {
	var result []entity.XPLog
	err := xcontext.DB(ctx).
		Where("wallet=?", wallet).
		Order("id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *xpRepository) SumSince(ctx context.Context, since time.Time) ([]XPSum, error) {
	var result []XPSum
	err := xcontext.DB(ctx).
		Model(&entity.XPLog{}).
		Select("wallet, type, SUM(amount) AS total").
		Where("created_at>=?", since).
		Group("wallet, type").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *xpRepository) GetDriftedAccounts(ctx context.Context) ([]entity.XPAccount, error) {
	var result []entity.XPAccount
	err := xcontext.DB(ctx).
		Where("total_xp <> vote_xp+presale_xp+builder_xp").
		Order("seq ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *xpRepository) FixTotal(ctx context.Context, wallet string) error {
	return xcontext.DB(ctx).
		Model(&entity.XPAccount{}).
		Where("wallet=?", wallet).
		Update("total_xp", gorm.Expr("vote_xp+presale_xp+builder_xp")).Error
}
