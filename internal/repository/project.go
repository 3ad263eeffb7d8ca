package repository

import (
	"context"
	"time"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, e *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetByPhase(ctx context.Context, phase entity.ProjectPhase) ([]entity.Project, error)
	GetArchived(ctx context.Context, offset, limit int) ([]entity.Project, error)
	CountByPhase(ctx context.Context, phase entity.ProjectPhase) (int64, error)
	IncreaseVotes(ctx context.Context, id string, votes, priority int) error
	ResetVotes(ctx context.Context, id string, daysActive int) error
	Archive(ctx context.Context, id string, daysActive int) error
	PromoteToActive(ctx context.Context, id string, position int64) error
	PromoteToWinner(ctx context.Context, id string) error
	DeleteByID(ctx context.Context, id string) error
}

type projectRepository struct{}

func NewProjectRepository() *projectRepository {
	return &projectRepository{}
}

func (r *projectRepository) Create(ctx context.Context, e *entity.Project) error {
	return xcontext.DB(ctx).Create(e).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	var result entity.Project
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *projectRepository) GetByPhase(ctx context.Context, phase entity.ProjectPhase) ([]entity.Project, error) {
	var result []entity.Project
	err := xcontext.DB(ctx).
		Where("phase=?", phase).
		Order("position ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *projectRepository) GetArchived(ctx context.Context, offset, limit int) ([]entity.Project, error) {
	var result []entity.Project
	err := xcontext.DB(ctx).
		Where("phase=?", entity.ProjectArchived).
		Order("phase_changed_at DESC").
		Order("position ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *projectRepository) CountByPhase(ctx context.Context, phase entity.ProjectPhase) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Project{}).Where("phase=?", phase).Count(&count).Error
	return count, err
}

// IncreaseVotes only touches active projects.
func (r *projectRepository) IncreaseVotes(ctx context.Context, id string, votes, priority int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Project{}).
		Where("id=? AND phase=?", id, entity.ProjectActive).
		Updates(map[string]any{
			"votes":          gorm.Expr("votes+?", votes),
			"priority_score": gorm.Expr("priority_score+?", priority),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *projectRepository) ResetVotes(ctx context.Context, id string, daysActive int) error {
	return r.updateInPhase(ctx, id, entity.ProjectActive, map[string]any{
		"votes":       0,
		"days_active": daysActive,
	})
}

func (r *projectRepository) Archive(ctx context.Context, id string, daysActive int) error {
	return r.updateInPhase(ctx, id, entity.ProjectActive, map[string]any{
		"phase":            entity.ProjectArchived,
		"votes":            0,
		"days_active":      daysActive,
		"phase_changed_at": time.Now(),
	})
}

func (r *projectRepository) PromoteToActive(ctx context.Context, id string, position int64) error {
	return r.updateInPhase(ctx, id, entity.ProjectSubmission, map[string]any{
		"phase":            entity.ProjectActive,
		"votes":            0,
		"days_active":      1,
		"position":         position,
		"phase_changed_at": time.Now(),
	})
}

func (r *projectRepository) PromoteToWinner(ctx context.Context, id string) error {
	return r.updateInPhase(ctx, id, entity.ProjectActive, map[string]any{
		"phase":            entity.ProjectWinner,
		"phase_changed_at": time.Now(),
	})
}

func (r *projectRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Project{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// updateInPhase refuses to touch a project that already left the expected
// phase, which also keeps archived rows immutable.
func (r *projectRepository) updateInPhase(
	ctx context.Context, id string, phase entity.ProjectPhase, values map[string]any,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Project{}).
		Where("id=? AND phase=?", id, phase).
		Updates(values)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
