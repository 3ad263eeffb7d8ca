package repository

import (
	"context"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type RotationRepository interface {
	Create(ctx context.Context, e *entity.Rotation) error
	GetByDate(ctx context.Context, date string) (*entity.Rotation, error)
	GetLatest(ctx context.Context) (*entity.Rotation, error)
}

type rotationRepository struct{}

func NewRotationRepository() *rotationRepository {
	return &rotationRepository{}
}

func (r *rotationRepository) Create(ctx context.Context, e *entity.Rotation) error {
	return xcontext.DB(ctx).Create(e).Error
}

func (r *rotationRepository) GetByDate(ctx context.Context, date string) (*entity.Rotation, error) {
	var result entity.Rotation
	if err := xcontext.DB(ctx).Take(&result, "date=?", date).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rotationRepository) GetLatest(ctx context.Context) (*entity.Rotation, error) {
	var result entity.Rotation
	if err := xcontext.DB(ctx).Order("date DESC").Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
