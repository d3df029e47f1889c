package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type FeederPointRepository struct {
	db *gorm.DB
}

func NewFeederPointRepository(db *gorm.DB) *FeederPointRepository {
	return &FeederPointRepository{db: db}
}

func (r *FeederPointRepository) Create(ctx context.Context, fp *model.FeederPoint) error {
	return r.db.WithContext(ctx).Create(fp).Error
}

func (r *FeederPointRepository) Get(ctx context.Context, id uuid.UUID) (*model.FeederPoint, error) {
	var fp model.FeederPoint
	if err := r.db.WithContext(ctx).First(&fp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fp, nil
}

func (r *FeederPointRepository) List(ctx context.Context) ([]model.FeederPoint, error) {
	var fps []model.FeederPoint
	if err := r.db.WithContext(ctx).Order("ward ASC, name ASC").Find(&fps).Error; err != nil {
		return nil, err
	}
	return fps, nil
}

func (r *FeederPointRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]model.FeederPoint, error) {
	if len(ids) == 0 {
		return []model.FeederPoint{}, nil
	}
	var fps []model.FeederPoint
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&fps).Error; err != nil {
		return nil, err
	}
	return fps, nil
}

func (r *FeederPointRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FeederPoint{}).Count(&count).Error
	return count, err
}
