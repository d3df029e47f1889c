package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) ActiveByResource(ctx context.Context, resourceID uuid.UUID, tier model.AssignmentTier) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("resource_id = ? AND assignment_type = ? AND status = ?",
			resourceID, tier, model.AssignmentActive).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateSuperseding writes the new active assignment and deactivates any
// prior active record for the same (resource, tier) in one transaction, so a
// reader never observes two active records for the pair. Returns the record
// that was superseded, if any.
func (r *AssignmentRepository) CreateSuperseding(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	var superseded *model.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior model.Assignment
		err := tx.Where("resource_id = ? AND assignment_type = ? AND status = ?",
			a.ResourceID, a.Tier, model.AssignmentActive).
			First(&prior).Error
		switch {
		case err == nil:
			if err := tx.Model(&model.Assignment{}).
				Where("id = ?", prior.ID).
				Update("status", model.AssignmentInactive).Error; err != nil {
				return err
			}
			superseded = &prior
		case errors.Is(err, gorm.ErrRecordNotFound):
			// nothing to supersede
		default:
			return err
		}

		return tx.Create(a).Error
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}

// DeleteActive removes the active assignment for a (resource, tier). Reports
// whether a record existed.
func (r *AssignmentRepository) DeleteActive(ctx context.Context, resourceID uuid.UUID, tier model.AssignmentTier) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("resource_id = ? AND assignment_type = ? AND status = ?",
			resourceID, tier, model.AssignmentActive).
		Delete(&model.Assignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AssignmentRepository) ListActiveByTier(ctx context.Context, tier model.AssignmentTier) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_type = ? AND status = ?", tier, model.AssignmentActive).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *AssignmentRepository) ListActiveByActor(ctx context.Context, actorID uuid.UUID, tier model.AssignmentTier) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("assigned_to = ? AND assignment_type = ? AND status = ?",
			actorID, tier, model.AssignmentActive).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *AssignmentRepository) CountActiveByKind(ctx context.Context, kind model.ResourceKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("resource_kind = ? AND status = ?", kind, model.AssignmentActive).
		Count(&count).Error
	return count, err
}

// CountDistinctActiveResources counts distinct resources of a kind with at
// least one active assignment, across tiers.
func (r *AssignmentRepository) CountDistinctActiveResources(ctx context.Context, kind model.ResourceKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("resource_kind = ? AND status = ?", kind, model.AssignmentActive).
		Distinct("resource_id").
		Count(&count).Error
	return count, err
}
