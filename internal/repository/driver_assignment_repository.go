package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type DriverAssignmentRepository struct {
	db *gorm.DB
}

func NewDriverAssignmentRepository(db *gorm.DB) *DriverAssignmentRepository {
	return &DriverAssignmentRepository{db: db}
}

// CreateSuperseding writes the new active driver assignment, deactivating any
// prior active record for the same driver in the same transaction.
func (r *DriverAssignmentRepository) CreateSuperseding(ctx context.Context, a *model.DriverAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.DriverAssignment{}).
			Where("driver_id = ? AND status = ?", a.DriverID, model.AssignmentActive).
			Update("status", model.AssignmentInactive).Error
		if err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

// ActiveByDriver returns the most recently created active assignment for a
// driver. With CreateSuperseding there is at most one, but data written by
// older clients can hold several; most-recent wins by convention.
func (r *DriverAssignmentRepository) ActiveByDriver(ctx context.Context, driverID uuid.UUID) (*model.DriverAssignment, error) {
	var a model.DriverAssignment
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, model.AssignmentActive).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *DriverAssignmentRepository) ActiveByContractorDriver(ctx context.Context, contractorID, driverID uuid.UUID) (*model.DriverAssignment, error) {
	var a model.DriverAssignment
	err := r.db.WithContext(ctx).
		Where("contractor_id = ? AND driver_id = ? AND status = ?",
			contractorID, driverID, model.AssignmentActive).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *DriverAssignmentRepository) ListActive(ctx context.Context) ([]model.DriverAssignment, error) {
	var assignments []model.DriverAssignment
	err := r.db.WithContext(ctx).
		Where("status = ?", model.AssignmentActive).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *DriverAssignmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.DriverAssignment{}).
		Where("id = ? AND status = ?", id, model.AssignmentActive).
		Update("status", model.AssignmentInactive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasActive reports whether the driver currently has an active assignment.
func (r *DriverAssignmentRepository) HasActive(ctx context.Context, driverID uuid.UUID) (bool, error) {
	_, err := r.ActiveByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
