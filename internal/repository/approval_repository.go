package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ApprovalRepository) Get(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingForAdmin returns the shared admin pool: every pending request
// not routed to a specific contractor.
func (r *ApprovalRepository) ListPendingForAdmin(ctx context.Context) ([]model.ApprovalRequest, error) {
	var reqs []model.ApprovalRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND approver_type = ?", model.ApprovalStatusPending, model.ApproverAdmin).
		Order("requested_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *ApprovalRepository) ListPendingForContractor(ctx context.Context, contractorID uuid.UUID) ([]model.ApprovalRequest, error) {
	var reqs []model.ApprovalRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND approver_type = ? AND approver_ref = ?",
			model.ApprovalStatusPending, model.ApproverContractor, contractorID).
		Order("requested_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// MarkProcessed flips a pending request to a terminal status. The WHERE on
// status makes the transition a conditional write: a request that is already
// terminal matches zero rows and the caller gets ErrRecordNotFound instead of
// a silent double transition.
func (r *ApprovalRepository) MarkProcessed(
	ctx context.Context,
	id uuid.UUID,
	status model.ApprovalStatus,
	processedBy uuid.UUID,
) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, model.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_by": processedBy,
			"processed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ApprovalRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ApprovalRequest{}).
		Where("status = ?", model.ApprovalStatusPending).
		Count(&count).Error
	return count, err
}
