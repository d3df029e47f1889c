package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	query := r.db.WithContext(ctx).Order("full_name ASC")
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("full_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListDriversForContractor returns drivers whose mirror field points at the
// contractor.
func (r *UserRepository) ListDriversForContractor(ctx context.Context, contractorID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND contractor_id = ?", model.RoleDriver, contractorID).
		Order("full_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetAssignmentMirror is the single writer for the denormalized assignment
// fields on a driver's user document.
func (r *UserRepository) SetAssignmentMirror(
	ctx context.Context,
	driverID uuid.UUID,
	contractorID *uuid.UUID,
	vehicleID *uuid.UUID,
	feederPointIDs []uuid.UUID,
) error {
	mirror := model.User{
		ContractorID:         contractorID,
		AssignedVehicleID:    vehicleID,
		AssignedFeederPoints: feederPointIDs,
	}
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", driverID).
		Select("contractor_id", "assigned_vehicle_id", "assigned_feeder_points").
		Updates(mirror).Error
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	var rows []struct {
		Role  model.Role
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *UserRepository) CountByActive(ctx context.Context) (active int64, inactive int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.User{}).Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&model.User{}).Where("active = ?", false).Count(&inactive).Error; err != nil {
		return 0, 0, err
	}
	return active, inactive, nil
}
