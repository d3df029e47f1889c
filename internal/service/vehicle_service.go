package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

type VehicleService struct {
	vehicles *repository.VehicleRepository
	log      zerolog.Logger
}

func NewVehicleService(vehicles *repository.VehicleRepository, log zerolog.Logger) *VehicleService {
	return &VehicleService{vehicles: vehicles, log: log}
}

type CreateVehicleInput struct {
	Plate    string
	Name     string
	Type     model.VehicleType
	Capacity float64
}

// Create validates before any store write: the plate must match the
// registration format and the capacity must fall inside the type's range.
func (s *VehicleService) Create(ctx context.Context, input CreateVehicleInput, principal model.Principal) (*model.Vehicle, error) {
	if !principal.Can(model.CapManageSystem) && !principal.Can(model.CapManageVehicles) {
		return nil, ErrPermissionDenied
	}
	if err := validateVehicle(input.Plate, input.Type, input.Capacity); err != nil {
		return nil, err
	}

	vehicle := &model.Vehicle{
		ID:           uuid.New(),
		Plate:        model.NormalizePlate(input.Plate),
		Name:         input.Name,
		Type:         input.Type,
		Capacity:     input.Capacity,
		Status:       model.VehicleStatusActive,
		Active:       true,
		CreatedBy:    principal.UserID,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: plate already registered", ErrConflict)
		}
		return nil, err
	}

	s.log.Info().
		Str("vehicle_id", vehicle.ID.String()).
		Str("plate", vehicle.Plate).
		Msg("vehicle registered")
	return vehicle, nil
}

type UpdateVehicleInput struct {
	Name     *string
	Capacity *float64
	Status   *model.VehicleStatus
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput, principal model.Principal) (*model.Vehicle, error) {
	if !principal.Can(model.CapManageSystem) && !principal.Can(model.CapManageVehicles) {
		return nil, ErrPermissionDenied
	}

	vehicle, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		vehicle.Name = *input.Name
	}
	if input.Capacity != nil {
		if err := validateCapacity(vehicle.Type, *input.Capacity); err != nil {
			return nil, err
		}
		vehicle.Capacity = *input.Capacity
	}
	if input.Status != nil {
		vehicle.Status = *input.Status
	}

	if err := s.vehicles.Save(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// ToggleStatus flips a vehicle between active and inactive service status.
// Maintenance is set through Update.
func (s *VehicleService) ToggleStatus(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Vehicle, error) {
	if !principal.Can(model.CapManageSystem) && !principal.Can(model.CapManageVehicles) {
		return nil, ErrPermissionDenied
	}

	vehicle, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if vehicle.Status == model.VehicleStatusActive {
		vehicle.Status = model.VehicleStatusInactive
	} else {
		vehicle.Status = model.VehicleStatusActive
	}
	if err := s.vehicles.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("vehicle_id", id.String()).
		Str("status", string(vehicle.Status)).
		Msg("vehicle status toggled")
	return vehicle, nil
}

// Delete soft-deletes: the record keeps its history, the fleet lists skip it.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID, principal model.Principal) error {
	if !principal.Can(model.CapManageSystem) {
		return ErrPermissionDenied
	}
	if err := s.vehicles.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info().Str("vehicle_id", id.String()).Msg("vehicle deactivated")
	return nil
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context) ([]model.Vehicle, error) {
	return s.vehicles.List(ctx)
}

func validateVehicle(plate string, vehicleType model.VehicleType, capacity float64) error {
	if !model.ValidPlate(plate) {
		return fmt.Errorf("%w: invalid plate %q", ErrInvalidInput, plate)
	}
	return validateCapacity(vehicleType, capacity)
}

func validateCapacity(vehicleType model.VehicleType, capacity float64) error {
	r, ok := model.CapacityRangeFor(vehicleType)
	if !ok {
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, vehicleType)
	}
	if capacity < r.Min || capacity > r.Max {
		return fmt.Errorf("%w: capacity %.1f outside %s range %.1f-%.1f",
			ErrInvalidInput, capacity, vehicleType, r.Min, r.Max)
	}
	return nil
}
