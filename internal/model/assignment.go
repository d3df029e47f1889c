package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssignmentTier distinguishes the two relationship levels: admins hand
// resources to contractors, contractors hand them to drivers.
type AssignmentTier string

const (
	TierAdminToContractor  AssignmentTier = "admin_to_contractor"
	TierContractorToDriver AssignmentTier = "contractor_to_driver"
)

func ParseAssignmentTier(raw string) (AssignmentTier, bool) {
	switch AssignmentTier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierAdminToContractor:
		return TierAdminToContractor, true
	case TierContractorToDriver:
		return TierContractorToDriver, true
	default:
		return "", false
	}
}

type ResourceKind string

const (
	ResourceVehicle     ResourceKind = "vehicle"
	ResourceFeederPoint ResourceKind = "feeder_point"
)

func ParseResourceKind(raw string) (ResourceKind, bool) {
	switch ResourceKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ResourceVehicle:
		return ResourceVehicle, true
	case ResourceFeederPoint:
		return ResourceFeederPoint, true
	default:
		return "", false
	}
}

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentInactive AssignmentStatus = "inactive"
)

// Assignment binds a resource (vehicle or feeder point) to an actor within a
// tier. At most one active record may exist per (resource, tier); the registry
// supersedes the prior record in the same transaction that creates the new
// one, and the partial unique index in internal/db backs that up on postgres.
type Assignment struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_assignments_resource_tier" json:"resource_id"`
	ResourceKind ResourceKind     `gorm:"not null" json:"resource_kind"`
	Tier         AssignmentTier   `gorm:"column:assignment_type;not null;index:idx_assignments_resource_tier" json:"tier"`
	AssignedTo   uuid.UUID        `gorm:"type:uuid;not null;index" json:"assigned_to"`
	AssignedBy   uuid.UUID        `gorm:"type:uuid;not null" json:"assigned_by"`
	Status       AssignmentStatus `gorm:"not null;default:active" json:"status"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (Assignment) TableName() string { return "assignments" }

// DriverAssignment binds a driver to a contractor, vehicle and feeder-point
// set in one record. The consistency checker treats it as ground truth for the
// denormalized mirror fields on User and Vehicle.
type DriverAssignment struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DriverID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"driver_id"`
	ContractorID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"contractor_id"`
	VehicleID      *uuid.UUID       `gorm:"type:uuid" json:"vehicle_id,omitempty"`
	FeederPointIDs []uuid.UUID      `gorm:"serializer:json" json:"feeder_point_ids,omitempty"`
	Status         AssignmentStatus `gorm:"not null;default:active;index" json:"status"`
	AssignedBy     uuid.UUID        `gorm:"type:uuid;not null" json:"assigned_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (DriverAssignment) TableName() string { return "driver_assignments" }
