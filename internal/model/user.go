package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	FullName             string      `gorm:"not null" json:"full_name"`
	Email                string      `gorm:"uniqueIndex;not null" json:"email"`
	Phone                string      `json:"phone"`
	Role                 Role        `gorm:"not null" json:"role"`
	Active               bool        `gorm:"not null;default:true" json:"active"`
	ContractorID         *uuid.UUID  `gorm:"type:uuid" json:"contractor_id,omitempty"`
	AssignedVehicleID    *uuid.UUID  `gorm:"type:uuid" json:"assigned_vehicle_id,omitempty"`
	AssignedFeederPoints []uuid.UUID `gorm:"serializer:json" json:"assigned_feeder_point_ids,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Permissions is derived from the role, never stored.
func (u User) Permissions() []Capability {
	return PermissionsFor(u.Role)
}
