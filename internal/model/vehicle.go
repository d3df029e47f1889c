package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	VehicleTypeTruck     VehicleType = "truck"
	VehicleTypeVan       VehicleType = "van"
	VehicleTypeCompactor VehicleType = "compactor"
	VehicleTypeTipper    VehicleType = "tipper"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

type CapacityRange struct {
	Min float64
	Max float64
}

var capacityRanges = map[VehicleType]CapacityRange{
	VehicleTypeTruck:     {Min: 1, Max: 50},
	VehicleTypeVan:       {Min: 2, Max: 8},
	VehicleTypeCompactor: {Min: 5, Max: 25},
	VehicleTypeTipper:    {Min: 3, Max: 30},
}

func CapacityRangeFor(t VehicleType) (CapacityRange, bool) {
	r, ok := capacityRanges[t]
	return r, ok
}

// OverrideCapacityRange replaces the built-in range for a type. Called once at
// startup from config; not safe for concurrent use afterwards.
func OverrideCapacityRange(t VehicleType, r CapacityRange) {
	capacityRanges[t] = r
}

func ParseVehicleType(raw string) (VehicleType, bool) {
	switch VehicleType(strings.ToLower(strings.TrimSpace(raw))) {
	case VehicleTypeTruck:
		return VehicleTypeTruck, true
	case VehicleTypeVan:
		return VehicleTypeVan, true
	case VehicleTypeCompactor:
		return VehicleTypeCompactor, true
	case VehicleTypeTipper:
		return VehicleTypeTipper, true
	default:
		return "", false
	}
}

func ParseVehicleStatus(raw string) (VehicleStatus, bool) {
	switch VehicleStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case VehicleStatusActive:
		return VehicleStatusActive, true
	case VehicleStatusInactive:
		return VehicleStatusInactive, true
	case VehicleStatusMaintenance:
		return VehicleStatusMaintenance, true
	default:
		return "", false
	}
}

// Indian-style registration plates, e.g. MH12AB1234. Spacing and case are
// normalized before matching.
var plateRE = regexp.MustCompile(`^[A-Z]{2}[0-9]{1,2}[A-Z]{1,3}[0-9]{4}$`)

func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

func ValidPlate(raw string) bool {
	return plateRE.MatchString(NormalizePlate(raw))
}

type Vehicle struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Plate        string        `gorm:"uniqueIndex;not null" json:"plate"`
	Name         string        `json:"name"`
	Type         VehicleType   `gorm:"not null" json:"type"`
	Capacity     float64       `gorm:"not null" json:"capacity"`
	Status       VehicleStatus `gorm:"not null;default:active" json:"status"`
	Active       bool          `gorm:"not null;default:true" json:"active"`
	DriverID     *uuid.UUID    `gorm:"type:uuid" json:"driver_id,omitempty"`
	CreatedBy    uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	RegisteredAt time.Time     `gorm:"not null" json:"registered_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Vehicle) TableName() string { return "vehicles" }
