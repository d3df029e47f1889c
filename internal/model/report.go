package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStats is the read-only rollup the admin dashboard renders.
type DashboardStats struct {
	TotalUsers        int64                   `json:"total_users"`
	ActiveUsers       int64                   `json:"active_users"`
	InactiveUsers     int64                   `json:"inactive_users"`
	UsersByRole       map[Role]int64          `json:"users_by_role"`
	PendingApprovals  int64                   `json:"pending_approvals"`
	TotalVehicles     int64                   `json:"total_vehicles"`
	VehiclesByStatus  map[VehicleStatus]int64 `json:"vehicles_by_status"`
	TotalFeederPoints int64                   `json:"total_feeder_points"`
	AssignedVehicles  int64                   `json:"assigned_vehicles"`
	// ZoneCoverage is assigned feeder points over total feeder points,
	// zero when there are no feeder points.
	ZoneCoverage float64   `json:"zone_coverage"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ConnectionState classifies a driver connection for the fleet overview.
type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "connected"
	ConnectionPartial      ConnectionState = "partial"
	ConnectionDisconnected ConnectionState = "disconnected"
)

// ConsistencyReport is the outcome of auditing one contractor/driver pair
// against its driver assignment. Issues are human-readable; an empty list
// means the mirror fields agree with the assignment.
type ConsistencyReport struct {
	ContractorID     uuid.UUID  `json:"contractor_id"`
	DriverID         uuid.UUID  `json:"driver_id"`
	AssignmentID     *uuid.UUID `json:"assignment_id,omitempty"`
	Issues           []string   `json:"issues"`
	IsDataConsistent bool       `json:"is_data_consistent"`
	CheckedAt        time.Time  `json:"checked_at"`
}

// ConnectionSummary joins one active driver assignment with the records it
// references.
type ConnectionSummary struct {
	AssignmentID   uuid.UUID       `json:"assignment_id"`
	DriverID       uuid.UUID       `json:"driver_id"`
	DriverName     string          `json:"driver_name"`
	ContractorID   uuid.UUID       `json:"contractor_id"`
	ContractorName string          `json:"contractor_name"`
	VehiclePlate   string          `json:"vehicle_plate,omitempty"`
	FeederPoints   []string        `json:"feeder_points,omitempty"`
	State          ConnectionState `json:"state"`
	Issues         []string        `json:"issues,omitempty"`
}
