package model

import "strings"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContractor Role = "transport_contractor"
	RoleSwachhHR   Role = "swachh_hr"
	RoleDriver     Role = "driver"
)

type Capability string

const (
	CapManageUsers        Capability = "manage_users"
	CapViewAllReports     Capability = "view_all_reports"
	CapAssignTasks        Capability = "assign_tasks"
	CapGenerateReports    Capability = "generate_reports"
	CapManageSystem       Capability = "manage_system"
	CapApproveRequests    Capability = "approve_requests"
	CapManageDrivers      Capability = "manage_drivers"
	CapViewDriverReports  Capability = "view_driver_reports"
	CapAssignRoutes       Capability = "assign_routes"
	CapManageVehicles     Capability = "manage_vehicles"
	CapApproveDrivers     Capability = "approve_drivers"
	CapManageWorkers      Capability = "manage_workers"
	CapViewReports        Capability = "view_reports"
	CapSubmitReports      Capability = "submit_reports"
	CapViewAssignedRoutes Capability = "view_assigned_routes"
	CapUpdateStatus       Capability = "update_status"
)

var rolePermissions = map[Role][]Capability{
	RoleAdmin: {
		CapManageUsers,
		CapViewAllReports,
		CapAssignTasks,
		CapGenerateReports,
		CapManageSystem,
		CapApproveRequests,
	},
	RoleContractor: {
		CapManageDrivers,
		CapViewDriverReports,
		CapAssignRoutes,
		CapManageVehicles,
		CapApproveDrivers,
	},
	RoleSwachhHR: {
		CapManageWorkers,
		CapViewReports,
		CapAssignTasks,
		CapGenerateReports,
	},
	RoleDriver: {
		CapSubmitReports,
		CapViewAssignedRoutes,
		CapUpdateStatus,
	},
}

// PermissionsFor returns the capability set for a role. Unknown roles get the
// driver set, which is the most restricted one.
func PermissionsFor(role Role) []Capability {
	caps, ok := rolePermissions[role]
	if !ok {
		caps = rolePermissions[RoleDriver]
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

func (r Role) HasCapability(cap Capability) bool {
	for _, c := range PermissionsFor(r) {
		if c == cap {
			return true
		}
	}
	return false
}

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleContractor:
		return RoleContractor, true
	case RoleSwachhHR:
		return RoleSwachhHR, true
	case RoleDriver:
		return RoleDriver, true
	default:
		return "", false
	}
}
