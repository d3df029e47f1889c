package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the dashboard rollup as a workbook: a summary sheet plus
// per-role and per-vehicle-status breakdowns.
func (g *Generator) Generate(stats model.DashboardStats) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, stats); err != nil {
		return nil, err
	}

	usersSheet := "Users by role"
	file.NewSheet(usersSheet)
	if err := g.writeRoleBreakdown(file, usersSheet, stats); err != nil {
		return nil, err
	}

	fleetSheet := "Fleet by status"
	file.NewSheet(fleetSheet)
	if err := g.writeFleetBreakdown(file, fleetSheet, stats); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, stats model.DashboardStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Generated at")
	set("B1", stats.GeneratedAt.Format("2006-01-02 15:04:05"))
	set("A2", "Total users")
	set("B2", stats.TotalUsers)
	set("A3", "Active users")
	set("B3", stats.ActiveUsers)
	set("A4", "Inactive users")
	set("B4", stats.InactiveUsers)
	set("A5", "Pending approvals")
	set("B5", stats.PendingApprovals)
	set("A6", "Vehicles")
	set("B6", stats.TotalVehicles)
	set("A7", "Assigned vehicles")
	set("B7", stats.AssignedVehicles)
	set("A8", "Feeder points")
	set("B8", stats.TotalFeederPoints)
	set("A9", "Zone coverage")
	set("B9", fmt.Sprintf("%.1f%%", stats.ZoneCoverage*100))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 22)
	return nil
}

func (g *Generator) writeRoleBreakdown(file *excelize.File, sheet string, stats model.DashboardStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Role")
	set("B1", "Users")

	roles := []model.Role{model.RoleAdmin, model.RoleContractor, model.RoleSwachhHR, model.RoleDriver}
	for i, role := range roles {
		row := i + 2
		set(fmt.Sprintf("A%d", row), string(role))
		set(fmt.Sprintf("B%d", row), stats.UsersByRole[role])
	}

	_ = file.SetColWidth(sheet, "A", "A", 26)
	_ = file.SetColWidth(sheet, "B", "B", 12)
	return nil
}

func (g *Generator) writeFleetBreakdown(file *excelize.File, sheet string, stats model.DashboardStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Status")
	set("B1", "Vehicles")

	statuses := []model.VehicleStatus{
		model.VehicleStatusActive,
		model.VehicleStatusInactive,
		model.VehicleStatusMaintenance,
	}
	for i, status := range statuses {
		row := i + 2
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), stats.VehiclesByStatus[status])
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 12)
	return nil
}
