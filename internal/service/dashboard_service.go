package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

type ExcelGenerator interface {
	Generate(stats model.DashboardStats) ([]byte, error)
}

type PDFGenerator interface {
	Generate(summaries []model.ConnectionSummary) ([]byte, error)
}

// DashboardService computes the read-only rollups the admin screens render.
// No mutation; empty collections roll up to zeros, ratios never divide by
// zero.
type DashboardService struct {
	users        *repository.UserRepository
	approvals    *repository.ApprovalRepository
	vehicles     *repository.VehicleRepository
	feederPoints *repository.FeederPointRepository
	assignments  *repository.AssignmentRepository
	connections  *ConnectionService
	excel        ExcelGenerator
	pdf          PDFGenerator
	log          zerolog.Logger
}

func NewDashboardService(
	users *repository.UserRepository,
	approvals *repository.ApprovalRepository,
	vehicles *repository.VehicleRepository,
	feederPoints *repository.FeederPointRepository,
	assignments *repository.AssignmentRepository,
	connections *ConnectionService,
	excel ExcelGenerator,
	pdf PDFGenerator,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		users:        users,
		approvals:    approvals,
		vehicles:     vehicles,
		feederPoints: feederPoints,
		assignments:  assignments,
		connections:  connections,
		excel:        excel,
		pdf:          pdf,
		log:          log,
	}
}

func (s *DashboardService) Stats(ctx context.Context, principal model.Principal) (*model.DashboardStats, error) {
	if !principal.Can(model.CapViewAllReports) && !principal.Can(model.CapViewReports) {
		return nil, ErrPermissionDenied
	}

	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	active, inactive, err := s.users.CountByActive(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.approvals.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	vehiclesByStatus, err := s.vehicles.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalFeederPoints, err := s.feederPoints.Count(ctx)
	if err != nil {
		return nil, err
	}
	assignedVehicles, err := s.assignments.CountDistinctActiveResources(ctx, model.ResourceVehicle)
	if err != nil {
		return nil, err
	}
	assignedZones, err := s.assignments.CountDistinctActiveResources(ctx, model.ResourceFeederPoint)
	if err != nil {
		return nil, err
	}

	var totalVehicles int64
	for _, count := range vehiclesByStatus {
		totalVehicles += count
	}

	stats := &model.DashboardStats{
		TotalUsers:        active + inactive,
		ActiveUsers:       active,
		InactiveUsers:     inactive,
		UsersByRole:       byRole,
		PendingApprovals:  pending,
		TotalVehicles:     totalVehicles,
		VehiclesByStatus:  vehiclesByStatus,
		TotalFeederPoints: totalFeederPoints,
		AssignedVehicles:  assignedVehicles,
		ZoneCoverage:      ratio(assignedZones, totalFeederPoints),
		GeneratedAt:       time.Now().UTC(),
	}
	return stats, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *DashboardService) ExportExcel(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	if !principal.Can(model.CapGenerateReports) {
		return nil, ErrPermissionDenied
	}

	stats, err := s.Stats(ctx, principal)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*stats)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: fmt.Sprintf("dashboard-%s.xlsx", stats.GeneratedAt.Format("20060102-150405")),
		Content:  content,
	}, nil
}

func (s *DashboardService) ExportConnectionsPDF(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	if !principal.Can(model.CapGenerateReports) && !principal.Can(model.CapViewDriverReports) {
		return nil, ErrPermissionDenied
	}

	summaries, err := s.connections.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(summaries)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("connections-%s.pdf", strings.ToLower(time.Now().UTC().Format("20060102-150405")))
	return &ExportResult{FileName: name, Content: content}, nil
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
