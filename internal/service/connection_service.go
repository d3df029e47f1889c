package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

// ConnectionService manages driver connections (driver + contractor + vehicle
// + feeder points in one record) and audits the denormalized mirror fields
// against them. The driver_assignments record is ground truth; the mirror
// fields on users and vehicles are a projection of it, written only through
// projectMirror.
type ConnectionService struct {
	driverAssignments *repository.DriverAssignmentRepository
	users             *repository.UserRepository
	vehicles          *repository.VehicleRepository
	feederPoints      *repository.FeederPointRepository
	log               zerolog.Logger

	mu       sync.RWMutex
	watchers map[chan []model.ConnectionSummary]struct{}
}

func NewConnectionService(
	driverAssignments *repository.DriverAssignmentRepository,
	users *repository.UserRepository,
	vehicles *repository.VehicleRepository,
	feederPoints *repository.FeederPointRepository,
	log zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		driverAssignments: driverAssignments,
		users:             users,
		vehicles:          vehicles,
		feederPoints:      feederPoints,
		log:               log,
		watchers:          make(map[chan []model.ConnectionSummary]struct{}),
	}
}

type ConnectInput struct {
	DriverID       uuid.UUID
	VehicleID      *uuid.UUID
	FeederPointIDs []uuid.UUID
	Notes          string
}

// Connect binds a driver to the acting contractor together with a vehicle and
// feeder-point set, then projects the mirror fields from the new record.
func (s *ConnectionService) Connect(ctx context.Context, input ConnectInput, principal model.Principal) (*model.DriverAssignment, error) {
	if !principal.Can(model.CapManageDrivers) && !principal.Can(model.CapManageUsers) {
		return nil, ErrPermissionDenied
	}

	driver, err := s.users.Get(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", ErrNotFound)
		}
		return nil, err
	}
	if driver.Role != model.RoleDriver || !driver.Active {
		return nil, fmt.Errorf("%w: not an active driver", ErrInvalidInput)
	}

	contractorID := principal.UserID
	if principal.IsContractor() {
		if driver.ContractorID != nil && *driver.ContractorID != principal.UserID {
			return nil, fmt.Errorf("%w: driver belongs to another contractor", ErrPermissionDenied)
		}
	} else if driver.ContractorID != nil {
		// admin reconnecting keeps the driver's contractor
		contractorID = *driver.ContractorID
	}

	if input.VehicleID != nil {
		vehicle, err := s.vehicles.Get(ctx, *input.VehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: vehicle", ErrNotFound)
			}
			return nil, err
		}
		if !vehicle.Active {
			return nil, fmt.Errorf("%w: vehicle is deactivated", ErrInvalidInput)
		}
	}
	if len(input.FeederPointIDs) > 0 {
		fps, err := s.feederPoints.GetMany(ctx, input.FeederPointIDs)
		if err != nil {
			return nil, err
		}
		if len(fps) != len(input.FeederPointIDs) {
			return nil, fmt.Errorf("%w: feeder point", ErrNotFound)
		}
	}

	assignment := &model.DriverAssignment{
		ID:             uuid.New(),
		DriverID:       input.DriverID,
		ContractorID:   contractorID,
		VehicleID:      input.VehicleID,
		FeederPointIDs: input.FeederPointIDs,
		Status:         model.AssignmentActive,
		AssignedBy:     principal.UserID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.driverAssignments.CreateSuperseding(ctx, assignment); err != nil {
		return nil, err
	}

	if err := s.projectMirror(ctx, assignment); err != nil {
		s.log.Error().Err(err).
			Str("assignment_id", assignment.ID.String()).
			Msg("connect: assignment written but mirror projection failed")
		return nil, fmt.Errorf("%w: assignment %s not mirrored", ErrPartialFailure, assignment.ID)
	}

	s.log.Info().
		Str("driver_id", input.DriverID.String()).
		Str("contractor_id", contractorID.String()).
		Msg("driver connected")
	s.notify(ctx)
	return assignment, nil
}

// Disconnect deactivates the driver's active assignment and clears the
// mirror fields.
func (s *ConnectionService) Disconnect(ctx context.Context, driverID uuid.UUID, principal model.Principal) error {
	if !principal.Can(model.CapManageDrivers) && !principal.Can(model.CapManageUsers) {
		return ErrPermissionDenied
	}

	assignment, err := s.driverAssignments.ActiveByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if principal.IsContractor() && assignment.ContractorID != principal.UserID {
		return ErrPermissionDenied
	}

	if err := s.driverAssignments.Deactivate(ctx, assignment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// the driver stays on the contractor's roster; only the vehicle and
	// feeder-point mirrors are cleared
	roster := assignment.ContractorID
	if err := s.users.SetAssignmentMirror(ctx, driverID, &roster, nil, nil); err != nil {
		return err
	}
	if assignment.VehicleID != nil {
		if err := s.vehicles.SetDriverMirror(ctx, *assignment.VehicleID, nil, model.VehicleStatusActive); err != nil {
			return err
		}
	}

	s.log.Info().Str("driver_id", driverID.String()).Msg("driver disconnected")
	s.notify(ctx)
	return nil
}

// Check audits one contractor/driver pair against its active assignment.
// Inconsistencies are data, not errors: they come back as strings.
func (s *ConnectionService) Check(ctx context.Context, contractorID, driverID uuid.UUID) (*model.ConsistencyReport, error) {
	report := &model.ConsistencyReport{
		ContractorID: contractorID,
		DriverID:     driverID,
		Issues:       []string{},
		CheckedAt:    time.Now().UTC(),
	}

	driver, err := s.users.Get(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", ErrNotFound)
		}
		return nil, err
	}

	assignment, err := s.driverAssignments.ActiveByContractorDriver(ctx, contractorID, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: active driver assignment", ErrNotFound)
		}
		return nil, err
	}
	report.AssignmentID = &assignment.ID

	if driver.ContractorID == nil || *driver.ContractorID != contractorID {
		report.Issues = append(report.Issues, "contractorId mismatch")
	}
	if !uuidPtrEqual(assignment.VehicleID, driver.AssignedVehicleID) {
		report.Issues = append(report.Issues, "assignedVehicleId mismatch")
	}
	if !uuidSetEqual(assignment.FeederPointIDs, driver.AssignedFeederPoints) {
		report.Issues = append(report.Issues, "assignedFeederPointIds mismatch")
	}

	if assignment.VehicleID != nil {
		vehicle, err := s.vehicles.Get(ctx, *assignment.VehicleID)
		switch {
		case err == nil:
			if vehicle.DriverID == nil || *vehicle.DriverID != driverID {
				report.Issues = append(report.Issues, "vehicle driverId mismatch")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			report.Issues = append(report.Issues, "assigned vehicle record missing")
		default:
			return nil, err
		}
	}

	report.IsDataConsistent = len(report.Issues) == 0
	return report, nil
}

// Repair takes the active assignment as authoritative and rewrites the
// mirror fields from it. The two mirror writes are not atomic; repair is
// idempotent, so re-running after a partial write converges.
func (s *ConnectionService) Repair(ctx context.Context, contractorID, driverID uuid.UUID, principal model.Principal) error {
	if !principal.Can(model.CapManageUsers) && !principal.Can(model.CapManageDrivers) {
		return ErrPermissionDenied
	}

	assignment, err := s.driverAssignments.ActiveByContractorDriver(ctx, contractorID, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active assignment to repair from", ErrNotFound)
		}
		return err
	}

	if err := s.projectMirror(ctx, assignment); err != nil {
		return err
	}

	s.log.Info().
		Str("driver_id", driverID.String()).
		Str("assignment_id", assignment.ID.String()).
		Msg("connection repaired from assignment")
	s.notify(ctx)
	return nil
}

// ListAll joins every active assignment with its records and classifies each
// connection: connected (clean), partial (core records exist, issues found)
// or disconnected (contractor or driver record missing).
func (s *ConnectionService) ListAll(ctx context.Context) ([]model.ConnectionSummary, error) {
	assignments, err := s.driverAssignments.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ConnectionSummary, 0, len(assignments))
	for _, assignment := range assignments {
		summary := model.ConnectionSummary{
			AssignmentID: assignment.ID,
			DriverID:     assignment.DriverID,
			ContractorID: assignment.ContractorID,
		}

		driver, driverErr := s.users.Get(ctx, assignment.DriverID)
		contractor, contractorErr := s.users.Get(ctx, assignment.ContractorID)
		if isMissing(driverErr) || isMissing(contractorErr) {
			summary.State = model.ConnectionDisconnected
			if isMissing(driverErr) {
				summary.Issues = append(summary.Issues, "driver record missing")
			}
			if isMissing(contractorErr) {
				summary.Issues = append(summary.Issues, "contractor record missing")
			}
			summaries = append(summaries, summary)
			continue
		}
		if driverErr != nil {
			return nil, driverErr
		}
		if contractorErr != nil {
			return nil, contractorErr
		}

		summary.DriverName = driver.FullName
		summary.ContractorName = contractor.FullName

		if driver.ContractorID == nil || *driver.ContractorID != assignment.ContractorID {
			summary.Issues = append(summary.Issues, "contractorId mismatch")
		}
		if !uuidPtrEqual(assignment.VehicleID, driver.AssignedVehicleID) {
			summary.Issues = append(summary.Issues, "assignedVehicleId mismatch")
		}

		if assignment.VehicleID != nil {
			vehicle, err := s.vehicles.Get(ctx, *assignment.VehicleID)
			switch {
			case err == nil:
				summary.VehiclePlate = vehicle.Plate
				if vehicle.DriverID == nil || *vehicle.DriverID != assignment.DriverID {
					summary.Issues = append(summary.Issues, "vehicle driverId mismatch")
				}
			case isMissing(err):
				summary.Issues = append(summary.Issues, "assigned vehicle record missing")
			default:
				return nil, err
			}
		}

		if len(assignment.FeederPointIDs) > 0 {
			fps, err := s.feederPoints.GetMany(ctx, assignment.FeederPointIDs)
			if err != nil {
				return nil, err
			}
			for _, fp := range fps {
				summary.FeederPoints = append(summary.FeederPoints, fp.Name)
			}
			if len(fps) != len(assignment.FeederPointIDs) {
				summary.Issues = append(summary.Issues, "feeder point record missing")
			}
		}

		if len(summary.Issues) == 0 {
			summary.State = model.ConnectionConnected
		} else {
			summary.State = model.ConnectionPartial
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Subscribe returns a channel that receives a fresh ListAll result after
// every connection mutation. The channel holds one pending snapshot; under
// rapid churn intermediate snapshots are replaced, last one wins. The
// subscription ends when ctx is cancelled.
func (s *ConnectionService) Subscribe(ctx context.Context) <-chan []model.ConnectionSummary {
	ch := make(chan []model.ConnectionSummary, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
		close(ch)
	}()

	return ch
}

func (s *ConnectionService) notify(ctx context.Context) {
	s.mu.RLock()
	n := len(s.watchers)
	s.mu.RUnlock()
	if n == 0 {
		return
	}

	summaries, err := s.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("notify: building connection snapshot failed")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.watchers {
		select {
		case ch <- summaries:
		default:
			// replace the stale pending snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- summaries:
			default:
			}
		}
	}
}

// projectMirror is the single writer of the denormalized assignment fields:
// driver.contractorId / assignedVehicleId / assignedFeederPointIds and
// vehicle.driverId. Idempotent by construction.
func (s *ConnectionService) projectMirror(ctx context.Context, assignment *model.DriverAssignment) error {
	contractorID := assignment.ContractorID
	if err := s.users.SetAssignmentMirror(ctx, assignment.DriverID, &contractorID, assignment.VehicleID, assignment.FeederPointIDs); err != nil {
		return err
	}
	if assignment.VehicleID != nil {
		driverID := assignment.DriverID
		if err := s.vehicles.SetDriverMirror(ctx, *assignment.VehicleID, &driverID, model.VehicleStatusActive); err != nil {
			return err
		}
	}
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func uuidSetEqual(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
