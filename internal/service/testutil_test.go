package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/db"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

type fixture struct {
	db                *gorm.DB
	users             *repository.UserRepository
	approvals         *repository.ApprovalRepository
	vehicles          *repository.VehicleRepository
	feederPoints      *repository.FeederPointRepository
	assignments       *repository.AssignmentRepository
	driverAssignments *repository.DriverAssignmentRepository
	identity          *auth.Identity
	log               zerolog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	return &fixture{
		db:                database,
		users:             repository.NewUserRepository(database),
		approvals:         repository.NewApprovalRepository(database),
		vehicles:          repository.NewVehicleRepository(database),
		feederPoints:      repository.NewFeederPointRepository(database),
		assignments:       repository.NewAssignmentRepository(database),
		driverAssignments: repository.NewDriverAssignmentRepository(database),
		identity:          auth.NewIdentity(database),
		log:               zerolog.Nop(),
	}
}

func (f *fixture) approvalService() *ApprovalService {
	return NewApprovalService(f.approvals, f.users, f.identity, f.log)
}

func (f *fixture) userService() *UserService {
	return NewUserService(f.users, f.identity, f.log)
}

func (f *fixture) vehicleService() *VehicleService {
	return NewVehicleService(f.vehicles, f.log)
}

func (f *fixture) feederPointService() *FeederPointService {
	return NewFeederPointService(f.feederPoints)
}

func (f *fixture) assignmentService() *AssignmentService {
	return NewAssignmentService(f.assignments, f.users, f.vehicles, f.feederPoints, f.log)
}

func (f *fixture) connectionService() *ConnectionService {
	return NewConnectionService(f.driverAssignments, f.users, f.vehicles, f.feederPoints, f.log)
}

func (f *fixture) seedUser(t *testing.T, role model.Role, contractorID *uuid.UUID) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New(),
		FullName:     fmt.Sprintf("%s %s", role, uuid.NewString()[:8]),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		Role:         role,
		Active:       true,
		ContractorID: contractorID,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) seedAdmin(t *testing.T) *model.User {
	return f.seedUser(t, model.RoleAdmin, nil)
}

func (f *fixture) seedContractor(t *testing.T) *model.User {
	return f.seedUser(t, model.RoleContractor, nil)
}

func (f *fixture) seedDriver(t *testing.T, contractorID uuid.UUID) *model.User {
	return f.seedUser(t, model.RoleDriver, &contractorID)
}

func (f *fixture) seedVehicle(t *testing.T) *model.Vehicle {
	t.Helper()
	vehicle := &model.Vehicle{
		ID:           uuid.New(),
		Plate:        randomPlate(),
		Type:         model.VehicleTypeTruck,
		Capacity:     12,
		Status:       model.VehicleStatusActive,
		Active:       true,
		RegisteredAt: time.Now().UTC(),
	}
	require.NoError(t, f.vehicles.Create(context.Background(), vehicle))
	return vehicle
}

func (f *fixture) seedFeederPoint(t *testing.T) *model.FeederPoint {
	t.Helper()
	fp := &model.FeederPoint{
		ID:   uuid.New(),
		Name: "Point " + uuid.NewString()[:8],
		Ward: "Ward 1",
	}
	require.NoError(t, f.feederPoints.Create(context.Background(), fp))
	return fp
}

var plateSeq int

func randomPlate() string {
	plateSeq++
	return fmt.Sprintf("MH12AB%04d", plateSeq)
}

func asPrincipal(user *model.User) model.Principal {
	return model.Principal{UserID: user.ID, Role: user.Role}
}
