package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/swachh-fleet/internal/model"
)

func TestAssignSupersedesPriorActive(t *testing.T) {
	f := newFixture(t)
	svc := f.assignmentService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	first := f.seedContractor(t)
	second := f.seedContractor(t)
	vehicle := f.seedVehicle(t)

	a1, err := svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      first.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	require.NoError(t, err)

	a2, err := svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      second.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	require.NoError(t, err)

	// exactly one active record per (resource, tier), pointing at the latest actor
	active, err := f.assignments.ActiveByResource(ctx, vehicle.ID, model.TierAdminToContractor)
	require.NoError(t, err)
	assert.Equal(t, a2.ID, active.ID)
	assert.Equal(t, second.ID, active.AssignedTo)

	var activeCount int64
	require.NoError(t, f.db.Model(&model.Assignment{}).
		Where("resource_id = ? AND assignment_type = ? AND status = ?",
			vehicle.ID, model.TierAdminToContractor, model.AssignmentActive).
		Count(&activeCount).Error)
	assert.EqualValues(t, 1, activeCount)

	var prior model.Assignment
	require.NoError(t, f.db.First(&prior, "id = ?", a1.ID).Error)
	assert.Equal(t, model.AssignmentInactive, prior.Status)
}

func TestAssignUnassignRoundTrip(t *testing.T) {
	f := newFixture(t)
	svc := f.assignmentService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)
	fp := f.seedFeederPoint(t)

	_, err := svc.Assign(ctx, AssignInput{
		ResourceID:   fp.ID,
		ResourceKind: model.ResourceFeederPoint,
		ActorID:      contractor.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	require.NoError(t, err)

	unassigned, err := svc.ListUnassigned(ctx, model.ResourceFeederPoint, model.TierAdminToContractor)
	require.NoError(t, err)
	assert.NotContains(t, unassigned, fp.ID)

	require.NoError(t, svc.Unassign(ctx, fp.ID, model.TierAdminToContractor, asPrincipal(admin)))

	unassigned, err = svc.ListUnassigned(ctx, model.ResourceFeederPoint, model.TierAdminToContractor)
	require.NoError(t, err)
	assert.Contains(t, unassigned, fp.ID)

	// a second unassign is a no-op, not an error
	require.NoError(t, svc.Unassign(ctx, fp.ID, model.TierAdminToContractor, asPrincipal(admin)))
}

func TestAssignTierAuthorization(t *testing.T) {
	f := newFixture(t)
	svc := f.assignmentService()
	ctx := context.Background()

	contractor := f.seedContractor(t)
	other := f.seedContractor(t)
	ownDriver := f.seedDriver(t, contractor.ID)
	foreignDriver := f.seedDriver(t, other.ID)
	vehicle := f.seedVehicle(t)

	// contractors cannot operate the admin tier
	_, err := svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      other.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(contractor))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// nor reach into another contractor's roster
	_, err = svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      foreignDriver.ID,
		Tier:         model.TierContractorToDriver,
	}, asPrincipal(contractor))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      ownDriver.ID,
		Tier:         model.TierContractorToDriver,
	}, asPrincipal(contractor))
	require.NoError(t, err)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.assignmentService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)
	driver := f.seedDriver(t, contractor.ID)
	vehicle := f.seedVehicle(t)

	_, err := svc.Assign(ctx, AssignInput{
		ResourceKind: model.ResourceVehicle,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Assign(ctx, AssignInput{
		ResourceID:   uuid.New(),
		ResourceKind: model.ResourceVehicle,
		ActorID:      contractor.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrNotFound)

	// admin tier assigns to contractors, not drivers
	_, err = svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      driver.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, f.vehicles.SoftDelete(ctx, vehicle.ID))
	_, err = svc.Assign(ctx, AssignInput{
		ResourceID:   vehicle.ID,
		ResourceKind: model.ResourceVehicle,
		ActorID:      contractor.ID,
		Tier:         model.TierAdminToContractor,
	}, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListAssignedByActor(t *testing.T) {
	f := newFixture(t)
	svc := f.assignmentService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)
	v1 := f.seedVehicle(t)
	v2 := f.seedVehicle(t)

	for _, v := range []*model.Vehicle{v1, v2} {
		_, err := svc.Assign(ctx, AssignInput{
			ResourceID:   v.ID,
			ResourceKind: model.ResourceVehicle,
			ActorID:      contractor.ID,
			Tier:         model.TierAdminToContractor,
		}, asPrincipal(admin))
		require.NoError(t, err)
	}

	assignments, err := svc.AssignmentsForActor(ctx, contractor.ID, model.TierAdminToContractor)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)

	all, err := svc.ListAssigned(ctx, model.TierAdminToContractor)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
