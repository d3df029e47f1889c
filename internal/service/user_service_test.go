package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/swachh-fleet/internal/model"
)

func TestCreateUserDirect(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	admin := f.seedAdmin(t)

	user, err := svc.Create(ctx, CreateUserInput{
		FullName: "Meera Joshi",
		Email:    "Meera@Example.com",
		Password: "secret1",
		Role:     model.RoleSwachhHR,
	}, asPrincipal(admin))
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", user.Email)
	assert.True(t, user.Active)

	signedIn, err := f.identity.SignIn(ctx, "meera@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn)

	// duplicate email is a conflict
	_, err = svc.Create(ctx, CreateUserInput{
		FullName: "Other",
		Email:    "meera@example.com",
		Password: "secret1",
		Role:     model.RoleSwachhHR,
	}, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateUserAuthorization(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()

	contractor := f.seedContractor(t)
	_, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Meera Joshi",
		Email:    "meera@example.com",
		Password: "secret1",
		Role:     model.RoleSwachhHR,
	}, asPrincipal(contractor))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestToggleActive(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)

	user, err := svc.ToggleActive(ctx, contractor.ID, asPrincipal(admin))
	require.NoError(t, err)
	assert.False(t, user.Active)

	user, err = svc.ToggleActive(ctx, contractor.ID, asPrincipal(admin))
	require.NoError(t, err)
	assert.True(t, user.Active)

	_, err = svc.ToggleActive(ctx, uuid.New(), asPrincipal(admin))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ToggleActive(ctx, admin.ID, asPrincipal(contractor))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	user := f.seedUser(t, model.RoleSwachhHR, nil)

	changed, err := svc.ChangeRole(ctx, user.ID, model.RoleContractor, asPrincipal(admin))
	require.NoError(t, err)
	assert.Equal(t, model.RoleContractor, changed.Role)

	// same role is a no-op
	same, err := svc.ChangeRole(ctx, user.ID, model.RoleContractor, asPrincipal(admin))
	require.NoError(t, err)
	assert.Equal(t, model.RoleContractor, same.Role)
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)
	other := f.seedContractor(t)
	own := f.seedDriver(t, contractor.ID)
	f.seedDriver(t, other.ID)

	all, err := svc.List(ctx, nil, asPrincipal(admin))
	require.NoError(t, err)
	assert.Len(t, all, 5)

	role := model.RoleDriver
	drivers, err := svc.List(ctx, &role, asPrincipal(admin))
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	// contractors only see their own roster
	mine, err := svc.List(ctx, nil, asPrincipal(contractor))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, own.ID, mine[0].ID)

	_, err = svc.List(ctx, nil, asPrincipal(own))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListActiveContractors(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	active := f.seedContractor(t)
	inactive := f.seedContractor(t)
	_, err := svc.ToggleActive(ctx, inactive.ID, asPrincipal(admin))
	require.NoError(t, err)

	contractors, err := svc.ListActiveContractors(ctx)
	require.NoError(t, err)
	require.Len(t, contractors, 1)
	assert.Equal(t, active.ID, contractors[0].ID)
}
