package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/swachh-fleet/internal/model"
)

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input SubmitRequestInput
	}{
		{
			name:  "missing full name",
			input: SubmitRequestInput{Email: "a@b.com", Password: "secret1", Role: model.RoleContractor},
		},
		{
			name:  "malformed email",
			input: SubmitRequestInput{FullName: "A", Email: "not-an-email", Password: "secret1", Role: model.RoleContractor},
		},
		{
			name:  "short password",
			input: SubmitRequestInput{FullName: "A", Email: "a@b.com", Password: "abc", Role: model.RoleContractor},
		},
		{
			name:  "admin role not registrable",
			input: SubmitRequestInput{FullName: "A", Email: "a@b.com", Password: "secret1", Role: model.RoleAdmin},
		},
		{
			name:  "driver without contractor",
			input: SubmitRequestInput{FullName: "A", Email: "a@b.com", Password: "secret1", Role: model.RoleDriver},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSubmitDriverNamingUnknownContractor(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()

	missing := uuid.New()
	_, err := svc.Submit(context.Background(), SubmitRequestInput{
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.com",
		Password:     "secret1",
		Role:         model.RoleDriver,
		ContractorID: &missing,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDriverApprovalFlow(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	ctx := context.Background()

	contractor := f.seedContractor(t)

	req, err := svc.Submit(ctx, SubmitRequestInput{
		FullName:     "Ravi Kumar",
		Email:        "Ravi.Kumar@Example.com",
		Phone:        "9876543210",
		Password:     "secret1",
		Role:         model.RoleDriver,
		ContractorID: &contractor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusPending, req.Status)
	assert.Equal(t, model.ApproverContractor, req.ApproverType)
	require.NotNil(t, req.ApproverRef)
	assert.Equal(t, contractor.ID, *req.ApproverRef)
	assert.Equal(t, "ravi.kumar@example.com", req.Email)

	pending, err := svc.ListPending(ctx, asPrincipal(contractor))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)

	user, err := svc.Approve(ctx, req.ID, asPrincipal(contractor))
	require.NoError(t, err)
	assert.Equal(t, model.RoleDriver, user.Role)
	assert.True(t, user.Active)
	require.NotNil(t, user.ContractorID)
	assert.Equal(t, contractor.ID, *user.ContractorID)

	// the password hashed at submission time now signs in
	signedIn, err := f.identity.SignIn(ctx, "ravi.kumar@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn)

	// the request is terminal; a second approve cannot duplicate the user
	_, err = svc.Approve(ctx, req.ID, asPrincipal(contractor))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var userCount int64
	require.NoError(t, f.db.Model(&model.User{}).Where("email = ?", "ravi.kumar@example.com").Count(&userCount).Error)
	assert.EqualValues(t, 1, userCount)
}

func TestContractorRequestGoesToAdminPool(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)

	req, err := svc.Submit(ctx, SubmitRequestInput{
		FullName: "Haul Co",
		Email:    "haulco@example.com",
		Password: "secret1",
		Role:     model.RoleContractor,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApproverAdmin, req.ApproverType)
	assert.Nil(t, req.ApproverRef)

	// contractors never see the admin pool
	pending, err := svc.ListPending(ctx, asPrincipal(contractor))
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = svc.ListPending(ctx, asPrincipal(admin))
	require.NoError(t, err)
	require.Len(t, pending, 1)

	user, err := svc.Approve(ctx, req.ID, asPrincipal(admin))
	require.NoError(t, err)
	assert.Equal(t, model.RoleContractor, user.Role)
	assert.Nil(t, user.ContractorID)
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	ctx := context.Background()

	admin := f.seedAdmin(t)

	req, err := svc.Submit(ctx, SubmitRequestInput{
		FullName: "Haul Co",
		Email:    "haulco@example.com",
		Password: "secret1",
		Role:     model.RoleContractor,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, req.ID, asPrincipal(admin)))

	err = svc.Reject(ctx, req.ID, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, err = svc.Approve(ctx, req.ID, asPrincipal(admin))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// nothing was created
	var userCount int64
	require.NoError(t, f.db.Model(&model.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 1, userCount) // the seeded admin only
}

func TestApprovalAuthorization(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	ctx := context.Background()

	admin := f.seedAdmin(t)
	contractor := f.seedContractor(t)
	other := f.seedContractor(t)
	driver := f.seedDriver(t, contractor.ID)

	req, err := svc.Submit(ctx, SubmitRequestInput{
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.com",
		Password:     "secret1",
		Role:         model.RoleDriver,
		ContractorID: &contractor.ID,
	})
	require.NoError(t, err)

	// only the named contractor or an admin may process it
	_, err = svc.Approve(ctx, req.ID, asPrincipal(other))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.Reject(ctx, req.ID, asPrincipal(driver))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ListPending(ctx, asPrincipal(driver))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Approve(ctx, req.ID, asPrincipal(admin))
	require.NoError(t, err)
}

func TestProcessMissingRequest(t *testing.T) {
	f := newFixture(t)
	svc := f.approvalService()
	admin := f.seedAdmin(t)

	_, err := svc.Approve(context.Background(), uuid.New(), asPrincipal(admin))
	assert.ErrorIs(t, err, ErrNotFound)
}
