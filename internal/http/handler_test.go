package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/db"
	"github.com/nurpe/swachh-fleet/internal/excel"
	"github.com/nurpe/swachh-fleet/internal/http/middleware"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/pdf"
	"github.com/nurpe/swachh-fleet/internal/repository"
	"github.com/nurpe/swachh-fleet/internal/service"
)

type testServer struct {
	router   *gin.Engine
	database *gorm.DB
	identity *auth.Identity
	tokens   *auth.Tokens
	users    *repository.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	log := zerolog.Nop()
	userRepo := repository.NewUserRepository(database)
	approvalRepo := repository.NewApprovalRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	feederPointRepo := repository.NewFeederPointRepository(database)
	assignmentRepo := repository.NewAssignmentRepository(database)
	driverAssignmentRepo := repository.NewDriverAssignmentRepository(database)

	identity := auth.NewIdentity(database)
	tokens := auth.NewTokens("test-secret", time.Hour)
	parser := auth.NewParser("test-secret")

	connections := service.NewConnectionService(driverAssignmentRepo, userRepo, vehicleRepo, feederPointRepo, log)
	handler := NewHandler(
		service.NewApprovalService(approvalRepo, userRepo, identity, log),
		service.NewUserService(userRepo, identity, log),
		service.NewVehicleService(vehicleRepo, log),
		service.NewFeederPointService(feederPointRepo),
		service.NewAssignmentService(assignmentRepo, userRepo, vehicleRepo, feederPointRepo, log),
		connections,
		service.NewDashboardService(
			userRepo, approvalRepo, vehicleRepo, feederPointRepo, assignmentRepo,
			connections, excel.NewGenerator(), pdf.NewGenerator(), log,
		),
		identity, tokens, log,
	)
	router := NewRouter(handler, middleware.Auth(parser), "test")

	return &testServer{
		router:   router,
		database: database,
		identity: identity,
		tokens:   tokens,
		users:    userRepo,
	}
}

func (s *testServer) seedAccount(t *testing.T, role model.Role, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		ID:       uuid.New(),
		FullName: "Seeded " + string(role),
		Email:    email,
		Role:     role,
		Active:   true,
	}
	require.NoError(t, s.users.Create(context.Background(), user))
	require.NoError(t, s.identity.SignUp(context.Background(), user.ID, email, password))
	return user
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndAuthorizedRequest(t *testing.T) {
	s := newTestServer(t)
	s.seedAccount(t, model.RoleAdmin, "admin@example.com", "secret1")

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token       string             `json:"token"`
		Permissions []model.Capability `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Contains(t, login.Permissions, model.CapManageUsers)

	rec = s.do(t, http.MethodGet, "/users", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	s.seedAccount(t, model.RoleAdmin, "admin@example.com", "secret1")

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/vehicles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/vehicles", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationToApprovalOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAccount(t, model.RoleAdmin, "admin@example.com", "secret1")
	adminToken, err := s.tokens.Mint(admin.ID, admin.Role)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"full_name": "Haul Co",
		"email":     "haulco@example.com",
		"password":  "secret1",
		"role":      "transport_contractor",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var submitted struct {
		Request model.ApprovalRequest `json:"request"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	rec = s.do(t, http.MethodPost, "/approvals/"+submitted.Request.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the approved contractor can now sign in
	rec = s.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "haulco@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// and shows up in the public approver list
	rec = s.do(t, http.MethodGet, "/contractors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var contractors struct {
		Contractors []model.User `json:"contractors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contractors))
	assert.Len(t, contractors.Contractors, 1)
}

func TestVehicleEndpointsEnforceRoles(t *testing.T) {
	s := newTestServer(t)
	contractor := s.seedAccount(t, model.RoleContractor, "contractor@example.com", "secret1")
	driver := s.seedAccount(t, model.RoleDriver, "driver@example.com", "secret1")

	contractorToken, err := s.tokens.Mint(contractor.ID, contractor.Role)
	require.NoError(t, err)
	driverToken, err := s.tokens.Mint(driver.ID, driver.Role)
	require.NoError(t, err)

	body := gin.H{"plate": "MH12AB1234", "type": "truck", "capacity": 12}

	rec := s.do(t, http.MethodPost, "/vehicles", driverToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/vehicles", contractorToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	// out-of-range capacity is a 400 before any write
	rec = s.do(t, http.MethodPost, "/vehicles", contractorToken, gin.H{
		"plate": "MH12AB9999", "type": "van", "capacity": 50,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
