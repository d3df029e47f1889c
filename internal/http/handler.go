package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/http/middleware"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/service"
)

type Handler struct {
	approvals    *service.ApprovalService
	users        *service.UserService
	vehicles     *service.VehicleService
	feederPoints *service.FeederPointService
	assignments  *service.AssignmentService
	connections  *service.ConnectionService
	dashboard    *service.DashboardService
	identity     *auth.Identity
	tokens       *auth.Tokens
	log          zerolog.Logger
}

func NewHandler(
	approvals *service.ApprovalService,
	users *service.UserService,
	vehicles *service.VehicleService,
	feederPoints *service.FeederPointService,
	assignments *service.AssignmentService,
	connections *service.ConnectionService,
	dashboard *service.DashboardService,
	identity *auth.Identity,
	tokens *auth.Tokens,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		approvals:    approvals,
		users:        users,
		vehicles:     vehicles,
		feederPoints: feederPoints,
		assignments:  assignments,
		connections:  connections,
		dashboard:    dashboard,
		identity:     identity,
		tokens:       tokens,
		log:          log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	// registration screens need the approver list before sign-in
	router.GET("/contractors", h.listContractors)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/approvals", h.listApprovals)
	protected.POST("/approvals/:id/approve", h.approveRequest)
	protected.POST("/approvals/:id/reject", h.rejectRequest)

	protected.GET("/users", h.listUsers)
	protected.POST("/users", h.createUser)
	protected.GET("/users/:id", h.getUser)
	protected.POST("/users/:id/toggle", h.toggleUser)
	protected.POST("/users/:id/role", h.changeUserRole)

	protected.GET("/vehicles", h.listVehicles)
	protected.POST("/vehicles", h.createVehicle)
	protected.GET("/vehicles/:id", h.getVehicle)
	protected.PUT("/vehicles/:id", h.updateVehicle)
	protected.POST("/vehicles/:id/toggle", h.toggleVehicle)
	protected.DELETE("/vehicles/:id", h.deleteVehicle)

	protected.GET("/feeder-points", h.listFeederPoints)
	protected.GET("/feeder-points/:id", h.getFeederPoint)
	protected.POST("/feeder-points", h.createFeederPoint)

	protected.POST("/assignments", h.assign)
	protected.DELETE("/assignments", h.unassign)
	protected.GET("/assignments", h.listAssignments)
	protected.GET("/assignments/unassigned", h.listUnassigned)

	protected.POST("/connections", h.connect)
	protected.DELETE("/connections/:driverId", h.disconnect)
	protected.GET("/connections", h.listConnections)
	protected.GET("/connections/check", h.checkConnection)
	protected.POST("/connections/repair", h.repairConnection)
	protected.GET("/connections/export/pdf", h.exportConnectionsPDF)

	protected.GET("/dashboard", h.dashboardStats)
	protected.GET("/dashboard/export", h.exportDashboard)
}

type registerRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required"`
	ContractorID string `json:"contractor_id"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	input := service.SubmitRequestInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
	}
	if strings.TrimSpace(req.ContractorID) != "" {
		contractorID, err := uuid.Parse(req.ContractorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractor_id"})
			return
		}
		input.ContractorID = &contractorID
	}

	request, err := h.approvals.Submit(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.identity.SignIn(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.handleError(c, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
		return
	}

	token, err := h.tokens.Mint(user.ID, user.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"user":        user,
		"permissions": user.Permissions(),
	})
}

func (h *Handler) listContractors(c *gin.Context) {
	contractors, err := h.users.ListActiveContractors(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contractors": contractors})
}

func (h *Handler) listApprovals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	requests, err := h.approvals.ListPending(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *Handler) approveRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	user, err := h.approvals.Approve(c.Request.Context(), requestID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) rejectRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.approvals.Reject(c.Request.Context(), requestID, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) listUsers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var role *model.Role
	if raw := c.Query("role"); raw != "" {
		parsed, ok := model.ParseRole(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		role = &parsed
	}

	users, err := h.users.List(c.Request.Context(), role, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type createUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *Handler) createUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.CreateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) getUser(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "permissions": user.Permissions()})
}

func (h *Handler) toggleUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.ToggleActive(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) changeUserRole(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user, err := h.users.ChangeRole(c.Request.Context(), id, role, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPartialFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation partially completed, contact an administrator"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
