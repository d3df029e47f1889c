package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/auth"
	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

const minPasswordLength = 6

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ApprovalService runs the registration workflow: a prospective user submits
// a request, an approver promotes it into an account or rejects it. Both
// transitions are valid only from pending.
type ApprovalService struct {
	approvals *repository.ApprovalRepository
	users     *repository.UserRepository
	identity  *auth.Identity
	log       zerolog.Logger
}

func NewApprovalService(
	approvals *repository.ApprovalRepository,
	users *repository.UserRepository,
	identity *auth.Identity,
	log zerolog.Logger,
) *ApprovalService {
	return &ApprovalService{
		approvals: approvals,
		users:     users,
		identity:  identity,
		log:       log,
	}
}

type SubmitRequestInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     model.Role
	// ContractorID is required for driver requests: the applicant picks the
	// contractor who will approve them. Ignored for other roles.
	ContractorID *uuid.UUID
}

func (s *ApprovalService) Submit(ctx context.Context, input SubmitRequestInput) (*model.ApprovalRequest, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailRE.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if input.Role == model.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts are created directly, not via registration", ErrInvalidInput)
	}

	approverType := model.ApproverAdmin
	var approverRef *uuid.UUID
	if input.Role == model.RoleDriver {
		if input.ContractorID == nil {
			return nil, fmt.Errorf("%w: driver registration must name a contractor", ErrInvalidInput)
		}
		contractor, err := s.users.Get(ctx, *input.ContractorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: contractor", ErrNotFound)
			}
			return nil, err
		}
		if contractor.Role != model.RoleContractor || !contractor.Active {
			return nil, fmt.Errorf("%w: named approver is not an active contractor", ErrInvalidInput)
		}
		approverType = model.ApproverContractor
		approverRef = input.ContractorID
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	req := &model.ApprovalRequest{
		ID:           uuid.New(),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         input.Role,
		PasswordHash: hash,
		Status:       model.ApprovalStatusPending,
		ApproverType: approverType,
		ApproverRef:  approverRef,
		RequestedAt:  time.Now().UTC(),
	}
	if err := s.approvals.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("role", string(req.Role)).
		Msg("approval request submitted")
	return req, nil
}

// ListPending returns the requests the caller may process: admins see the
// shared pool, contractors see driver requests addressed to them.
func (s *ApprovalService) ListPending(ctx context.Context, principal model.Principal) ([]model.ApprovalRequest, error) {
	switch {
	case principal.Can(model.CapApproveRequests):
		return s.approvals.ListPendingForAdmin(ctx)
	case principal.Can(model.CapApproveDrivers):
		return s.approvals.ListPendingForContractor(ctx, principal.UserID)
	default:
		return nil, ErrPermissionDenied
	}
}

// Approve promotes a pending request into an account. The user document is
// written first under a client-generated id, the credential second; a failure
// between the two is a partial failure logged with both ids so an operator
// can reconcile, and the request stays terminal so a retry cannot duplicate
// the user.
func (s *ApprovalService) Approve(ctx context.Context, requestID uuid.UUID, principal model.Principal) (*model.User, error) {
	req, err := s.loadForProcessing(ctx, requestID, principal)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:       uuid.New(),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Active:   true,
	}
	if req.Role == model.RoleDriver {
		user.ContractorID = req.ApproverRef
	}

	// The status flip is the conditional write: if another approver got
	// here first, this returns ErrRecordNotFound and nothing is created.
	if err := s.approvals.MarkProcessed(ctx, req.ID, model.ApprovalStatusApproved, principal.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Msg("approve: request marked approved but user write failed")
		return nil, fmt.Errorf("%w: request %s approved without profile", ErrPartialFailure, req.ID)
	}

	if err := s.identity.SignUpHashed(ctx, user.ID, user.Email, req.PasswordHash); err != nil {
		s.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Str("user_id", user.ID.String()).
			Msg("approve: profile written but credential write failed")
		return nil, fmt.Errorf("%w: user %s has no credential", ErrPartialFailure, user.ID)
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("user_id", user.ID.String()).
		Str("approved_by", principal.UserID.String()).
		Msg("approval request approved")
	return user, nil
}

// Reject marks the request terminal without creating anything. Rejecting an
// already-terminal request fails with ErrAlreadyProcessed, never silently.
func (s *ApprovalService) Reject(ctx context.Context, requestID uuid.UUID, principal model.Principal) error {
	req, err := s.loadForProcessing(ctx, requestID, principal)
	if err != nil {
		return err
	}

	if err := s.approvals.MarkProcessed(ctx, req.ID, model.ApprovalStatusRejected, principal.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlreadyProcessed
		}
		return err
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("rejected_by", principal.UserID.String()).
		Msg("approval request rejected")
	return nil
}

func (s *ApprovalService) loadForProcessing(ctx context.Context, requestID uuid.UUID, principal model.Principal) (*model.ApprovalRequest, error) {
	req, err := s.approvals.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !req.IsPending() {
		return nil, ErrAlreadyProcessed
	}

	switch req.ApproverType {
	case model.ApproverAdmin:
		if !principal.Can(model.CapApproveRequests) {
			return nil, ErrPermissionDenied
		}
	case model.ApproverContractor:
		admin := principal.Can(model.CapApproveRequests)
		owner := principal.Can(model.CapApproveDrivers) &&
			req.ApproverRef != nil && *req.ApproverRef == principal.UserID
		if !admin && !owner {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, fmt.Errorf("%w: unknown approver type %q", ErrInvalidInput, req.ApproverType)
	}
	return req, nil
}
