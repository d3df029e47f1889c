package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

// AssignmentService is the two-tier resource registry: admins bind vehicles
// and feeder points to contractors, contractors bind them to their drivers.
// At most one active assignment exists per (resource, tier); a new assign
// supersedes the prior record atomically instead of stacking a second one.
type AssignmentService struct {
	assignments  *repository.AssignmentRepository
	users        *repository.UserRepository
	vehicles     *repository.VehicleRepository
	feederPoints *repository.FeederPointRepository
	log          zerolog.Logger
}

func NewAssignmentService(
	assignments *repository.AssignmentRepository,
	users *repository.UserRepository,
	vehicles *repository.VehicleRepository,
	feederPoints *repository.FeederPointRepository,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments:  assignments,
		users:        users,
		vehicles:     vehicles,
		feederPoints: feederPoints,
		log:          log,
	}
}

type AssignInput struct {
	ResourceID   uuid.UUID
	ResourceKind model.ResourceKind
	ActorID      uuid.UUID
	Tier         model.AssignmentTier
	Notes        string
}

func (s *AssignmentService) Assign(ctx context.Context, input AssignInput, principal model.Principal) (*model.Assignment, error) {
	if err := s.authorizeTier(input.Tier, principal); err != nil {
		return nil, err
	}
	if input.ResourceID == uuid.Nil || input.ActorID == uuid.Nil {
		return nil, fmt.Errorf("%w: resource_id and actor_id are required", ErrInvalidInput)
	}

	if err := s.validateResource(ctx, input.ResourceID, input.ResourceKind); err != nil {
		return nil, err
	}
	if err := s.validateActor(ctx, input.ActorID, input.Tier, principal); err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		ID:           uuid.New(),
		ResourceID:   input.ResourceID,
		ResourceKind: input.ResourceKind,
		Tier:         input.Tier,
		AssignedTo:   input.ActorID,
		AssignedBy:   principal.UserID,
		Status:       model.AssignmentActive,
		Notes:        input.Notes,
		CreatedAt:    time.Now().UTC(),
	}

	superseded, err := s.assignments.CreateSuperseding(ctx, assignment)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent assign for the same resource won the index race
			return nil, fmt.Errorf("%w: resource already has an active assignment", ErrConflict)
		}
		return nil, err
	}

	event := s.log.Info().
		Str("resource_id", input.ResourceID.String()).
		Str("tier", string(input.Tier)).
		Str("assigned_to", input.ActorID.String())
	if superseded != nil {
		event = event.Str("superseded", superseded.ID.String())
	}
	event.Msg("resource assigned")
	return assignment, nil
}

// Unassign hard-deletes the active assignment for the (resource, tier).
// A missing record is a warn-level no-op, not an error.
func (s *AssignmentService) Unassign(ctx context.Context, resourceID uuid.UUID, tier model.AssignmentTier, principal model.Principal) error {
	if err := s.authorizeTier(tier, principal); err != nil {
		return err
	}

	existed, err := s.assignments.DeleteActive(ctx, resourceID, tier)
	if err != nil {
		return err
	}
	if !existed {
		s.log.Warn().
			Str("resource_id", resourceID.String()).
			Str("tier", string(tier)).
			Msg("unassign: no active assignment")
		return nil
	}

	s.log.Info().
		Str("resource_id", resourceID.String()).
		Str("tier", string(tier)).
		Msg("resource unassigned")
	return nil
}

func (s *AssignmentService) ListAssigned(ctx context.Context, tier model.AssignmentTier) ([]model.Assignment, error) {
	return s.assignments.ListActiveByTier(ctx, tier)
}

// ListUnassigned partitions the full resource set of a kind against the
// active assignments in a tier and returns the ids without one.
func (s *AssignmentService) ListUnassigned(ctx context.Context, kind model.ResourceKind, tier model.AssignmentTier) ([]uuid.UUID, error) {
	assigned, err := s.assignments.ListActiveByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	assignedSet := make(map[uuid.UUID]struct{}, len(assigned))
	for _, a := range assigned {
		if a.ResourceKind == kind {
			assignedSet[a.ResourceID] = struct{}{}
		}
	}

	var all []uuid.UUID
	switch kind {
	case model.ResourceVehicle:
		vehicles, err := s.vehicles.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range vehicles {
			all = append(all, v.ID)
		}
	case model.ResourceFeederPoint:
		fps, err := s.feederPoints.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, fp := range fps {
			all = append(all, fp.ID)
		}
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, kind)
	}

	unassigned := make([]uuid.UUID, 0, len(all))
	for _, id := range all {
		if _, ok := assignedSet[id]; !ok {
			unassigned = append(unassigned, id)
		}
	}
	return unassigned, nil
}

func (s *AssignmentService) AssignmentsForActor(ctx context.Context, actorID uuid.UUID, tier model.AssignmentTier) ([]model.Assignment, error) {
	return s.assignments.ListActiveByActor(ctx, actorID, tier)
}

func (s *AssignmentService) authorizeTier(tier model.AssignmentTier, principal model.Principal) error {
	switch tier {
	case model.TierAdminToContractor:
		if !principal.Can(model.CapAssignTasks) {
			return ErrPermissionDenied
		}
	case model.TierContractorToDriver:
		if !principal.Can(model.CapAssignRoutes) {
			return ErrPermissionDenied
		}
	default:
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, tier)
	}
	return nil
}

func (s *AssignmentService) validateResource(ctx context.Context, resourceID uuid.UUID, kind model.ResourceKind) error {
	switch kind {
	case model.ResourceVehicle:
		vehicle, err := s.vehicles.Get(ctx, resourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vehicle", ErrNotFound)
			}
			return err
		}
		if !vehicle.Active {
			return fmt.Errorf("%w: vehicle is deactivated", ErrInvalidInput)
		}
	case model.ResourceFeederPoint:
		if _, err := s.feederPoints.Get(ctx, resourceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: feeder point", ErrNotFound)
			}
			return err
		}
	default:
		return fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, kind)
	}
	return nil
}

func (s *AssignmentService) validateActor(ctx context.Context, actorID uuid.UUID, tier model.AssignmentTier, principal model.Principal) error {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: actor", ErrNotFound)
		}
		return err
	}
	if !actor.Active {
		return fmt.Errorf("%w: actor is deactivated", ErrInvalidInput)
	}

	switch tier {
	case model.TierAdminToContractor:
		if actor.Role != model.RoleContractor {
			return fmt.Errorf("%w: admin tier assigns to contractors, got role %q", ErrInvalidInput, actor.Role)
		}
	case model.TierContractorToDriver:
		if actor.Role != model.RoleDriver {
			return fmt.Errorf("%w: contractor tier assigns to drivers, got role %q", ErrInvalidInput, actor.Role)
		}
		// contractors may only assign to their own drivers; admins may act
		// across contractors
		if principal.IsContractor() {
			if actor.ContractorID == nil || *actor.ContractorID != principal.UserID {
				return fmt.Errorf("%w: driver belongs to another contractor", ErrPermissionDenied)
			}
		}
	}
	return nil
}
