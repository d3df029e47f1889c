package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
	"github.com/nurpe/swachh-fleet/internal/repository"
)

// FeederPointService is read-oriented: the zone service owns the schema, this
// side only lists and joins. Create exists for seeding and admin tooling.
type FeederPointService struct {
	feederPoints *repository.FeederPointRepository
}

func NewFeederPointService(feederPoints *repository.FeederPointRepository) *FeederPointService {
	return &FeederPointService{feederPoints: feederPoints}
}

type CreateFeederPointInput struct {
	Name           string
	Ward           string
	Area           string
	HouseholdCount int
}

func (s *FeederPointService) Create(ctx context.Context, input CreateFeederPointInput, principal model.Principal) (*model.FeederPoint, error) {
	if !principal.Can(model.CapManageSystem) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.HouseholdCount < 0 {
		return nil, fmt.Errorf("%w: household count cannot be negative", ErrInvalidInput)
	}

	fp := &model.FeederPoint{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Ward:           strings.TrimSpace(input.Ward),
		Area:           strings.TrimSpace(input.Area),
		HouseholdCount: input.HouseholdCount,
	}
	if err := s.feederPoints.Create(ctx, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

func (s *FeederPointService) Get(ctx context.Context, id uuid.UUID) (*model.FeederPoint, error) {
	fp, err := s.feederPoints.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fp, nil
}

func (s *FeederPointService) List(ctx context.Context) ([]model.FeederPoint, error) {
	return s.feederPoints.List(ctx)
}
