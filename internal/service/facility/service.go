package facility

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

type Service interface {
	CreateFacility(ctx context.Context, identity *access.Identity, name string) (*model.Facility, error)
	GetFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error)
	UpdateFacility(ctx context.Context, identity *access.Identity, id uuid.UUID, name string) (*model.Facility, error)
	DeleteFacility(ctx context.Context, identity *access.Identity, id uuid.UUID) error
	ListFacilities(ctx context.Context) ([]*model.Facility, error)
}

type service struct {
	repo repository.FacilityRepository
}

func NewService(repo repository.FacilityRepository) Service {
	return &service{repo: repo}
}

func (s *service) CreateFacility(ctx context.Context, identity *access.Identity, name string) (*model.Facility, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.Validation("facility name is required")
	}

	facility := &model.Facility{
		Base: model.Base{ID: uuid.New()},
		Name: name,
	}
	if err := s.repo.Create(ctx, facility); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("facility name already in use", err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return facility, nil
}

func (s *service) GetFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	facility, err := s.repo.Get(ctx, id)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperrors.NotFound("facility")
		}
		return nil, apperrors.StoreFault(err)
	}
	return facility, nil
}

func (s *service) UpdateFacility(ctx context.Context, identity *access.Identity, id uuid.UUID, name string) (*model.Facility, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.Validation("facility name is required")
	}

	facility, err := s.GetFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	facility.Name = name

	if err := s.repo.Update(ctx, facility); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("facility name already in use", err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return facility, nil
}

// DeleteFacility refuses to remove a facility that patients still reference,
// reporting the exact blocking count so the caller can resolve it.
func (s *service) DeleteFacility(ctx context.Context, identity *access.Identity, id uuid.UUID) error {
	if err := access.RequireAdmin(identity); err != nil {
		return err
	}

	if _, err := s.GetFacility(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountPatients(ctx, id)
	if err != nil {
		return apperrors.StoreFault(err)
	}
	if count > 0 {
		return apperrors.DependencyBlocked(
			fmt.Sprintf("facility has %d referencing patients", count), count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.StoreFault(err)
	}
	return nil
}

func (s *service) ListFacilities(ctx context.Context) ([]*model.Facility, error) {
	facilities, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return facilities, nil
}
