package patient

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type Service interface {
	CreatePatient(ctx context.Context, identity *access.Identity, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, identity *access.Identity, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, identity *access.Identity, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, identity *access.Identity, id uuid.UUID) error
	ListPatients(ctx context.Context, identity *access.Identity, filters *model.PatientFilters) ([]*model.Patient, error)
}

type service struct {
	repo     repository.PatientRepository
	resolver *access.Resolver
}

func NewService(repo repository.PatientRepository, resolver *access.Resolver) Service {
	return &service{repo: repo, resolver: resolver}
}

func (s *service) CreatePatient(ctx context.Context, identity *access.Identity, req *model.CreatePatientRequest) (*model.Patient, error) {
	if !monthPattern.MatchString(req.Month) {
		return nil, apperrors.Validation("month must be formatted YYYY-MM")
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return nil, apperrors.Validation("invalid facilityId")
	}
	if err := access.CanAccessFacility(identity, facilityID); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Base:       model.Base{ID: uuid.New()},
		Name:       req.Name,
		Month:      req.Month,
		MRN:        req.MRN,
		FacilityID: facilityID,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("patient already registered for this facility and month", err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return patient, nil
}

func (s *service) GetPatient(ctx context.Context, identity *access.Identity, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.StoreFault(err)
	}
	if err := access.CanAccessFacility(identity, patient.FacilityID); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *service) UpdatePatient(ctx context.Context, identity *access.Identity, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if !monthPattern.MatchString(req.Month) {
		return nil, apperrors.Validation("month must be formatted YYYY-MM")
	}

	patient, err := s.GetPatient(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	patient.Name = req.Name
	patient.Month = req.Month
	patient.MRN = req.MRN

	if err := s.repo.Update(ctx, patient); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("patient already registered for this facility and month", err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return patient, nil
}

// DeletePatient removes the patient and its owned usage rows.
func (s *service) DeletePatient(ctx context.Context, identity *access.Identity, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, identity, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.StoreFault(err)
	}
	s.resolver.Forget(id)
	return nil
}

// ListPatients pins non-admin identities to their home facility.
func (s *service) ListPatients(ctx context.Context, identity *access.Identity, filters *model.PatientFilters) ([]*model.Patient, error) {
	if identity == nil {
		return nil, apperrors.Unauthenticated("no identity")
	}
	if filters == nil {
		filters = &model.PatientFilters{}
	}
	if !identity.IsAdmin() {
		if identity.FacilityID == nil {
			return nil, apperrors.Forbidden("no home facility")
		}
		if filters.FacilityID != nil && *filters.FacilityID != *identity.FacilityID {
			return nil, apperrors.Forbidden("facility out of scope")
		}
		filters.FacilityID = identity.FacilityID
	}

	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return patients, nil
}
