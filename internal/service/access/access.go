package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

// Identity is the authenticated caller: who they are, what role they hold,
// and which facility scopes them. FacilityID is nil for admins.
type Identity struct {
	UserID     uuid.UUID
	Email      string
	Role       model.Role
	FacilityID *uuid.UUID
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// CanAccessFacility is the single scoping rule every ledger, registry and
// reporter operation consults: admins act anywhere, everyone else only
// inside their home facility.
func CanAccessFacility(identity *Identity, facilityID uuid.UUID) error {
	if identity == nil {
		return apperrors.Unauthenticated("no identity")
	}
	if identity.IsAdmin() {
		return nil
	}
	if identity.FacilityID == nil || *identity.FacilityID != facilityID {
		return apperrors.Forbidden("facility out of scope")
	}
	return nil
}

// RequireAdmin gates admin-only operations.
func RequireAdmin(identity *Identity) error {
	if identity == nil {
		return apperrors.Unauthenticated("no identity")
	}
	if !identity.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// Resolver answers "which facility does this patient belong to" for scope
// checks, memoized so repeated ledger writes for the same patient skip the
// extra round trip.
type Resolver struct {
	patients repository.PatientRepository
	memo     *gocache.Cache
}

func NewResolver(patients repository.PatientRepository) *Resolver {
	return &Resolver{
		patients: patients,
		memo:     gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// PatientFacility resolves the patient's facility, returning NotFound when
// the patient does not exist.
func (r *Resolver) PatientFacility(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error) {
	if cached, ok := r.memo.Get(patientID.String()); ok {
		return cached.(uuid.UUID), nil
	}

	patient, err := r.patients.Get(ctx, patientID)
	if err != nil {
		if postgres.IsNoRows(err) {
			return uuid.Nil, apperrors.NotFound("patient")
		}
		return uuid.Nil, apperrors.StoreFault(err)
	}

	r.memo.Set(patientID.String(), patient.FacilityID, gocache.DefaultExpiration)
	return patient.FacilityID, nil
}

// Forget drops a memoized patient, for callers that move or delete one.
func (r *Resolver) Forget(patientID uuid.UUID) {
	r.memo.Delete(patientID.String())
}
