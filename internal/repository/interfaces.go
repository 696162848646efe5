package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/model"
)

// All repository interfaces in one file
type (
	FacilityRepository interface {
		Create(ctx context.Context, facility *model.Facility) error
		Get(ctx context.Context, id uuid.UUID) (*model.Facility, error)
		Update(ctx context.Context, facility *model.Facility) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Facility, error)
		CountPatients(ctx context.Context, facilityID uuid.UUID) (int, error)
	}

	SupplyRepository interface {
		Create(ctx context.Context, supply *model.Supply) error
		Get(ctx context.Context, id uuid.UUID) (*model.Supply, error)
		Update(ctx context.Context, supply *model.Supply) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Supply, error)
		CountUsage(ctx context.Context, supplyID uuid.UUID) (int, error)
		// RetireCodeRange removes every supply whose code falls in the
		// inclusive range, together with dependent usage rows, touching the
		// affected patients' updated_at. Runs as a single transaction.
		RetireCodeRange(ctx context.Context, codeStart, codeEnd string) (*model.RetireSuppliesResult, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	UsageRepository interface {
		// Upsert writes the (patient, supply, day) cell atomically: quantity
		// always replaced, diagnosis replaced only when the new value is
		// non-empty.
		Upsert(ctx context.Context, record *model.UsageRecord) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.UsageRecord, error)
	}

	ReportRepository interface {
		Dashboard(ctx context.Context, filters *model.ReportFilters) ([]*model.DashboardRow, error)
		Itemized(ctx context.Context, filters *model.ReportFilters) ([]*model.ItemizedRow, error)
		// DashboardFallback serves the degraded view: patient identity fields
		// only, aggregates zeroed.
		DashboardFallback(ctx context.Context, filters *model.ReportFilters) ([]*model.DashboardRow, error)
	}
)
