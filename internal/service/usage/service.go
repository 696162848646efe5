package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
	"github.com/woundtrack/supply-api/pkg/metrics"
)

// Service is the usage ledger: per-patient, per-supply, per-day quantity
// facts with idempotent upsert semantics.
type Service interface {
	RecordUsage(ctx context.Context, identity *access.Identity, patientID, supplyID uuid.UUID, dayOfMonth, quantity int, woundDiagnosis string) (*model.UsageRecord, error)
	ListUsage(ctx context.Context, identity *access.Identity, patientID uuid.UUID) ([]*model.UsageRecord, error)
}

// CacheInvalidator drops cached report views after a ledger write. May be
// nil when no report cache is configured.
type CacheInvalidator interface {
	InvalidateFacility(ctx context.Context, facilityID string)
}

type service struct {
	repo        repository.UsageRepository
	resolver    *access.Resolver
	metrics     *metrics.Metrics
	invalidator CacheInvalidator
}

func NewService(repo repository.UsageRepository, resolver *access.Resolver, m *metrics.Metrics, invalidator CacheInvalidator) Service {
	return &service{repo: repo, resolver: resolver, metrics: m, invalidator: invalidator}
}

// RecordUsage validates, scope-checks, then upserts the ledger cell.
// Validation happens before any write; a duplicate-key race that escapes the
// store-level upsert is retried as an update, never surfaced.
func (s *service) RecordUsage(ctx context.Context, identity *access.Identity, patientID, supplyID uuid.UUID, dayOfMonth, quantity int, woundDiagnosis string) (*model.UsageRecord, error) {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil, apperrors.Validation("dayOfMonth must be between 1 and 31")
	}
	if quantity < 0 {
		return nil, apperrors.Validation("quantity must not be negative")
	}

	facilityID, err := s.resolver.PatientFacility(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccessFacility(identity, facilityID); err != nil {
		return nil, err
	}

	record := &model.UsageRecord{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      patientID,
		SupplyID:       supplyID,
		DayOfMonth:     dayOfMonth,
		Quantity:       quantity,
		WoundDiagnosis: woundDiagnosis,
	}

	start := time.Now()
	err = s.repo.Upsert(ctx, record)
	if postgres.IsUniqueViolation(err) {
		// Concurrent writer won the insert; the retry lands as an update.
		if s.metrics != nil {
			s.metrics.UsageConflictRetries.Inc()
		}
		err = s.repo.Upsert(ctx, record)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.UsageUpserts.WithLabelValues("error").Inc()
		}
		return nil, apperrors.StoreFault(err)
	}

	if s.metrics != nil {
		s.metrics.UsageUpserts.WithLabelValues("ok").Inc()
		s.metrics.UsageUpsertLatency.Observe(time.Since(start).Seconds())
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateFacility(ctx, facilityID.String())
	}
	return record, nil
}

// ListUsage returns the patient's ledger ordered by (supply, day).
func (s *service) ListUsage(ctx context.Context, identity *access.Identity, patientID uuid.UUID) ([]*model.UsageRecord, error) {
	facilityID, err := s.resolver.PatientFacility(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccessFacility(identity, facilityID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return records, nil
}
