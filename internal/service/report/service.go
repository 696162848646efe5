package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
	"github.com/woundtrack/supply-api/pkg/metrics"
)

// DashboardReport is a dashboard result together with the mode that
// produced it.
type DashboardReport struct {
	Mode model.ReportMode
	Rows []*model.DashboardRow
}

// ItemizedReport is an itemized result together with its mode.
type ItemizedReport struct {
	Mode model.ReportMode
	Rows []*model.ItemizedRow
}

type Service interface {
	Dashboard(ctx context.Context, identity *access.Identity, facilityID *uuid.UUID, month string) (*DashboardReport, error)
	Itemized(ctx context.Context, identity *access.Identity, facilityID *uuid.UUID, month string) (*ItemizedReport, error)
}

type service struct {
	repo    repository.ReportRepository
	cache   *Cache
	metrics *metrics.Metrics
}

func NewService(repo repository.ReportRepository, cache *Cache, m *metrics.Metrics) Service {
	return &service{repo: repo, cache: cache, metrics: m}
}

// scope pins non-admin identities to their home facility no matter what
// filter they asked for; an explicit filter outside their scope is
// Forbidden rather than silently rewritten.
func (s *service) scope(identity *access.Identity, facilityID *uuid.UUID) (*uuid.UUID, error) {
	if identity == nil {
		return nil, apperrors.Unauthenticated("no identity")
	}
	if identity.IsAdmin() {
		return facilityID, nil
	}
	if identity.FacilityID == nil {
		return nil, apperrors.Forbidden("no home facility")
	}
	if facilityID != nil && *facilityID != *identity.FacilityID {
		return nil, apperrors.Forbidden("facility out of scope")
	}
	return identity.FacilityID, nil
}

// Dashboard runs the primary aggregation, dropping to the degraded view on
// a store fault. The degraded view is the one sanctioned silent-filter
// exception: zeroed aggregates, HTTP-success status, logged and counted.
func (s *service) Dashboard(ctx context.Context, identity *access.Identity, facilityID *uuid.UUID, month string) (*DashboardReport, error) {
	scoped, err := s.scope(identity, facilityID)
	if err != nil {
		return nil, err
	}
	filters := &model.ReportFilters{FacilityID: scoped, Month: month}

	if s.metrics != nil {
		s.metrics.ReportRequests.WithLabelValues("dashboard").Inc()
	}

	key := cacheKey("dashboard", filters)
	var cached []*model.DashboardRow
	if s.cache.get(ctx, key, &cached) {
		if s.metrics != nil {
			s.metrics.ReportCacheHits.WithLabelValues("dashboard").Inc()
		}
		return &DashboardReport{Mode: model.ReportModePrimary, Rows: cached}, nil
	}

	rows, err := s.repo.Dashboard(ctx, filters)
	if err == nil {
		s.cache.set(ctx, key, rows)
		return &DashboardReport{Mode: model.ReportModePrimary, Rows: rows}, nil
	}

	log.Warn().Err(err).Str("view", "dashboard").Msg("primary aggregation failed, serving degraded view")
	if s.metrics != nil {
		s.metrics.ReportDegraded.WithLabelValues("dashboard").Inc()
	}

	fallback, fbErr := s.repo.DashboardFallback(ctx, filters)
	if fbErr != nil {
		return nil, apperrors.StoreFault(fbErr)
	}
	return &DashboardReport{Mode: model.ReportModeDegraded, Rows: fallback}, nil
}

// Itemized has the same mode machine as Dashboard; its degraded view
// carries one line per patient with only identity fields populated.
func (s *service) Itemized(ctx context.Context, identity *access.Identity, facilityID *uuid.UUID, month string) (*ItemizedReport, error) {
	scoped, err := s.scope(identity, facilityID)
	if err != nil {
		return nil, err
	}
	filters := &model.ReportFilters{FacilityID: scoped, Month: month}

	if s.metrics != nil {
		s.metrics.ReportRequests.WithLabelValues("itemized").Inc()
	}

	key := cacheKey("itemized", filters)
	var cached []*model.ItemizedRow
	if s.cache.get(ctx, key, &cached) {
		if s.metrics != nil {
			s.metrics.ReportCacheHits.WithLabelValues("itemized").Inc()
		}
		return &ItemizedReport{Mode: model.ReportModePrimary, Rows: cached}, nil
	}

	rows, err := s.repo.Itemized(ctx, filters)
	if err == nil {
		s.cache.set(ctx, key, rows)
		return &ItemizedReport{Mode: model.ReportModePrimary, Rows: rows}, nil
	}

	log.Warn().Err(err).Str("view", "itemized").Msg("primary aggregation failed, serving degraded view")
	if s.metrics != nil {
		s.metrics.ReportDegraded.WithLabelValues("itemized").Inc()
	}

	fallback, fbErr := s.repo.DashboardFallback(ctx, filters)
	if fbErr != nil {
		return nil, apperrors.StoreFault(fbErr)
	}
	lines := make([]*model.ItemizedRow, 0, len(fallback))
	for _, row := range fallback {
		lines = append(lines, &model.ItemizedRow{
			PatientID:   row.PatientID,
			PatientName: row.PatientName,
			Month:       row.Month,
		})
	}
	return &ItemizedReport{Mode: model.ReportModeDegraded, Rows: lines}, nil
}
