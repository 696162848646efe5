package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

// Dashboard aggregates the full per-patient view. LEFT JOINs keep
// zero-usage patients in the result with zero totals.
func (r *reportRepository) Dashboard(ctx context.Context, filters *model.ReportFilters) ([]*model.DashboardRow, error) {
	query := `
		SELECT
			p.id AS patient_id,
			p.name AS patient_name,
			p.month,
			p.mrn,
			f.name AS facility_name,
			COALESCE(SUM(t.quantity), 0) AS total_units,
			COALESCE(SUM(t.quantity * s.unit_cost), 0) AS total_cost,
			COALESCE(STRING_AGG(DISTINCT NULLIF(t.wound_diagnosis, ''), '; '), '') AS diagnoses,
			COALESCE(STRING_AGG(DISTINCT s.code, ', '), '') AS supply_codes,
			COALESCE(STRING_AGG(DISTINCT NULLIF(s.hcpcs, ''), ', '), '') AS hcpcs_codes
		FROM patients p
		JOIN facilities f ON f.id = p.facility_id
		LEFT JOIN tracking t ON t.patient_id = p.id
		LEFT JOIN supplies s ON s.id = t.supply_id
		WHERE ($1::uuid IS NULL OR p.facility_id = $1)
		  AND ($2 = '' OR p.month = $2)
		GROUP BY p.id, p.name, p.month, p.mrn, f.name
		ORDER BY f.name, p.name
	`
	var rows []*model.DashboardRow
	err := r.db.SelectContext(ctx, &rows, query, filters.FacilityID, filters.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to run dashboard aggregation: %w", err)
	}
	return rows, nil
}

// DashboardFallback is the degraded view: plain patient identity fields
// with zeroed aggregate columns, no joins beyond the patients table.
func (r *reportRepository) DashboardFallback(ctx context.Context, filters *model.ReportFilters) ([]*model.DashboardRow, error) {
	query := `
		SELECT
			p.id AS patient_id,
			p.name AS patient_name,
			p.month,
			p.mrn,
			'' AS facility_name,
			0 AS total_units,
			0 AS total_cost,
			'' AS diagnoses,
			'' AS supply_codes,
			'' AS hcpcs_codes
		FROM patients p
		WHERE ($1::uuid IS NULL OR p.facility_id = $1)
		  AND ($2 = '' OR p.month = $2)
		ORDER BY p.name
	`
	var rows []*model.DashboardRow
	err := r.db.SelectContext(ctx, &rows, query, filters.FacilityID, filters.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to run dashboard fallback: %w", err)
	}
	return rows, nil
}

// Itemized returns one row per (patient, supply) grouping with nonzero
// summed quantity.
func (r *reportRepository) Itemized(ctx context.Context, filters *model.ReportFilters) ([]*model.ItemizedRow, error) {
	query := `
		SELECT
			p.id AS patient_id,
			p.name AS patient_name,
			p.month,
			f.name AS facility_name,
			s.code AS supply_code,
			s.description,
			s.hcpcs,
			SUM(t.quantity) AS quantity,
			s.unit_cost,
			SUM(t.quantity) * s.unit_cost AS line_cost,
			COALESCE(MAX(NULLIF(t.wound_diagnosis, '')), '') AS wound_diagnosis
		FROM tracking t
		JOIN patients p ON p.id = t.patient_id
		JOIN facilities f ON f.id = p.facility_id
		JOIN supplies s ON s.id = t.supply_id
		WHERE ($1::uuid IS NULL OR p.facility_id = $1)
		  AND ($2 = '' OR p.month = $2)
		GROUP BY p.id, p.name, p.month, f.name, s.code, s.description, s.hcpcs, s.unit_cost
		HAVING SUM(t.quantity) > 0
		ORDER BY f.name, p.name, s.code
	`
	var rows []*model.ItemizedRow
	err := r.db.SelectContext(ctx, &rows, query, filters.FacilityID, filters.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to run itemized aggregation: %w", err)
	}
	return rows, nil
}
