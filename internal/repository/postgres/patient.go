package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name, month, mrn, facility_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Month,
		patient.MRN,
		patient.FacilityID,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `UPDATE patients SET name = $1, month = $2, mrn = $3, updated_at = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, patient.Name, patient.Month, patient.MRN, time.Now(), patient.ID)
	return err
}

// Delete removes the patient and its usage rows. Usage is owned by the
// patient, so the ledger rows go first.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tracking WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient usage: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE 1=1`
	args := []interface{}{}

	if filters != nil && filters.FacilityID != nil {
		args = append(args, *filters.FacilityID)
		query += fmt.Sprintf(" AND facility_id = $%d", len(args))
	}
	if filters != nil && filters.Month != "" {
		args = append(args, filters.Month)
		query += fmt.Sprintf(" AND month = $%d", len(args))
	}
	query += " ORDER BY name"

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	return patients, err
}
