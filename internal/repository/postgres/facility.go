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

type facilityRepository struct {
	db *sqlx.DB
}

func NewFacilityRepository(db *sqlx.DB) repository.FacilityRepository {
	return &facilityRepository{db: db}
}

func (r *facilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	query := `
		INSERT INTO facilities (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	facility.CreatedAt = time.Now()
	facility.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		facility.ID,
		facility.Name,
		facility.CreatedAt,
		facility.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (r *facilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	query := `SELECT * FROM facilities WHERE id = $1`
	var facility model.Facility
	err := r.db.GetContext(ctx, &facility, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return &facility, nil
}

func (r *facilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	query := `UPDATE facilities SET name = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, facility.Name, time.Now(), facility.ID)
	return err
}

func (r *facilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM facilities WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *facilityRepository) List(ctx context.Context) ([]*model.Facility, error) {
	query := `SELECT * FROM facilities ORDER BY name`
	var facilities []*model.Facility
	err := r.db.SelectContext(ctx, &facilities, query)
	return facilities, err
}

func (r *facilityRepository) CountPatients(ctx context.Context, facilityID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM patients WHERE facility_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, facilityID)
	if err != nil {
		return 0, fmt.Errorf("failed to count referencing patients: %w", err)
	}
	return count, nil
}
