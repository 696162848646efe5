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

type usageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) repository.UsageRepository {
	return &usageRepository{db: db}
}

// Upsert writes one ledger cell with a store-level conflict-resolving
// statement, so concurrent writes on the same (patient, supply, day) key
// cannot race a read-then-write pair. Quantity is always replaced; the
// diagnosis keeps its previous value when the incoming one is empty.
func (r *usageRepository) Upsert(ctx context.Context, record *model.UsageRecord) error {
	query := `
		INSERT INTO tracking (id, patient_id, supply_id, day_of_month, quantity, wound_diagnosis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (patient_id, supply_id, day_of_month) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			wound_diagnosis = CASE
				WHEN EXCLUDED.wound_diagnosis <> '' THEN EXCLUDED.wound_diagnosis
				ELSE tracking.wound_diagnosis
			END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	now := time.Now()
	row := r.db.QueryRowxContext(ctx, query,
		record.ID,
		record.PatientID,
		record.SupplyID,
		record.DayOfMonth,
		record.Quantity,
		record.WoundDiagnosis,
		now,
	)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert usage: %w", err)
	}
	record.UpdatedAt = now
	return nil
}

func (r *usageRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.UsageRecord, error) {
	query := `
		SELECT * FROM tracking
		WHERE patient_id = $1
		ORDER BY supply_id, day_of_month
	`
	var records []*model.UsageRecord
	err := r.db.SelectContext(ctx, &records, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	return records, nil
}
