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

type supplyRepository struct {
	db *sqlx.DB
}

func NewSupplyRepository(db *sqlx.DB) repository.SupplyRepository {
	return &supplyRepository{db: db}
}

func (r *supplyRepository) Create(ctx context.Context, supply *model.Supply) error {
	query := `
		INSERT INTO supplies (id, code, description, hcpcs, unit_cost, is_custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	supply.CreatedAt = time.Now()
	supply.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		supply.ID,
		supply.Code,
		supply.Description,
		supply.HCPCS,
		supply.UnitCost,
		supply.IsCustom,
		supply.CreatedAt,
		supply.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create supply: %w", err)
	}
	return nil
}

func (r *supplyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Supply, error) {
	query := `SELECT * FROM supplies WHERE id = $1`
	var supply model.Supply
	err := r.db.GetContext(ctx, &supply, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	return &supply, nil
}

func (r *supplyRepository) Update(ctx context.Context, supply *model.Supply) error {
	query := `UPDATE supplies SET description = $1, hcpcs = $2, unit_cost = $3, updated_at = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, supply.Description, supply.HCPCS, supply.UnitCost, time.Now(), supply.ID)
	return err
}

func (r *supplyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM supplies WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *supplyRepository) List(ctx context.Context) ([]*model.Supply, error) {
	query := `SELECT * FROM supplies ORDER BY code`
	var supplies []*model.Supply
	err := r.db.SelectContext(ctx, &supplies, query)
	return supplies, err
}

func (r *supplyRepository) CountUsage(ctx context.Context, supplyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM tracking WHERE supply_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, supplyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count referencing usage: %w", err)
	}
	return count, nil
}

// RetireCodeRange removes a retired supply-code range and everything that
// depends on it inside one transaction: dependent usage is counted and
// deleted, the supply rows deleted, and affected patients' updated_at
// touched. Any failure rolls the whole flow back.
func (r *supplyRepository) RetireCodeRange(ctx context.Context, codeStart, codeEnd string) (*model.RetireSuppliesResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin retirement transaction: %w", err)
	}
	defer tx.Rollback()

	var usageCount int
	countQuery := `
		SELECT COUNT(*) FROM tracking t
		JOIN supplies s ON s.id = t.supply_id
		WHERE s.code >= $1 AND s.code <= $2
	`
	if err := tx.GetContext(ctx, &usageCount, countQuery, codeStart, codeEnd); err != nil {
		return nil, fmt.Errorf("failed to count dependent usage: %w", err)
	}

	touchQuery := `
		UPDATE patients SET updated_at = $3
		WHERE id IN (
			SELECT DISTINCT t.patient_id FROM tracking t
			JOIN supplies s ON s.id = t.supply_id
			WHERE s.code >= $1 AND s.code <= $2
		)
	`
	if _, err := tx.ExecContext(ctx, touchQuery, codeStart, codeEnd, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch affected patients: %w", err)
	}

	deleteUsageQuery := `
		DELETE FROM tracking
		WHERE supply_id IN (SELECT id FROM supplies WHERE code >= $1 AND code <= $2)
	`
	if _, err := tx.ExecContext(ctx, deleteUsageQuery, codeStart, codeEnd); err != nil {
		return nil, fmt.Errorf("failed to delete dependent usage: %w", err)
	}

	deleteSuppliesQuery := `DELETE FROM supplies WHERE code >= $1 AND code <= $2`
	res, err := tx.ExecContext(ctx, deleteSuppliesQuery, codeStart, codeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to delete supplies: %w", err)
	}
	suppliesDeleted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit retirement transaction: %w", err)
	}

	return &model.RetireSuppliesResult{
		SuppliesDeleted: int(suppliesDeleted),
		UsageDeleted:    usageCount,
	}, nil
}
