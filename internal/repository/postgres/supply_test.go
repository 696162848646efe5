package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundtrack/supply-api/internal/repository"
)

func setupMockSupplyDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, repository.SupplyRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewSupplyRepository(sqlx.NewDb(db, "sqlmock"))
	return db, mock, repo
}

func TestRetireCodeRange_CommitsWholeFlow(t *testing.T) {
	db, mock, repo := setupMockSupplyDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tracking t\s+JOIN supplies s ON s.id = t.supply_id\s+WHERE s.code >= \$1 AND s.code <= \$2`).
		WithArgs("A6196", "A6199").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectExec(`UPDATE patients SET updated_at = \$3`).
		WithArgs("A6196", "A6199", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM tracking\s+WHERE supply_id IN`).
		WithArgs("A6196", "A6199").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(`DELETE FROM supplies WHERE code >= \$1 AND code <= \$2`).
		WithArgs("A6196", "A6199").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	result, err := repo.RetireCodeRange(context.Background(), "A6196", "A6199")

	require.NoError(t, err)
	assert.Equal(t, 4, result.SuppliesDeleted)
	assert.Equal(t, 7, result.UsageDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRetireCodeRange_RollsBackOnFailure(t *testing.T) {
	db, mock, repo := setupMockSupplyDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tracking t`).
		WithArgs("A6196", "A6199").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectExec(`UPDATE patients SET updated_at = \$3`).
		WithArgs("A6196", "A6199", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM tracking`).
		WithArgs("A6196", "A6199").
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := repo.RetireCodeRange(context.Background(), "A6196", "A6199")

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUsage(t *testing.T) {
	db, mock, repo := setupMockSupplyDB(t)
	defer db.Close()

	supplyID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tracking WHERE supply_id = \$1`).
		WithArgs(supplyID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountUsage(context.Background(), supplyID)

	require.NoError(t, err)
	assert.Equal(t, 12, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
