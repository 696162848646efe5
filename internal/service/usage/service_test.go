package usage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

// fakeUsageRepo keeps the ledger in memory with the same conflict
// resolution the store applies: one cell per (patient, supply, day),
// quantity replaced, diagnosis kept when the new value is empty.
type fakeUsageRepo struct {
	cells map[string]*model.UsageRecord
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{cells: make(map[string]*model.UsageRecord)}
}

func cellKey(r *model.UsageRecord) string {
	return fmt.Sprintf("%s/%s/%d", r.PatientID, r.SupplyID, r.DayOfMonth)
}

func (f *fakeUsageRepo) Upsert(_ context.Context, record *model.UsageRecord) error {
	key := cellKey(record)
	if existing, ok := f.cells[key]; ok {
		existing.Quantity = record.Quantity
		if record.WoundDiagnosis != "" {
			existing.WoundDiagnosis = record.WoundDiagnosis
		}
		record.ID = existing.ID
		record.WoundDiagnosis = existing.WoundDiagnosis
		return nil
	}
	stored := *record
	f.cells[key] = &stored
	return nil
}

func (f *fakeUsageRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.UsageRecord, error) {
	var records []*model.UsageRecord
	for _, r := range f.cells {
		if r.PatientID == patientID {
			records = append(records, r)
		}
	}
	return records, nil
}

// fakePatientRepo backs the access resolver; only Get matters here.
type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	gets     int
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	f.gets++
	patient, ok := f.patients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return patient, nil
}

func (f *fakePatientRepo) Create(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Update(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (f *fakePatientRepo) List(context.Context, *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

func setupUsageService(t *testing.T) (Service, *fakeUsageRepo, *fakePatientRepo, uuid.UUID, uuid.UUID) {
	t.Helper()

	facilityID := uuid.New()
	patientID := uuid.New()
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
		patientID: {
			Base:       model.Base{ID: patientID},
			Name:       "Doe, Jane",
			Month:      "2025-07",
			FacilityID: facilityID,
		},
	}}
	repo := newFakeUsageRepo()
	svc := NewService(repo, access.NewResolver(patients), nil, nil)
	return svc, repo, patients, patientID, facilityID
}

func adminIdentity() *access.Identity {
	return &access.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
}

func TestRecordUsage_RepeatedWriteReplacesQuantity(t *testing.T) {
	svc, repo, _, patientID, _ := setupUsageService(t)
	supplyID := uuid.New()
	identity := adminIdentity()

	first, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 14, 2, "venous ulcer")
	require.NoError(t, err)

	second, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 14, 5, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.cells, 1)
	assert.Equal(t, 5, repo.cells[cellKey(second)].Quantity)
}

func TestRecordUsage_EmptyDiagnosisKeepsPrevious(t *testing.T) {
	svc, repo, _, patientID, _ := setupUsageService(t)
	supplyID := uuid.New()
	identity := adminIdentity()

	_, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 3, 1, "pressure injury")
	require.NoError(t, err)

	record, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 3, 4, "")
	require.NoError(t, err)

	assert.Equal(t, "pressure injury", repo.cells[cellKey(record)].WoundDiagnosis)
	assert.Equal(t, 4, repo.cells[cellKey(record)].Quantity)
}

func TestRecordUsage_NonEmptyDiagnosisReplaces(t *testing.T) {
	svc, repo, _, patientID, _ := setupUsageService(t)
	supplyID := uuid.New()
	identity := adminIdentity()

	_, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 3, 1, "pressure injury")
	require.NoError(t, err)

	record, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, 3, 1, "diabetic ulcer")
	require.NoError(t, err)

	assert.Equal(t, "diabetic ulcer", repo.cells[cellKey(record)].WoundDiagnosis)
}

func TestRecordUsage_DayOfMonthBounds(t *testing.T) {
	svc, repo, _, patientID, _ := setupUsageService(t)
	supplyID := uuid.New()
	identity := adminIdentity()

	for _, day := range []int{0, 32, -1} {
		_, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, day, 1, "")
		require.Error(t, err, "day %d", day)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
	assert.Empty(t, repo.cells, "rejected writes must not touch the ledger")

	for _, day := range []int{1, 31} {
		_, err := svc.RecordUsage(context.Background(), identity, patientID, supplyID, day, 1, "")
		require.NoError(t, err, "day %d", day)
	}
}

func TestRecordUsage_NegativeQuantityRejected(t *testing.T) {
	svc, _, _, patientID, _ := setupUsageService(t)
	identity := adminIdentity()

	_, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), 10, -1, "")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRecordUsage_ZeroQuantityAccepted(t *testing.T) {
	svc, _, _, patientID, _ := setupUsageService(t)
	identity := adminIdentity()

	record, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), 10, 0, "")

	require.NoError(t, err)
	assert.Equal(t, 0, record.Quantity)
}

func TestRecordUsage_OtherFacilityForbidden(t *testing.T) {
	svc, repo, _, patientID, _ := setupUsageService(t)

	otherFacility := uuid.New()
	identity := &access.Identity{
		UserID:     uuid.New(),
		Role:       model.RoleUser,
		FacilityID: &otherFacility,
	}

	_, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), 5, 1, "")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Empty(t, repo.cells)
}

func TestRecordUsage_HomeFacilityAllowed(t *testing.T) {
	svc, _, _, patientID, facilityID := setupUsageService(t)

	identity := &access.Identity{
		UserID:     uuid.New(),
		Role:       model.RoleUser,
		FacilityID: &facilityID,
	}

	_, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), 5, 1, "")

	require.NoError(t, err)
}

func TestRecordUsage_UnknownPatientNotFound(t *testing.T) {
	svc, _, _, _, _ := setupUsageService(t)

	_, err := svc.RecordUsage(context.Background(), adminIdentity(), uuid.New(), uuid.New(), 5, 1, "")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRecordUsage_FacilityLookupMemoized(t *testing.T) {
	svc, _, patients, patientID, _ := setupUsageService(t)
	identity := adminIdentity()

	for day := 1; day <= 3; day++ {
		_, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), day, 1, "")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, patients.gets)
}

func TestListUsage_ScopedToFacility(t *testing.T) {
	svc, _, _, patientID, _ := setupUsageService(t)
	identity := adminIdentity()

	_, err := svc.RecordUsage(context.Background(), identity, patientID, uuid.New(), 1, 2, "")
	require.NoError(t, err)

	records, err := svc.ListUsage(context.Background(), identity, patientID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	otherFacility := uuid.New()
	outsider := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &otherFacility}
	_, err = svc.ListUsage(context.Background(), outsider, patientID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}
