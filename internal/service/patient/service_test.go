package patient

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

type fakePatientRepo struct {
	patients  map[uuid.UUID]*model.Patient
	createErr error

	lastFilters *model.PatientFilters
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.patients[patient.ID] = patient
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := f.patients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return patient, nil
}

func (f *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	f.patients[patient.ID] = patient
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	f.lastFilters = filters
	var out []*model.Patient
	for _, patient := range f.patients {
		out = append(out, patient)
	}
	return out, nil
}

func setupPatientService() (Service, *fakePatientRepo) {
	repo := newFakePatientRepo()
	return NewService(repo, access.NewResolver(repo)), repo
}

func adminIdentity() *access.Identity {
	return &access.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
}

func TestCreatePatient_MonthFormat(t *testing.T) {
	svc, _ := setupPatientService()
	identity := adminIdentity()
	facilityID := uuid.New().String()

	for _, month := range []string{"2025-7", "2025-13", "2025-00", "July 2025", "202507"} {
		_, err := svc.CreatePatient(context.Background(), identity, &model.CreatePatientRequest{
			Name: "Doe, Jane", Month: month, FacilityID: facilityID,
		})
		require.Error(t, err, "month %q", month)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}

	patient, err := svc.CreatePatient(context.Background(), identity, &model.CreatePatientRequest{
		Name: "Doe, Jane", Month: "2025-07", FacilityID: facilityID,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-07", patient.Month)
}

func TestCreatePatient_DuplicateRegistrationConflict(t *testing.T) {
	svc, repo := setupPatientService()
	repo.createErr = &pq.Error{Code: "23505"}

	_, err := svc.CreatePatient(context.Background(), adminIdentity(), &model.CreatePatientRequest{
		Name: "Doe, Jane", Month: "2025-07", FacilityID: uuid.New().String(),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreatePatient_OutOfScopeFacilityForbidden(t *testing.T) {
	svc, _ := setupPatientService()

	home := uuid.New()
	identity := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &home}

	_, err := svc.CreatePatient(context.Background(), identity, &model.CreatePatientRequest{
		Name: "Doe, Jane", Month: "2025-07", FacilityID: uuid.New().String(),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestGetPatient_ScopedToFacility(t *testing.T) {
	svc, _ := setupPatientService()
	facilityID := uuid.New()

	created, err := svc.CreatePatient(context.Background(), adminIdentity(), &model.CreatePatientRequest{
		Name: "Doe, Jane", Month: "2025-07", FacilityID: facilityID.String(),
	})
	require.NoError(t, err)

	insider := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &facilityID}
	got, err := svc.GetPatient(context.Background(), insider, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	otherFacility := uuid.New()
	outsider := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &otherFacility}
	_, err = svc.GetPatient(context.Background(), outsider, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestListPatients_NonAdminPinnedToHomeFacility(t *testing.T) {
	svc, repo := setupPatientService()

	home := uuid.New()
	identity := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &home}

	_, err := svc.ListPatients(context.Background(), identity, nil)

	require.NoError(t, err)
	require.NotNil(t, repo.lastFilters.FacilityID)
	assert.Equal(t, home, *repo.lastFilters.FacilityID)
}

func TestListPatients_ExplicitOutOfScopeFilterForbidden(t *testing.T) {
	svc, _ := setupPatientService()

	home := uuid.New()
	other := uuid.New()
	identity := &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &home}

	_, err := svc.ListPatients(context.Background(), identity, &model.PatientFilters{FacilityID: &other})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestDeletePatient_RemovesPatient(t *testing.T) {
	svc, repo := setupPatientService()

	created, err := svc.CreatePatient(context.Background(), adminIdentity(), &model.CreatePatientRequest{
		Name: "Doe, Jane", Month: "2025-07", FacilityID: uuid.New().String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePatient(context.Background(), adminIdentity(), created.ID))
	assert.NotContains(t, repo.patients, created.ID)
}

func TestUpdatePatient_MonthValidatedBeforeLookup(t *testing.T) {
	svc, _ := setupPatientService()

	_, err := svc.UpdatePatient(context.Background(), adminIdentity(), uuid.New(), &model.UpdatePatientRequest{
		Name: "Doe, Jane", Month: "bad",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
