package supply

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

type fakeSupplyRepo struct {
	supplies   map[uuid.UUID]*model.Supply
	usageCount map[uuid.UUID]int

	retireCalls  int
	retireResult *model.RetireSuppliesResult
}

func newFakeSupplyRepo() *fakeSupplyRepo {
	return &fakeSupplyRepo{
		supplies:   make(map[uuid.UUID]*model.Supply),
		usageCount: make(map[uuid.UUID]int),
	}
}

func (f *fakeSupplyRepo) Create(_ context.Context, supply *model.Supply) error {
	f.supplies[supply.ID] = supply
	return nil
}

func (f *fakeSupplyRepo) Get(_ context.Context, id uuid.UUID) (*model.Supply, error) {
	supply, ok := f.supplies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return supply, nil
}

func (f *fakeSupplyRepo) Update(_ context.Context, supply *model.Supply) error {
	f.supplies[supply.ID] = supply
	return nil
}

func (f *fakeSupplyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.supplies, id)
	return nil
}

func (f *fakeSupplyRepo) List(context.Context) ([]*model.Supply, error) {
	var out []*model.Supply
	for _, supply := range f.supplies {
		out = append(out, supply)
	}
	return out, nil
}

func (f *fakeSupplyRepo) CountUsage(_ context.Context, supplyID uuid.UUID) (int, error) {
	return f.usageCount[supplyID], nil
}

func (f *fakeSupplyRepo) RetireCodeRange(_ context.Context, codeStart, codeEnd string) (*model.RetireSuppliesResult, error) {
	f.retireCalls++
	return f.retireResult, nil
}

func adminIdentity() *access.Identity {
	return &access.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
}

func userIdentity() *access.Identity {
	facilityID := uuid.New()
	return &access.Identity{UserID: uuid.New(), Role: model.RoleUser, FacilityID: &facilityID}
}

func TestDeleteSupply_BlockedByUsage(t *testing.T) {
	repo := newFakeSupplyRepo()
	svc := NewService(repo)

	supply, err := svc.CreateSupply(context.Background(), adminIdentity(), &model.CreateSupplyRequest{
		Code: "A6196", Description: "alginate dressing", UnitCost: 3.00,
	})
	require.NoError(t, err)
	repo.usageCount[supply.ID] = 5

	err = svc.DeleteSupply(context.Background(), adminIdentity(), supply.ID)

	require.Error(t, err)
	var app *apperrors.AppError
	require.ErrorAs(t, err, &app)
	assert.Equal(t, apperrors.KindDependencyBlocked, app.Kind)
	assert.Equal(t, 5, app.BlockCount)
	assert.Contains(t, repo.supplies, supply.ID)
}

func TestDeleteSupply_SucceedsWithoutUsage(t *testing.T) {
	repo := newFakeSupplyRepo()
	svc := NewService(repo)

	supply, err := svc.CreateSupply(context.Background(), adminIdentity(), &model.CreateSupplyRequest{
		Code: "A6197", Description: "alginate dressing, large", UnitCost: 5.00,
	})
	require.NoError(t, err)

	err = svc.DeleteSupply(context.Background(), adminIdentity(), supply.ID)

	require.NoError(t, err)
	assert.NotContains(t, repo.supplies, supply.ID)
}

func TestCreateSupply_RequiresAdmin(t *testing.T) {
	svc := NewService(newFakeSupplyRepo())

	_, err := svc.CreateSupply(context.Background(), userIdentity(), &model.CreateSupplyRequest{
		Code: "A6196", Description: "dressing",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestCreateSupply_NegativeCostRejected(t *testing.T) {
	svc := NewService(newFakeSupplyRepo())

	_, err := svc.CreateSupply(context.Background(), adminIdentity(), &model.CreateSupplyRequest{
		Code: "A6196", Description: "dressing", UnitCost: -1,
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateSupply_MarkedCustom(t *testing.T) {
	svc := NewService(newFakeSupplyRepo())

	supply, err := svc.CreateSupply(context.Background(), adminIdentity(), &model.CreateSupplyRequest{
		Code: "CUST-01", Description: "compounded gel", UnitCost: 12.50,
	})

	require.NoError(t, err)
	assert.True(t, supply.IsCustom)
}

func TestRetireSupplies_ValidatesRange(t *testing.T) {
	repo := newFakeSupplyRepo()
	svc := NewService(repo)

	cases := []struct {
		name       string
		start, end string
	}{
		{"empty start", "", "A6199"},
		{"empty end", "A6196", ""},
		{"inverted range", "A6199", "A6196"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RetireSupplies(context.Background(), adminIdentity(), tc.start, tc.end)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
	assert.Zero(t, repo.retireCalls)
}

func TestRetireSupplies_ReportsCounts(t *testing.T) {
	repo := newFakeSupplyRepo()
	repo.retireResult = &model.RetireSuppliesResult{SuppliesDeleted: 4, UsageDeleted: 7}
	svc := NewService(repo)

	result, err := svc.RetireSupplies(context.Background(), adminIdentity(), "A6196", "A6199")

	require.NoError(t, err)
	assert.Equal(t, 4, result.SuppliesDeleted)
	assert.Equal(t, 7, result.UsageDeleted)
	assert.Equal(t, 1, repo.retireCalls)
}

func TestRetireSupplies_RequiresAdmin(t *testing.T) {
	repo := newFakeSupplyRepo()
	svc := NewService(repo)

	_, err := svc.RetireSupplies(context.Background(), userIdentity(), "A6196", "A6199")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Zero(t, repo.retireCalls)
}
