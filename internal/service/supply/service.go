package supply

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/service/access"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

type Service interface {
	CreateSupply(ctx context.Context, identity *access.Identity, req *model.CreateSupplyRequest) (*model.Supply, error)
	GetSupply(ctx context.Context, id uuid.UUID) (*model.Supply, error)
	UpdateSupply(ctx context.Context, identity *access.Identity, id uuid.UUID, req *model.UpdateSupplyRequest) (*model.Supply, error)
	DeleteSupply(ctx context.Context, identity *access.Identity, id uuid.UUID) error
	ListSupplies(ctx context.Context) ([]*model.Supply, error)
	RetireSupplies(ctx context.Context, identity *access.Identity, codeStart, codeEnd string) (*model.RetireSuppliesResult, error)
}

type service struct {
	repo repository.SupplyRepository
}

func NewService(repo repository.SupplyRepository) Service {
	return &service{repo: repo}
}

func (s *service) CreateSupply(ctx context.Context, identity *access.Identity, req *model.CreateSupplyRequest) (*model.Supply, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if req.UnitCost < 0 {
		return nil, apperrors.Validation("unitCost must not be negative")
	}

	supply := &model.Supply{
		Base:        model.Base{ID: uuid.New()},
		Code:        req.Code,
		Description: req.Description,
		HCPCS:       req.HCPCS,
		UnitCost:    req.UnitCost,
		IsCustom:    true,
	}
	if err := s.repo.Create(ctx, supply); err != nil {
		// Code uniqueness is user-visible here, unlike the ledger upsert.
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(fmt.Sprintf("supply code %q already in use", req.Code), err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return supply, nil
}

func (s *service) GetSupply(ctx context.Context, id uuid.UUID) (*model.Supply, error) {
	supply, err := s.repo.Get(ctx, id)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperrors.NotFound("supply")
		}
		return nil, apperrors.StoreFault(err)
	}
	return supply, nil
}

func (s *service) UpdateSupply(ctx context.Context, identity *access.Identity, id uuid.UUID, req *model.UpdateSupplyRequest) (*model.Supply, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if req.UnitCost < 0 {
		return nil, apperrors.Validation("unitCost must not be negative")
	}

	supply, err := s.GetSupply(ctx, id)
	if err != nil {
		return nil, err
	}
	supply.Description = req.Description
	supply.HCPCS = req.HCPCS
	supply.UnitCost = req.UnitCost

	if err := s.repo.Update(ctx, supply); err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return supply, nil
}

// DeleteSupply refuses while usage rows still reference the supply; bulk
// retirement is the flow that removes dependents first.
func (s *service) DeleteSupply(ctx context.Context, identity *access.Identity, id uuid.UUID) error {
	if err := access.RequireAdmin(identity); err != nil {
		return err
	}

	if _, err := s.GetSupply(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountUsage(ctx, id)
	if err != nil {
		return apperrors.StoreFault(err)
	}
	if count > 0 {
		return apperrors.DependencyBlocked(
			fmt.Sprintf("supply has %d referencing usage records", count), count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.StoreFault(err)
	}
	return nil
}

func (s *service) ListSupplies(ctx context.Context) ([]*model.Supply, error) {
	supplies, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return supplies, nil
}

// RetireSupplies removes a code range and its dependent usage in one
// all-or-nothing transaction.
func (s *service) RetireSupplies(ctx context.Context, identity *access.Identity, codeStart, codeEnd string) (*model.RetireSuppliesResult, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if codeStart == "" || codeEnd == "" {
		return nil, apperrors.Validation("codeStart and codeEnd are required")
	}
	if codeStart > codeEnd {
		return nil, apperrors.Validation("codeStart must not exceed codeEnd")
	}

	result, err := s.repo.RetireCodeRange(ctx, codeStart, codeEnd)
	if err != nil {
		return nil, apperrors.StoreFault(err)
	}
	return result, nil
}
