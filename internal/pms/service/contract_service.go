package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
)

// ErrUnitOccupied 单元已有生效合同
var ErrUnitOccupied = errors.New("unit already has an active contract")

// ErrInvalidContractPeriod 合同起止日期不合法
var ErrInvalidContractPeriod = errors.New("contract end date must be after start date")

// ContractService 合同服务
type ContractService struct {
	contractRepo *repository.ContractRepository
	unitRepo     *repository.UnitRepository
	tenantRepo   *repository.TenantRepository
}

// NewContractService 创建合同服务
func NewContractService(
	contractRepo *repository.ContractRepository,
	unitRepo *repository.UnitRepository,
	tenantRepo *repository.TenantRepository,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
	}
}

// CreateContractRequest 新建合同请求
type CreateContractRequest struct {
	UnitID      string    `json:"unit_id" binding:"required"`
	TenantID    string    `json:"tenant_id" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	MonthlyRent float64   `json:"monthly_rent" binding:"required"`
	Deposit     float64   `json:"deposit"`
	Notes       string    `json:"notes"`
}

// Create 新建草稿合同
func (s *ContractService) Create(ctx context.Context, req *CreateContractRequest) (*entity.Contract, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidContractPeriod
	}
	if _, err := s.unitRepo.FindByID(ctx, req.UnitID); err != nil {
		return nil, err
	}
	if _, err := s.tenantRepo.FindByID(ctx, req.TenantID); err != nil {
		return nil, err
	}

	contract := &entity.Contract{
		ID:          newID(),
		ContractNo:  fmt.Sprintf("CT-%s-%s", time.Now().Format("200601"), newID()[:6]),
		UnitID:      req.UnitID,
		TenantID:    req.TenantID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MonthlyRent: req.MonthlyRent,
		Deposit:     req.Deposit,
		Status:      entity.ContractStatusDraft,
		Notes:       req.Notes,
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Get 按 ID 获取合同
func (s *ContractService) Get(ctx context.Context, id string) (*entity.Contract, error) {
	return s.contractRepo.FindByID(ctx, id)
}

// List 合同列表
func (s *ContractService) List(ctx context.Context, status string, page, pageSize int) ([]entity.Contract, int64, error) {
	return s.contractRepo.List(ctx, status, page, pageSize)
}

// Activate 签署生效：同单元不允许重叠的生效合同，单元状态置为已租
func (s *ContractService) Activate(ctx context.Context, id, userID string) (*entity.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != entity.ContractStatusDraft {
		return nil, fmt.Errorf("contract is not in draft status")
	}

	existing, err := s.contractRepo.FindActiveByUnit(ctx, contract.UnitID, contract.StartDate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUnitOccupied
	}

	now := time.Now()
	contract.Status = entity.ContractStatusActive
	contract.SignedBy = userID
	contract.SignedAt = &now
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}

	if unit, err := s.unitRepo.FindByID(ctx, contract.UnitID); err == nil {
		unit.Status = entity.UnitStatusOccupied
		_ = s.unitRepo.Update(ctx, unit)
	}
	return contract, nil
}

// Terminate 提前终止合同，单元回到空置
func (s *ContractService) Terminate(ctx context.Context, id string) (*entity.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != entity.ContractStatusActive {
		return nil, fmt.Errorf("only active contracts can be terminated")
	}

	contract.Status = entity.ContractStatusTerminated
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}

	if unit, err := s.unitRepo.FindByID(ctx, contract.UnitID); err == nil {
		unit.Status = entity.UnitStatusVacant
		_ = s.unitRepo.Update(ctx, unit)
	}
	return contract, nil
}
