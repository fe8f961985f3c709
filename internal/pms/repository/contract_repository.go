package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *entity.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*entity.Contract, error) {
	var contract entity.Contract
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Unit.Level").
		Preload("Tenant").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &contract, nil
}

func (r *ContractRepository) List(ctx context.Context, status string, page, pageSize int) ([]entity.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Contract{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []entity.Contract
	err := query.
		Preload("Unit").
		Preload("Tenant").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&contracts).Error
	return contracts, total, err
}

// ListActiveInPeriod 返回在指定账期内生效的合同
func (r *ContractRepository) ListActiveInPeriod(ctx context.Context, periodStart, periodEnd time.Time) ([]entity.Contract, error) {
	var contracts []entity.Contract
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Unit.Utilities").
		Preload("Unit.Utilities.UtilityType").
		Preload("Tenant").
		Where("status = ?", entity.ContractStatusActive).
		Where("start_date <= ? AND end_date >= ?", periodEnd, periodStart).
		Find(&contracts).Error
	return contracts, err
}

// FindActiveByUnit 返回单元当前生效的合同，没有则返回 ErrNotFound
func (r *ContractRepository) FindActiveByUnit(ctx context.Context, unitID string, day time.Time) (*entity.Contract, error) {
	var contract entity.Contract
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("unit_id = ? AND status = ?", unitID, entity.ContractStatusActive).
		Where("start_date <= ? AND end_date >= ?", day, day).
		First(&contract).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *entity.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// CountActiveByUnitIDs 统计一组单元中当前有生效合同的单元数，用于入住率
func (r *ContractRepository) CountActiveByUnitIDs(ctx context.Context, unitIDs []string, day time.Time) (int64, error) {
	if len(unitIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Contract{}).
		Distinct("unit_id").
		Where("unit_id IN ? AND status = ?", unitIDs, entity.ContractStatusActive).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Count(&count).Error
	return count, err
}
