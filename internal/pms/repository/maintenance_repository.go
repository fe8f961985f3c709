package repository

import (
	"context"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(ctx context.Context, req *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *MaintenanceRepository) FindByID(ctx context.Context, id string) (*entity.MaintenanceRequest, error) {
	var req entity.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Tenant").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &req, nil
}

func (r *MaintenanceRepository) List(ctx context.Context, unitID, status string, page, pageSize int) ([]entity.MaintenanceRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.MaintenanceRequest{})
	if unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []entity.MaintenanceRequest
	err := query.
		Preload("Unit").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reqs).Error
	return reqs, total, err
}

func (r *MaintenanceRepository) Update(ctx context.Context, req *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}
