package repository

import (
	"context"
	"strings"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*entity.Tenant, error) {
	var tenant entity.Tenant
	err := r.db.WithContext(ctx).
		Preload("Contracts").
		First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &tenant, nil
}

func (r *TenantRepository) List(ctx context.Context, keyword string, page, pageSize int) ([]entity.Tenant, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Tenant{})
	if keyword != "" {
		kw := "%" + strings.TrimSpace(keyword) + "%"
		query = query.Where("name ILIKE ? OR contact_person ILIKE ? OR phone LIKE ?", kw, kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []entity.Tenant
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tenants).Error
	return tenants, total, err
}

func (r *TenantRepository) Update(ctx context.Context, tenant *entity.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}
