package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User        *UserRepository
	Building    *BuildingRepository
	Level       *LevelRepository
	Catalog     *CatalogRepository
	Unit        *UnitRepository
	Tenant      *TenantRepository
	Contract    *ContractRepository
	Invoice     *InvoiceRepository
	Maintenance *MaintenanceRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Building:    NewBuildingRepository(db),
		Level:       NewLevelRepository(db),
		Catalog:     NewCatalogRepository(db),
		Unit:        NewUnitRepository(db),
		Tenant:      NewTenantRepository(db),
		Contract:    NewContractRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Maintenance: NewMaintenanceRepository(db),
	}
}

// translateError 把 gorm 的未找到错误转换为统一的 ErrNotFound
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
