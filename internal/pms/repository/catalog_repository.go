package repository

import (
	"context"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

// CatalogRepository 类型目录仓库（房间/空间/活动厅/计费项目）
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListRoomTypes(ctx context.Context) ([]entity.RoomType, error) {
	var types []entity.RoomType
	err := r.db.WithContext(ctx).Order("sort_order ASC, type_name ASC").Find(&types).Error
	return types, err
}

func (r *CatalogRepository) ListSpaceTypes(ctx context.Context) ([]entity.SpaceType, error) {
	var types []entity.SpaceType
	err := r.db.WithContext(ctx).Order("sort_order ASC, type_name ASC").Find(&types).Error
	return types, err
}

func (r *CatalogRepository) ListHallTypes(ctx context.Context) ([]entity.HallType, error) {
	var types []entity.HallType
	err := r.db.WithContext(ctx).Order("sort_order ASC, type_name ASC").Find(&types).Error
	return types, err
}

func (r *CatalogRepository) ListUtilityTypes(ctx context.Context) ([]entity.UtilityType, error) {
	var types []entity.UtilityType
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("sort_order ASC, type_name ASC").
		Find(&types).Error
	return types, err
}

func (r *CatalogRepository) FindRoomType(ctx context.Context, id string) (*entity.RoomType, error) {
	var t entity.RoomType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *CatalogRepository) FindSpaceType(ctx context.Context, id string) (*entity.SpaceType, error) {
	var t entity.SpaceType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *CatalogRepository) FindHallType(ctx context.Context, id string) (*entity.HallType, error) {
	var t entity.HallType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *CatalogRepository) FindUtilityType(ctx context.Context, id string) (*entity.UtilityType, error) {
	var t entity.UtilityType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}
