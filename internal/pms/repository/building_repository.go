package repository

import (
	"context"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"gorm.io/gorm"
)

type BuildingRepository struct {
	db *gorm.DB
}

func NewBuildingRepository(db *gorm.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

func (r *BuildingRepository) Create(ctx context.Context, building *entity.Building) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *BuildingRepository) FindByID(ctx context.Context, id string) (*entity.Building, error) {
	var building entity.Building
	err := r.db.WithContext(ctx).First(&building, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &building, nil
}

func (r *BuildingRepository) List(ctx context.Context) ([]entity.Building, error) {
	var buildings []entity.Building
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("code ASC").
		Find(&buildings).Error
	return buildings, err
}

func (r *BuildingRepository) Update(ctx context.Context, building *entity.Building) error {
	return r.db.WithContext(ctx).Save(building).Error
}

type LevelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

func (r *LevelRepository) Create(ctx context.Context, level *entity.Level) error {
	return r.db.WithContext(ctx).Create(level).Error
}

func (r *LevelRepository) FindByID(ctx context.Context, id string) (*entity.Level, error) {
	var level entity.Level
	err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &level, nil
}

func (r *LevelRepository) ListByBuilding(ctx context.Context, buildingID string) ([]entity.Level, error) {
	var levels []entity.Level
	err := r.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("level_no ASC").
		Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) Update(ctx context.Context, level *entity.Level) error {
	return r.db.WithContext(ctx).Save(level).Error
}
