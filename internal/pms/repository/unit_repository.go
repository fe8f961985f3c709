package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) DB() *gorm.DB {
	return r.db
}

// UnitFilter 单元列表查询条件
type UnitFilter struct {
	LevelID    string
	BuildingID string
	UnitType   string
	Status     string
	Keyword    string
}

func (r *UnitRepository) Create(ctx context.Context, unit *entity.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *UnitRepository) FindByID(ctx context.Context, id string) (*entity.Unit, error) {
	var unit entity.Unit
	err := r.db.WithContext(ctx).
		Preload("Level").
		Preload("RoomType").
		Preload("SpaceType").
		Preload("HallType").
		Preload("Utilities").
		Preload("Utilities.UtilityType").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		First(&unit, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

func (r *UnitRepository) List(ctx context.Context, filter UnitFilter, page, pageSize int) ([]entity.Unit, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Unit{})

	if filter.LevelID != "" {
		query = query.Where("level_id = ?", filter.LevelID)
	}
	if filter.BuildingID != "" {
		query = query.Where("level_id IN (?)",
			r.db.Model(&entity.Level{}).Select("id").Where("building_id = ?", filter.BuildingID))
	}
	if filter.UnitType != "" {
		query = query.Where("unit_type = ?", filter.UnitType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		query = query.Where("unit_number ILIKE ?", "%"+strings.TrimSpace(filter.Keyword)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var units []entity.Unit
	err := query.
		Preload("Level").
		Order("unit_number ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&units).Error
	return units, total, err
}

func (r *UnitRepository) Update(ctx context.Context, unit *entity.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *UnitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", id).Delete(&entity.UnitUtility{}).Error; err != nil {
			return err
		}
		if err := tx.Where("unit_id = ?", id).Delete(&entity.UnitImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Unit{}, "id = ?", id).Error
	})
}

// ExistsNumberInLevel 检查同层是否已有同编号单元（编号比较不区分大小写）
// excludeID 非空时排除自身，用于编辑场景
func (r *UnitRepository) ExistsNumberInLevel(ctx context.Context, unitNumber, levelID, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.Unit{}).
		Where("upper(unit_number) = ? AND level_id = ?", strings.ToUpper(unitNumber), levelID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByLevel 统计某层单元数量，excludeID 非空时不计自身
func (r *UnitRepository) CountByLevel(ctx context.Context, levelID, excludeID string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Unit{}).Where("level_id = ?", levelID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// SumSpaceByBuilding 统计某楼宇已占用面积，excludeID 非空时不计自身
func (r *UnitRepository) SumSpaceByBuilding(ctx context.Context, buildingID, excludeID string) (float64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Unit{}).
		Where("level_id IN (?)",
			r.db.Model(&entity.Level{}).Select("id").Where("building_id = ?", buildingID))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var total *float64
	if err := query.Select("SUM(unit_space)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ReplaceUtilities 以终态集合整体替换单元的计费项目关联
// 线协议约定：前端提交的是完整终态而非增量
func (r *UnitRepository) ReplaceUtilities(ctx context.Context, unitID string, utilityTypeIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", unitID).Delete(&entity.UnitUtility{}).Error; err != nil {
			return err
		}
		if len(utilityTypeIDs) == 0 {
			return nil
		}
		// 去重后插入，唯一索引兜底
		seen := make(map[string]struct{}, len(utilityTypeIDs))
		rows := make([]entity.UnitUtility, 0, len(utilityTypeIDs))
		now := time.Now()
		for _, utID := range utilityTypeIDs {
			if _, ok := seen[utID]; ok {
				continue
			}
			seen[utID] = struct{}{}
			rows = append(rows, entity.UnitUtility{
				ID:            strings.ReplaceAll(uuid.New().String(), "-", ""),
				UnitID:        unitID,
				UtilityTypeID: utID,
				CreatedAt:     now,
			})
		}
		return tx.Create(&rows).Error
	})
}

// ListImages 按顺序返回单元图片
func (r *UnitRepository) ListImages(ctx context.Context, unitID string) ([]entity.UnitImage, error) {
	var images []entity.UnitImage
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("sort_order ASC, created_at ASC").
		Find(&images).Error
	return images, err
}

// CountImages 统计单元图片数量
func (r *UnitRepository) CountImages(ctx context.Context, unitID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UnitImage{}).
		Where("unit_id = ?", unitID).Count(&count).Error
	return count, err
}

// AddImages 按当前最大序号追加图片
func (r *UnitRepository) AddImages(ctx context.Context, images []entity.UnitImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// RemoveImagesByURL 按 URL 列表删除图片记录，返回被删除的记录（供对象存储清理）
func (r *UnitRepository) RemoveImagesByURL(ctx context.Context, unitID string, urls []string) ([]entity.UnitImage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	var removed []entity.UnitImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ? AND url IN ?", unitID, urls).Find(&removed).Error; err != nil {
			return err
		}
		return tx.Where("unit_id = ? AND url IN ?", unitID, urls).Delete(&entity.UnitImage{}).Error
	})
	return removed, err
}
