package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/unitform"
	"go.uber.org/zap"
)

// ErrDuplicateUnitNumber 同层编号冲突
var ErrDuplicateUnitNumber = errors.New("unit number already exists on this level")

// UnitValidationError 字段级校验失败
type UnitValidationError struct {
	Fields map[string]string
}

func (e *UnitValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// UnitService 单元服务
type UnitService struct {
	unitRepo     *repository.UnitRepository
	levelRepo    *repository.LevelRepository
	buildingRepo *repository.BuildingRepository
	catalogRepo  *repository.CatalogRepository
	imageSvc     *ImageService
	logger       *zap.Logger
}

// NewUnitService 创建单元服务
func NewUnitService(
	unitRepo *repository.UnitRepository,
	levelRepo *repository.LevelRepository,
	buildingRepo *repository.BuildingRepository,
	catalogRepo *repository.CatalogRepository,
	imageSvc *ImageService,
	logger *zap.Logger,
) *UnitService {
	return &UnitService{
		unitRepo:     unitRepo,
		levelRepo:    levelRepo,
		buildingRepo: buildingRepo,
		catalogRepo:  catalogRepo,
		imageSvc:     imageSvc,
		logger:       logger,
	}
}

// ImageUpload 待上传的图片文件
type ImageUpload struct {
	FileName    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// SaveUnitRequest 创建/更新单元的业务请求。
// UtilityTypeIDs 是完整终态集合；图片走增量（新增文件 + 待删URL）。
type SaveUnitRequest struct {
	UnitNumber     string
	UnitType       string
	LevelID        string
	RoomTypeID     string
	SpaceTypeID    string
	HallTypeID     string
	UnitSpace      float64
	RentalFee      float64
	HasMeter       bool
	UtilityTypeIDs []string
	Images         []ImageUpload
	ImagesToRemove []string
}

// Get 获取单元详情（含关联）
func (s *UnitService) Get(ctx context.Context, id string) (*entity.Unit, error) {
	return s.unitRepo.FindByID(ctx, id)
}

// List 单元列表
func (s *UnitService) List(ctx context.Context, filter repository.UnitFilter, page, pageSize int) ([]entity.Unit, int64, error) {
	return s.unitRepo.List(ctx, filter, page, pageSize)
}

// CheckNumber 同层编号占用检查（编辑场景用 excludeID 排除自身）
func (s *UnitService) CheckNumber(ctx context.Context, unitNumber, levelID, excludeID string) (bool, error) {
	normalized := unitform.NormalizeUnitNumber(unitform.DefaultNumberPrefix, unitNumber)
	return s.unitRepo.ExistsNumberInLevel(ctx, normalized, levelID, excludeID)
}

// Create 创建单元
func (s *UnitService) Create(ctx context.Context, req *SaveUnitRequest) (*entity.Unit, error) {
	unit := &entity.Unit{
		ID:     newID(),
		Status: entity.UnitStatusVacant,
	}
	if err := s.applyAndValidate(ctx, unit, req, ""); err != nil {
		return nil, err
	}

	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}
	if err := s.unitRepo.ReplaceUtilities(ctx, unit.ID, req.UtilityTypeIDs); err != nil {
		return nil, err
	}
	if err := s.storeImages(ctx, unit.ID, req.Images, 0); err != nil {
		return nil, err
	}

	return s.unitRepo.FindByID(ctx, unit.ID)
}

// Update 更新单元。
// 计费项目整体替换为终态集合，图片按增量新增/删除。
func (s *UnitService) Update(ctx context.Context, id string, req *SaveUnitRequest) (*entity.Unit, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyAndValidate(ctx, unit, req, id); err != nil {
		return nil, err
	}

	// 图片上限按可见数量检查：现存 − 待删 + 新增，超限整批拒绝
	current, err := s.unitRepo.CountImages(ctx, id)
	if err != nil {
		return nil, err
	}
	visible := int(current) - len(req.ImagesToRemove) + len(req.Images)
	if visible > entity.MaxUnitImages {
		return nil, &UnitValidationError{Fields: map[string]string{
			"images": fmt.Sprintf("at most %d images per unit", entity.MaxUnitImages),
		}}
	}

	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, err
	}
	if err := s.unitRepo.ReplaceUtilities(ctx, id, req.UtilityTypeIDs); err != nil {
		return nil, err
	}

	if len(req.ImagesToRemove) > 0 {
		removed, err := s.unitRepo.RemoveImagesByURL(ctx, id, req.ImagesToRemove)
		if err != nil {
			return nil, err
		}
		// 对象存储清理失败不阻断：记录丢弃，留给后台清理
		for _, img := range removed {
			if err := s.imageSvc.Remove(ctx, img.URL); err != nil {
				s.logger.Warn("remove image object failed",
					zap.String("unit_id", id), zap.String("url", img.URL), zap.Error(err))
			}
		}
	}

	maxOrder := 0
	existing, err := s.unitRepo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, img := range existing {
		if img.SortOrder >= maxOrder {
			maxOrder = img.SortOrder + 1
		}
	}
	if err := s.storeImages(ctx, id, req.Images, maxOrder); err != nil {
		return nil, err
	}

	return s.unitRepo.FindByID(ctx, id)
}

// Delete 删除单元及其关联和图片对象
func (s *UnitService) Delete(ctx context.Context, id string) error {
	images, err := s.unitRepo.ListImages(ctx, id)
	if err != nil {
		return err
	}
	if err := s.unitRepo.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range images {
		if err := s.imageSvc.Remove(ctx, img.URL); err != nil {
			s.logger.Warn("remove image object failed",
				zap.String("unit_id", id), zap.String("url", img.URL), zap.Error(err))
		}
	}
	return nil
}

// applyAndValidate 归一化编号、校验业务规则并写回实体字段。
// excludeID 非空表示编辑场景，容量与唯一性检查均排除自身。
func (s *UnitService) applyAndValidate(ctx context.Context, unit *entity.Unit, req *SaveUnitRequest, excludeID string) error {
	fields := make(map[string]string)

	number := unitform.NormalizeUnitNumber(unitform.DefaultNumberPrefix, strings.TrimSpace(req.UnitNumber))
	if msg := unitform.ValidateUnitNumber(unitform.DefaultNumberPrefix, number); msg != "" {
		fields["unitNumber"] = msg
	}

	switch req.UnitType {
	case entity.UnitTypeRoom, entity.UnitTypeSpace, entity.UnitTypeHall:
	default:
		fields["unitType"] = "unit type must be one of ROOM, SPACE, HALL"
	}

	if req.UnitSpace < unitform.MinUnitSpace || req.UnitSpace > unitform.MaxUnitSpace {
		fields["unitSpace"] = fmt.Sprintf("unit space must be between %.1f and %d sqm",
			unitform.MinUnitSpace, unitform.MaxUnitSpace)
	}
	if req.RentalFee < 0 {
		fields["rentalFee"] = "rental fee must not be negative"
	}

	typeRef := ""
	switch req.UnitType {
	case entity.UnitTypeRoom:
		typeRef = req.RoomTypeID
	case entity.UnitTypeSpace:
		typeRef = req.SpaceTypeID
	case entity.UnitTypeHall:
		typeRef = req.HallTypeID
	}
	if typeRef == "" {
		fields["typeRef"] = "a category matching the unit type is required"
	}

	level, err := s.levelRepo.FindByID(ctx, req.LevelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fields["levelId"] = "level not found"
			return &UnitValidationError{Fields: fields}
		}
		return err
	}

	building, err := s.buildingRepo.FindByID(ctx, level.BuildingID)
	if err != nil {
		return err
	}

	// 楼层单元数上限
	if level.TotalUnits != nil {
		count, err := s.unitRepo.CountByLevel(ctx, level.ID, excludeID)
		if err != nil {
			return err
		}
		if int(count) >= *level.TotalUnits {
			fields["levelId"] = fmt.Sprintf("level is full: %d of %d units in use", count, *level.TotalUnits)
		}
	}

	// 楼宇可租赁面积：可用 = 总面积 − 已占用（编辑时不含自身）
	if building.TotalLeasableArea != nil {
		used, err := s.unitRepo.SumSpaceByBuilding(ctx, building.ID, excludeID)
		if err != nil {
			return err
		}
		available := *building.TotalLeasableArea - used
		if req.UnitSpace > available {
			fields["unitSpace"] = fmt.Sprintf(
				"Insufficient leasable area in building. Available: %.2f sqm, Required: %.2f sqm",
				available, req.UnitSpace)
		}
	}

	if len(fields) > 0 {
		return &UnitValidationError{Fields: fields}
	}

	exists, err := s.unitRepo.ExistsNumberInLevel(ctx, number, req.LevelID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateUnitNumber
	}

	unit.UnitNumber = number
	unit.UnitType = req.UnitType
	unit.LevelID = req.LevelID
	unit.UnitSpace = req.UnitSpace
	unit.RentalFee = req.RentalFee
	// SPACE 类型不挂独立电表
	unit.HasMeter = req.HasMeter && req.UnitType != entity.UnitTypeSpace

	unit.RoomTypeID = nil
	unit.SpaceTypeID = nil
	unit.HallTypeID = nil
	switch req.UnitType {
	case entity.UnitTypeRoom:
		unit.RoomTypeID = &typeRef
	case entity.UnitTypeSpace:
		unit.SpaceTypeID = &typeRef
	case entity.UnitTypeHall:
		unit.HallTypeID = &typeRef
	}
	return nil
}

// storeImages 上传文件并落库，sortOrder 从 startOrder 递增
func (s *UnitService) storeImages(ctx context.Context, unitID string, uploads []ImageUpload, startOrder int) error {
	if len(uploads) == 0 {
		return nil
	}
	rows := make([]entity.UnitImage, 0, len(uploads))
	for i, up := range uploads {
		url, objectKey, err := s.imageSvc.Upload(ctx, unitID, up.FileName, up.Reader, up.Size, up.ContentType)
		if err != nil {
			return fmt.Errorf("upload image %q: %w", up.FileName, err)
		}
		rows = append(rows, entity.UnitImage{
			ID:        newID(),
			UnitID:    unitID,
			URL:       url,
			ObjectKey: objectKey,
			SortOrder: startOrder + i,
		})
	}
	return s.unitRepo.AddImages(ctx, rows)
}
