package unitform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFieldDisabled 唯一性检查进行中，编号/楼层字段禁用
var ErrFieldDisabled = errors.New("field disabled while uniqueness check is in flight")

// SetUnitType 切换单元类型
func (f *Form) SetUnitType(unitType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unitType = unitType
	f.validateLocked()
}

// SetRoomTypeID 选择房间类型
func (f *Form) SetRoomTypeID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomTypeID = id
	f.validateLocked()
}

// SetSpaceTypeID 选择空间类型
func (f *Form) SetSpaceTypeID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaceTypeID = id
	f.validateLocked()
}

// SetHallTypeID 选择活动厅类型
func (f *Form) SetHallTypeID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hallTypeID = id
	f.validateLocked()
}

// SetUnitSpace 录入面积（保留原始文本，校验时解析）
func (f *Form) SetUnitSpace(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unitSpace = strings.TrimSpace(raw)
	f.validateLocked()
}

// SetRentalFee 录入租金
func (f *Form) SetRentalFee(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rentalFee = strings.TrimSpace(raw)
	f.validateLocked()
}

// SetHasMeter 设置是否装表；SPACE 类型提交时恒为 false
func (f *Form) SetHasMeter(hasMeter bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasMeter = hasMeter
}

// EffectiveHasMeter 计算生效的装表标志
func (f *Form) EffectiveHasMeter() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.effectiveHasMeterLocked()
}

func (f *Form) effectiveHasMeterLocked() bool {
	if f.unitType == UnitTypeSpace {
		return false
	}
	return f.hasMeter
}

// SetLevel 切换楼层：同步拉取楼层/楼宇上下文与容量统计，
// 然后按需发起唯一性检查。检查进行中时楼层字段禁用。
func (f *Form) SetLevel(ctx context.Context, levelID string) error {
	f.mu.Lock()
	if f.checking {
		f.mu.Unlock()
		return ErrFieldDisabled
	}
	snap, origBuildingID := f.snapshot, f.origBuildingID
	f.mu.Unlock()

	lvlCtx, err := f.fetchLevelContext(ctx, levelID, snap, origBuildingID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checking {
		return ErrFieldDisabled
	}
	f.levelID = levelID
	f.level = lvlCtx.level
	f.building = lvlCtx.building
	f.levelUnitCount = lvlCtx.unitCount
	f.buildingUsedArea = lvlCtx.usedArea
	f.duplicateNumber = false
	f.validateLocked()
	f.maybeStartUniquenessCheckLocked(ctx)
	return nil
}

// levelContext 楼层切换/加载时一并取回的校验上下文
type levelContext struct {
	level     *LevelInfo
	building  *BuildingInfo
	unitCount int
	usedArea  float64
}

// fetchLevelContext 拉取楼层、楼宇与容量统计。
// 单元数量统计在目标楼层即原楼层时排除自身；
// 已用面积统计在目标楼宇即原楼宇时排除自身（original-subtract 语义）。
// origBuildingID 为空表示加载路径（目标楼层即快照楼层）。
func (f *Form) fetchLevelContext(ctx context.Context, levelID string, snap Snapshot, origBuildingID string) (*levelContext, error) {
	level, err := f.backend.GetLevel(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("fetch level: %w", err)
	}
	building, err := f.backend.GetBuilding(ctx, level.BuildingID)
	if err != nil {
		return nil, fmt.Errorf("fetch building: %w", err)
	}

	lc := &levelContext{level: level, building: building}

	sameBuilding := building.ID == origBuildingID
	if origBuildingID == "" {
		sameBuilding = levelID != "" && levelID == snap.LevelID
	}

	if level.TotalUnits != nil {
		excludeID := ""
		if levelID == snap.LevelID {
			excludeID = snap.UnitID
		}
		count, err := f.backend.CountUnitsInLevel(ctx, levelID, excludeID)
		if err != nil {
			return nil, fmt.Errorf("count units in level: %w", err)
		}
		lc.unitCount = count
	}
	if building.TotalLeasableArea != nil {
		excludeID := ""
		if sameBuilding {
			excludeID = snap.UnitID
		}
		used, err := f.backend.UsedAreaInBuilding(ctx, building.ID, excludeID)
		if err != nil {
			return nil, fmt.Errorf("sum used area: %w", err)
		}
		lc.usedArea = used
	}
	return lc, nil
}

// Validate 完整校验：先收口在途的异步唯一性检查，
// 再重建同步校验错误表，返回其副本。表为空才允许提交。
func (f *Form) Validate(ctx context.Context) (map[string]string, error) {
	if err := f.waitForCheck(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateLocked()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out, nil
}

// validateLocked 依据当前状态与已拉取的上下文重建字段错误表
func (f *Form) validateLocked() {
	errs := make(map[string]string)

	// 编号：格式/范围错误优先，其次是异步检查得到的重复错误
	if msg := ValidateUnitNumber(f.prefix, f.unitNumber); msg != "" {
		errs[FieldUnitNumber] = msg
	} else if f.duplicateNumber {
		errs[FieldUnitNumber] = fmt.Sprintf("Unit number %s already exists on this level",
			NormalizeUnitNumber(f.prefix, f.unitNumber))
	}

	// 面积
	if f.unitSpace == "" {
		errs[FieldUnitSpace] = "Unit space is required"
	} else if space, err := strconv.ParseFloat(f.unitSpace, 64); err != nil {
		errs[FieldUnitSpace] = "Unit space must be a number"
	} else if space <= 0 || space < MinUnitSpace {
		errs[FieldUnitSpace] = fmt.Sprintf("Unit space must be at least %.1f sqm", MinUnitSpace)
	} else if space > MaxUnitSpace {
		errs[FieldUnitSpace] = fmt.Sprintf("Unit space must not exceed %d sqm", MaxUnitSpace)
	} else if f.building != nil && f.building.TotalLeasableArea != nil {
		available := *f.building.TotalLeasableArea - f.buildingUsedArea
		if space > available {
			errs[FieldUnitSpace] = fmt.Sprintf(
				"Insufficient leasable area in building. Available: %.2f sqm, Required: %.2f sqm",
				available, space)
		}
	}

	// 楼层容量
	if f.level != nil && f.level.TotalUnits != nil && f.levelUnitCount >= *f.level.TotalUnits {
		errs[FieldLevel] = fmt.Sprintf("Level unit capacity reached (%d/%d)",
			f.levelUnitCount, *f.level.TotalUnits)
	}

	// 租金
	if f.rentalFee == "" {
		errs[FieldRentalFee] = "Rental fee is required"
	} else if fee, err := strconv.ParseFloat(f.rentalFee, 64); err != nil {
		errs[FieldRentalFee] = "Rental fee must be a number"
	} else if fee < 0 {
		errs[FieldRentalFee] = "Rental fee must not be negative"
	}

	// 类型外键：必须恰好选中与当前单元类型匹配的一项
	switch f.unitType {
	case UnitTypeRoom:
		if f.roomTypeID == "" {
			errs[FieldTypeRef] = "Room type is required"
		}
	case UnitTypeSpace:
		if f.spaceTypeID == "" {
			errs[FieldTypeRef] = "Space type is required"
		}
	case UnitTypeHall:
		if f.hallTypeID == "" {
			errs[FieldTypeRef] = "Hall type is required"
		}
	default:
		errs[FieldTypeRef] = "Unit type must be one of ROOM, SPACE, HALL"
	}

	f.errors = errs
}
