package unitform

import "context"

// TypeOption 类型下拉项（房间/空间/活动厅类型通用）
type TypeOption struct {
	ID       string
	TypeName string
}

// UtilityOption 计费项目选项
type UtilityOption struct {
	ID       string
	TypeName string
}

// LevelInfo 楼层上下文，TotalUnits 为空表示不限制单元数量
type LevelInfo struct {
	ID         string
	BuildingID string
	Name       string
	TotalUnits *int
}

// BuildingInfo 楼宇上下文，TotalLeasableArea 为空表示不限制可租面积
type BuildingInfo struct {
	ID                string
	Name              string
	TotalLeasableArea *float64
}

// Backend 表单所依赖的后端能力，由 internal/client 适配实现。
// 表单本身不持有权威状态，后端是唯一事实来源。
type Backend interface {
	// 参考数据
	ListRoomTypes(ctx context.Context) ([]TypeOption, error)
	ListSpaceTypes(ctx context.Context) ([]TypeOption, error)
	ListHallTypes(ctx context.Context) ([]TypeOption, error)
	ListUtilityTypes(ctx context.Context) ([]UtilityOption, error)
	GetLevel(ctx context.Context, levelID string) (*LevelInfo, error)
	GetBuilding(ctx context.Context, buildingID string) (*BuildingInfo, error)

	// 校验用统计查询
	CountUnitsInLevel(ctx context.Context, levelID, excludeUnitID string) (int, error)
	UsedAreaInBuilding(ctx context.Context, buildingID, excludeUnitID string) (float64, error)
	CheckUnitNumber(ctx context.Context, unitNumber, levelID, excludeUnitID string) (bool, error)

	// 提交
	UpdateUnit(ctx context.Context, unitID string, sub *Submission) error
}
