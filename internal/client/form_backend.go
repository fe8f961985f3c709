package client

import (
	"context"

	"github.com/bitfantasy/nimo-pms/internal/unitform"
)

// FormBackend 把类型化客户端适配成表单引擎的后端接口
type FormBackend struct {
	c *Client
}

// NewFormBackend 创建表单后端适配器
func NewFormBackend(c *Client) *FormBackend {
	return &FormBackend{c: c}
}

func (b *FormBackend) ListRoomTypes(ctx context.Context) ([]unitform.TypeOption, error) {
	types, err := b.c.ListRoomTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]unitform.TypeOption, 0, len(types))
	for _, t := range types {
		out = append(out, unitform.TypeOption{ID: t.ID, TypeName: t.TypeName})
	}
	return out, nil
}

func (b *FormBackend) ListSpaceTypes(ctx context.Context) ([]unitform.TypeOption, error) {
	types, err := b.c.ListSpaceTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]unitform.TypeOption, 0, len(types))
	for _, t := range types {
		out = append(out, unitform.TypeOption{ID: t.ID, TypeName: t.TypeName})
	}
	return out, nil
}

func (b *FormBackend) ListHallTypes(ctx context.Context) ([]unitform.TypeOption, error) {
	types, err := b.c.ListHallTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]unitform.TypeOption, 0, len(types))
	for _, t := range types {
		out = append(out, unitform.TypeOption{ID: t.ID, TypeName: t.TypeName})
	}
	return out, nil
}

func (b *FormBackend) ListUtilityTypes(ctx context.Context) ([]unitform.UtilityOption, error) {
	types, err := b.c.ListUtilityTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]unitform.UtilityOption, 0, len(types))
	for _, t := range types {
		out = append(out, unitform.UtilityOption{ID: t.ID, TypeName: t.TypeName})
	}
	return out, nil
}

func (b *FormBackend) GetLevel(ctx context.Context, levelID string) (*unitform.LevelInfo, error) {
	level, err := b.c.GetLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	return &unitform.LevelInfo{
		ID:         level.ID,
		BuildingID: level.BuildingID,
		Name:       level.Name,
		TotalUnits: level.TotalUnits,
	}, nil
}

func (b *FormBackend) GetBuilding(ctx context.Context, buildingID string) (*unitform.BuildingInfo, error) {
	building, err := b.c.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return &unitform.BuildingInfo{
		ID:                building.ID,
		Name:              building.Name,
		TotalLeasableArea: building.TotalLeasableArea,
	}, nil
}

func (b *FormBackend) CountUnitsInLevel(ctx context.Context, levelID, excludeUnitID string) (int, error) {
	return b.c.CountUnitsInLevel(ctx, levelID, excludeUnitID)
}

func (b *FormBackend) UsedAreaInBuilding(ctx context.Context, buildingID, excludeUnitID string) (float64, error) {
	return b.c.UsedAreaInBuilding(ctx, buildingID, excludeUnitID)
}

func (b *FormBackend) CheckUnitNumber(ctx context.Context, unitNumber, levelID, excludeUnitID string) (bool, error) {
	return b.c.CheckUnitNumber(ctx, unitNumber, levelID, excludeUnitID)
}

func (b *FormBackend) UpdateUnit(ctx context.Context, unitID string, sub *unitform.Submission) error {
	return b.c.UpdateUnit(ctx, unitID, sub)
}
