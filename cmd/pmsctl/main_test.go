package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-pms/internal/unitform"
)

// editBackend 只为表单编辑流程提供最小后端
type editBackend struct {
	lastSubmit *unitform.Submission
}

func (b *editBackend) ListRoomTypes(context.Context) ([]unitform.TypeOption, error) {
	return []unitform.TypeOption{{ID: "rt-1", TypeName: "Standard"}}, nil
}

func (b *editBackend) ListSpaceTypes(context.Context) ([]unitform.TypeOption, error) {
	return []unitform.TypeOption{{ID: "st-1", TypeName: "Storage"}, {ID: "st-9", TypeName: "Kiosk"}}, nil
}

func (b *editBackend) ListHallTypes(context.Context) ([]unitform.TypeOption, error) {
	return []unitform.TypeOption{{ID: "ht-1", TypeName: "Banquet"}}, nil
}

func (b *editBackend) ListUtilityTypes(context.Context) ([]unitform.UtilityOption, error) {
	return nil, nil
}

func (b *editBackend) GetLevel(_ context.Context, levelID string) (*unitform.LevelInfo, error) {
	return &unitform.LevelInfo{ID: levelID, BuildingID: "b-1", Name: "L1"}, nil
}

func (b *editBackend) GetBuilding(_ context.Context, buildingID string) (*unitform.BuildingInfo, error) {
	return &unitform.BuildingInfo{ID: buildingID, Name: "Tower A"}, nil
}

func (b *editBackend) CountUnitsInLevel(context.Context, string, string) (int, error) {
	return 0, nil
}

func (b *editBackend) UsedAreaInBuilding(context.Context, string, string) (float64, error) {
	return 0, nil
}

func (b *editBackend) CheckUnitNumber(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (b *editBackend) UpdateUnit(_ context.Context, _ string, sub *unitform.Submission) error {
	b.lastSubmit = sub
	return nil
}

func loadSpaceUnitForm(t *testing.T, backend *editBackend) *unitform.Form {
	t.Helper()
	form := unitform.New(backend, zap.NewNop())
	require.NoError(t, form.Load(context.Background(), unitform.Snapshot{
		UnitID:      "unit-1",
		UnitNumber:  "UN-007",
		UnitType:    "SPACE",
		SpaceTypeID: "st-1",
		UnitSpace:   30,
		RentalFee:   1200,
		LevelID:     "lvl-1",
	}))
	return form
}

func TestApplyTypeRefUsesUnitTypeFromForm(t *testing.T) {
	backend := &editBackend{}
	form := loadSpaceUnitForm(t, backend)

	// -type 未给：按单元本身的 SPACE 类型归属
	applyTypeRef(form, "st-9")

	require.NoError(t, form.Submit(context.Background()))
	require.NotNil(t, backend.lastSubmit)
	assert.Equal(t, "SPACE", backend.lastSubmit.UnitType)
	assert.Equal(t, "st-9", backend.lastSubmit.SpaceTypeID)
	assert.Empty(t, backend.lastSubmit.RoomTypeID)
}

func TestApplyTypeRefFollowsExplicitTypeChange(t *testing.T) {
	backend := &editBackend{}
	form := loadSpaceUnitForm(t, backend)

	form.SetUnitType("HALL")
	applyTypeRef(form, "ht-1")

	require.NoError(t, form.Submit(context.Background()))
	require.NotNil(t, backend.lastSubmit)
	assert.Equal(t, "HALL", backend.lastSubmit.UnitType)
	assert.Equal(t, "ht-1", backend.lastSubmit.HallTypeID)
}
