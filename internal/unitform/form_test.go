package unitform

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend is an in-memory Backend for form tests.
type fakeBackend struct {
	mu sync.Mutex

	levels    map[string]*LevelInfo
	buildings map[string]*BuildingInfo
	unitCount map[string]int
	usedArea  map[string]float64

	numberExists bool
	checkErr     error
	checkCalls   int
	checkGate    chan struct{} // when set, CheckUnitNumber blocks until closed

	updateErr    error
	lastUnitID   string
	lastSubmit   *Submission
	submitCalled int
}

func newFakeBackend() *fakeBackend {
	totalUnits := 10
	totalArea := 100.0
	return &fakeBackend{
		levels: map[string]*LevelInfo{
			"lvl-1": {ID: "lvl-1", BuildingID: "bld-1", Name: "Level 1", TotalUnits: &totalUnits},
			"lvl-2": {ID: "lvl-2", BuildingID: "bld-1", Name: "Level 2", TotalUnits: &totalUnits},
			"lvl-9": {ID: "lvl-9", BuildingID: "bld-2", Name: "Level 9", TotalUnits: &totalUnits},
		},
		buildings: map[string]*BuildingInfo{
			"bld-1": {ID: "bld-1", Name: "Tower A", TotalLeasableArea: &totalArea},
			"bld-2": {ID: "bld-2", Name: "Tower B", TotalLeasableArea: &totalArea},
		},
		unitCount: map[string]int{"lvl-1": 3, "lvl-2": 5, "lvl-9": 2},
		usedArea:  map[string]float64{"bld-1": 30, "bld-2": 20},
	}
}

func (b *fakeBackend) ListRoomTypes(context.Context) ([]TypeOption, error) {
	return []TypeOption{{ID: "rt-1", TypeName: "Standard"}, {ID: "rt-2", TypeName: "Suite"}}, nil
}

func (b *fakeBackend) ListSpaceTypes(context.Context) ([]TypeOption, error) {
	return []TypeOption{{ID: "st-1", TypeName: "Storage"}}, nil
}

func (b *fakeBackend) ListHallTypes(context.Context) ([]TypeOption, error) {
	return []TypeOption{{ID: "ht-1", TypeName: "Banquet"}}, nil
}

func (b *fakeBackend) ListUtilityTypes(context.Context) ([]UtilityOption, error) {
	return []UtilityOption{
		{ID: "ut-1", TypeName: "Water"},
		{ID: "ut-2", TypeName: "Electricity"},
		{ID: "ut-3", TypeName: "Property"},
		{ID: "ut-4", TypeName: "Internet"},
	}, nil
}

func (b *fakeBackend) GetLevel(_ context.Context, levelID string) (*LevelInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lvl, ok := b.levels[levelID]; ok {
		return lvl, nil
	}
	return nil, errors.New("level not found")
}

func (b *fakeBackend) GetBuilding(_ context.Context, buildingID string) (*BuildingInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bld, ok := b.buildings[buildingID]; ok {
		return bld, nil
	}
	return nil, errors.New("building not found")
}

func (b *fakeBackend) CountUnitsInLevel(_ context.Context, levelID, _ string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unitCount[levelID], nil
}

func (b *fakeBackend) UsedAreaInBuilding(_ context.Context, buildingID, _ string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usedArea[buildingID], nil
}

func (b *fakeBackend) CheckUnitNumber(context.Context, string, string, string) (bool, error) {
	b.mu.Lock()
	b.checkCalls++
	gate := b.checkGate
	exists, err := b.numberExists, b.checkErr
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return exists, err
}

func (b *fakeBackend) UpdateUnit(_ context.Context, unitID string, sub *Submission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitCalled++
	b.lastUnitID = unitID
	b.lastSubmit = sub
	return b.updateErr
}

func baseSnapshot() Snapshot {
	return Snapshot{
		UnitID:         "unit-1",
		UnitNumber:     "UN-007",
		UnitType:       UnitTypeRoom,
		RoomTypeID:     "rt-1",
		UnitSpace:      30,
		RentalFee:      1500,
		HasMeter:       true,
		LevelID:        "lvl-1",
		UtilityTypeIDs: []string{"ut-1", "ut-2", "ut-3"},
		Images: []RemoteImage{
			{URL: "https://cdn.example.com/u/a.jpg"},
			{URL: "https://cdn.example.com/u/b.jpg"},
			{URL: "https://cdn.example.com/u/c.jpg"},
		},
	}
}

func loadedForm(t *testing.T, backend *fakeBackend) *Form {
	t.Helper()
	form := New(backend, zap.NewNop())
	require.NoError(t, form.Load(context.Background(), baseSnapshot()))
	return form
}

func TestLoadPopulatesReferenceData(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	assert.Len(t, form.RoomTypes(), 2)
	assert.Len(t, form.SpaceTypes(), 1)
	assert.Len(t, form.HallTypes(), 1)
	assert.Len(t, form.UtilityTypes(), 4)
	assert.Equal(t, "UN-007", form.UnitNumber())
	assert.False(t, form.HasChanges())
	assert.Empty(t, form.Errors())
}

func TestLoadCollapsesDuplicateUtilities(t *testing.T) {
	backend := newFakeBackend()
	form := New(backend, zap.NewNop())

	snap := baseSnapshot()
	snap.UtilityTypeIDs = []string{"ut-1", "ut-1", "ut-2", "ut-1"}
	require.NoError(t, form.Load(context.Background(), snap))

	assert.Equal(t, []string{"ut-1", "ut-2"}, form.CurrentUtilityIDs())
	assert.False(t, form.HasChanges())
}

func TestUtilityToggleIsInvolution(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.ToggleUtility("ut-4")
	assert.True(t, form.UtilitySelected("ut-4"))
	form.ToggleUtility("ut-4")
	assert.False(t, form.UtilitySelected("ut-4"))
	assert.False(t, form.HasChanges())
}

func TestUtilityDiffPartition(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	// {1,2,3} -> deselect 2, select 4
	form.ToggleUtility("ut-2")
	form.ToggleUtility("ut-4")

	added, removed := form.UtilityDiff()
	assert.Equal(t, []string{"ut-4"}, added)
	assert.Equal(t, []string{"ut-2"}, removed)
	assert.Equal(t, []string{"ut-1", "ut-3", "ut-4"}, form.CurrentUtilityIDs())
}

func TestCancelRestoresSnapshot(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.SetUnitSpace("45")
	form.SetRentalFee("9999")
	form.ToggleUtility("ut-4")
	form.ToggleUtility("ut-1")
	require.NoError(t, form.StageImages(StagedImage{FileName: "new.jpg", Content: []byte{1}}))
	staged := form.StagedImages()
	require.Len(t, staged, 1)
	preview := staged[0].Preview
	form.MarkImageForRemoval("https://cdn.example.com/u/a.jpg")
	require.True(t, form.HasChanges())

	form.Cancel()

	assert.False(t, form.HasChanges())
	assert.Equal(t, []string{"ut-1", "ut-2", "ut-3"}, form.CurrentUtilityIDs())
	assert.Len(t, form.ExistingImages(), 3)
	assert.Empty(t, form.StagedImages())
	assert.Empty(t, form.RemovedImageURLs())
	assert.True(t, preview.Released(), "cancel must release staged previews")
}

func TestCancelDiscardsInFlightUniquenessCheck(t *testing.T) {
	backend := newFakeBackend()
	backend.numberExists = true
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-008", 6)
	form.BlurUnitNumber(context.Background())
	form.Cancel()

	// A stale positive response must not mark the restored number as duplicate.
	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, errs, FieldUnitNumber)
	assert.Equal(t, "UN-007", form.UnitNumber())
}

func TestHasChangesScalars(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.SetUnitSpace("30")
	assert.False(t, form.HasChanges(), "same value is not a change")

	form.SetUnitSpace("31")
	assert.True(t, form.HasChanges())
	form.SetUnitSpace("30")
	assert.False(t, form.HasChanges())

	form.SetHasMeter(false)
	assert.True(t, form.HasChanges())
	form.SetHasMeter(true)
	assert.False(t, form.HasChanges())
}

func TestHasMeterForcedOffForSpace(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.SetUnitType(UnitTypeSpace)
	form.SetSpaceTypeID("st-1")
	assert.False(t, form.EffectiveHasMeter(), "SPACE units never submit hasMeter=true")
}

func TestValidateTypeRefPerUnitType(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.SetUnitType(UnitTypeHall)
	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hall type is required", errs[FieldTypeRef])

	form.SetHallTypeID("ht-1")
	errs, err = form.Validate(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, errs, FieldTypeRef)
}

func TestValidateInsufficientArea(t *testing.T) {
	backend := newFakeBackend()
	// available = 100 - 60 = 40 sqm
	backend.usedArea["bld-1"] = 60
	form := loadedForm(t, backend)

	form.SetUnitSpace("45")
	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		"Insufficient leasable area in building. Available: 40.00 sqm, Required: 45.00 sqm",
		errs[FieldUnitSpace])

	form.SetUnitSpace("40")
	errs, err = form.Validate(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, errs, FieldUnitSpace, "exactly the available area is allowed")
}

func TestValidateSpaceBounds(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	cases := map[string]string{
		"":      "Unit space is required",
		"abc":   "Unit space must be a number",
		"0":     "Unit space must be at least 0.1 sqm",
		"0.05":  "Unit space must be at least 0.1 sqm",
		"10001": "Unit space must not exceed 10000 sqm",
	}
	for input, want := range cases {
		form.SetUnitSpace(input)
		errs, err := form.Validate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, errs[FieldUnitSpace], "input %q", input)
	}
}

func TestValidateLevelCapacity(t *testing.T) {
	backend := newFakeBackend()
	full := 5
	backend.levels["lvl-2"].TotalUnits = &full
	backend.unitCount["lvl-2"] = 5
	form := loadedForm(t, backend)

	require.NoError(t, form.SetLevel(context.Background(), "lvl-2"))
	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Level unit capacity reached (5/5)", errs[FieldLevel])
}
