package unitform

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSubmissionNoChanges(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	_, err := form.BuildSubmission(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestBuildSubmissionValidationError(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	form.SetUnitSpace("")
	form.SetRentalFee("-10")

	_, err := form.BuildSubmission(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Unit space is required", verr.Fields[FieldUnitSpace])
	assert.Equal(t, "Rental fee must not be negative", verr.Fields[FieldRentalFee])
}

func TestSubmissionShape(t *testing.T) {
	backend := newFakeBackend()
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-8", 5)
	form.BlurUnitNumber(context.Background())
	form.SetUnitSpace("35.5")
	form.SetRentalFee("1800")
	form.ToggleUtility("ut-2") // off
	form.ToggleUtility("ut-4") // on
	form.MarkImageForRemoval("https://cdn.example.com/u/a.jpg")
	require.NoError(t, form.StageImages(stagedFile("new.jpg")))

	require.NoError(t, form.Submit(context.Background()))

	require.Equal(t, 1, backend.submitCalled)
	assert.Equal(t, "unit-1", backend.lastUnitID)

	sub := backend.lastSubmit
	require.NotNil(t, sub)
	assert.Equal(t, "UN-008", sub.UnitNumber)
	assert.Equal(t, UnitTypeRoom, sub.UnitType)
	assert.Equal(t, "rt-1", sub.RoomTypeID)
	assert.Empty(t, sub.SpaceTypeID)
	assert.Empty(t, sub.HallTypeID)
	assert.Equal(t, 35.5, sub.UnitSpace)
	assert.Equal(t, 1800.0, sub.RentalFee)
	assert.True(t, sub.HasMeter)
	assert.Equal(t, "lvl-1", sub.LevelID)

	// utilities travel as the full final set, images as a delta
	assert.Equal(t, []string{"ut-1", "ut-3", "ut-4"}, sub.UtilityTypeIDs)
	require.Len(t, sub.NewImages, 1)
	assert.Equal(t, "new.jpg", sub.NewImages[0].FileName)
	assert.Equal(t, []string{"https://cdn.example.com/u/a.jpg"}, sub.ImagesToRemove)
}

func TestSubmissionSpaceUnitDropsMeter(t *testing.T) {
	backend := newFakeBackend()
	form := loadedForm(t, backend)

	form.SetUnitType(UnitTypeSpace)
	form.SetSpaceTypeID("st-1")
	// hasMeter stays true locally but SPACE units never meter

	require.NoError(t, form.Submit(context.Background()))

	sub := backend.lastSubmit
	require.NotNil(t, sub)
	assert.Equal(t, UnitTypeSpace, sub.UnitType)
	assert.Equal(t, "st-1", sub.SpaceTypeID)
	assert.Empty(t, sub.RoomTypeID, "only the matching type reference is carried")
	assert.False(t, sub.HasMeter)
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	backend := newFakeBackend()
	form := loadedForm(t, backend)
	form.SetRentalFee("2000")

	release := make(chan struct{})
	entered := make(chan struct{})
	form.backend = &blockingBackend{fakeBackend: backend, entered: entered, release: release}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = form.Submit(context.Background())
	}()

	<-entered
	err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
}

type blockingBackend struct {
	*fakeBackend
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingBackend) UpdateUnit(ctx context.Context, unitID string, sub *Submission) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.fakeBackend.UpdateUnit(ctx, unitID, sub)
}
