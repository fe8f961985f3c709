package unitform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnitNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"un-7", "UN-007"},
		{"UN-007", "UN-007"},
		{"  un-42 ", "UN-042"},
		{"UN-999", "UN-999"},
		{"UN-1000", "UN-1000"}, // out of range, left for validation
		{"UN-", "UN-"},
		{"A-7", "A-7"}, // wrong prefix, left for validation
		{"un-007", "UN-007"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeUnitNumber(DefaultNumberPrefix, tc.in), "input %q", tc.in)
	}
}

func TestNormalizeUnitNumberIdempotent(t *testing.T) {
	once := NormalizeUnitNumber(DefaultNumberPrefix, "un-7")
	assert.Equal(t, once, NormalizeUnitNumber(DefaultNumberPrefix, once))
}

func TestValidateUnitNumberMessages(t *testing.T) {
	format := "Unit number must match UN-### (e.g. UN-001)"
	cases := []struct {
		in   string
		want string
	}{
		{"", "Unit number is required"},
		{"   ", "Unit number is required"},
		{"A-007", format},
		{"UN-", format},
		{"UN-1a", format},
		{"UN-0001", format},
		{"UN-1000", format},
		{"UN-000", "Unit number must be between 1 and 999"},
		{"UN-007", ""},
		{"un-7", ""},
		{"UN-999", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidateUnitNumber(DefaultNumberPrefix, tc.in), "input %q", tc.in)
	}
}

func TestEditUnitNumberProtectsPrefix(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	// deleting into the prefix is rejected wholesale
	value, cursor := form.EditUnitNumber("N-007", 0)
	assert.Equal(t, "UN-007", value)
	assert.Equal(t, len(DefaultNumberPrefix), cursor)
	assert.Equal(t, "UN-007", form.UnitNumber())

	// lowercase input is upcased, cursor clamped to the editable region
	value, cursor = form.EditUnitNumber("un-08", 1)
	assert.Equal(t, "UN-08", value)
	assert.Equal(t, len(DefaultNumberPrefix), cursor)

	value, cursor = form.EditUnitNumber("UN-081", 99)
	assert.Equal(t, "UN-081", value)
	assert.Equal(t, len("UN-081"), cursor)
}

func TestBlurNormalizesAndSkipsCheckWhenUnchanged(t *testing.T) {
	backend := newFakeBackend()
	form := loadedForm(t, backend)

	// same number as the snapshot after normalization: no backend round-trip
	form.EditUnitNumber("un-7", 4)
	form.BlurUnitNumber(context.Background())
	require.NoError(t, waitIdle(form))

	assert.Equal(t, "UN-007", form.UnitNumber())
	assert.Equal(t, 0, backend.checkCalls)
}

func TestBlurDetectsDuplicate(t *testing.T) {
	backend := newFakeBackend()
	backend.numberExists = true
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-8", 5)
	form.BlurUnitNumber(context.Background())

	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Unit number UN-008 already exists on this level", errs[FieldUnitNumber])
	assert.Equal(t, 1, backend.checkCalls)
	assert.False(t, form.Checking())
}

func TestBlurSkipsCheckOnFormatError(t *testing.T) {
	backend := newFakeBackend()
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-1000", 7)
	form.BlurUnitNumber(context.Background())
	require.NoError(t, waitIdle(form))

	assert.Equal(t, 0, backend.checkCalls)
	assert.Equal(t, "Unit number must be between 1 and 999", form.Errors()[FieldUnitNumber])
}

func TestUniquenessCheckFailsOpen(t *testing.T) {
	backend := newFakeBackend()
	backend.checkErr = errors.New("network down")
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-008", 6)
	form.BlurUnitNumber(context.Background())

	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, errs, FieldUnitNumber, "check failure must not block the user")
}

func TestLevelChangeTriggersUniquenessCheck(t *testing.T) {
	backend := newFakeBackend()
	backend.numberExists = true
	form := loadedForm(t, backend)

	// number unchanged, level changed: the pair (number, level) is new
	require.NoError(t, form.SetLevel(context.Background(), "lvl-2"))
	form.BlurUnitNumber(context.Background())

	errs, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Unit number UN-007 already exists on this level", errs[FieldUnitNumber])
	assert.Equal(t, 1, backend.checkCalls)
}

func TestEditRejectedWhileCheckInFlight(t *testing.T) {
	backend := newFakeBackend()
	backend.checkGate = make(chan struct{})
	form := loadedForm(t, backend)

	form.EditUnitNumber("UN-008", 6)
	form.BlurUnitNumber(context.Background())
	require.True(t, form.Checking())

	value, cursor := form.EditUnitNumber("UN-009", 6)
	assert.Equal(t, "UN-008", value, "field is disabled during the check")
	assert.Equal(t, len(DefaultNumberPrefix), cursor)

	close(backend.checkGate)
	require.NoError(t, waitIdle(form))
	assert.False(t, form.Checking())
}

// waitIdle drains any in-flight uniqueness check.
func waitIdle(form *Form) error {
	return form.waitForCheck(context.Background())
}
