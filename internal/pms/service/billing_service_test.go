package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.August, got.Month())
	assert.Equal(t, time.UTC, got.Location())

	for _, bad := range []string{"", "2026", "2026-13", "08-2026", "2026/08"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
