package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewObjectNameLayout(t *testing.T) {
	key := newObjectName("unit-1", "facade photo.JPG")

	datePart := time.Now().Format("2006/01/02")
	pattern := fmt.Sprintf(`^units/unit-1/%s/[0-9a-f]{8}\.JPG$`, datePart)
	assert.Regexp(t, regexp.MustCompile(pattern), key)

	// 原始文件名只保留扩展名，对象名之间不会复用
	assert.NotEqual(t, key, newObjectName("unit-1", "facade photo.JPG"))
}

func TestPublicURLRoundTripsToObjectName(t *testing.T) {
	svc := NewImageService(nil, "pms-images", "https://cdn.example.com/", zap.NewNop())

	key := newObjectName("unit-1", "a.jpg")
	got, ok := svc.objectNameFromURL(svc.publicURL(key))
	require.True(t, ok)
	assert.Equal(t, key, got, "stored object key must be recoverable from the public URL")
}

func TestObjectNameFromURL(t *testing.T) {
	svc := NewImageService(nil, "pms-images", "https://cdn.example.com/", zap.NewNop())

	name, ok := svc.objectNameFromURL("https://cdn.example.com/pms-images/units/u1/2026/08/abc12345.jpg")
	require.True(t, ok)
	assert.Equal(t, "units/u1/2026/08/abc12345.jpg", name)

	_, ok = svc.objectNameFromURL("https://other.example.com/pms-images/units/u1/a.jpg")
	assert.False(t, ok, "foreign hosts are not managed objects")

	_, ok = svc.objectNameFromURL("https://cdn.example.com/other-bucket/units/u1/a.jpg")
	assert.False(t, ok, "other buckets are not managed objects")
}

func TestRemoveWithoutStorageIsNoop(t *testing.T) {
	svc := NewImageService(nil, "pms-images", "https://cdn.example.com", zap.NewNop())
	assert.NoError(t, svc.Remove(context.Background(), "https://cdn.example.com/pms-images/a.jpg"))
}
