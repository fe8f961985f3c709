package unitform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedFile(name string) StagedImage {
	return StagedImage{FileName: name, Content: []byte(name)}
}

func TestStageImagesCapIsAtomic(t *testing.T) {
	form := loadedForm(t, newFakeBackend()) // 3 existing images

	// 3 existing + 3 staged would exceed the cap of 5: reject the whole batch
	err := form.StageImages(stagedFile("a.jpg"), stagedFile("b.jpg"), stagedFile("c.jpg"))
	require.EqualError(t, err, "at most 5 images per unit, 2 slot(s) left")
	assert.Empty(t, form.StagedImages(), "a rejected batch must not be partially applied")

	require.NoError(t, form.StageImages(stagedFile("a.jpg"), stagedFile("b.jpg")))
	assert.Len(t, form.StagedImages(), 2)

	err = form.StageImages(stagedFile("c.jpg"))
	require.EqualError(t, err, "at most 5 images per unit, 0 slot(s) left")
}

func TestMarkingRemovalFreesASlot(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	require.True(t, form.MarkImageForRemoval("https://cdn.example.com/u/a.jpg"))
	require.NoError(t, form.StageImages(stagedFile("a.jpg"), stagedFile("b.jpg"), stagedFile("c.jpg")))
	assert.Len(t, form.ExistingImages(), 2)
	assert.Len(t, form.StagedImages(), 3)
}

func TestRestoreImageReturnsToOriginalPosition(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	require.True(t, form.MarkImageForRemoval("https://cdn.example.com/u/b.jpg"))
	assert.Equal(t, []string{"https://cdn.example.com/u/b.jpg"}, form.RemovedImageURLs())

	require.True(t, form.RestoreImage("https://cdn.example.com/u/b.jpg"))
	assert.Empty(t, form.RemovedImageURLs())

	urls := make([]string, 0, 3)
	for _, img := range form.ExistingImages() {
		urls = append(urls, img.URL)
	}
	assert.Equal(t, []string{
		"https://cdn.example.com/u/a.jpg",
		"https://cdn.example.com/u/b.jpg",
		"https://cdn.example.com/u/c.jpg",
	}, urls)
}

func TestRestoreUnknownURL(t *testing.T) {
	form := loadedForm(t, newFakeBackend())
	assert.False(t, form.RestoreImage("https://cdn.example.com/u/zzz.jpg"))
	assert.False(t, form.MarkImageForRemoval("https://cdn.example.com/u/zzz.jpg"))
}

func TestRemoveStagedImageReleasesPreview(t *testing.T) {
	form := loadedForm(t, newFakeBackend())

	require.NoError(t, form.StageImages(stagedFile("a.jpg"), stagedFile("b.jpg")))
	staged := form.StagedImages()
	require.Len(t, staged, 2)
	first := staged[0]
	require.NotNil(t, first.Preview)

	require.True(t, form.RemoveStagedImage(0))
	assert.True(t, first.Preview.Released())

	remaining := form.StagedImages()
	require.Len(t, remaining, 1)
	assert.Equal(t, "b.jpg", remaining[0].FileName)

	assert.False(t, form.RemoveStagedImage(5))
	assert.False(t, form.RemoveStagedImage(-1))
}
