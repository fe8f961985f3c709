package unitform

import (
	"fmt"

	"github.com/google/uuid"
)

// PreviewHandle 本地预览句柄，对应浏览器里的 object URL，
// 暂存图片移除或表单取消时必须释放
type PreviewHandle struct {
	ID       string
	released bool
}

// Release 释放预览句柄，幂等
func (p *PreviewHandle) Release() {
	p.released = true
}

// Released 句柄是否已释放
func (p *PreviewHandle) Released() bool {
	return p.released
}

// StagedImage 本地选择、尚未上传的图片
type StagedImage struct {
	FileName string
	Content  []byte
	Preview  *PreviewHandle
}

func (s *StagedImage) release() {
	if s.Preview != nil {
		s.Preview.Release()
	}
}

// StageImages 追加本地图片到暂存区。任何会使
// 现存 + 暂存 数量超过上限的追加被整体拒绝，集合保持不变。
func (f *Form) StageImages(files ...StagedImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	visible := len(f.existingImages) + len(f.stagedImages)
	if visible+len(files) > MaxImages {
		return fmt.Errorf("at most %d images per unit, %d slot(s) left", MaxImages, MaxImages-visible)
	}

	for i := range files {
		img := files[i]
		img.Preview = &PreviewHandle{ID: uuid.New().String()}
		f.stagedImages = append(f.stagedImages, &img)
	}
	return nil
}

// RemoveStagedImage 丢弃一张尚未上传的暂存图片并释放其预览句柄
func (f *Form) RemoveStagedImage(index int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index < 0 || index >= len(f.stagedImages) {
		return false
	}
	f.stagedImages[index].release()
	f.stagedImages = append(f.stagedImages[:index], f.stagedImages[index+1:]...)
	return true
}

// MarkImageForRemoval 把一张现存图片标记为待删除。
// 不立即删除，提交时随 imagesToRemove 一并发送。
func (f *Form) MarkImageForRemoval(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, img := range f.existingImages {
		if img.URL == url {
			f.removedImages = append(f.removedImages, markedImage{image: img, origIndex: i})
			f.existingImages = append(f.existingImages[:i], f.existingImages[i+1:]...)
			return true
		}
	}
	return false
}

// RestoreImage 撤销删除标记，图片回到原位置
func (f *Form) RestoreImage(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, marked := range f.removedImages {
		if marked.image.URL != url {
			continue
		}
		f.removedImages = append(f.removedImages[:i], f.removedImages[i+1:]...)

		pos := marked.origIndex
		if pos > len(f.existingImages) {
			pos = len(f.existingImages)
		}
		f.existingImages = append(f.existingImages, RemoteImage{})
		copy(f.existingImages[pos+1:], f.existingImages[pos:])
		f.existingImages[pos] = marked.image
		return true
	}
	return false
}

// ExistingImages 当前未被标记删除的现存图片
func (f *Form) ExistingImages() []RemoteImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RemoteImage(nil), f.existingImages...)
}

// StagedImages 当前暂存图片
func (f *Form) StagedImages() []*StagedImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*StagedImage(nil), f.stagedImages...)
}

// RemovedImageURLs 标记删除的图片 URL（提交时的增量载荷）
func (f *Form) RemovedImageURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, 0, len(f.removedImages))
	for _, m := range f.removedImages {
		urls = append(urls, m.image.URL)
	}
	return urls
}
