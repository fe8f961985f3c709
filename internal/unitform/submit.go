package unitform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoChanges 表单无任何修改，空提交被拒绝
	ErrNoChanges = errors.New("form has no changes")
	// ErrSubmitInFlight 上一次提交尚未返回
	ErrSubmitInFlight = errors.New("submit already in flight")
)

// ValidationError 校验未通过，Fields 为字段错误表
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// SubmissionFile 随提交上传的新图片
type SubmissionFile struct {
	FileName string
	Content  []byte
}

// Submission 提交载荷。注意两种差异表示的不对称：
// 计费项目提交完整终态集合（增删差异仅用于展示），
// 图片只提交增量（新文件 + 待删 URL 列表）——这是两个后端
// 契约的形状，不是可以「修正」的设计缺陷。
type Submission struct {
	UnitNumber  string
	UnitType    string
	HasMeter    bool
	LevelID     string
	UnitSpace   float64
	RentalFee   float64
	RoomTypeID  string
	SpaceTypeID string
	HallTypeID  string

	UtilityTypeIDs []string
	NewImages      []SubmissionFile
	ImagesToRemove []string
}

// HasChanges 表单是否存在未保存修改，仅用于提交按钮的可用状态。
// 编号比较不区分大小写。
func (f *Form) HasChanges() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasChangesLocked()
}

func (f *Form) hasChangesLocked() bool {
	added, removed := diffSets(f.currentUtilities, f.originalUtilities)
	if len(added) > 0 || len(removed) > 0 {
		return true
	}
	if len(f.stagedImages) > 0 || len(f.removedImages) > 0 {
		return true
	}

	snap := f.snapshot
	if !strings.EqualFold(f.unitNumber, NormalizeUnitNumber(f.prefix, snap.UnitNumber)) {
		return true
	}
	if f.unitType != snap.UnitType {
		return true
	}
	if f.effectiveHasMeterLocked() != snap.HasMeter {
		return true
	}
	if f.roomTypeID != snap.RoomTypeID || f.spaceTypeID != snap.SpaceTypeID || f.hallTypeID != snap.HallTypeID {
		return true
	}
	if f.levelID != snap.LevelID {
		return true
	}
	if space, err := strconv.ParseFloat(f.unitSpace, 64); err != nil || space != snap.UnitSpace {
		return true
	}
	if fee, err := strconv.ParseFloat(f.rentalFee, 64); err != nil || fee != snap.RentalFee {
		return true
	}
	return false
}

// buildSubmissionLocked 组装提交载荷，调用前须保证校验已通过
func (f *Form) buildSubmissionLocked() *Submission {
	space, _ := strconv.ParseFloat(f.unitSpace, 64)
	fee, _ := strconv.ParseFloat(f.rentalFee, 64)

	sub := &Submission{
		UnitNumber:     NormalizeUnitNumber(f.prefix, f.unitNumber),
		UnitType:       f.unitType,
		HasMeter:       f.effectiveHasMeterLocked(),
		LevelID:        f.levelID,
		UnitSpace:      space,
		RentalFee:      fee,
		UtilityTypeIDs: sortedKeys(f.currentUtilities),
	}

	// 只携带与当前类型匹配的那一个外键
	switch f.unitType {
	case UnitTypeRoom:
		sub.RoomTypeID = f.roomTypeID
	case UnitTypeSpace:
		sub.SpaceTypeID = f.spaceTypeID
	case UnitTypeHall:
		sub.HallTypeID = f.hallTypeID
	}

	for _, img := range f.stagedImages {
		sub.NewImages = append(sub.NewImages, SubmissionFile{
			FileName: img.FileName,
			Content:  img.Content,
		})
	}
	for _, m := range f.removedImages {
		sub.ImagesToRemove = append(sub.ImagesToRemove, m.image.URL)
	}
	return sub
}

// BuildSubmission 校验并组装提交载荷，不实际发送
func (f *Form) BuildSubmission(ctx context.Context) (*Submission, error) {
	if err := f.waitForCheck(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.validateLocked()
	if len(f.errors) > 0 {
		fields := make(map[string]string, len(f.errors))
		for k, v := range f.errors {
			fields[k] = v
		}
		return nil, &ValidationError{Fields: fields}
	}
	if !f.hasChangesLocked() {
		return nil, ErrNoChanges
	}
	return f.buildSubmissionLocked(), nil
}

// Submit 校验、组装并提交。提交期间再次提交被拒绝（按钮置灰）。
// 提交失败的展示由调用方负责，引擎只负责构造并发出载荷。
func (f *Form) Submit(ctx context.Context) error {
	sub, err := f.BuildSubmission(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	unitID := f.snapshot.UnitID
	f.mu.Unlock()

	err = f.backend.UpdateUnit(ctx, unitID, sub)

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
	return err
}
