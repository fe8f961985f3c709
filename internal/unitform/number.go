package unitform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// NormalizeUnitNumber 规整单元编号：转大写，数字部分补零到 3 位。
// 对已规整值幂等；不合法的输入原样（仅大写）返回，交由校验报错。
func NormalizeUnitNumber(prefix, value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	if !strings.HasPrefix(v, prefix) {
		return v
	}
	digits := v[len(prefix):]
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 999 {
		return v
	}
	return fmt.Sprintf("%s%03d", prefix, n)
}

// ValidateUnitNumber 校验编号的格式/范围，合法时返回空串。
// 范围错误与格式错误是两类不同的提示。
func ValidateUnitNumber(prefix, value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return "Unit number is required"
	}
	if !strings.HasPrefix(v, prefix) {
		return fmt.Sprintf("Unit number must match %s### (e.g. %s001)", prefix, prefix)
	}
	digits := v[len(prefix):]
	if digits == "" || len(digits) > 3 {
		return fmt.Sprintf("Unit number must match %s### (e.g. %s001)", prefix, prefix)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Sprintf("Unit number must match %s### (e.g. %s001)", prefix, prefix)
		}
	}
	n, _ := strconv.Atoi(digits)
	if n < 1 || n > 999 {
		return "Unit number must be between 1 and 999"
	}
	return ""
}

// EditUnitNumber 模拟前缀不可变的输入编辑：proposed 为编辑后的完整值，
// cursor 为编辑后的光标位置。试图改动前缀的编辑被整体拒绝，
// 光标重置到前缀之后。唯一性检查进行中时字段禁用，编辑一律拒绝。
// 返回生效后的值与光标位置。
func (f *Form) EditUnitNumber(proposed string, cursor int) (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.checking {
		return f.unitNumber, len(f.prefix)
	}

	upper := strings.ToUpper(proposed)
	if !strings.HasPrefix(upper, f.prefix) {
		// 前缀被破坏：拒绝本次编辑，光标退回前缀之后
		return f.unitNumber, len(f.prefix)
	}

	f.unitNumber = upper
	f.duplicateNumber = false
	if cursor < len(f.prefix) {
		cursor = len(f.prefix)
	}
	if cursor > len(f.unitNumber) {
		cursor = len(f.unitNumber)
	}
	return f.unitNumber, cursor
}

// BlurUnitNumber 编号失焦：补零规整、同步校验格式，
// 编号或楼层相对快照有变化时发起异步唯一性检查。
// 检查期间字段禁用；检查失败按「非重复」放行（fail open）。
func (f *Form) BlurUnitNumber(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.checking {
		return
	}

	f.unitNumber = NormalizeUnitNumber(f.prefix, f.unitNumber)
	f.validateLocked()
	if msg := ValidateUnitNumber(f.prefix, f.unitNumber); msg != "" {
		// 格式/范围错误时不必发起唯一性检查
		return
	}

	f.maybeStartUniquenessCheckLocked(ctx)
}

// maybeStartUniquenessCheckLocked 编号或楼层有变化时发起检查。
// generation 计数保证过期响应被丢弃。
func (f *Form) maybeStartUniquenessCheckLocked(ctx context.Context) {
	sameNumber := strings.EqualFold(f.unitNumber, NormalizeUnitNumber(f.prefix, f.snapshot.UnitNumber))
	sameLevel := f.levelID == f.snapshot.LevelID
	if sameNumber && sameLevel {
		return
	}

	f.checking = true
	f.checkGen++
	gen := f.checkGen
	done := make(chan struct{})
	f.checkDone = done

	number, levelID, unitID := f.unitNumber, f.levelID, f.snapshot.UnitID
	go f.runUniquenessCheck(ctx, gen, done, number, levelID, unitID)
}

func (f *Form) runUniquenessCheck(ctx context.Context, gen int, done chan struct{}, number, levelID, unitID string) {
	exists, err := f.backend.CheckUnitNumber(ctx, number, levelID, unitID)

	f.mu.Lock()
	defer f.mu.Unlock()
	defer close(done)

	if gen != f.checkGen {
		// 过期响应：字段在检查期间已被重置/取消
		return
	}
	f.checking = false
	f.checkDone = nil

	if err != nil {
		// 检查失败按非重复处理，不阻塞用户
		if f.logger != nil {
			f.logger.Warn("unit number uniqueness check failed",
				zap.String("unit_number", number),
				zap.String("level_id", levelID),
				zap.Error(err))
		}
		f.duplicateNumber = false
	} else {
		f.duplicateNumber = exists
	}
	f.validateLocked()
}

// waitForCheck 等待在途唯一性检查结束（提交前收口异步校验）
func (f *Form) waitForCheck(ctx context.Context) error {
	f.mu.Lock()
	done := f.checkDone
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
