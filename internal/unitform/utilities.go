package unitform

import "sort"

// ToggleUtility 翻转一个计费项目的选中状态。
// 只改动 current 集合，original 集合在表单生命周期内只读；
// 连续翻转两次回到原状态（对合）。
func (f *Form) ToggleUtility(utilityTypeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.currentUtilities[utilityTypeID]; ok {
		delete(f.currentUtilities, utilityTypeID)
	} else {
		f.currentUtilities[utilityTypeID] = struct{}{}
	}
}

// UtilitySelected 当前是否选中
func (f *Form) UtilitySelected(utilityTypeID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.currentUtilities[utilityTypeID]
	return ok
}

// UtilityDiff 计算最小增删差异：added = current − original，
// removed = original − current，各自排序便于展示与断言。
// 差异仅用于界面徽标与提交按钮门控；线上载荷提交的是完整终态集合。
func (f *Form) UtilityDiff() (added, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return diffSets(f.currentUtilities, f.originalUtilities)
}

// CurrentUtilityIDs 返回当前选中集合的有序列表（提交载荷用）
func (f *Form) CurrentUtilityIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedKeys(f.currentUtilities)
}

// diffSets 返回 (current − original, original − current)
func diffSets(current, original map[string]struct{}) (added, removed []string) {
	for id := range current {
		if _, ok := original[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range original {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
