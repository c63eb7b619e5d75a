package score

import (
	"slices"
	"strings"
)

// CommonToken marks chart entries that belong to the common test.
const CommonToken = "共通"

// SubjectOrder is the default display priority of subjects.
var SubjectOrder = []string{
	"英語", "英語R", "英語L",
	"数学", "国語",
	"理科", "物理", "化学", "生物", "地学",
	"地歴", "日本史", "世界史", "地理",
	"公民", "倫理", "政経",
	"情報", "外国語", "小論文", "面接", "実技",
}

// SortEntries returns a copy of entries with common-test entries first and,
// within each group, entries ordered by their subject's position in order.
// Names that match nothing in order sort after every matched name. The sort
// is stable.
func SortEntries(entries []ChartPoint, order []string) []ChartPoint {
	return sortEntries(entries, order, CommonToken)
}

func sortEntries(entries []ChartPoint, order []string, common string) []ChartPoint {
	out := slices.Clone(entries)
	rank := func(p ChartPoint) (int, int) {
		group := 1
		if common != "" && strings.Contains(p.Name, common) {
			group = 0
		}
		return group, subjectIndex(p.Name, order)
	}
	slices.SortStableFunc(out, func(a, b ChartPoint) int {
		ga, ia := rank(a)
		gb, ib := rank(b)
		if ga != gb {
			return ga - gb
		}
		return ia - ib
	})
	return out
}

// subjectIndex finds name in order, first as written (minus any "(…)"
// test-type suffix), then by its category. Misses map to len(order).
func subjectIndex(name string, order []string) int {
	base := stripTestType(name)
	if i := slices.Index(order, base); i >= 0 {
		return i
	}
	if i := slices.Index(order, CategoryOf(base)); i >= 0 {
		return i
	}
	return len(order)
}

func stripTestType(name string) string {
	for _, open := range []string{"(", "（"} {
		if i := strings.Index(name, open); i > 0 {
			return strings.TrimSpace(name[:i])
		}
	}
	return name
}
