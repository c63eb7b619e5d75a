package score

import "strings"

// CategoryOf strips a single trailing "R" or "L" so that "英語R" and "英語L"
// share the category "英語". Any other name is its own category.
func CategoryOf(name string) string {
	if strings.HasSuffix(name, "R") || strings.HasSuffix(name, "L") {
		return name[:len(name)-1]
	}
	return name
}

// DisplayName drops the leading run of runes that are neither 'R', 'L' nor
// ASCII lowercase. It is idempotent.
func DisplayName(name string) string {
	return strings.TrimLeftFunc(name, func(r rune) bool {
		return r != 'R' && r != 'L' && !(r >= 'a' && r <= 'z')
	})
}
