package domain

import "strings"

// MaskGlyph replaces hidden characters of a display name.
const MaskGlyph = '＊'

// MaskName hides the interior of a display name, keeping the first and last
// character. Two-character names keep only the first; shorter names are
// returned unchanged. Length is counted in runes.
func MaskName(name string) string {
	runes := []rune(name)
	switch n := len(runes); {
	case n < 2:
		return name
	case n == 2:
		return string(runes[0]) + string(MaskGlyph)
	default:
		return string(runes[0]) + strings.Repeat(string(MaskGlyph), n-2) + string(runes[n-1])
	}
}
