package console

// MeasureFunc returns the rendered width of s, in whatever unit the
// frontend measures in (pixels, terminal cells). Width is assumed
// non-decreasing as the string grows, which holds for left-to-right text.
type MeasureFunc func(s string) int

// ColumnForX resolves a horizontal offset within rendered text to a rune
// index, using binary search over substring widths. Clicks land on the
// nearest character boundary. The search runs over indices only, so it
// terminates even if measure misbehaves.
func ColumnForX(text string, x int, measure MeasureFunc) int {
	runes := []rune(text)
	if len(runes) == 0 || x <= 0 {
		return 0
	}
	if x >= measure(text) {
		return len(runes)
	}

	// Largest prefix length whose width is <= x.
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(string(runes[:mid])) <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	// Advance past the boundary when the click falls in the far half of
	// the next character.
	if lo < len(runes) {
		left := measure(string(runes[:lo]))
		right := measure(string(runes[:lo+1]))
		if x-left > right-x {
			return lo + 1
		}
	}
	return lo
}
