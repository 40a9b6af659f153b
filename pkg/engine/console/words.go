package console

import "unicode"

// isWordRune reports whether r belongs to a word: letters, digits and
// underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PrevWordStart scans left from col and returns the index of the start of
// the previous word. Non-word runes directly before col are skipped first.
func PrevWordStart(line string, col int) int {
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}
	i := col
	for i > 0 && !isWordRune(runes[i-1]) {
		i--
	}
	for i > 0 && isWordRune(runes[i-1]) {
		i--
	}
	return i
}

// NextWordEnd scans right from col and returns the index just past the end
// of the next word. Non-word runes directly at col are skipped first.
func NextWordEnd(line string, col int) int {
	runes := []rune(line)
	if col < 0 {
		col = 0
	}
	i := col
	for i < len(runes) && !isWordRune(runes[i]) {
		i++
	}
	for i < len(runes) && isWordRune(runes[i]) {
		i++
	}
	return i
}

// WordAt returns the [start, end) rune range of the word under col, or an
// empty range when col touches no word. A cursor sitting just past a word
// still selects it.
func WordAt(line string, col int) (start, end int) {
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}
	if col < 0 {
		col = 0
	}
	i := col
	if i >= len(runes) || !isWordRune(runes[i]) {
		if i > 0 && isWordRune(runes[i-1]) {
			i--
		} else {
			return col, col
		}
	}
	start = i
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end = i
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return start, end
}

var bracketPairs = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	')': '(',
	']': '[',
	'}': '{',
}

func isOpenBracket(r rune) bool {
	return r == '(' || r == '[' || r == '{'
}

// FindBracket looks at the runes immediately before and after pos for a
// bracket and locates its counterpart by scanning across lines with a
// depth counter. Mismatched bracket kinds are ignored. ok is false when the
// bracket is unmatched; callers render that state distinctly.
func FindBracket(lines []string, pos Position) (at, match Position, ok bool) {
	if pos.Line < 0 || pos.Line >= len(lines) {
		return Position{}, Position{}, false
	}
	runes := []rune(lines[pos.Line])
	col := pos.Col
	if col > len(runes) {
		col = len(runes)
	}

	// Prefer the rune after the cursor, then the one before.
	var r rune
	var bracketCol int
	switch {
	case col < len(runes) && bracketPairs[runes[col]] != 0:
		r = runes[col]
		bracketCol = col
	case col > 0 && bracketPairs[runes[col-1]] != 0:
		r = runes[col-1]
		bracketCol = col - 1
	default:
		return Position{}, Position{}, false
	}

	at = Position{Line: pos.Line, Col: bracketCol}
	counterpart := bracketPairs[r]
	depth := 0

	if isOpenBracket(r) {
		for li := pos.Line; li < len(lines); li++ {
			lr := []rune(lines[li])
			ci := 0
			if li == pos.Line {
				ci = bracketCol
			}
			for ; ci < len(lr); ci++ {
				switch lr[ci] {
				case r:
					depth++
				case counterpart:
					depth--
					if depth == 0 {
						return at, Position{Line: li, Col: ci}, true
					}
				}
			}
		}
		return at, Position{}, false
	}

	for li := pos.Line; li >= 0; li-- {
		lr := []rune(lines[li])
		ci := len(lr) - 1
		if li == pos.Line {
			ci = bracketCol
		}
		for ; ci >= 0; ci-- {
			switch lr[ci] {
			case r:
				depth++
			case counterpart:
				depth--
				if depth == 0 {
					return at, Position{Line: li, Col: ci}, true
				}
			}
		}
	}
	return at, Position{}, false
}
