package console

import "strings"

// DefaultSeparators are the characters that end the token being completed,
// in addition to whitespace.
const DefaultSeparators = "=+-*/<>!&|,;()[]{}"

// Candidate is one autocomplete entry: the display text, an optional
// inline detail shown after it, and an opaque payload for the caller.
// Candidates are immutable values; refreshing the suggestion set replaces
// them wholesale rather than mutating in place.
type Candidate struct {
	Text    string
	Detail  string
	Payload any
}

// Autocomplete filters a candidate list against the token currently being
// typed and tracks selection and scroll state for the suggestion popup.
type Autocomplete struct {
	candidates []Candidate
	filtered   []Candidate
	token      string
	selected   int
	offset     int
	hscroll    int
	separators string
}

// NewAutocomplete returns an empty engine using DefaultSeparators.
func NewAutocomplete() *Autocomplete {
	return &Autocomplete{selected: -1, separators: DefaultSeparators}
}

// SetSeparators replaces the operator characters treated as token
// boundaries. Whitespace always separates.
func (a *Autocomplete) SetSeparators(s string) {
	a.separators = s
}

// SetCandidates replaces the full candidate list and re-filters against
// the current token.
func (a *Autocomplete) SetCandidates(list []Candidate) {
	a.candidates = make([]Candidate, len(list))
	copy(a.candidates, list)
	a.refilter()
}

// tokenOf extracts the substring after the last separator, trimmed of
// surrounding whitespace.
func (a *Autocomplete) tokenOf(input string) string {
	cut := -1
	for i, r := range input {
		if r == ' ' || r == '\t' || strings.ContainsRune(a.separators, r) {
			cut = i
		}
	}
	return strings.TrimSpace(input[cut+1:])
}

// Filter recomputes the filtered subset from the current input. An empty
// token keeps the full list in insertion order; otherwise case-insensitive
// prefix matches win, falling back to substring matches only when no
// prefix matches exist.
func (a *Autocomplete) Filter(currentInput string) {
	a.token = a.tokenOf(currentInput)
	a.refilter()
}

func (a *Autocomplete) refilter() {
	prev := a.selected
	a.filtered = a.filtered[:0]

	if a.token == "" {
		a.filtered = append(a.filtered, a.candidates...)
	} else {
		needle := strings.ToLower(a.token)
		for _, c := range a.candidates {
			if strings.HasPrefix(strings.ToLower(c.Text), needle) {
				a.filtered = append(a.filtered, c)
			}
		}
		if len(a.filtered) == 0 {
			for _, c := range a.candidates {
				if strings.Contains(strings.ToLower(c.Text), needle) {
					a.filtered = append(a.filtered, c)
				}
			}
		}
	}

	// Keep the previous selection when it still points at a valid index,
	// otherwise select the first result (or nothing when empty).
	switch {
	case len(a.filtered) == 0:
		a.selected = -1
	case prev < 0 || prev >= len(a.filtered):
		a.selected = 0
	default:
		a.selected = prev
	}
	if a.offset > len(a.filtered) {
		a.offset = 0
	}
	a.hscroll = 0
}

// Token returns the token last extracted by Filter.
func (a *Autocomplete) Token() string {
	return a.token
}

// Filtered returns the current filtered, ranked subset.
func (a *Autocomplete) Filtered() []Candidate {
	return a.filtered
}

// Selected returns the selected index into the filtered subset, -1 for
// none.
func (a *Autocomplete) Selected() int {
	return a.selected
}

// SelectedCandidate returns the selected candidate, if any.
func (a *Autocomplete) SelectedCandidate() (Candidate, bool) {
	if a.selected < 0 || a.selected >= len(a.filtered) {
		return Candidate{}, false
	}
	return a.filtered[a.selected], true
}

// Navigate moves the selection one step with wrap-around. From no
// selection, up lands on the last item and down on the first. Navigation
// resets the per-item horizontal scroll.
func (a *Autocomplete) Navigate(up bool) {
	if len(a.filtered) == 0 {
		return
	}
	a.hscroll = 0
	if a.selected < 0 {
		if up {
			a.selected = len(a.filtered) - 1
		} else {
			a.selected = 0
		}
		return
	}
	if up {
		a.selected--
		if a.selected < 0 {
			a.selected = len(a.filtered) - 1
		}
	} else {
		a.selected++
		if a.selected >= len(a.filtered) {
			a.selected = 0
		}
	}
}

// Offset returns the index of the first visible item.
func (a *Autocomplete) Offset() int {
	return a.offset
}

// EnsureSelectedVisible adjusts the scroll offset so the selected item
// lies within [offset, offset+maxVisible), clamped to the list bounds.
func (a *Autocomplete) EnsureSelectedVisible(maxVisible int) {
	if maxVisible <= 0 || len(a.filtered) == 0 {
		a.offset = 0
		return
	}
	if a.selected >= 0 {
		if a.selected < a.offset {
			a.offset = a.selected
		}
		if a.selected >= a.offset+maxVisible {
			a.offset = a.selected - maxVisible + 1
		}
	}
	max := len(a.filtered) - maxVisible
	if max < 0 {
		max = 0
	}
	if a.offset > max {
		a.offset = max
	}
	if a.offset < 0 {
		a.offset = 0
	}
}

// HScroll returns the horizontal text scroll of the selected, overflowing
// item.
func (a *Autocomplete) HScroll() int {
	return a.hscroll
}

// ScrollSelectedText advances the horizontal scroll of the selected item
// by delta runes, never below zero.
func (a *Autocomplete) ScrollSelectedText(delta int) {
	a.hscroll += delta
	if a.hscroll < 0 {
		a.hscroll = 0
	}
}

// Clear drops all candidates and transient state, e.g. when input is
// cleared or completion is cancelled.
func (a *Autocomplete) Clear() {
	a.candidates = nil
	a.filtered = nil
	a.token = ""
	a.selected = -1
	a.offset = 0
	a.hscroll = 0
}

// Active reports whether there is anything to show.
func (a *Autocomplete) Active() bool {
	return len(a.filtered) > 0
}
