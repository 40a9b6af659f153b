package console

import (
	"image/color"
	"strings"
	"unicode"

	"github.com/zyedidia/generic/mapset"
)

// SectionKind tags why a section exists.
type SectionKind int

// Section kinds.
const (
	SectionCommand SectionKind = iota
	SectionError
	SectionCategory
	SectionManual
	SectionSearch
)

// Line is one stored scrollback line with its display color and category
// tag.
type Line struct {
	Text     string
	Color    color.RGBA
	Category string
}

// Section is a contiguous half-open range [Start, End) of scrollback
// lines. The line at Start is the header; folding hides every other line
// in the range.
type Section struct {
	Start  int
	End    int
	Kind   SectionKind
	Folded bool
}

// Match is one search occurrence: absolute line index, rune column and
// match length.
type Match struct {
	Line int
	Col  int
	Len  int
}

// VisibleLine pairs an effective-view line with its absolute index, so
// render code can map clicks back to stored lines.
type VisibleLine struct {
	Abs    int
	Line   Line
	Header bool
	Kind   SectionKind
}

// Scrollback is the append-only output log: colored categorized lines,
// foldable sections, a category filter, text search and a scroll offset
// into the effective (filtered/folded) view. Oldest lines are evicted past
// a configured maximum.
type Scrollback struct {
	lines    []Line
	sections []Section
	maxLines int

	offset     int
	categories mapset.Set[string]

	searchTerm string
	matches    []Match
	current    int

	pendingStart int // section under construction, -1 when none
	pendingKind  SectionKind

	// Effective-view cache: valid iff cacheGen == gen.
	gen      uint64
	cacheGen uint64
	effCache []VisibleLine
}

// NewScrollback returns an empty buffer retaining at most maxLines lines.
func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = 1000
	}
	return &Scrollback{
		maxLines:     maxLines,
		categories:   mapset.New[string](),
		pendingStart: -1,
		cacheGen:     1, // differs from gen so the first query rebuilds
	}
}

// Len returns the number of stored (absolute) lines.
func (s *Scrollback) Len() int {
	return len(s.lines)
}

// LineAt returns the stored line at absolute index i.
func (s *Scrollback) LineAt(i int) (Line, bool) {
	if i < 0 || i >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[i], true
}

// Sections returns a copy of the section list.
func (s *Scrollback) Sections() []Section {
	out := make([]Section, len(s.sections))
	copy(out, s.sections)
	return out
}

func (s *Scrollback) invalidate() {
	s.gen++
}

// Append splits text on embedded newlines, appends each piece as its own
// line and evicts the oldest lines past the maximum.
func (s *Scrollback) Append(text string, c color.RGBA, category string) {
	for _, part := range strings.Split(text, "\n") {
		s.lines = append(s.lines, Line{Text: part, Color: c, Category: category})
	}
	s.evict()
	s.invalidate()
}

// evict drops the oldest lines beyond maxLines, shifting section ranges,
// matches and the scroll offset to keep referencing the same content.
func (s *Scrollback) evict() {
	n := len(s.lines) - s.maxLines
	if n <= 0 {
		return
	}
	s.lines = append(s.lines[:0], s.lines[n:]...)

	kept := s.sections[:0]
	for _, sec := range s.sections {
		sec.Start -= n
		sec.End -= n
		if sec.End <= 0 {
			continue
		}
		if sec.Start < 0 {
			sec.Start = 0
		}
		kept = append(kept, sec)
	}
	s.sections = kept
	if s.pendingStart >= 0 {
		s.pendingStart -= n
		if s.pendingStart < 0 {
			s.pendingStart = 0
		}
	}

	keptMatches := s.matches[:0]
	for _, m := range s.matches {
		m.Line -= n
		if m.Line < 0 {
			if s.current > 0 {
				s.current--
			}
			continue
		}
		keptMatches = append(keptMatches, m)
	}
	s.matches = keptMatches
	if s.current >= len(s.matches) {
		s.current = 0
	}

	s.offset -= n
	if s.offset < 0 {
		s.offset = 0
	}
}

// BeginSection starts a section at the next appended line; that line
// becomes the header. An unfinished section is discarded.
func (s *Scrollback) BeginSection(kind SectionKind) {
	s.pendingStart = len(s.lines)
	s.pendingKind = kind
}

// EndSection closes the section opened by BeginSection. Empty sections are
// dropped.
func (s *Scrollback) EndSection() {
	if s.pendingStart < 0 {
		return
	}
	if len(s.lines) > s.pendingStart {
		s.sections = append(s.sections, Section{
			Start: s.pendingStart,
			End:   len(s.lines),
			Kind:  s.pendingKind,
		})
		s.invalidate()
	}
	s.pendingStart = -1
}

// SectionAt returns the section whose header is at absolute line i.
func (s *Scrollback) SectionAt(i int) (Section, bool) {
	for _, sec := range s.sections {
		if sec.Start == i {
			return sec, true
		}
	}
	return Section{}, false
}

// ToggleSection flips the fold flag of the section headed by absolute line
// i. Returns false when no section starts there.
func (s *Scrollback) ToggleSection(i int) bool {
	for idx := range s.sections {
		if s.sections[idx].Start == i {
			s.sections[idx].Folded = !s.sections[idx].Folded
			s.invalidate()
			return true
		}
	}
	return false
}

// EnableCategory adds cat to the enabled set. A non-empty set hides every
// line tagged with a category outside it.
func (s *Scrollback) EnableCategory(cat string) {
	s.categories.Put(cat)
	s.invalidate()
}

// DisableCategory removes cat from the enabled set.
func (s *Scrollback) DisableCategory(cat string) {
	s.categories.Remove(cat)
	s.invalidate()
}

// ClearCategoryFilter shows all categories again.
func (s *Scrollback) ClearCategoryFilter() {
	s.categories = mapset.New[string]()
	s.invalidate()
}

// CategoryEnabled reports whether lines tagged cat are shown.
func (s *Scrollback) CategoryEnabled(cat string) bool {
	return s.categories.Size() == 0 || s.categories.Has(cat)
}

// effective returns the filtered/folded view, rebuilding the cache lazily
// when the generation counter moved.
func (s *Scrollback) effective() []VisibleLine {
	if s.cacheGen == s.gen {
		return s.effCache
	}

	hidden := make([]bool, len(s.lines))
	header := make([]int, len(s.lines)) // -1, or index into sections
	for i := range header {
		header[i] = -1
	}
	for idx, sec := range s.sections {
		if sec.Start >= 0 && sec.Start < len(s.lines) {
			header[sec.Start] = idx
		}
		if !sec.Folded {
			continue
		}
		for i := sec.Start + 1; i < sec.End && i < len(s.lines); i++ {
			hidden[i] = true
		}
	}

	filter := s.categories.Size() > 0
	eff := make([]VisibleLine, 0, len(s.lines))
	for i, ln := range s.lines {
		if filter && !s.categories.Has(ln.Category) {
			continue
		}
		if hidden[i] {
			continue
		}
		v := VisibleLine{Abs: i, Line: ln}
		if header[i] >= 0 {
			v.Header = true
			v.Kind = s.sections[header[i]].Kind
		}
		eff = append(eff, v)
	}

	s.effCache = eff
	s.cacheGen = s.gen
	return eff
}

// EffectiveLen returns the number of lines in the effective view.
func (s *Scrollback) EffectiveLen() int {
	return len(s.effective())
}

// AbsoluteIndex maps an effective line index back to the absolute stored
// index, e.g. to resolve which line was clicked in a folded view.
func (s *Scrollback) AbsoluteIndex(eff int) (int, bool) {
	lines := s.effective()
	if eff < 0 || eff >= len(lines) {
		return 0, false
	}
	return lines[eff].Abs, true
}

// Offset returns the effective index of the first visible line.
func (s *Scrollback) Offset() int {
	return s.offset
}

// VisibleLines returns up to visibleCount effective lines starting at the
// scroll offset. The offset is clamped first.
func (s *Scrollback) VisibleLines(visibleCount int) []VisibleLine {
	lines := s.effective()
	s.clampOffset(visibleCount)
	end := s.offset + visibleCount
	if end > len(lines) {
		end = len(lines)
	}
	if s.offset >= end {
		return nil
	}
	return lines[s.offset:end]
}

func (s *Scrollback) clampOffset(visibleCount int) {
	max := len(s.effective()) - visibleCount
	if max < 0 {
		max = 0
	}
	if s.offset > max {
		s.offset = max
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// ScrollUp moves the view n lines toward older content.
func (s *Scrollback) ScrollUp(n, visibleCount int) {
	s.offset -= n
	s.clampOffset(visibleCount)
}

// ScrollDown moves the view n lines toward newer content.
func (s *Scrollback) ScrollDown(n, visibleCount int) {
	s.offset += n
	s.clampOffset(visibleCount)
}

// ScrollToTop jumps to the oldest line.
func (s *Scrollback) ScrollToTop() {
	s.offset = 0
}

// ScrollToBottom jumps so the newest line is visible.
func (s *Scrollback) ScrollToBottom(visibleCount int) {
	s.offset = len(s.effective())
	s.clampOffset(visibleCount)
}

// Search scans the effective view case-insensitively and records every
// occurrence of term. An empty term clears the search.
func (s *Scrollback) Search(term string) {
	s.searchTerm = term
	s.matches = s.matches[:0]
	s.current = 0
	if term == "" {
		return
	}
	needle := []rune(strings.ToLower(term))
	for _, v := range s.effective() {
		runes := []rune(v.Line.Text)
		lower := make([]rune, len(runes))
		for i, r := range runes {
			lower[i] = unicode.ToLower(r)
		}
		for i := 0; i+len(needle) <= len(lower); i++ {
			if runesEqual(lower[i:i+len(needle)], needle) {
				s.matches = append(s.matches, Match{Line: v.Abs, Col: i, Len: len(needle)})
			}
		}
	}
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SearchTerm returns the active search term.
func (s *Scrollback) SearchTerm() string {
	return s.searchTerm
}

// Matches returns the recorded search matches in document order.
func (s *Scrollback) Matches() []Match {
	return s.matches
}

// CurrentMatch returns the index and value of the current match.
func (s *Scrollback) CurrentMatch() (int, Match, bool) {
	if len(s.matches) == 0 {
		return 0, Match{}, false
	}
	return s.current, s.matches[s.current], true
}

// NextMatch advances the current match, wrapping circularly.
func (s *Scrollback) NextMatch() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = (s.current + 1) % len(s.matches)
	return s.matches[s.current], true
}

// PreviousMatch steps the current match back, wrapping circularly.
func (s *Scrollback) PreviousMatch() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = (s.current - 1 + len(s.matches)) % len(s.matches)
	return s.matches[s.current], true
}

// ClearSearch drops the search term and all matches.
func (s *Scrollback) ClearSearch() {
	s.searchTerm = ""
	s.matches = nil
	s.current = 0
}

// Clear empties the whole buffer: lines, sections, search and scroll.
func (s *Scrollback) Clear() {
	s.lines = nil
	s.sections = nil
	s.offset = 0
	s.pendingStart = -1
	s.ClearSearch()
	s.invalidate()
}
