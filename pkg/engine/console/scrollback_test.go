package console

import (
	"fmt"
	"image/color"
	"testing"
)

var testColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// appendLines adds n lines "line 0".."line n-1" under the given category.
func appendLines(s *Scrollback, n int, category string) {
	for i := 0; i < n; i++ {
		s.Append(fmt.Sprintf("line %d", i), testColor, category)
	}
}

// sectionOver wraps the next n appended lines in a section of the given
// kind, the first line being the header.
func sectionOver(s *Scrollback, kind SectionKind, lines ...string) {
	s.BeginSection(kind)
	for _, ln := range lines {
		s.Append(ln, testColor, "info")
	}
	s.EndSection()
}

func effectiveTexts(s *Scrollback) []string {
	var out []string
	for _, v := range s.VisibleLines(s.EffectiveLen()) {
		out = append(out, v.Line.Text)
	}
	return out
}

func TestAppend_SplitsEmbeddedNewlines(t *testing.T) {
	s := NewScrollback(100)
	s.Append("one\ntwo\nthree", testColor, "info")
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if ln, _ := s.LineAt(1); ln.Text != "two" {
		t.Errorf("LineAt(1) = %q, want %q", ln.Text, "two")
	}
}

func TestAppend_EvictsOldest(t *testing.T) {
	s := NewScrollback(5)
	appendLines(s, 8, "info")
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if ln, _ := s.LineAt(0); ln.Text != "line 3" {
		t.Errorf("LineAt(0) = %q, want %q (oldest evicted first)", ln.Text, "line 3")
	}
}

func TestEvict_ShiftsSectionRanges(t *testing.T) {
	s := NewScrollback(4)
	s.Append("before", testColor, "info")
	sectionOver(s, SectionManual, "header", "body1", "body2")
	// Sections: [1,4). Appending two more evicts lines 0 and 1.
	appendLines(s, 2, "info")
	secs := s.Sections()
	if len(secs) != 1 {
		t.Fatalf("sections = %d, want 1", len(secs))
	}
	if secs[0].Start != 0 || secs[0].End != 2 {
		t.Errorf("section range = [%d,%d), want [0,2)", secs[0].Start, secs[0].End)
	}
}

func TestEvict_DropsFullyEvictedSections(t *testing.T) {
	s := NewScrollback(3)
	sectionOver(s, SectionManual, "header", "body")
	appendLines(s, 5, "info")
	if len(s.Sections()) != 0 {
		t.Errorf("sections = %v, want none after full eviction", s.Sections())
	}
}

func TestToggleSection_HidesNonHeaderLines(t *testing.T) {
	s := NewScrollback(100)
	s.Append("above", testColor, "info")
	sectionOver(s, SectionCommand, "> cmd", "out1", "out2")
	s.Append("below", testColor, "info")

	if !s.ToggleSection(1) {
		t.Fatal("ToggleSection(1) = false, want true")
	}
	want := []string{"above", "> cmd", "below"}
	if got := effectiveTexts(s); !equalStrings(got, want) {
		t.Errorf("effective = %v, want %v", got, want)
	}

	// Unfolding restores the original order with no duplication or loss.
	s.ToggleSection(1)
	want = []string{"above", "> cmd", "out1", "out2", "below"}
	if got := effectiveTexts(s); !equalStrings(got, want) {
		t.Errorf("effective after unfold = %v, want %v", got, want)
	}
}

func TestToggleSection_AtBufferStartAndEnd(t *testing.T) {
	s := NewScrollback(100)
	sectionOver(s, SectionManual, "first-h", "first-b")
	s.Append("middle", testColor, "info")
	sectionOver(s, SectionManual, "last-h", "last-b")

	s.ToggleSection(0)
	s.ToggleSection(3)
	want := []string{"first-h", "middle", "last-h"}
	if got := effectiveTexts(s); !equalStrings(got, want) {
		t.Errorf("effective = %v, want %v", got, want)
	}
}

func TestToggleSection_SurvivesLaterAppends(t *testing.T) {
	s := NewScrollback(100)
	sectionOver(s, SectionManual, "h", "b1", "b2")
	s.ToggleSection(0)
	s.Append("later", testColor, "info")
	want := []string{"h", "later"}
	if got := effectiveTexts(s); !equalStrings(got, want) {
		t.Errorf("effective = %v, want %v", got, want)
	}
}

func TestToggleSection_NonHeaderLine(t *testing.T) {
	s := NewScrollback(100)
	sectionOver(s, SectionManual, "h", "b")
	if s.ToggleSection(1) {
		t.Error("ToggleSection on non-header line = true, want false")
	}
}

func TestAbsoluteIndex_FoldedMapping(t *testing.T) {
	// Lines 0-2 precede a folded section spanning absolute lines 3-7 with
	// its header at 3. Effective index 3 must map to absolute 3 and no
	// effective index may resolve into 4-7.
	s := NewScrollback(100)
	appendLines(s, 3, "info")
	sectionOver(s, SectionManual, "header", "b1", "b2", "b3", "b4")
	s.Append("after", testColor, "info")
	s.ToggleSection(3)

	abs, ok := s.AbsoluteIndex(3)
	if !ok || abs != 3 {
		t.Errorf("AbsoluteIndex(3) = %d ok=%v, want 3", abs, ok)
	}
	for eff := 0; eff < s.EffectiveLen(); eff++ {
		abs, _ := s.AbsoluteIndex(eff)
		if abs >= 4 && abs <= 7 {
			t.Errorf("effective %d resolves to hidden absolute %d", eff, abs)
		}
	}
	if _, ok := s.AbsoluteIndex(s.EffectiveLen()); ok {
		t.Error("AbsoluteIndex past end = ok, want !ok")
	}
}

func TestCategoryFilter(t *testing.T) {
	s := NewScrollback(100)
	s.Append("a", testColor, "battle")
	s.Append("b", testColor, "debug")
	s.Append("c", testColor, "battle")

	s.EnableCategory("battle")
	if got := effectiveTexts(s); !equalStrings(got, []string{"a", "c"}) {
		t.Errorf("effective = %v, want [a c]", got)
	}

	s.ClearCategoryFilter()
	if got := effectiveTexts(s); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Errorf("effective = %v, want all (empty set shows everything)", got)
	}
}

func TestSearch_RecordsAllOccurrences(t *testing.T) {
	s := NewScrollback(100)
	s.Append("Error: error in errorHandler", testColor, "info")
	s.Append("clean line", testColor, "info")
	s.Append("another ERROR", testColor, "info")

	s.Search("error")
	m := s.Matches()
	if len(m) != 4 {
		t.Fatalf("matches = %d, want 4", len(m))
	}
	if m[0] != (Match{Line: 0, Col: 0, Len: 5}) {
		t.Errorf("m[0] = %+v, want line 0 col 0", m[0])
	}
	if m[3] != (Match{Line: 2, Col: 8, Len: 5}) {
		t.Errorf("m[3] = %+v, want line 2 col 8", m[3])
	}
}

func TestSearch_SkipsFoldedLines(t *testing.T) {
	s := NewScrollback(100)
	sectionOver(s, SectionManual, "header match", "hidden match")
	s.ToggleSection(0)
	s.Search("match")
	if len(s.Matches()) != 1 {
		t.Errorf("matches = %d, want 1 (folded body excluded)", len(s.Matches()))
	}
}

func TestSearch_MatchNavigationWraps(t *testing.T) {
	s := NewScrollback(100)
	s.Append("x\nx\nx", testColor, "info")
	s.Search("x")
	if _, m, ok := s.CurrentMatch(); !ok || m.Line != 0 {
		t.Fatalf("current = %+v ok=%v, want line 0", m, ok)
	}
	s.NextMatch()
	s.NextMatch()
	if m, _ := s.NextMatch(); m.Line != 0 {
		t.Errorf("wrap forward landed on line %d, want 0", m.Line)
	}
	if m, _ := s.PreviousMatch(); m.Line != 2 {
		t.Errorf("wrap backward landed on line %d, want 2", m.Line)
	}
}

func TestSearch_EmptyTermClears(t *testing.T) {
	s := NewScrollback(100)
	s.Append("abc", testColor, "info")
	s.Search("a")
	s.Search("")
	if len(s.Matches()) != 0 {
		t.Errorf("matches = %d, want 0", len(s.Matches()))
	}
}

func TestScroll_ClampsToEffectiveRange(t *testing.T) {
	s := NewScrollback(100)
	appendLines(s, 10, "info")
	const visible = 4

	s.ScrollUp(100, visible)
	if s.Offset() != 0 {
		t.Errorf("offset = %d, want 0", s.Offset())
	}
	s.ScrollDown(100, visible)
	if s.Offset() != 6 {
		t.Errorf("offset = %d, want 6 (effective 10 - visible 4)", s.Offset())
	}
	s.ScrollToTop()
	if s.Offset() != 0 {
		t.Errorf("offset after ScrollToTop = %d, want 0", s.Offset())
	}
	s.ScrollToBottom(visible)
	if s.Offset() != 6 {
		t.Errorf("offset after ScrollToBottom = %d, want 6", s.Offset())
	}
}

func TestVisibleLines_Window(t *testing.T) {
	s := NewScrollback(100)
	appendLines(s, 10, "info")
	s.ScrollDown(2, 4)
	got := s.VisibleLines(4)
	if len(got) != 4 || got[0].Line.Text != "line 2" || got[3].Line.Text != "line 5" {
		t.Errorf("window = %v", got)
	}
}

func TestClear_ResetsEverything(t *testing.T) {
	s := NewScrollback(100)
	sectionOver(s, SectionManual, "h", "b")
	s.Search("h")
	s.Clear()
	if s.Len() != 0 || s.EffectiveLen() != 0 || len(s.Sections()) != 0 || len(s.Matches()) != 0 {
		t.Error("Clear left residual state")
	}
}
