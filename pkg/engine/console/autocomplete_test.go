package console

import "testing"

func candidates(texts ...string) []Candidate {
	out := make([]Candidate, len(texts))
	for i, s := range texts {
		out[i] = Candidate{Text: s}
	}
	return out
}

func filteredTexts(a *Autocomplete) []string {
	var out []string
	for _, c := range a.Filtered() {
		out = append(out, c.Text)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter_PrefixMatchCaseInsensitive(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("Foo", "Foobar", "Bar"))
	a.Filter("foo")
	if got := filteredTexts(a); !equalStrings(got, []string{"Foo", "Foobar"}) {
		t.Errorf("filtered = %v, want [Foo Foobar]", got)
	}
	if a.Selected() != 0 {
		t.Errorf("selected = %d, want 0", a.Selected())
	}
}

func TestFilter_SubstringFallback(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("Foo", "Bar"))
	a.Filter("oo")
	if got := filteredTexts(a); !equalStrings(got, []string{"Foo"}) {
		t.Errorf("filtered = %v, want [Foo]", got)
	}
}

func TestFilter_EmptyTokenKeepsInsertionOrder(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("zeta", "alpha", "mid"))
	a.Filter("")
	if got := filteredTexts(a); !equalStrings(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("filtered = %v, want original order", got)
	}
}

func TestFilter_TokenAfterLastSeparator(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("player", "position"))
	a.Filter("set p")
	if a.Token() != "p" {
		t.Errorf("token = %q, want %q", a.Token(), "p")
	}
	a.Filter("x=(po")
	if a.Token() != "po" {
		t.Errorf("token = %q, want %q", a.Token(), "po")
	}
	if got := filteredTexts(a); !equalStrings(got, []string{"position"}) {
		t.Errorf("filtered = %v, want [position]", got)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("Foo", "Foobar", "Bar"))
	a.Filter("fo")
	first := append([]string(nil), filteredTexts(a)...)
	a.Filter("fo")
	if got := filteredTexts(a); !equalStrings(got, first) {
		t.Errorf("second filter = %v, want %v", got, first)
	}
}

func TestFilter_NoMatchesNoAutoSelect(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("Foo"))
	a.Filter("zzz")
	if len(a.Filtered()) != 0 {
		t.Fatalf("filtered = %v, want empty", filteredTexts(a))
	}
	if a.Selected() != -1 {
		t.Errorf("selected = %d, want -1", a.Selected())
	}
}

func TestNavigate_WrapAround(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("a", "b", "c"))
	a.Filter("")
	// selected starts at 0
	a.Navigate(true)
	if a.Selected() != 2 {
		t.Errorf("up from first = %d, want wrap to 2", a.Selected())
	}
	a.Navigate(false)
	if a.Selected() != 0 {
		t.Errorf("down from last = %d, want wrap to 0", a.Selected())
	}
}

func TestNavigate_FromNoSelection(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("a", "b", "c"))
	a.Filter("")
	a.selected = -1
	a.Navigate(true)
	if a.Selected() != 2 {
		t.Errorf("up from none = %d, want last", a.Selected())
	}
	a.selected = -1
	a.Navigate(false)
	if a.Selected() != 0 {
		t.Errorf("down from none = %d, want first", a.Selected())
	}
}

func TestNavigate_UpDownInverse(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("a", "b", "c", "d"))
	a.Filter("")
	for start := 0; start < 4; start++ {
		a.selected = start
		a.Navigate(true)
		a.Navigate(false)
		if a.Selected() != start {
			t.Errorf("up+down from %d = %d, want %d", start, a.Selected(), start)
		}
	}
}

func TestNavigate_EmptySetNoOp(t *testing.T) {
	a := NewAutocomplete()
	a.Navigate(false)
	if a.Selected() != -1 {
		t.Errorf("selected = %d, want -1", a.Selected())
	}
}

func TestNavigate_ResetsHorizontalScroll(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("long-entry-one", "long-entry-two"))
	a.Filter("")
	a.ScrollSelectedText(5)
	if a.HScroll() != 5 {
		t.Fatalf("hscroll = %d, want 5", a.HScroll())
	}
	a.Navigate(false)
	if a.HScroll() != 0 {
		t.Errorf("hscroll after navigate = %d, want 0", a.HScroll())
	}
}

func TestEnsureSelectedVisible(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("a", "b", "c", "d", "e", "f"))
	a.Filter("")

	a.selected = 4
	a.EnsureSelectedVisible(3)
	if a.Offset() != 2 {
		t.Errorf("offset = %d, want 2 (selected within window)", a.Offset())
	}

	a.selected = 0
	a.EnsureSelectedVisible(3)
	if a.Offset() != 0 {
		t.Errorf("offset = %d, want 0", a.Offset())
	}

	// Offset never exceeds count-maxVisible.
	a.selected = 5
	a.EnsureSelectedVisible(10)
	if a.Offset() != 0 {
		t.Errorf("offset = %d, want 0 when everything fits", a.Offset())
	}
}

func TestSetCandidates_RefiltersAndClampsSelection(t *testing.T) {
	a := NewAutocomplete()
	a.SetCandidates(candidates("aa", "ab", "ac"))
	a.Filter("a")
	a.selected = 2
	a.SetCandidates(candidates("ax"))
	if a.Selected() != 0 {
		t.Errorf("selected = %d, want reset to 0", a.Selected())
	}
}
