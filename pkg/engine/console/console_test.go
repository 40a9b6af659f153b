package console

import (
	"errors"
	"image/color"
	"testing"
)

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c, err := New(Options{HistorySize: 10, ScrollbackSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSubmit_RoutesLineEverywhere(t *testing.T) {
	c := newTestConsole(t)
	c.Input.Insert("  help  ")
	line, err := c.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if line != "help" {
		t.Errorf("Submit() = %q, want trimmed %q", line, "help")
	}
	if c.Input.Text() != "" {
		t.Errorf("input = %q, want cleared", c.Input.Text())
	}
	if got := c.History.Entries(); !equalStrings(got, []string{"help"}) {
		t.Errorf("history = %v, want [help]", got)
	}
	c.Print("output", color.RGBA{A: 255}, "info")
	c.EndCommand(10)
	if ln, _ := c.Scrollback.LineAt(0); ln.Text != "> help" {
		t.Errorf("echo line = %q, want %q", ln.Text, "> help")
	}
	secs := c.Scrollback.Sections()
	if len(secs) != 1 || secs[0].Kind != SectionCommand || secs[0].Start != 0 || secs[0].End != 2 {
		t.Errorf("sections = %+v, want one command section [0,2)", secs)
	}
}

func TestSubmit_EmptyInputIsDropped(t *testing.T) {
	c := newTestConsole(t)
	c.Input.Insert("   ")
	line, err := c.Submit()
	if err != nil || line != "" {
		t.Errorf("Submit() = (%q, %v), want empty no-op", line, err)
	}
	if c.Scrollback.Len() != 0 || c.History.Len() != 0 {
		t.Error("empty submit left traces in scrollback or history")
	}
}

func TestSubmit_SaveHookErrorSurfaces(t *testing.T) {
	c, _ := New(Options{
		HistorySize:    10,
		ScrollbackSize: 10,
		SaveHistory:    func([]string, int) error { return errors.New("no disk") },
	})
	c.Input.Insert("cmd")
	if _, err := c.Submit(); err == nil {
		t.Fatal("Submit() = nil error, want save failure")
	}
	if c.History.Len() != 1 {
		t.Error("save failure rolled back the in-memory append")
	}
}

func TestNew_LoadsHistoryOnce(t *testing.T) {
	calls := 0
	c, err := New(Options{
		HistorySize:    10,
		ScrollbackSize: 10,
		LoadHistory: func() ([]string, error) {
			calls++
			return []string{"old"}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("load hook called %d times, want 1", calls)
	}
	if got := c.History.Entries(); !equalStrings(got, []string{"old"}) {
		t.Errorf("history = %v, want [old]", got)
	}
}

func TestRecall_PreviousAndNext(t *testing.T) {
	c := newTestConsole(t)
	for _, cmd := range []string{"first", "second"} {
		c.Input.Insert(cmd)
		c.Submit()
		c.EndCommand(10)
	}
	c.Input.Insert("draft")
	c.RecallPrevious()
	if c.Input.Text() != "second" {
		t.Errorf("input = %q, want %q", c.Input.Text(), "second")
	}
	c.RecallNext()
	if c.Input.Text() != "draft" {
		t.Errorf("input = %q, want restored draft", c.Input.Text())
	}
}

func TestModeExclusivity(t *testing.T) {
	c := newTestConsole(t)
	c.Print("findable text", color.RGBA{A: 255}, "info")

	c.SearchScrollback("findable")
	if len(c.Scrollback.Matches()) != 1 {
		t.Fatal("scrollback search found nothing")
	}

	// Entering reverse history search clears the scrollback search.
	c.StartReverseSearch()
	if len(c.Scrollback.Matches()) != 0 || c.Scrollback.SearchTerm() != "" {
		t.Error("scrollback search state survived entering reverse search")
	}

	// And vice versa.
	c.UpdateReverseSearch("find")
	c.SearchScrollback("findable")
	if c.Search.Active() || c.Search.Query() != "" {
		t.Error("reverse search state survived entering scrollback search")
	}
}

func TestReverseSearch_AcceptFillsInput(t *testing.T) {
	c := newTestConsole(t)
	c.Input.Insert("set colors.player 1")
	c.Submit()
	c.EndCommand(10)

	c.StartReverseSearch()
	c.UpdateReverseSearch("colors")
	c.AcceptReverseSearch()
	if c.Input.Text() != "set colors.player 1" {
		t.Errorf("input = %q, want recalled command", c.Input.Text())
	}
	if c.Search.Active() {
		t.Error("reverse search still active after accept")
	}
}

func TestUpdateCompletion_UsesTextBeforeCursor(t *testing.T) {
	c := newTestConsole(t)
	c.Complete.SetCandidates(candidates("help", "history", "hide"))
	c.Input.Insert("hi trailing")
	c.Input.SetCursor(0, 2)
	c.UpdateCompletion()
	if got := filteredTexts(c.Complete); !equalStrings(got, []string{"history", "hide"}) {
		t.Errorf("filtered = %v, want [history hide]", got)
	}
}

func TestAcceptCompletion_ReplacesToken(t *testing.T) {
	c := newTestConsole(t)
	c.Complete.SetCandidates(candidates("history"))
	c.Input.Insert("hi")
	c.UpdateCompletion()
	if !c.AcceptCompletion() {
		t.Fatal("AcceptCompletion() = false, want true")
	}
	if c.Input.Text() != "history" {
		t.Errorf("input = %q, want %q", c.Input.Text(), "history")
	}
	if c.Complete.Active() {
		t.Error("completion still active after accept")
	}
}

func TestAcceptCompletion_NoSelectionNoOp(t *testing.T) {
	c := newTestConsole(t)
	before := c.Input.Text()
	if c.AcceptCompletion() {
		t.Error("AcceptCompletion with no candidates = true, want false")
	}
	if c.Input.Text() != before {
		t.Error("input changed on no-op accept")
	}
}
