package commands

import (
	"strings"
	"testing"

	"darkconsole/pkg/engine/console"
)

func newSession(t *testing.T) (*Registry, *console.Console) {
	t.Helper()
	con, err := console.New(console.Options{HistorySize: 10, ScrollbackSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	return NewRegistry(), con
}

// run submits line through the console and executes it.
func run(t *testing.T, r *Registry, con *console.Console, line string) {
	t.Helper()
	con.Input.SetText(line)
	submitted, err := con.Submit()
	if err != nil {
		t.Fatalf("Submit(%q): %v", line, err)
	}
	r.Execute(con, submitted)
	con.EndCommand(20)
}

// scrollbackText joins all stored scrollback lines.
func scrollbackText(con *console.Console) string {
	var sb strings.Builder
	for i := 0; i < con.Scrollback.Len(); i++ {
		ln, _ := con.Scrollback.LineAt(i)
		sb.WriteString(ln.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestSetGet_RoundTrip(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "set console.prompt $ ")
	run(t, r, con, "get console.prompt")
	if v, ok := GetCvar("console.prompt"); !ok || v != "$" {
		t.Errorf("cvar = %q ok=%v, want %q", v, ok, "$")
	}
	if !strings.Contains(scrollbackText(con), `console.prompt = "$"`) {
		t.Errorf("output missing cvar echo:\n%s", scrollbackText(con))
	}
}

func TestGet_UnknownCvar(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "get no.such.cvar")
	if !strings.Contains(scrollbackText(con), "Unknown cvar") {
		t.Errorf("output = %q, want unknown-cvar error", scrollbackText(con))
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "frobnicate")
	if !strings.Contains(scrollbackText(con), "Unknown command: frobnicate") {
		t.Errorf("output = %q", scrollbackText(con))
	}
}

func TestExecute_CommandsAreSections(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "list")
	secs := con.Scrollback.Sections()
	if len(secs) != 1 || secs[0].Kind != console.SectionCommand {
		t.Fatalf("sections = %+v, want one command section", secs)
	}
	// Folding the command leaves only its echoed header visible.
	con.Scrollback.ToggleSection(secs[0].Start)
	if got := con.Scrollback.EffectiveLen(); got != 1 {
		t.Errorf("effective after fold = %d, want 1", got)
	}
}

func TestClear_EmptiesScrollback(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "list")
	run(t, r, con, "clear")
	// The echo of "clear" itself lands before execution, so only that
	// section remains... which Clear also wipes.
	if con.Scrollback.Len() != 0 {
		t.Errorf("scrollback len = %d, want 0", con.Scrollback.Len())
	}
}

func TestFilter_ShowsSingleCategory(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "get console.prompt")
	run(t, r, con, "filter cvar")
	if con.Scrollback.CategoryEnabled(CategoryError) {
		t.Error("filter left other categories enabled")
	}
	if !con.Scrollback.CategoryEnabled(CategoryCvar) {
		t.Error("filtered category not enabled")
	}
	run(t, r, con, "filter off")
	if !con.Scrollback.CategoryEnabled(CategoryError) {
		t.Error("filter off did not clear the category set")
	}
}

func TestFold_BadArguments(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "fold notanumber")
	if !strings.Contains(scrollbackText(con), "Not a line number") {
		t.Errorf("output = %q", scrollbackText(con))
	}
}

func TestCandidates_CoverCommandsAndCvars(t *testing.T) {
	r, _ := newSession(t)
	cands := r.Candidates()
	var texts []string
	for _, c := range cands {
		texts = append(texts, c.Text)
	}
	for _, want := range []string{"help", "set", "fold", "console.prompt", "colors.text"} {
		found := false
		for _, got := range texts {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("candidates missing %q", want)
		}
	}
}

func TestHistoryCommand_ListsSubmissions(t *testing.T) {
	r, con := newSession(t)
	run(t, r, con, "list")
	run(t, r, con, "history")
	if !strings.Contains(scrollbackText(con), "   1  list") {
		t.Errorf("output = %q, want numbered history", scrollbackText(con))
	}
}

func TestParseColorRGBA(t *testing.T) {
	c, ok := ParseColorRGBA("10, 20,30,255")
	if !ok || c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("ParseColorRGBA = %v ok=%v", c, ok)
	}
	if _, ok := ParseColorRGBA("1,2,3"); ok {
		t.Error("three components parsed, want failure")
	}
	if _, ok := ParseColorRGBA("1,2,3,999"); ok {
		t.Error("out-of-range component parsed, want failure")
	}
}
