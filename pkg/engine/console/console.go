package console

import (
	"image/color"
	"strings"
)

// Options configures a Console session.
type Options struct {
	HistorySize    int
	ScrollbackSize int
	LoadHistory    LoadFunc
	SaveHistory    SaveFunc

	// EchoColor is used for the echoed command header line.
	EchoColor color.RGBA
}

// Console ties one input buffer, history, scrollback and autocomplete
// engine into a session. All methods assume a single logical thread of
// control, typically the UI update tick.
type Console struct {
	Input      *EditBuffer
	History    *History
	Scrollback *Scrollback
	Complete   *Autocomplete
	Search     *ReverseSearch

	echoColor color.RGBA
}

// New builds a session and loads persisted history once. A failed load
// leaves history empty; the error is returned for the caller to log.
func New(opts Options) (*Console, error) {
	echo := opts.EchoColor
	if echo == (color.RGBA{}) {
		echo = color.RGBA{R: 200, G: 210, B: 245, A: 255}
	}
	c := &Console{
		Input:      NewEditBuffer(),
		History:    NewHistory(opts.HistorySize, opts.LoadHistory, opts.SaveHistory),
		Scrollback: NewScrollback(opts.ScrollbackSize),
		Complete:   NewAutocomplete(),
		Search:     &ReverseSearch{},
		echoColor:  echo,
	}
	err := c.History.Load()
	return c, err
}

// CategoryCommand tags echoed command lines in the scrollback.
const CategoryCommand = "command"

// Submit takes the composed input, records it in history (running the
// save hook), echoes it into the scrollback as a command section header,
// clears the input and completion state, and hands the line back for the
// caller to interpret. Whitespace-only input is dropped. The error comes
// from the save hook only; the in-memory submit always succeeds.
func (c *Console) Submit() (string, error) {
	line := strings.TrimSpace(c.Input.Text())
	c.Input.Clear()
	c.Complete.Clear()
	if line == "" {
		return "", nil
	}
	err := c.History.Submit(line)
	c.Scrollback.BeginSection(SectionCommand)
	c.Scrollback.Append("> "+line, c.echoColor, CategoryCommand)
	return line, err
}

// EndCommand closes the section opened by Submit, after the command's
// output has been appended, and snaps the view to the newest line.
func (c *Console) EndCommand(visibleCount int) {
	c.Scrollback.EndSection()
	c.Scrollback.ScrollToBottom(visibleCount)
}

// Print appends output to the scrollback.
func (c *Console) Print(text string, col color.RGBA, category string) {
	c.Scrollback.Append(text, col, category)
}

// RecallPrevious replaces the input with the previous history entry.
func (c *Console) RecallPrevious() {
	if line, ok := c.History.Previous(c.Input.Text()); ok {
		c.Input.SetText(line)
	}
}

// RecallNext replaces the input with the next history entry, or the saved
// live input when walking past the newest.
func (c *Console) RecallNext() {
	if line, ok := c.History.Next(); ok {
		c.Input.SetText(line)
	}
}

// StartReverseSearch enters incremental history search. Entering a new
// mode exits the other: any active scrollback search is cleared first.
func (c *Console) StartReverseSearch() {
	c.Scrollback.ClearSearch()
	c.Search.Start()
}

// UpdateReverseSearch refilters the history search with a new query.
func (c *Console) UpdateReverseSearch(query string) {
	c.Search.UpdateQuery(query, c.History.entries)
}

// AcceptReverseSearch moves the highlighted match into the input and
// leaves search mode.
func (c *Console) AcceptReverseSearch() {
	if line, ok := c.Search.Accept(); ok {
		c.Input.SetText(line)
	}
}

// CancelReverseSearch leaves search mode, keeping the input untouched.
func (c *Console) CancelReverseSearch() {
	c.Search.Cancel()
}

// SearchScrollback starts a scrollback text search, exiting reverse
// history search first.
func (c *Console) SearchScrollback(term string) {
	c.Search.Cancel()
	c.Scrollback.Search(term)
}

// UpdateCompletion refilters the autocomplete set against the current
// input line up to the cursor.
func (c *Console) UpdateCompletion() {
	cur := c.Input.Cursor()
	runes := []rune(c.Input.Line(cur.Line))
	col := cur.Col
	if col > len(runes) {
		col = len(runes)
	}
	c.Complete.Filter(string(runes[:col]))
}

// AcceptCompletion replaces the token being typed with the selected
// candidate.
func (c *Console) AcceptCompletion() bool {
	cand, ok := c.Complete.SelectedCandidate()
	if !ok {
		return false
	}
	cur := c.Input.Cursor()
	runes := []rune(c.Input.Line(cur.Line))
	col := cur.Col
	if col > len(runes) {
		col = len(runes)
	}
	token := []rune(c.Complete.Token())
	start := col - len(token)
	if start < 0 {
		start = 0
	}
	c.Input.SetSelection(Position{Line: cur.Line, Col: start}, Position{Line: cur.Line, Col: col})
	c.Input.Insert(cand.Text)
	c.Complete.Clear()
	return true
}
