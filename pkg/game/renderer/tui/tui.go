// Package tui renders the console in a terminal: scrollback on top, the
// multi-line input field at the bottom, with an autocomplete popup and
// search prompts. It owns the key loop and translates keys into engine
// calls; all text state lives in the engine.
package tui

import (
	"fmt"
	imgcolor "image/color"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"
	"github.com/mattn/go-runewidth"

	"darkconsole/pkg/engine/console"
	"darkconsole/pkg/engine/input"
	"darkconsole/pkg/engine/terminal"
	"darkconsole/pkg/game/commands"
)

// mode is the frontend's input mode. Entering one mode always leaves the
// other via the engine's structural cancellation.
type mode int

const (
	modeEdit mode = iota
	modeReverseSearch
	modeScrollbackSearch
)

const maxPopupRows = 6

// Frontend drives one console session in the terminal.
type Frontend struct {
	con      *console.Console
	registry *commands.Registry
	reader   *input.Reader

	mode       mode
	searchTerm string // scrollback search term being typed
	clipboard  string
}

// New wires a terminal frontend to a session and command registry.
func New(con *console.Console, registry *commands.Registry) *Frontend {
	return &Frontend{con: con, registry: registry, reader: input.NewReader()}
}

// Run takes over the terminal until the user exits with Ctrl+D.
func (f *Frontend) Run() error {
	if err := f.reader.MakeRaw(); err != nil {
		return err
	}
	defer f.reader.Restore()

	for {
		f.draw()
		key, err := f.reader.ReadKey()
		if err != nil {
			return err
		}
		if key.Kind == input.KeyCtrl && key.Rune == 'd' {
			return nil
		}
		switch f.mode {
		case modeReverseSearch:
			f.handleReverseSearchKey(key)
		case modeScrollbackSearch:
			f.handleScrollbackSearchKey(key)
		default:
			f.handleEditKey(key)
		}
	}
}

// scrollbackRows returns how many rows the output area gets.
func (f *Frontend) scrollbackRows() int {
	_, height := terminal.GetSize()
	rows := height - f.con.Input.LineCount() - maxPopupRows - 2
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (f *Frontend) handleEditKey(key input.Key) {
	con := f.con
	switch key.Kind {
	case input.KeyRune:
		con.Input.Insert(string(key.Rune))
		con.Complete.SetCandidates(f.registry.Candidates())
		con.UpdateCompletion()
	case input.KeyEnter:
		line, err := con.Submit()
		if err != nil {
			con.Print(err.Error(), commands.ColorError, commands.CategoryError)
		}
		if line != "" {
			f.registry.Execute(con, line)
			con.EndCommand(f.scrollbackRows())
		}
	case input.KeyBackspace:
		con.Input.DeleteBackward()
		con.UpdateCompletion()
	case input.KeyDelete:
		con.Input.DeleteForward()
		con.UpdateCompletion()
	case input.KeyTab:
		if con.Complete.Active() {
			con.AcceptCompletion()
		} else {
			con.Complete.SetCandidates(f.registry.Candidates())
			con.UpdateCompletion()
		}
	case input.KeyUp:
		switch {
		case key.Shift:
			con.Input.MoveCursor(console.DirUp, true)
		case con.Complete.Active():
			con.Complete.Navigate(true)
			con.Complete.EnsureSelectedVisible(maxPopupRows)
		case con.Input.LineCount() > 1 && con.Input.Cursor().Line > 0:
			con.Input.MoveCursor(console.DirUp, false)
		default:
			con.RecallPrevious()
		}
	case input.KeyDown:
		switch {
		case key.Shift:
			con.Input.MoveCursor(console.DirDown, true)
		case con.Complete.Active():
			con.Complete.Navigate(false)
			con.Complete.EnsureSelectedVisible(maxPopupRows)
		case con.Input.Cursor().Line < con.Input.LineCount()-1:
			con.Input.MoveCursor(console.DirDown, false)
		default:
			con.RecallNext()
		}
	case input.KeyLeft:
		con.Input.MoveCursor(console.DirLeft, key.Shift)
	case input.KeyRight:
		con.Input.MoveCursor(console.DirRight, key.Shift)
	case input.KeyHome:
		con.Input.MoveCursor(console.DirLineStart, key.Shift)
	case input.KeyEnd:
		con.Input.MoveCursor(console.DirLineEnd, key.Shift)
	case input.KeyPageUp:
		con.Scrollback.ScrollUp(10, f.scrollbackRows())
	case input.KeyPageDown:
		con.Scrollback.ScrollDown(10, f.scrollbackRows())
	case input.KeyEscape:
		con.Complete.Clear()
		con.Scrollback.ClearSearch()
	case input.KeyCtrl:
		f.handleControl(key.Rune)
	}
}

func (f *Frontend) handleControl(r rune) {
	con := f.con
	switch r {
	case 'r':
		f.mode = modeReverseSearch
		con.StartReverseSearch()
	case 's':
		f.mode = modeScrollbackSearch
		f.searchTerm = ""
		con.SearchScrollback("")
	case 'j':
		// Ctrl+J inserts a line break; Enter submits.
		con.Input.InsertNewline()
	case 'z':
		con.Input.Undo()
	case 'y':
		con.Input.Redo()
	case 'w':
		con.Input.DeleteWordBackward()
		con.UpdateCompletion()
	case 'a':
		con.Input.SelectAll()
	case 'k':
		f.clipboard = con.Input.Cut()
	case 'v':
		con.Input.Paste(f.clipboard)
	case 'l':
		con.Scrollback.Clear()
	case 'n':
		if m, ok := con.Scrollback.NextMatch(); ok {
			f.scrollToMatch(m)
		}
	case 'p':
		if m, ok := con.Scrollback.PreviousMatch(); ok {
			f.scrollToMatch(m)
		}
	case 'b':
		con.Input.MoveCursor(console.DirWordLeft, false)
	case 'f':
		con.Input.MoveCursor(console.DirWordRight, false)
	}
}

func (f *Frontend) handleReverseSearchKey(key input.Key) {
	con := f.con
	switch key.Kind {
	case input.KeyRune:
		con.UpdateReverseSearch(con.Search.Query() + string(key.Rune))
	case input.KeyBackspace:
		q := []rune(con.Search.Query())
		if len(q) > 0 {
			con.UpdateReverseSearch(string(q[:len(q)-1]))
		}
	case input.KeyCtrl:
		if key.Rune == 'r' {
			con.Search.NextMatch()
		}
	case input.KeyUp:
		con.Search.NextMatch()
	case input.KeyDown:
		con.Search.PreviousMatch()
	case input.KeyEnter:
		con.AcceptReverseSearch()
		f.mode = modeEdit
	case input.KeyEscape:
		con.CancelReverseSearch()
		f.mode = modeEdit
	}
}

func (f *Frontend) handleScrollbackSearchKey(key input.Key) {
	con := f.con
	switch key.Kind {
	case input.KeyRune:
		f.searchTerm += string(key.Rune)
		con.SearchScrollback(f.searchTerm)
		f.scrollToCurrent()
	case input.KeyBackspace:
		q := []rune(f.searchTerm)
		if len(q) > 0 {
			f.searchTerm = string(q[:len(q)-1])
		}
		con.SearchScrollback(f.searchTerm)
		f.scrollToCurrent()
	case input.KeyEnter:
		f.mode = modeEdit
	case input.KeyEscape:
		con.Scrollback.ClearSearch()
		f.mode = modeEdit
	case input.KeyUp:
		if m, ok := con.Scrollback.PreviousMatch(); ok {
			f.scrollToMatch(m)
		}
	case input.KeyDown:
		if m, ok := con.Scrollback.NextMatch(); ok {
			f.scrollToMatch(m)
		}
	}
}

func (f *Frontend) scrollToCurrent() {
	if _, m, ok := f.con.Scrollback.CurrentMatch(); ok {
		f.scrollToMatch(m)
	}
}

// scrollToMatch brings the match's line into the visible window.
func (f *Frontend) scrollToMatch(m console.Match) {
	rows := f.scrollbackRows()
	sb := f.con.Scrollback
	// Walk the effective view to locate the match's effective position.
	sb.ScrollToTop()
	for eff, v := range sb.VisibleLines(sb.EffectiveLen()) {
		if v.Abs == m.Line {
			sb.ScrollToTop()
			sb.ScrollDown(eff-rows/2, rows)
			return
		}
	}
}

func rgb(c imgcolor.RGBA) color.RGBColor {
	return color.RGB(c.R, c.G, c.B)
}

func cvarColor(name string, fallback imgcolor.RGBA) imgcolor.RGBA {
	if s, ok := commands.GetCvar(name); ok {
		if c, ok := commands.ParseColorRGBA(s); ok {
			return c
		}
	}
	return fallback
}

// draw repaints the whole screen. A full repaint per key keeps the
// renderer stateless.
func (f *Frontend) draw() {
	width, _ := terminal.GetSize()
	rows := f.scrollbackRows()
	var out strings.Builder
	out.WriteString("\x1b[2J\x1b[H")

	f.drawScrollback(&out, width, rows)
	out.WriteString(color.FgGray.Sprint(strings.Repeat("─", width)) + "\r\n")
	f.drawInput(&out, width)
	f.drawPopup(&out, width)
	f.drawStatus(&out, width)

	fmt.Print(out.String())
}

func (f *Frontend) drawScrollback(out *strings.Builder, width, rows int) {
	sb := f.con.Scrollback
	visible := sb.VisibleLines(rows)
	matchColor := cvarColor("colors.match", imgcolor.RGBA{R: 255, G: 220, B: 100, A: 255})
	currentColor := cvarColor("colors.match_current", imgcolor.RGBA{R: 255, G: 150, B: 50, A: 255})
	_, current, hasCurrent := sb.CurrentMatch()

	for _, v := range visible {
		text := v.Line.Text
		if v.Header {
			marker := "[-] "
			if sec, ok := sb.SectionAt(v.Abs); ok && sec.Folded {
				marker = "[+] "
			}
			text = marker + text
		}
		line := runewidth.Truncate(text, width, "…")
		styled := rgb(v.Line.Color).Sprint(line)
		// Highlight search matches on this line; the current match gets
		// its own color.
		for _, m := range sb.Matches() {
			if m.Line != v.Abs {
				continue
			}
			c := matchColor
			if hasCurrent && m == current {
				c = currentColor
			}
			styled = highlightMatch(line, v, m, rgb(v.Line.Color), rgb(c))
			break
		}
		out.WriteString(styled + "\r\n")
	}
	for i := len(visible); i < rows; i++ {
		out.WriteString("\r\n")
	}
}

// highlightMatch restyles one matched span inside line. Only the first
// match per line is emphasized in the terminal frontend; the full match
// list still drives navigation.
func highlightMatch(line string, v console.VisibleLine, m console.Match, base, match color.RGBColor) string {
	runes := []rune(line)
	offset := 0
	if v.Header {
		offset = 4 // fold marker prefix
	}
	start := m.Col + offset
	end := start + m.Len
	if start >= len(runes) {
		return base.Sprint(line)
	}
	if end > len(runes) {
		end = len(runes)
	}
	return base.Sprint(string(runes[:start])) +
		color.New(color.OpReverse).Sprint(match.Sprint(string(runes[start:end]))) +
		base.Sprint(string(runes[end:]))
}

func (f *Frontend) drawInput(out *strings.Builder, width int) {
	in := f.con.Input
	prompt, _ := commands.GetCvar("console.prompt")
	if prompt == "" {
		prompt = "> "
	}
	cur := in.Cursor()
	selStart, selEnd, hasSel := in.Selection()
	lines := in.Lines()
	brAt, brMatch, brOK := console.FindBracket(lines, cur)

	for i, line := range lines {
		prefix := prompt
		if i > 0 {
			prefix = strings.Repeat(" ", runewidth.StringWidth(prompt))
		}
		out.WriteString(color.FgGreen.Sprint(prefix))
		out.WriteString(styleInputLine(line, i, cur, selStart, selEnd, hasSel, brAt, brMatch, brOK))
		out.WriteString("\r\n")
	}
}

// styleInputLine renders one input line with the cursor shown as a
// reversed cell, the selection underlined and the bracket pair under the
// cursor bolded.
func styleInputLine(line string, idx int, cur console.Position, selStart, selEnd console.Position, hasSel bool, brAt, brMatch console.Position, brOK bool) string {
	runes := []rune(line)
	var sb strings.Builder
	for i := 0; i <= len(runes); i++ {
		var ch string
		if i < len(runes) {
			ch = string(runes[i])
		} else if idx == cur.Line && i == cur.Col {
			ch = " "
		} else {
			break
		}
		var style []color.Color
		if hasSel && inSelection(idx, i, selStart, selEnd) && i < len(runes) {
			style = append(style, color.OpUnderscore)
		}
		if brOK && i < len(runes) {
			p := console.Position{Line: idx, Col: i}
			if p == brAt || p == brMatch {
				style = append(style, color.OpBold, color.FgYellow)
			}
		}
		if idx == cur.Line && i == cur.Col {
			style = append(style, color.OpReverse)
		}
		if len(style) > 0 {
			sb.WriteString(color.New(style...).Sprint(ch))
		} else {
			sb.WriteString(ch)
		}
	}
	return sb.String()
}

func inSelection(line, col int, start, end console.Position) bool {
	p := console.Position{Line: line, Col: col}
	return !p.Before(start) && p.Before(end)
}

func (f *Frontend) drawPopup(out *strings.Builder, width int) {
	ac := f.con.Complete
	if !ac.Active() || f.mode != modeEdit {
		return
	}
	ac.EnsureSelectedVisible(maxPopupRows)
	filtered := ac.Filtered()
	end := ac.Offset() + maxPopupRows
	if end > len(filtered) {
		end = len(filtered)
	}
	for i := ac.Offset(); i < end; i++ {
		entry := filtered[i].Text
		if filtered[i].Detail != "" {
			entry += "  " + filtered[i].Detail
		}
		// The selected overflowing entry scrolls horizontally.
		if i == ac.Selected() {
			runes := []rune(entry)
			if h := ac.HScroll(); h > 0 && h < len(runes) {
				entry = string(runes[h:])
			}
			out.WriteString(color.New(color.FgBlack, color.BgCyan).Sprint(runewidth.Truncate("  "+entry, width, "…")))
		} else {
			out.WriteString(color.FgCyan.Sprint(runewidth.Truncate("  "+entry, width, "…")))
		}
		out.WriteString("\r\n")
	}
}

func (f *Frontend) drawStatus(out *strings.Builder, width int) {
	switch f.mode {
	case modeReverseSearch:
		cur, _ := f.con.Search.Current()
		out.WriteString(color.FgYellow.Sprintf("(reverse-i-search)`%s': %s\r\n", f.con.Search.Query(), cur))
	case modeScrollbackSearch:
		n := len(f.con.Scrollback.Matches())
		idx, _, ok := f.con.Scrollback.CurrentMatch()
		pos := 0
		if ok {
			pos = idx + 1
		}
		out.WriteString(color.FgYellow.Sprintf("%s`%s' %d/%d\r\n", gotext.Get("search: "), f.searchTerm, pos, n))
	default:
		out.WriteString(color.FgGray.Sprint(gotext.Get("Tab complete · Ctrl+R history search · Ctrl+S find · Ctrl+D quit")) + "\r\n")
	}
}
