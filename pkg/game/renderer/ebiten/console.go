// Package ebiten draws the console as an animated drop-down overlay and
// feeds keyboard and mouse input into the engine. Text measurement for
// mouse hit-testing comes from the loaded font face.
package ebiten

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"

	"darkconsole/pkg/engine/console"
	"darkconsole/pkg/game/commands"
)

const (
	fontSize     = 16.0
	lineSpacing  = 6
	paddingX     = 10
	paddingY     = 10
	animDuration = 200 // milliseconds
	consoleShare = 0.4 // fraction of the screen height when open

	repeatDelay    = 30 // ticks before a held key repeats
	repeatInterval = 3
)

// Overlay renders one console session as a drop-down panel.
type Overlay struct {
	con      *console.Console
	registry *commands.Registry

	active        bool
	animating     bool
	animStartTime int64
	progress      float64

	faceSource *text.GoTextFaceSource

	lastClickAt  int64 // for double-click word selection
	lastClickPos console.Position
}

// NewOverlay builds the overlay with the bundled monospace face.
func NewOverlay(con *console.Console, registry *commands.Registry) (*Overlay, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("load console font: %w", err)
	}
	return &Overlay{con: con, registry: registry, faceSource: src}, nil
}

func (o *Overlay) face() text.Face {
	return &text.GoTextFace{Source: o.faceSource, Size: fontSize}
}

// measure is the engine's hit-testing measure function: rendered width of
// s in pixels.
func (o *Overlay) measure(s string) int {
	return int(text.Advance(s, o.face()))
}

func lineHeight() int {
	return int(fontSize) + lineSpacing
}

// Toggle opens or closes the console with the slide animation. Closing
// clears the pending input.
func (o *Overlay) Toggle() {
	if o.animating {
		return
	}
	o.active = !o.active
	o.animating = true
	o.animStartTime = time.Now().UnixMilli()
	if !o.active {
		o.con.Input.Clear()
		o.con.Complete.Clear()
		o.con.History.ResetBrowse()
	}
}

// Active reports whether the console is open or still animating shut.
func (o *Overlay) Active() bool {
	return o.active || o.animating
}

// keyRepeat reports a just-pressed key or a held key past the repeat
// delay.
func keyRepeat(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}

func shiftHeld() bool {
	return ebiten.IsKeyPressed(ebiten.KeyShift)
}

func ctrlHeld() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl)
}

// visibleRows returns how many output rows fit above the input area.
func (o *Overlay) visibleRows(screenHeight int) int {
	consoleHeight := int(float64(screenHeight) * consoleShare)
	reserved := paddingY*2 + lineHeight()*(o.con.Input.LineCount()+1)
	rows := (consoleHeight - reserved) / lineHeight()
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Update processes one tick of console input. It returns true when the
// console consumed the input, so the game underneath stays idle.
// screenHeight is the logical height from Layout.
func (o *Overlay) Update(screenHeight int) bool {
	if !o.Active() {
		return false
	}
	if o.con.Search.Active() {
		o.updateReverseSearch()
		return true
	}
	o.updateEdit(screenHeight)
	return true
}

func (o *Overlay) updateEdit(screenHeight int) {
	con := o.con
	rows := o.visibleRows(screenHeight)

	for _, r := range ebiten.AppendInputChars(nil) {
		if r == '`' {
			continue // toggle key never reaches the buffer
		}
		con.Input.Insert(string(r))
		con.Complete.SetCandidates(o.registry.Candidates())
		con.UpdateCompletion()
	}

	switch {
	case keyRepeat(ebiten.KeyBackspace):
		if ctrlHeld() {
			con.Input.DeleteWordBackward()
		} else {
			con.Input.DeleteBackward()
		}
		con.UpdateCompletion()
	case keyRepeat(ebiten.KeyDelete):
		if ctrlHeld() {
			con.Input.DeleteWordForward()
		} else {
			con.Input.DeleteForward()
		}
		con.UpdateCompletion()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyKPEnter):
		if shiftHeld() {
			con.Input.InsertNewline()
			break
		}
		line, err := con.Submit()
		if err != nil {
			con.Print(err.Error(), commands.ColorError, commands.CategoryError)
		}
		if line != "" {
			o.registry.Execute(con, line)
			con.EndCommand(rows)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if con.Complete.Active() {
			con.AcceptCompletion()
		} else {
			con.Complete.SetCandidates(o.registry.Candidates())
			con.UpdateCompletion()
		}
	case keyRepeat(ebiten.KeyArrowUp):
		switch {
		case shiftHeld():
			con.Input.MoveCursor(console.DirUp, true)
		case con.Complete.Active():
			con.Complete.Navigate(true)
			con.Complete.EnsureSelectedVisible(popupRows)
		case con.Input.Cursor().Line > 0:
			con.Input.MoveCursor(console.DirUp, false)
		default:
			con.RecallPrevious()
		}
	case keyRepeat(ebiten.KeyArrowDown):
		switch {
		case shiftHeld():
			con.Input.MoveCursor(console.DirDown, true)
		case con.Complete.Active():
			con.Complete.Navigate(false)
			con.Complete.EnsureSelectedVisible(popupRows)
		case con.Input.Cursor().Line < con.Input.LineCount()-1:
			con.Input.MoveCursor(console.DirDown, false)
		default:
			con.RecallNext()
		}
	case keyRepeat(ebiten.KeyArrowLeft):
		if ctrlHeld() {
			con.Input.MoveCursor(console.DirWordLeft, shiftHeld())
		} else {
			con.Input.MoveCursor(console.DirLeft, shiftHeld())
		}
	case keyRepeat(ebiten.KeyArrowRight):
		if ctrlHeld() {
			con.Input.MoveCursor(console.DirWordRight, shiftHeld())
		} else {
			con.Input.MoveCursor(console.DirRight, shiftHeld())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		con.Input.MoveCursor(console.DirLineStart, shiftHeld())
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		con.Input.MoveCursor(console.DirLineEnd, shiftHeld())
	case keyRepeat(ebiten.KeyPageUp):
		con.Scrollback.ScrollUp(10, rows)
	case keyRepeat(ebiten.KeyPageDown):
		con.Scrollback.ScrollDown(10, rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		con.Complete.Clear()
		con.Scrollback.ClearSearch()
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyR):
		con.StartReverseSearch()
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		con.Input.Undo()
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyY):
		con.Input.Redo()
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyA):
		con.Input.SelectAll()
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyL):
		con.Scrollback.Clear()
	}

	o.handleMouse(screenHeight, rows)
}

func (o *Overlay) updateReverseSearch() {
	con := o.con
	for _, r := range ebiten.AppendInputChars(nil) {
		if r == '`' {
			continue
		}
		con.UpdateReverseSearch(con.Search.Query() + string(r))
	}
	switch {
	case keyRepeat(ebiten.KeyBackspace):
		q := []rune(con.Search.Query())
		if len(q) > 0 {
			con.UpdateReverseSearch(string(q[:len(q)-1]))
		}
	case ctrlHeld() && inpututil.IsKeyJustPressed(ebiten.KeyR):
		con.Search.NextMatch()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		con.AcceptReverseSearch()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		con.CancelReverseSearch()
	}
}

// handleMouse resolves wheel scrolling and clicks. A click on a section
// header toggles its fold; a click in the input area moves the cursor via
// binary-search hit-testing against the font's advance widths.
func (o *Overlay) handleMouse(screenHeight, rows int) {
	con := o.con
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		if wheelY > 0 {
			con.Scrollback.ScrollUp(3, rows)
		} else {
			con.Scrollback.ScrollDown(3, rows)
		}
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	consoleHeight := int(float64(screenHeight) * consoleShare)
	outputTop := paddingY
	outputBottom := outputTop + rows*lineHeight()
	inputTop := consoleHeight - paddingY - con.Input.LineCount()*lineHeight()

	switch {
	case my >= outputTop && my < outputBottom:
		row := (my - outputTop) / lineHeight()
		eff := con.Scrollback.Offset() + row
		abs, ok := con.Scrollback.AbsoluteIndex(eff)
		if !ok {
			return
		}
		if _, isHeader := con.Scrollback.SectionAt(abs); isHeader {
			con.Scrollback.ToggleSection(abs)
		}
	case my >= inputTop && my < consoleHeight-paddingY:
		lineIdx := (my - inputTop) / lineHeight()
		x := mx - paddingX - o.measure(promptString())
		col := console.ColumnForX(con.Input.Line(lineIdx), x, o.measure)
		con.Input.SetCursor(lineIdx, col)

		now := time.Now().UnixMilli()
		pos := console.Position{Line: lineIdx, Col: col}
		if now-o.lastClickAt < 400 && pos == o.lastClickPos {
			con.Input.SelectWord()
		}
		o.lastClickAt = now
		o.lastClickPos = pos
	}
}

func promptString() string {
	if p, ok := commands.GetCvar("console.prompt"); ok && p != "" {
		return p
	}
	return "> "
}

const popupRows = 6

// updateProgress advances the slide animation with ease-in-out timing.
func (o *Overlay) updateProgress() {
	if !o.animating {
		return
	}
	elapsed := time.Now().UnixMilli() - o.animStartTime
	if elapsed >= animDuration {
		o.animating = false
		if o.active {
			o.progress = 1.0
		} else {
			o.progress = 0.0
		}
		return
	}
	t := float64(elapsed) / float64(animDuration)
	eased := easeInOut(t)
	if o.active {
		o.progress = eased
	} else {
		o.progress = 1.0 - eased
	}
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Draw paints the console panel. A fully closed console draws nothing.
func (o *Overlay) Draw(screen *ebiten.Image) {
	o.updateProgress()
	if o.progress <= 0 {
		return
	}
	con := o.con
	screenWidth := screen.Bounds().Dx()
	screenHeight := screen.Bounds().Dy()
	fullHeight := int(float64(screenHeight) * consoleShare)
	offsetY := int(float64(fullHeight) * (o.progress - 1)) // slides in from the top
	alpha := o.progress

	bg := color.RGBA{0, 0, 0, uint8(220 * alpha)}
	vector.DrawFilledRect(screen, 0, float32(offsetY), float32(screenWidth), float32(fullHeight), bg, false)
	border := color.RGBA{100, 100, 150, uint8(255 * alpha)}
	vector.DrawFilledRect(screen, 0, float32(offsetY+fullHeight-2), float32(screenWidth), 2, border, false)

	rows := o.visibleRows(screenHeight)
	y := offsetY + paddingY
	for _, v := range con.Scrollback.VisibleLines(rows) {
		textLine := v.Line.Text
		if v.Header {
			if sec, ok := con.Scrollback.SectionAt(v.Abs); ok && sec.Folded {
				textLine = "[+] " + textLine
			} else {
				textLine = "[-] " + textLine
			}
		}
		o.drawLine(screen, textLine, paddingX, y, fade(v.Line.Color, alpha))
		o.drawMatchHighlights(screen, v, paddingX, y, alpha)
		y += lineHeight()
	}

	o.drawInput(screen, offsetY, fullHeight, alpha)
	o.drawPopup(screen, offsetY, fullHeight, alpha)
	o.drawSearchStatus(screen, offsetY, fullHeight, alpha)
}

func fade(c color.RGBA, alpha float64) color.RGBA {
	c.A = uint8(float64(c.A) * alpha)
	return c
}

func (o *Overlay) drawLine(screen *ebiten.Image, s string, x, y int, c color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, o.face(), op)
}

// drawMatchHighlights repaints matched spans over the base line, current
// match in its own color.
func (o *Overlay) drawMatchHighlights(screen *ebiten.Image, v console.VisibleLine, x, y int, alpha float64) {
	sb := o.con.Scrollback
	if len(sb.Matches()) == 0 {
		return
	}
	matchColor := color.RGBA{R: 255, G: 220, B: 100, A: 255}
	currentColor := color.RGBA{R: 255, G: 150, B: 50, A: 255}
	if s, ok := commands.GetCvar("colors.match"); ok {
		if c, ok := commands.ParseColorRGBA(s); ok {
			matchColor = c
		}
	}
	if s, ok := commands.GetCvar("colors.match_current"); ok {
		if c, ok := commands.ParseColorRGBA(s); ok {
			currentColor = c
		}
	}
	_, current, hasCurrent := sb.CurrentMatch()

	runes := []rune(v.Line.Text)
	prefix := 0
	if v.Header {
		prefix = 4
	}
	for _, m := range sb.Matches() {
		if m.Line != v.Abs || m.Col >= len(runes) {
			continue
		}
		end := m.Col + m.Len
		if end > len(runes) {
			end = len(runes)
		}
		head := string(runes[:m.Col])
		span := string(runes[m.Col:end])
		headWidth := o.measure(strings.Repeat(" ", prefix) + head)
		c := matchColor
		if hasCurrent && m == current {
			c = currentColor
		}
		o.drawLine(screen, span, x+headWidth, y, fade(c, alpha))
	}
}

func (o *Overlay) drawInput(screen *ebiten.Image, offsetY, fullHeight int, alpha float64) {
	con := o.con
	lines := con.Input.Lines()
	cur := con.Input.Cursor()
	inputTop := offsetY + fullHeight - paddingY - len(lines)*lineHeight()
	prompt := promptString()
	promptWidth := o.measure(prompt)
	textColor := fade(color.RGBA{255, 255, 255, 255}, alpha)

	for i, line := range lines {
		y := inputTop + i*lineHeight()
		if i == 0 {
			o.drawLine(screen, prompt, paddingX, y, fade(color.RGBA{0, 255, 0, 255}, alpha))
		}
		o.drawLine(screen, line, paddingX+promptWidth, y, textColor)

		if i == cur.Line && int(time.Now().UnixMilli()/500)%2 == 0 {
			runes := []rune(line)
			col := cur.Col
			if col > len(runes) {
				col = len(runes)
			}
			cx := paddingX + promptWidth + o.measure(string(runes[:col]))
			o.drawLine(screen, "_", cx, y+2, textColor)
		}
	}

	if start, end, ok := con.Input.Selection(); ok {
		o.drawSelection(screen, lines, start, end, inputTop, paddingX+promptWidth, alpha)
	}
}

// drawSelection underlays the selected range with a translucent box.
func (o *Overlay) drawSelection(screen *ebiten.Image, lines []string, start, end console.Position, inputTop, textX int, alpha float64) {
	boxColor := color.RGBA{80, 110, 180, uint8(100 * alpha)}
	for li := start.Line; li <= end.Line && li < len(lines); li++ {
		runes := []rune(lines[li])
		from, to := 0, len(runes)
		if li == start.Line {
			from = start.Col
		}
		if li == end.Line {
			to = end.Col
		}
		if from > len(runes) {
			from = len(runes)
		}
		if to > len(runes) {
			to = len(runes)
		}
		x0 := textX + o.measure(string(runes[:from]))
		x1 := textX + o.measure(string(runes[:to]))
		y := inputTop + li*lineHeight()
		vector.DrawFilledRect(screen, float32(x0), float32(y), float32(x1-x0), float32(lineHeight()), boxColor, false)
	}
}

func (o *Overlay) drawPopup(screen *ebiten.Image, offsetY, fullHeight int, alpha float64) {
	ac := o.con.Complete
	if !ac.Active() || o.con.Search.Active() {
		return
	}
	ac.EnsureSelectedVisible(popupRows)
	filtered := ac.Filtered()
	end := ac.Offset() + popupRows
	if end > len(filtered) {
		end = len(filtered)
	}
	count := end - ac.Offset()
	inputTop := offsetY + fullHeight - paddingY - o.con.Input.LineCount()*lineHeight()
	popupTop := inputTop - count*lineHeight()

	bg := color.RGBA{30, 30, 50, uint8(230 * alpha)}
	vector.DrawFilledRect(screen, float32(paddingX), float32(popupTop), float32(screen.Bounds().Dx()/2), float32(count*lineHeight()), bg, false)

	y := popupTop
	for i := ac.Offset(); i < end; i++ {
		entry := filtered[i].Text
		if filtered[i].Detail != "" {
			entry += "  " + filtered[i].Detail
		}
		c := color.RGBA{160, 200, 255, 255}
		if i == ac.Selected() {
			c = color.RGBA{255, 255, 160, 255}
			runes := []rune(entry)
			if h := ac.HScroll(); h > 0 && h < len(runes) {
				entry = string(runes[h:])
			}
		}
		o.drawLine(screen, entry, paddingX+4, y, fade(c, alpha))
		y += lineHeight()
	}
}

func (o *Overlay) drawSearchStatus(screen *ebiten.Image, offsetY, fullHeight int, alpha float64) {
	if !o.con.Search.Active() {
		return
	}
	cur, _ := o.con.Search.Current()
	status := fmt.Sprintf("(reverse-i-search)`%s': %s", o.con.Search.Query(), cur)
	y := offsetY + fullHeight - paddingY - (o.con.Input.LineCount()+1)*lineHeight()
	o.drawLine(screen, status, paddingX, y, fade(color.RGBA{255, 220, 100, 255}, alpha))
}
