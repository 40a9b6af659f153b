// Package console implements the data structures behind the in-game
// developer console: an editable multi-line input field, a foldable
// scrollback log, autocomplete filtering and history search. It performs
// no rendering and reads no input devices; frontends feed it events and
// read its state back each tick.
package console

import (
	"strings"

	"github.com/zyedidia/generic/stack"
)

// Position is a location within an EditBuffer, addressed by line index and
// rune column.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p comes before q in document order.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Direction identifies a cursor movement.
type Direction int

// Cursor movement directions.
const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirLineStart
	DirLineEnd
	DirWordLeft
	DirWordRight
	DirBufferStart
	DirBufferEnd
)

// snapshot is a full copy of buffer content and cursor, captured before
// every content mutation. Undo and redo are stacks of these.
type snapshot struct {
	lines  []string
	cursor Position
}

// EditBuffer owns the multi-line text being composed, the cursor, the
// selection and the undo/redo stacks. At least one line always exists and
// the cursor is clamped into bounds after every operation.
type EditBuffer struct {
	lines  []string
	cursor Position

	selecting bool
	anchor    Position

	undo *stack.Stack[snapshot]
	redo *stack.Stack[snapshot]
}

// NewEditBuffer returns an empty buffer containing a single empty line.
func NewEditBuffer() *EditBuffer {
	return &EditBuffer{
		lines: []string{""},
		undo:  stack.New[snapshot](),
		redo:  stack.New[snapshot](),
	}
}

// Lines returns a copy of the buffer's lines.
func (b *EditBuffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// LineCount returns the number of lines in the buffer.
func (b *EditBuffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line i, or "" if i is out of range.
func (b *EditBuffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Text returns the buffer content as a single newline-joined string.
func (b *EditBuffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// Cursor returns the current cursor position.
func (b *EditBuffer) Cursor() Position {
	return b.cursor
}

// Selection returns the normalized selection range. ok is false when no
// selection is active or the selection is empty.
func (b *EditBuffer) Selection() (start, end Position, ok bool) {
	if !b.selecting || b.anchor == b.cursor {
		return Position{}, Position{}, false
	}
	if b.cursor.Before(b.anchor) {
		return b.cursor, b.anchor, true
	}
	return b.anchor, b.cursor, true
}

// SelectedText returns the text covered by the selection, or "".
func (b *EditBuffer) SelectedText() string {
	start, end, ok := b.Selection()
	if !ok {
		return ""
	}
	if start.Line == end.Line {
		runes := []rune(b.lines[start.Line])
		return string(runes[start.Col:end.Col])
	}
	var sb strings.Builder
	first := []rune(b.lines[start.Line])
	sb.WriteString(string(first[start.Col:]))
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	last := []rune(b.lines[end.Line])
	sb.WriteByte('\n')
	sb.WriteString(string(last[:end.Col]))
	return sb.String()
}

// pushUndo captures the current state onto the undo stack and clears the
// redo stack. Called before every content mutation; there is no coalescing,
// each edit is its own undo unit.
func (b *EditBuffer) pushUndo() {
	b.undo.Push(b.snapshot())
	b.redo = stack.New[snapshot]()
}

func (b *EditBuffer) snapshot() snapshot {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return snapshot{lines: lines, cursor: b.cursor}
}

func (b *EditBuffer) restore(s snapshot) {
	b.lines = s.lines
	b.cursor = s.cursor
	b.selecting = false
	b.clamp()
}

// clamp forces the cursor and selection anchor back into buffer bounds.
// Every mutating operation ends with this pass.
func (b *EditBuffer) clamp() {
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	b.cursor = b.clampPos(b.cursor)
	b.anchor = b.clampPos(b.anchor)
}

func (b *EditBuffer) clampPos(p Position) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(b.lines) {
		p.Line = len(b.lines) - 1
	}
	n := len([]rune(b.lines[p.Line]))
	if p.Col < 0 {
		p.Col = 0
	}
	if p.Col > n {
		p.Col = n
	}
	return p
}

// deleteSelection removes the selected range and places the cursor at its
// start. Callers push the undo snapshot first.
func (b *EditBuffer) deleteSelection() {
	start, end, ok := b.Selection()
	if !ok {
		return
	}
	first := []rune(b.lines[start.Line])
	last := []rune(b.lines[end.Line])
	merged := string(first[:start.Col]) + string(last[end.Col:])
	b.lines = append(b.lines[:start.Line], append([]string{merged}, b.lines[end.Line+1:]...)...)
	b.cursor = start
	b.selecting = false
	b.clamp()
}

// Insert inserts text at the cursor, replacing any active selection.
// Embedded newlines split into additional lines.
func (b *EditBuffer) Insert(text string) {
	if text == "" {
		return
	}
	b.pushUndo()
	b.deleteSelection()
	parts := strings.Split(text, "\n")
	runes := []rune(b.lines[b.cursor.Line])
	head := string(runes[:b.cursor.Col])
	tail := string(runes[b.cursor.Col:])
	if len(parts) == 1 {
		b.lines[b.cursor.Line] = head + parts[0] + tail
		b.cursor.Col += len([]rune(parts[0]))
	} else {
		inserted := make([]string, len(parts))
		inserted[0] = head + parts[0]
		copy(inserted[1:], parts[1:])
		lastIdx := len(inserted) - 1
		endCol := len([]rune(inserted[lastIdx]))
		inserted[lastIdx] += tail
		b.lines = append(b.lines[:b.cursor.Line], append(inserted, b.lines[b.cursor.Line+1:]...)...)
		b.cursor.Line += lastIdx
		b.cursor.Col = endCol
	}
	b.clamp()
}

// InsertNewline splits the current line at the cursor and moves the cursor
// to column 0 of the new line.
func (b *EditBuffer) InsertNewline() {
	b.pushUndo()
	b.deleteSelection()
	runes := []rune(b.lines[b.cursor.Line])
	head := string(runes[:b.cursor.Col])
	tail := string(runes[b.cursor.Col:])
	b.lines[b.cursor.Line] = head
	b.lines = append(b.lines[:b.cursor.Line+1], append([]string{tail}, b.lines[b.cursor.Line+1:]...)...)
	b.cursor = Position{Line: b.cursor.Line + 1, Col: 0}
	b.clamp()
}

// DeleteBackward removes the selection, or the rune before the cursor. At
// column 0 of a non-first line it merges with the previous line.
func (b *EditBuffer) DeleteBackward() {
	if _, _, ok := b.Selection(); ok {
		b.pushUndo()
		b.deleteSelection()
		return
	}
	if b.cursor.Col == 0 && b.cursor.Line == 0 {
		return
	}
	b.pushUndo()
	if b.cursor.Col > 0 {
		runes := []rune(b.lines[b.cursor.Line])
		b.lines[b.cursor.Line] = string(runes[:b.cursor.Col-1]) + string(runes[b.cursor.Col:])
		b.cursor.Col--
	} else {
		prev := b.cursor.Line - 1
		col := len([]rune(b.lines[prev]))
		b.lines[prev] += b.lines[b.cursor.Line]
		b.lines = append(b.lines[:b.cursor.Line], b.lines[b.cursor.Line+1:]...)
		b.cursor = Position{Line: prev, Col: col}
	}
	b.clamp()
}

// DeleteForward removes the selection, or the rune after the cursor. At
// end of line it merges with the next line.
func (b *EditBuffer) DeleteForward() {
	if _, _, ok := b.Selection(); ok {
		b.pushUndo()
		b.deleteSelection()
		return
	}
	runes := []rune(b.lines[b.cursor.Line])
	if b.cursor.Col >= len(runes) && b.cursor.Line == len(b.lines)-1 {
		return
	}
	b.pushUndo()
	if b.cursor.Col < len(runes) {
		b.lines[b.cursor.Line] = string(runes[:b.cursor.Col]) + string(runes[b.cursor.Col+1:])
	} else {
		b.lines[b.cursor.Line] += b.lines[b.cursor.Line+1]
		b.lines = append(b.lines[:b.cursor.Line+1], b.lines[b.cursor.Line+2:]...)
	}
	b.clamp()
}

// DeleteWordBackward deletes from the start of the word before the cursor
// to the cursor. At column 0 it behaves like DeleteBackward.
func (b *EditBuffer) DeleteWordBackward() {
	if _, _, ok := b.Selection(); ok {
		b.pushUndo()
		b.deleteSelection()
		return
	}
	if b.cursor.Col == 0 {
		b.DeleteBackward()
		return
	}
	target := PrevWordStart(b.lines[b.cursor.Line], b.cursor.Col)
	if target == b.cursor.Col {
		return
	}
	b.pushUndo()
	runes := []rune(b.lines[b.cursor.Line])
	b.lines[b.cursor.Line] = string(runes[:target]) + string(runes[b.cursor.Col:])
	b.cursor.Col = target
	b.clamp()
}

// DeleteWordForward deletes from the cursor to the end of the next word.
// At end of line it behaves like DeleteForward.
func (b *EditBuffer) DeleteWordForward() {
	if _, _, ok := b.Selection(); ok {
		b.pushUndo()
		b.deleteSelection()
		return
	}
	runes := []rune(b.lines[b.cursor.Line])
	if b.cursor.Col >= len(runes) {
		b.DeleteForward()
		return
	}
	target := NextWordEnd(b.lines[b.cursor.Line], b.cursor.Col)
	if target == b.cursor.Col {
		return
	}
	b.pushUndo()
	b.lines[b.cursor.Line] = string(runes[:b.cursor.Col]) + string(runes[target:])
	b.clamp()
}

// MoveCursor moves the cursor one step in the given direction. With extend
// set, the selection anchor stays put (starting a selection if none was
// active); without it any selection is dropped.
func (b *EditBuffer) MoveCursor(dir Direction, extend bool) {
	if extend && !b.selecting {
		b.selecting = true
		b.anchor = b.cursor
	}
	if !extend {
		b.selecting = false
	}

	runes := []rune(b.lines[b.cursor.Line])
	switch dir {
	case DirLeft:
		if b.cursor.Col > 0 {
			b.cursor.Col--
		} else if b.cursor.Line > 0 {
			b.cursor.Line--
			b.cursor.Col = len([]rune(b.lines[b.cursor.Line]))
		}
	case DirRight:
		if b.cursor.Col < len(runes) {
			b.cursor.Col++
		} else if b.cursor.Line < len(b.lines)-1 {
			b.cursor.Line++
			b.cursor.Col = 0
		}
	case DirUp:
		if b.cursor.Line > 0 {
			b.cursor.Line--
		}
	case DirDown:
		if b.cursor.Line < len(b.lines)-1 {
			b.cursor.Line++
		}
	case DirLineStart:
		b.cursor.Col = 0
	case DirLineEnd:
		b.cursor.Col = len(runes)
	case DirWordLeft:
		if b.cursor.Col == 0 {
			if b.cursor.Line > 0 {
				b.cursor.Line--
				b.cursor.Col = len([]rune(b.lines[b.cursor.Line]))
			}
		} else {
			b.cursor.Col = PrevWordStart(b.lines[b.cursor.Line], b.cursor.Col)
		}
	case DirWordRight:
		if b.cursor.Col >= len(runes) {
			if b.cursor.Line < len(b.lines)-1 {
				b.cursor.Line++
				b.cursor.Col = 0
			}
		} else {
			b.cursor.Col = NextWordEnd(b.lines[b.cursor.Line], b.cursor.Col)
		}
	case DirBufferStart:
		b.cursor = Position{}
	case DirBufferEnd:
		b.cursor.Line = len(b.lines) - 1
		b.cursor.Col = len([]rune(b.lines[b.cursor.Line]))
	}
	b.clamp()
}

// SetCursor places the cursor at (line, col), clamped into bounds, and
// drops any selection.
func (b *EditBuffer) SetCursor(line, col int) {
	b.cursor = b.clampPos(Position{Line: line, Col: col})
	b.selecting = false
}

// SetSelection selects the range between two positions, clamped into
// bounds. The cursor lands on the head position.
func (b *EditBuffer) SetSelection(anchor, head Position) {
	b.anchor = b.clampPos(anchor)
	b.cursor = b.clampPos(head)
	b.selecting = true
}

// SelectAll selects the whole buffer.
func (b *EditBuffer) SelectAll() {
	b.anchor = Position{}
	b.cursor = Position{Line: len(b.lines) - 1, Col: len([]rune(b.lines[len(b.lines)-1]))}
	b.selecting = true
}

// SelectWord selects the word under or immediately before the cursor.
func (b *EditBuffer) SelectWord() {
	line := b.lines[b.cursor.Line]
	start, end := WordAt(line, b.cursor.Col)
	if start == end {
		return
	}
	b.anchor = Position{Line: b.cursor.Line, Col: start}
	b.cursor = Position{Line: b.cursor.Line, Col: end}
	b.selecting = true
}

// SelectLine selects all of line i.
func (b *EditBuffer) SelectLine(i int) {
	p := b.clampPos(Position{Line: i})
	b.anchor = Position{Line: p.Line, Col: 0}
	b.cursor = Position{Line: p.Line, Col: len([]rune(b.lines[p.Line]))}
	b.selecting = true
}

// Copy returns the selected text without modifying the buffer.
func (b *EditBuffer) Copy() string {
	return b.SelectedText()
}

// Cut removes and returns the selected text.
func (b *EditBuffer) Cut() string {
	text := b.SelectedText()
	if text == "" {
		return ""
	}
	b.pushUndo()
	b.deleteSelection()
	return text
}

// Paste inserts clipboard text at the cursor, replacing any selection.
func (b *EditBuffer) Paste(clipboard string) {
	b.Insert(clipboard)
}

// Undo restores the most recent snapshot. Returns false when the undo
// stack is empty.
func (b *EditBuffer) Undo() bool {
	if b.undo.Size() == 0 {
		return false
	}
	b.redo.Push(b.snapshot())
	b.restore(b.undo.Pop())
	return true
}

// Redo reverses the most recent Undo. Returns false when the redo stack is
// empty.
func (b *EditBuffer) Redo() bool {
	if b.redo.Size() == 0 {
		return false
	}
	b.undo.Push(b.snapshot())
	b.restore(b.redo.Pop())
	return true
}

// SetText replaces the whole buffer content and puts the cursor at the end.
func (b *EditBuffer) SetText(text string) {
	b.pushUndo()
	b.lines = strings.Split(text, "\n")
	b.cursor = Position{Line: len(b.lines) - 1, Col: len([]rune(b.lines[len(b.lines)-1]))}
	b.selecting = false
	b.clamp()
}

// Clear empties the buffer back to a single empty line.
func (b *EditBuffer) Clear() {
	if len(b.lines) == 1 && b.lines[0] == "" {
		return
	}
	b.pushUndo()
	b.lines = []string{""}
	b.cursor = Position{}
	b.selecting = false
}
