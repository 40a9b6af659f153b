// Package input turns raw terminal bytes into structured key events for
// the console frontends. It owns raw-mode handling but interprets nothing;
// translating keys into engine calls is the frontend's job.
package input

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// KeyKind classifies a decoded key event.
type KeyKind int

// Key kinds.
const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyCtrl // control chord; Rune holds the lowercase letter
)

// Key is one decoded keyboard event.
type Key struct {
	Kind  KeyKind
	Rune  rune
	Shift bool // set for shifted arrow sequences (selection extension)
}

// Reader decodes key events from a byte stream, typically stdin in raw
// mode.
type Reader struct {
	fd       int
	oldState *term.State
	buf      []byte
}

// NewReader wraps stdin.
func NewReader() *Reader {
	return &Reader{fd: int(os.Stdin.Fd())}
}

// MakeRaw switches the terminal into raw mode. Callers must pair it with
// Restore.
func (r *Reader) MakeRaw() error {
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	r.oldState = state
	return nil
}

// Restore returns the terminal to its previous mode.
func (r *Reader) Restore() {
	if r.oldState != nil {
		term.Restore(r.fd, r.oldState)
		r.oldState = nil
	}
}

func (r *Reader) readByte() (byte, error) {
	if len(r.buf) > 0 {
		b := r.buf[0]
		r.buf = r.buf[1:]
		return b, nil
	}
	one := make([]byte, 1)
	if _, err := os.Stdin.Read(one); err != nil {
		return 0, err
	}
	return one[0], nil
}

// ReadKey blocks for the next decoded key event.
func (r *Reader) ReadKey() (Key, error) {
	b, err := r.readByte()
	if err != nil {
		return Key{}, err
	}

	switch b {
	case 0x1b:
		return r.readEscape()
	case '\r', '\n':
		return Key{Kind: KeyEnter}, nil
	case 0x7f, 0x08:
		return Key{Kind: KeyBackspace}, nil
	case '\t':
		return Key{Kind: KeyTab}, nil
	}
	if b < 0x20 {
		// Ctrl+A..Ctrl+Z arrive as 0x01..0x1a.
		return Key{Kind: KeyCtrl, Rune: rune('a' + b - 1)}, nil
	}
	if b < 0x80 {
		return Key{Kind: KeyRune, Rune: rune(b)}, nil
	}
	return r.readUTF8(b)
}

// readEscape decodes CSI and SS3 sequences: arrows, Home/End, Delete and
// page keys, plus the shifted arrow variants ("1;2A" style). A lone ESC is
// reported as KeyEscape.
func (r *Reader) readEscape() (Key, error) {
	b2, err := r.readByte()
	if err != nil {
		return Key{Kind: KeyEscape}, nil
	}
	if b2 != '[' && b2 != 'O' {
		r.buf = append(r.buf, b2)
		return Key{Kind: KeyEscape}, nil
	}

	var params []byte
	for {
		b, err := r.readByte()
		if err != nil {
			return Key{Kind: KeyEscape}, nil
		}
		if b >= '0' && b <= '9' || b == ';' {
			params = append(params, b)
			continue
		}
		shift := string(params) == "1;2"
		switch b {
		case 'A':
			return Key{Kind: KeyUp, Shift: shift}, nil
		case 'B':
			return Key{Kind: KeyDown, Shift: shift}, nil
		case 'C':
			return Key{Kind: KeyRight, Shift: shift}, nil
		case 'D':
			return Key{Kind: KeyLeft, Shift: shift}, nil
		case 'H':
			return Key{Kind: KeyHome}, nil
		case 'F':
			return Key{Kind: KeyEnd}, nil
		case '~':
			switch string(params) {
			case "1", "7":
				return Key{Kind: KeyHome}, nil
			case "3":
				return Key{Kind: KeyDelete}, nil
			case "4", "8":
				return Key{Kind: KeyEnd}, nil
			case "5":
				return Key{Kind: KeyPageUp}, nil
			case "6":
				return Key{Kind: KeyPageDown}, nil
			}
			return Key{Kind: KeyEscape}, nil
		default:
			// Unknown sequence, swallow it.
			return Key{Kind: KeyEscape}, nil
		}
	}
}

// readUTF8 finishes a multi-byte rune whose first byte was already read.
func (r *Reader) readUTF8(first byte) (Key, error) {
	n := 1
	switch {
	case first&0xe0 == 0xc0:
		n = 2
	case first&0xf0 == 0xe0:
		n = 3
	case first&0xf8 == 0xf0:
		n = 4
	}
	bytes := []byte{first}
	for len(bytes) < n {
		b, err := r.readByte()
		if err != nil {
			return Key{}, err
		}
		bytes = append(bytes, b)
	}
	runes := []rune(string(bytes))
	if len(runes) == 0 {
		return Key{Kind: KeyEscape}, nil
	}
	return Key{Kind: KeyRune, Rune: runes[0]}, nil
}
