package console

import (
	"fmt"
	"strings"
)

// LoadFunc is the caller-supplied persistence hook invoked once at
// startup. A failed load leaves history empty.
type LoadFunc func() ([]string, error)

// SaveFunc is the caller-supplied persistence hook invoked after every
// submit. A failed save does not roll back the in-memory append.
type SaveFunc func(entries []string, maxEntries int) error

// History holds previously submitted lines, oldest first, with bounded
// retention and sequential recall. The browse index is -1 when showing
// live input.
type History struct {
	entries []string
	max     int
	browse  int
	saved   string

	load LoadFunc
	save SaveFunc
}

// NewHistory returns an empty history retaining at most max entries. The
// load and save hooks may be nil.
func NewHistory(max int, load LoadFunc, save SaveFunc) *History {
	if max <= 0 {
		max = 100
	}
	return &History{max: max, browse: -1, load: load, save: save}
}

// Load pulls persisted entries through the load hook, truncating to the
// cap. On failure the in-memory history stays empty.
func (h *History) Load() error {
	if h.load == nil {
		return nil
	}
	entries, err := h.load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(entries) > h.max {
		entries = entries[len(entries)-h.max:]
	}
	h.entries = append([]string(nil), entries...)
	return nil
}

// Entries returns a copy of the stored lines, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Submit appends line unless it repeats the most recent entry, evicts the
// oldest entry past the cap, resets browsing and invokes the save hook.
// The returned error comes from the save hook only.
func (h *History) Submit(line string) error {
	h.browse = -1
	h.saved = ""
	if line == "" {
		return nil
	}
	if len(h.entries) == 0 || h.entries[len(h.entries)-1] != line {
		h.entries = append(h.entries, line)
		if len(h.entries) > h.max {
			h.entries = h.entries[len(h.entries)-h.max:]
		}
	}
	if h.save == nil {
		return nil
	}
	if err := h.save(h.Entries(), h.max); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Browsing reports whether sequential recall is active.
func (h *History) Browsing() bool {
	return h.browse >= 0
}

// Previous recalls the previous entry. The first call saves live and
// starts at the newest entry; later calls walk older, clamped at the
// oldest. ok is false when history is empty.
func (h *History) Previous(live string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.browse < 0 {
		h.saved = live
		h.browse = len(h.entries) - 1
	} else if h.browse > 0 {
		h.browse--
	}
	return h.entries[h.browse], true
}

// Next recalls the next (newer) entry; walking past the newest exits
// browsing and returns the saved live input. ok is false when not
// browsing.
func (h *History) Next() (string, bool) {
	if h.browse < 0 {
		return "", false
	}
	h.browse++
	if h.browse >= len(h.entries) {
		h.browse = -1
		return h.saved, true
	}
	return h.entries[h.browse], true
}

// ResetBrowse drops out of sequential recall without restoring anything.
func (h *History) ResetBrowse() {
	h.browse = -1
	h.saved = ""
}

// ReverseSearch is bash-style Ctrl+R: match-as-you-type against history,
// most recent first.
type ReverseSearch struct {
	active  bool
	query   string
	matches []string
	idx     int
}

// Start enters search mode with an empty query.
func (r *ReverseSearch) Start() {
	r.active = true
	r.query = ""
	r.matches = nil
	r.idx = 0
}

// Active reports whether search mode is on.
func (r *ReverseSearch) Active() bool {
	return r.active
}

// Query returns the current search term.
func (r *ReverseSearch) Query() string {
	return r.query
}

// UpdateQuery filters entries (oldest first, as stored) by
// case-insensitive substring containment, keeping most-recent-first order,
// and selects the first match.
func (r *ReverseSearch) UpdateQuery(term string, entries []string) {
	r.query = term
	r.matches = r.matches[:0]
	r.idx = 0
	if term == "" {
		return
	}
	needle := strings.ToLower(term)
	for i := len(entries) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(entries[i]), needle) {
			r.matches = append(r.matches, entries[i])
		}
	}
}

// Matches returns the filtered set, most recent first.
func (r *ReverseSearch) Matches() []string {
	return r.matches
}

// Current returns the highlighted match.
func (r *ReverseSearch) Current() (string, bool) {
	if len(r.matches) == 0 {
		return "", false
	}
	return r.matches[r.idx], true
}

// NextMatch moves to the next (older) match with wrap-around.
func (r *ReverseSearch) NextMatch() (string, bool) {
	if len(r.matches) == 0 {
		return "", false
	}
	r.idx = (r.idx + 1) % len(r.matches)
	return r.matches[r.idx], true
}

// PreviousMatch moves to the previous (newer) match with wrap-around.
func (r *ReverseSearch) PreviousMatch() (string, bool) {
	if len(r.matches) == 0 {
		return "", false
	}
	r.idx = (r.idx - 1 + len(r.matches)) % len(r.matches)
	return r.matches[r.idx], true
}

// Accept returns the highlighted line and exits search mode. ok is false
// when nothing matched.
func (r *ReverseSearch) Accept() (string, bool) {
	line, ok := r.Current()
	r.Cancel()
	return line, ok
}

// Cancel exits search mode and empties all owned state.
func (r *ReverseSearch) Cancel() {
	r.active = false
	r.query = ""
	r.matches = nil
	r.idx = 0
}
