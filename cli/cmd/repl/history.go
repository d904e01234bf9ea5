package repl

import (
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// HistoryEntry is one submitted line together with the mode it was
// submitted under.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// prefix returns the tag that records this entry's mode in the file.
func (e HistoryEntry) prefix() string {
	if e.Mode == modeCtrl {
		return "C:"
	}

	return "E:"
}

// record is the entry's on-disk form, one tagged line.
func (e HistoryEntry) record() string {
	return e.prefix() + e.Line + "\n"
}

// parseHistoryLine reads a stored line back into an entry. Untagged lines
// predate mode tagging and load as eval entries.
func parseHistoryLine(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, "E:"); ok {
		return HistoryEntry{Line: s, Mode: modeEval}
	}

	if s, ok := strings.CutPrefix(line, "C:"); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	return HistoryEntry{Line: line, Mode: modeEval}
}

// History is the persistent input history. Eval and control entries share
// one file, distinguished by their mode tags.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns a History backed by the file at path. Nothing is read
// until Load.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the in-memory entries with the contents of the history
// file. A missing file is an empty history, not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return err
	}

	h.entries = nil

	for line := range strings.Lines(string(data)) {
		if line = strings.TrimSpace(line); line != "" {
			h.entries = append(h.entries, parseHistoryLine(line))
		}
	}

	return nil
}

// Write records an eval-mode entry.
func (h *History) Write(entry string) (int, error) {
	return h.WriteWithMode(entry, modeEval)
}

// WriteWithMode records an entry under the given mode. Blank lines and
// repeats of the newest entry are dropped, and a line that already appears
// earlier under the same mode moves to the end instead of duplicating.
func (h *History) WriteWithMode(entry string, mode inputMode) (int, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return 0, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	added := HistoryEntry{Line: entry, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == added {
		return len(entry), nil
	}

	moved := false

	if i := slices.Index(h.entries, added); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		moved = true
	}

	h.entries = append(h.entries, added)

	// Moving an entry reorders the file, so it must be rewritten whole.
	if moved {
		return h.rewriteFile()
	}

	return h.appendToFile(added)
}

// appendToFile writes one entry to the end of the history file, creating
// the file on first use.
func (h *History) appendToFile(e HistoryEntry) (int, error) {
	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return file.WriteString(e.record())
}

// GetLine returns the line at index i, oldest first.
func (h *History) GetLine(i int) (string, error) {
	entry, err := h.GetEntry(i)

	return entry.Line, err
}

// GetEntry returns the entry at index i, oldest first.
func (h *History) GetEntry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of the full history.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewriteFile replaces the file with the current entries. Callers hold
// h.mu.
func (h *History) rewriteFile() (int, error) {
	var sb strings.Builder

	for _, entry := range h.entries {
		sb.WriteString(entry.record())
	}

	if err := os.WriteFile(h.path, []byte(sb.String()), 0o600); err != nil {
		return 0, err
	}

	return sb.Len(), nil
}
