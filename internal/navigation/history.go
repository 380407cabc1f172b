package navigation

import (
	"sync"
)

// State is the state object recorded with a pushed history entry.
type State struct {
	Params map[string]string `json:"params"`
	Path   string            `json:"path"`
}

// History is the browser history seen by a Coordinator.
type History interface {
	// Pathname returns the current external pathname.
	Pathname() string

	// PushState records a new entry without triggering a pop.
	PushState(pathname string, state State) error
}

type historyEntry struct {
	pathname string
	state    State
}

// MemoryHistory is an in-process History with back/forward support. It is
// safe for concurrent use.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries []historyEntry
	index   int
}

// NewMemoryHistory creates a history positioned at initial. An empty
// initial pathname means "/".
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{
		entries: []historyEntry{{pathname: initial}},
	}
}

// Pathname implements History.
func (h *MemoryHistory) Pathname() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.index].pathname
}

// State returns the state of the current entry.
func (h *MemoryHistory) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.index].state
}

// PushState implements History. Entries after the current one are dropped.
func (h *MemoryHistory) PushState(pathname string, state State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], historyEntry{pathname: pathname, state: state})
	h.index++
	return nil
}

// Back moves one entry back and returns the new pathname. It reports false
// at the first entry.
func (h *MemoryHistory) Back() (string, bool) {
	return h.Go(-1)
}

// Forward moves one entry forward and returns the new pathname. It reports
// false at the last entry.
func (h *MemoryHistory) Forward() (string, bool) {
	return h.Go(1)
}

// Go moves delta entries and returns the new pathname. It reports false,
// without moving, when the target is out of range.
func (h *MemoryHistory) Go(delta int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	target := h.index + delta
	if target < 0 || target >= len(h.entries) {
		return h.entries[h.index].pathname, false
	}
	h.index = target
	return h.entries[target].pathname, true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
