// Package navigation tracks where the user is in the workspace and what
// is selected there.
package navigation

import (
	"sync"

	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// History is a browser-style back/forward list of folder paths
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
}

// NewHistory starts a history at start
func NewHistory(start string) *History {
	return &History{entries: []string{tree.Normalize(start)}}
}

// Current returns the folder being displayed
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// NavigateTo pushes p, dropping any forward entries. It returns false
// when p is already the current folder.
func (h *History) NavigateTo(p string) bool {
	p = tree.Normalize(p)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.index] == p {
		return false
	}
	// If not at end of history, truncate forward
	h.entries = append(h.entries[:h.index+1], p)
	h.index = len(h.entries) - 1
	return true
}

// Back moves one entry back
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return h.entries[h.index], false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves one entry forward
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == len(h.entries)-1 {
		return h.entries[h.index], false
	}
	h.index++
	return h.entries[h.index], true
}

// CanGoBack reports whether an earlier folder is recorded
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

// CanGoForward reports whether GoBack left folders to return to
func (h *History) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index < len(h.entries)-1
}

// Entries returns a copy of the list and the current position
func (h *History) Entries() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...), h.index
}

// Rebase rewrites every entry under oldPrefix after a rename or move
func (h *History) Rebase(oldPrefix, newPrefix string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.entries {
		h.entries[i] = tree.Rebase(p, oldPrefix, newPrefix)
	}
	h.compactLocked()
}

// Prune replaces entries that no longer resolve by their closest
// existing ancestor.
func (h *History) Prune(exists func(p string) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.entries {
		for p != tree.Root && !exists(p) {
			p = tree.Parent(p)
		}
		h.entries[i] = p
	}
	h.compactLocked()
}

// compactLocked merges consecutive duplicates produced by Rebase or Prune
func (h *History) compactLocked() {
	out := h.entries[:1]
	index := 0
	for i := 1; i < len(h.entries); i++ {
		if h.entries[i] != out[len(out)-1] {
			out = append(out, h.entries[i])
		}
		if i == h.index {
			index = len(out) - 1
		}
	}
	h.entries = out
	h.index = index
}
