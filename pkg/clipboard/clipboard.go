// Package clipboard holds the single cut/copy slot of the file manager.
package clipboard

import (
	"sync"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// Clipboard is a single slot. Items are stored as deep snapshots so later
// edits of the tree do not leak into the clipboard.
type Clipboard struct {
	mu   sync.Mutex
	slot *models.ClipboardItem
}

// New returns an empty clipboard
func New() *Clipboard {
	return &Clipboard{}
}

// Cut replaces the slot with items to be moved on paste
func (c *Clipboard) Cut(items []*models.FileSystemItem, sourcePath string) {
	c.set(items, sourcePath, models.ClipboardCut)
}

// Copy replaces the slot with items to be cloned on paste
func (c *Clipboard) Copy(items []*models.FileSystemItem, sourcePath string) {
	c.set(items, sourcePath, models.ClipboardCopy)
}

func (c *Clipboard) set(items []*models.FileSystemItem, sourcePath string, op models.ClipboardOp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(items) == 0 {
		c.slot = nil
		return
	}
	c.slot = &models.ClipboardItem{
		Items:      snapshot(items),
		SourcePath: sourcePath,
		Operation:  op,
	}
}

// Peek returns a copy of the slot without consuming it
func (c *Clipboard) Peek() (models.ClipboardItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil {
		return models.ClipboardItem{}, false
	}
	return c.copyLocked(), true
}

// Consume clears a cut once item has been pasted. A copy stays so it can
// be pasted again, and a slot replaced since the paste started is kept.
func (c *Clipboard) Consume(item models.ClipboardItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil || c.slot.Operation != models.ClipboardCut || item.Operation != models.ClipboardCut {
		return false
	}
	if !sameIDs(c.slot.IDs(), item.IDs()) {
		return false
	}
	c.slot = nil
	return true
}

// Clear empties the slot
func (c *Clipboard) Clear() {
	c.mu.Lock()
	c.slot = nil
	c.mu.Unlock()
}

// IsEmpty reports whether the slot is empty
func (c *Clipboard) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot == nil
}

// Drop removes ids from the slot, e.g. after they were deleted. The slot
// is cleared when nothing is left.
func (c *Clipboard) Drop(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil {
		return
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := c.slot.Items[:0:0]
	for _, item := range c.slot.Items {
		if !gone[item.ID] {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		c.slot = nil
		return
	}
	c.slot.Items = kept
}

func (c *Clipboard) copyLocked() models.ClipboardItem {
	return models.ClipboardItem{
		Items:      snapshot(c.slot.Items),
		SourcePath: c.slot.SourcePath,
		Operation:  c.slot.Operation,
	}
}

func snapshot(items []*models.FileSystemItem) []*models.FileSystemItem {
	out := make([]*models.FileSystemItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
