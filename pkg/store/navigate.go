package store

import (
	"context"
	"fmt"

	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/prefs"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// CurrentPath returns the folder being displayed
func (s *Store) CurrentPath() string {
	return s.nav.Current()
}

// CanGoBack reports whether GoBack would move
func (s *Store) CanGoBack() bool {
	return s.nav.CanGoBack()
}

// CanGoForward reports whether GoForward would move
func (s *Store) CanGoForward() bool {
	return s.nav.CanGoForward()
}

// NavigateTo opens the folder p. The selection and the details focus
// are cleared; opening the current folder changes nothing.
func (s *Store) NavigateTo(p string) error {
	p = tree.Normalize(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index.LookupPath(p)
	if !ok {
		return fmt.Errorf("navigate to %s: %w", p, models.ErrNotFound)
	}
	if !item.IsFolder() {
		return fmt.Errorf("navigate to %s: %w", p, models.ErrNotFolder)
	}
	if s.nav.NavigateTo(p) {
		s.resetSelectionLocked()
	}
	return nil
}

// GoBack returns to the previous folder
func (s *Store) GoBack() (string, bool) {
	return s.travel(s.nav.Back)
}

// GoForward returns to the folder left with GoBack
func (s *Store) GoForward() (string, bool) {
	return s.travel(s.nav.Forward)
}

func (s *Store) travel(step func() (string, bool)) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, moved := step()
	if moved {
		s.resetSelectionLocked()
	}
	return p, moved
}

func (s *Store) resetSelectionLocked() {
	s.selection.Clear()
	s.selection.SetFocus("")
	s.publish(Change{Kind: ChangeNavigation})
}

// Selection returns the selected ids in selection order
func (s *Store) Selection() []string {
	return s.selection.IDs()
}

// Select replaces the selection with id
func (s *Store) Select(id string) {
	s.selection.Select(id)
	s.publishSelection()
}

// ToggleSelect adds or removes id, as with a ctrl/cmd click
func (s *Store) ToggleSelect(id string) {
	s.selection.Toggle(id)
	s.publishSelection()
}

// SelectRange selects the displayed items between the anchor and id, as
// with a shift click
func (s *Store) SelectRange(id string) {
	s.mu.RLock()
	order := make([]string, 0)
	for _, item := range s.displayLocked() {
		order = append(order, item.ID)
	}
	s.mu.RUnlock()
	s.selection.SelectRange(order, id)
	s.publishSelection()
}

// ClearSelection deselects everything
func (s *Store) ClearSelection() {
	s.selection.Clear()
	s.publishSelection()
}

// Focus returns the id shown in the details panel
func (s *Store) Focus() string {
	return s.selection.Focus()
}

// SetFocus shows id in the details panel; "" hides it
func (s *Store) SetFocus(id string) {
	s.selection.SetFocus(id)
	s.publishSelection()
}

func (s *Store) publishSelection() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.publish(Change{Kind: ChangeSelection, IDs: s.selection.IDs()})
}

// Cut puts a snapshot of ids on the clipboard, to be moved on paste. It
// returns the number of items found.
func (s *Store) Cut(ids []string) int {
	return s.toClipboard(ids, models.ClipboardCut)
}

// CopyToClipboard puts a snapshot of ids on the clipboard, to be cloned
// on every paste
func (s *Store) CopyToClipboard(ids []string) int {
	return s.toClipboard(ids, models.ClipboardCopy)
}

func (s *Store) toClipboard(ids []string, op models.ClipboardOp) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*models.FileSystemItem
	for _, id := range ids {
		if item, ok := s.index.Lookup(id); ok && item != s.root {
			items = append(items, item)
		}
	}
	source := s.nav.Current()
	if len(items) > 0 {
		source = tree.Parent(items[0].Path)
	}
	if op == models.ClipboardCut {
		s.clipboard.Cut(items, source)
	} else {
		s.clipboard.Copy(items, source)
	}
	s.publish(Change{Kind: ChangeClipboard, IDs: itemIDs(items)})
	return len(items)
}

// ClearClipboard empties the clipboard
func (s *Store) ClearClipboard() {
	s.clipboard.Clear()
	s.mu.RLock()
	s.publish(Change{Kind: ChangeClipboard})
	s.mu.RUnlock()
}

// Paste moves (cut) or clones (copy) the clipboard items into the current
// folder. A cut is consumed once the move is applied, including after its
// conflicts are resolved; a copy can be pasted again. With an empty
// clipboard nothing happens.
func (s *Store) Paste(ctx context.Context) ([]*models.FileSystemItem, error) {
	slot, ok := s.clipboard.Peek()
	if !ok {
		return nil, nil
	}

	dest := s.nav.Current()
	if slot.Operation != models.ClipboardCut {
		return s.transfer(ctx, models.OpCopy, slot.IDs(), dest, nil)
	}

	items, err := s.transfer(ctx, models.OpMove, slot.IDs(), dest, nil)
	if _, conflict := models.AsConflict(err); conflict {
		s.mu.Lock()
		if s.pending != nil && s.pending.op == models.OpMove {
			s.pending.cut = &slot
		}
		s.mu.Unlock()
		return nil, err
	}
	if err == nil {
		s.consumeCut(slot)
	}
	return items, err
}

// consumeCut clears the pasted cut from the clipboard
func (s *Store) consumeCut(slot models.ClipboardItem) {
	if !s.clipboard.Consume(slot) {
		return
	}
	s.mu.RLock()
	s.publish(Change{Kind: ChangeClipboard})
	s.mu.RUnlock()
}

// View returns the listing settings
func (s *Store) View() navigation.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView changes the listing settings and saves them as preferences
func (s *Store) SetView(ctx context.Context, v navigation.View) error {
	if _, err := navigation.ParseSortKey(string(v.Sort)); err != nil {
		return &models.ValidationError{Field: "sort", Message: err.Error()}
	}
	if _, err := navigation.ParseSortOrder(string(v.Order)); err != nil {
		return &models.ValidationError{Field: "order", Message: err.Error()}
	}
	s.mu.Lock()
	s.view = v
	s.publish(Change{Kind: ChangeView})
	s.mu.Unlock()

	if s.prefs == nil {
		return nil
	}
	if err := prefs.SaveView(s.prefs, v); err != nil {
		s.logger.Error(ctx, "Failed to save view preferences", err, nil)
		return err
	}
	return nil
}

// Favorites returns the saved sidebar folders that still exist
func (s *Store) Favorites() ([]string, error) {
	if s.prefs == nil {
		return nil, ErrNoPreferences
	}
	paths, err := prefs.Favorites(s.prefs)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	kept := paths[:0]
	for _, p := range paths {
		if s.folderExistsLocked(p) {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// AddFavorite pins the folder p to the sidebar
func (s *Store) AddFavorite(p string) error {
	if s.prefs == nil {
		return ErrNoPreferences
	}
	s.mu.RLock()
	exists := s.folderExistsLocked(tree.Normalize(p))
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("favorite %s: %w", p, models.ErrNotFound)
	}
	return prefs.AddFavorite(s.prefs, p)
}

// RemoveFavorite unpins p
func (s *Store) RemoveFavorite(p string) error {
	if s.prefs == nil {
		return ErrNoPreferences
	}
	return prefs.RemoveFavorite(s.prefs, p)
}

func (s *Store) rebaseFavorites(oldPath, newPath string) {
	if s.prefs == nil {
		return
	}
	if err := prefs.RebaseFavorites(s.prefs, oldPath, newPath); err != nil {
		s.logger.Warn(context.Background(), "Failed to update favorites", logging.Fields{
			"from":  oldPath,
			"to":    newPath,
			"error": err.Error(),
		})
	}
}
