package navigation

import (
	"sync"
)

// Selection is the ordered set of selected item ids. The anchor is the
// last item picked with a plain or toggle click; range selection extends
// from it.
type Selection struct {
	mu     sync.Mutex
	ids    []string
	anchor string
	focus  string
}

// NewSelection returns an empty selection
func NewSelection() *Selection {
	return &Selection{}
}

// Select replaces the selection with id
func (s *Selection) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = []string{id}
	s.anchor = id
}

// Toggle adds or removes id, as with a ctrl/cmd click
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = id
	for i, selected := range s.ids {
		if selected == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

// SelectRange selects the contiguous run of order between the anchor and
// id, as with a shift click. Without a usable anchor it behaves like
// Select.
func (s *Selection) SelectRange(order []string, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := -1, -1
	for i, candidate := range order {
		if candidate == s.anchor {
			from = i
		}
		if candidate == id {
			to = i
		}
	}
	if to < 0 {
		return
	}
	if from < 0 {
		s.ids = []string{id}
		s.anchor = id
		return
	}
	if from > to {
		from, to = to, from
	}
	s.ids = append([]string(nil), order[from:to+1]...)
}

// Clear empties the selection and the anchor
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.anchor = ""
}

// IDs returns the selected ids in selection order
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// Len returns the number of selected ids
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Contains reports whether id is selected
func (s *Selection) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, selected := range s.ids {
		if selected == id {
			return true
		}
	}
	return false
}

// Remove deselects ids, e.g. after they were deleted
func (s *Selection) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := s.ids[:0:0]
	for _, id := range s.ids {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	s.ids = kept
	if gone[s.anchor] {
		s.anchor = ""
	}
	if gone[s.focus] {
		s.focus = ""
	}
}

// Anchor returns the id range selection extends from
func (s *Selection) Anchor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// Focus returns the item shown in the details panel
func (s *Selection) Focus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// SetFocus sets the item shown in the details panel; "" hides it
func (s *Selection) SetFocus(id string) {
	s.mu.Lock()
	s.focus = id
	s.mu.Unlock()
}
