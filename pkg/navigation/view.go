package navigation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// SortKey is the column the listing is ordered by
type SortKey string

const (
	SortByName     SortKey = "name"
	SortBySize     SortKey = "size"
	SortByModified SortKey = "modified"
	SortByType     SortKey = "type"
)

// SortOrder is ascending or descending
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ViewMode is how the listing is laid out
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseSortKey validates a sort key; "" yields SortByName
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case "":
		return SortByName, nil
	case SortByName, SortBySize, SortByModified, SortByType:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q (must be name, size, modified or type)", s)
}

// ParseSortOrder validates a sort order; "" yields Ascending
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order %q (must be asc or desc)", s)
}

// View holds the display preferences of a folder listing
type View struct {
	Mode       ViewMode  `json:"mode"`
	Sort       SortKey   `json:"sort"`
	Order      SortOrder `json:"order"`
	ShowHidden bool      `json:"showHidden"`
	Exclude    []string  `json:"exclude,omitempty"`
}

// DefaultView lists by name, folders first, hidden items filtered
func DefaultView() View {
	return View{Mode: ViewGrid, Sort: SortByName, Order: Ascending}
}

// Hidden reports whether item is filtered out by this view. Dot files and
// items excluded from sync are hidden unless ShowHidden is set; Exclude
// patterns always apply.
func (v View) Hidden(item *models.FileSystemItem) bool {
	if Excluded(item.Path, v.Exclude) {
		return true
	}
	if v.ShowHidden {
		return false
	}
	return strings.HasPrefix(item.Name, ".") || item.SyncStatus == models.StatusHidden
}

// Display returns the visible items in display order: folders first, then
// files, each group ordered by the sort key. The input is not modified.
func (v View) Display(items []*models.FileSystemItem) []*models.FileSystemItem {
	out := make([]*models.FileSystemItem, 0, len(items))
	for _, item := range items {
		if !v.Hidden(item) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		c := v.compare(a, b)
		if c == 0 {
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			if c == 0 {
				c = strings.Compare(a.Name, b.Name)
			}
			return c < 0
		}
		if v.Order == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// DisplayIDs returns the ids of Display(items)
func (v View) DisplayIDs(items []*models.FileSystemItem) []string {
	display := v.Display(items)
	ids := make([]string, len(display))
	for i, item := range display {
		ids[i] = item.ID
	}
	return ids
}

func (v View) compare(a, b *models.FileSystemItem) int {
	switch v.Sort {
	case SortBySize:
		return cmpInt(a.TotalSize(), b.TotalSize())
	case SortByModified:
		return a.ModifiedAt.Compare(b.ModifiedAt)
	case SortByType:
		c := strings.Compare(extension(a.Name), extension(b.Name))
		if c != 0 {
			return c
		}
	}
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
