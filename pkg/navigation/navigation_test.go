package navigation

import (
	"reflect"
	"testing"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

func TestHistory(t *testing.T) {
	t.Run("BackAndForward", func(t *testing.T) {
		h := NewHistory("/")
		h.NavigateTo("/docs")
		h.NavigateTo("/docs/drafts")

		if p, ok := h.Back(); !ok || p != "/docs" {
			t.Errorf("Back() = %s, %v, want /docs", p, ok)
		}
		if p, ok := h.Back(); !ok || p != "/" {
			t.Errorf("Back() = %s, %v, want /", p, ok)
		}
		if _, ok := h.Back(); ok {
			t.Error("Back() at the start should fail")
		}
		if p, ok := h.Forward(); !ok || p != "/docs" {
			t.Errorf("Forward() = %s, %v, want /docs", p, ok)
		}
		if !h.CanGoBack() || !h.CanGoForward() {
			t.Error("expected both directions to be available")
		}
	})

	t.Run("NavigateTruncatesForward", func(t *testing.T) {
		h := NewHistory("/")
		h.NavigateTo("/a")
		h.NavigateTo("/b")
		h.Back()
		h.NavigateTo("/c")

		entries, index := h.Entries()
		if !reflect.DeepEqual(entries, []string{"/", "/a", "/c"}) || index != 2 {
			t.Errorf("Entries() = %v, %d", entries, index)
		}
		if h.CanGoForward() {
			t.Error("forward history should be dropped")
		}
	})

	t.Run("SamePathIsNoop", func(t *testing.T) {
		h := NewHistory("/")
		h.NavigateTo("/a")
		if h.NavigateTo("/a/") {
			t.Error("navigating to the current folder should return false")
		}
		if entries, _ := h.Entries(); len(entries) != 2 {
			t.Errorf("Entries() = %v, want 2 entries", entries)
		}
	})

	t.Run("Rebase", func(t *testing.T) {
		h := NewHistory("/")
		h.NavigateTo("/A")
		h.NavigateTo("/A/sub")
		h.Rebase("/A", "/B")
		if h.Current() != "/B/sub" {
			t.Errorf("Current() = %s, want /B/sub", h.Current())
		}
	})

	t.Run("Prune", func(t *testing.T) {
		h := NewHistory("/")
		h.NavigateTo("/A")
		h.NavigateTo("/A/sub")
		h.Prune(func(p string) bool { return p != "/A/sub" })

		entries, index := h.Entries()
		if !reflect.DeepEqual(entries, []string{"/", "/A"}) || index != 1 {
			t.Errorf("Entries() = %v, %d, want [/ /A], 1", entries, index)
		}
	})
}

func TestSelection(t *testing.T) {
	order := []string{"a", "b", "c", "d", "e"}

	t.Run("SelectReplaces", func(t *testing.T) {
		s := NewSelection()
		s.Select("a")
		s.Select("b")
		if !reflect.DeepEqual(s.IDs(), []string{"b"}) {
			t.Errorf("IDs() = %v, want [b]", s.IDs())
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		s := NewSelection()
		s.Select("a")
		s.Toggle("c")
		s.Toggle("a")
		if !reflect.DeepEqual(s.IDs(), []string{"c"}) {
			t.Errorf("IDs() = %v, want [c]", s.IDs())
		}
	})

	t.Run("RangeForwardAndBackward", func(t *testing.T) {
		s := NewSelection()
		s.Select("b")
		s.SelectRange(order, "d")
		if !reflect.DeepEqual(s.IDs(), []string{"b", "c", "d"}) {
			t.Errorf("IDs() = %v, want [b c d]", s.IDs())
		}
		// the anchor stays on b
		s.SelectRange(order, "a")
		if !reflect.DeepEqual(s.IDs(), []string{"a", "b"}) {
			t.Errorf("IDs() = %v, want [a b]", s.IDs())
		}
	})

	t.Run("RangeWithoutAnchor", func(t *testing.T) {
		s := NewSelection()
		s.SelectRange(order, "c")
		if !reflect.DeepEqual(s.IDs(), []string{"c"}) || s.Anchor() != "c" {
			t.Errorf("IDs() = %v, anchor %s", s.IDs(), s.Anchor())
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := NewSelection()
		s.Select("a")
		s.Toggle("b")
		s.SetFocus("b")
		s.Remove("b")
		if s.Contains("b") || s.Anchor() != "" || s.Focus() != "" {
			t.Error("removed ids should leave selection, anchor and focus")
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})
}

func item(id, name string, typ models.ItemType, size int64, mod time.Time) *models.FileSystemItem {
	return &models.FileSystemItem{ID: id, Name: name, Path: "/" + name, Type: typ, Size: size, ModifiedAt: mod, SyncStatus: models.StatusSynced}
}

func TestViewDisplay(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []*models.FileSystemItem{
		item("1", "b.txt", models.TypeFile, 30, base.Add(3*time.Hour)),
		item("2", "Zeta", models.TypeFolder, 0, base.Add(1*time.Hour)),
		item("3", "a.pdf", models.TypeFile, 10, base.Add(2*time.Hour)),
		item("4", ".env", models.TypeFile, 1, base),
		item("5", "alpha", models.TypeFolder, 0, base),
		item("6", "c.log", models.TypeFile, 20, base.Add(4*time.Hour)),
	}

	tests := []struct {
		name string
		view View
		want []string
	}{
		{"ByName", View{Sort: SortByName, Order: Ascending}, []string{"5", "2", "3", "1", "6"}},
		{"ByNameDesc", View{Sort: SortByName, Order: Descending}, []string{"2", "5", "6", "1", "3"}},
		{"BySize", View{Sort: SortBySize, Order: Ascending}, []string{"5", "2", "3", "6", "1"}},
		{"ByModified", View{Sort: SortByModified, Order: Descending}, []string{"2", "5", "6", "1", "3"}},
		{"ByType", View{Sort: SortByType, Order: Ascending}, []string{"5", "2", "6", "3", "1"}},
		{"ShowHidden", View{Sort: SortByName, ShowHidden: true}, []string{"5", "2", "4", "3", "1", "6"}},
		{"Exclude", View{Sort: SortByName, Exclude: []string{"*.log", "Zeta/"}}, []string{"5", "3", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.view.DisplayIDs(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DisplayIDs() = %v, want %v", got, tt.want)
			}
		})
	}

	hidden := item("7", "synced-away", models.TypeFile, 0, base)
	hidden.SyncStatus = models.StatusHidden
	if !DefaultView().Hidden(hidden) {
		t.Error("items with hidden sync status should be filtered by default")
	}
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"/notes.tmp", []string{"*.tmp"}, true},
		{"/docs/notes.tmp", []string{"*.tmp"}, true},
		{"/docs/notes.txt", []string{"*.tmp"}, false},
		{"/node_modules", []string{"node_modules/"}, true},
		{"/app/node_modules/x.js", []string{"node_modules/"}, true},
		{"/build/out.bin", []string{"build/*"}, true},
		{"/src/build/out.bin", []string{"build/*"}, true},
		{"/a/test/file.go", []string{"**/test"}, true},
		{"/a/b/c.log", []string{"**/*.log"}, true},
		{"/a/b/c.txt", []string{"**/*.log"}, false},
		{"/x", nil, false},
		{"/x", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Excluded(tt.path, tt.patterns); got != tt.want {
				t.Errorf("Excluded(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if k, err := ParseSortKey("Size"); err != nil || k != SortBySize {
		t.Errorf("ParseSortKey(Size) = %s, %v", k, err)
	}
	if _, err := ParseSortKey("color"); err == nil {
		t.Error("ParseSortKey(color) should fail")
	}
	if o, err := ParseSortOrder(""); err != nil || o != Ascending {
		t.Errorf("ParseSortOrder(\"\") = %s, %v", o, err)
	}
	if _, err := ParseSortOrder("up"); err == nil {
		t.Error("ParseSortOrder(up) should fail")
	}
}
