package models

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// ============== FileSystemItem Tests ==============

func sampleFolder() *FileSystemItem {
	return &FileSystemItem{
		ID:   "docs",
		Name: "docs",
		Type: TypeFolder,
		Path: "/docs",
		Children: []*FileSystemItem{
			{ID: "a", Name: "a.txt", Type: TypeFile, Path: "/docs/a.txt", Size: 10},
			{
				ID:   "sub",
				Name: "sub",
				Type: TypeFolder,
				Path: "/docs/sub",
				Children: []*FileSystemItem{
					{ID: "b", Name: "b.txt", Type: TypeFile, Path: "/docs/sub/b.txt", Size: 32},
				},
			},
		},
		Permissions: []Permission{{ID: "p1", Name: "Ann", Email: "ann@example.com", Type: PermissionRead}},
	}
}

func TestItemType(t *testing.T) {
	tests := []struct {
		typ   ItemType
		valid bool
	}{
		{TypeFile, true},
		{TypeFolder, true},
		{"symlink", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path     string
		expected []string
	}{
		{"/", nil},
		{"/docs", []string{"docs"}},
		{"/docs/sub/b.txt", []string{"docs", "sub", "b.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			item := &FileSystemItem{Path: tt.path}
			if got := item.Segments(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Segments() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTotalSize(t *testing.T) {
	folder := sampleFolder()
	if got := folder.TotalSize(); got != 42 {
		t.Errorf("TotalSize() = %d, want 42", got)
	}
	if got := folder.Children[0].TotalSize(); got != 10 {
		t.Errorf("file TotalSize() = %d, want 10", got)
	}
	empty := &FileSystemItem{Type: TypeFolder}
	if got := empty.TotalSize(); got != 0 {
		t.Errorf("empty folder TotalSize() = %d, want 0", got)
	}
}

func TestClone(t *testing.T) {
	folder := sampleFolder()
	clone := folder.Clone()

	if !reflect.DeepEqual(folder, clone) {
		t.Fatal("Clone() should be deeply equal to the original")
	}

	clone.Children[1].Children[0].Name = "changed.txt"
	clone.Permissions[0].Name = "Bob"
	if folder.Children[1].Children[0].Name != "b.txt" {
		t.Error("modifying the clone changed a nested child of the original")
	}
	if folder.Permissions[0].Name != "Ann" {
		t.Error("modifying the clone changed the original permissions")
	}

	var nilItem *FileSystemItem
	if nilItem.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestShallowCopy(t *testing.T) {
	folder := sampleFolder()
	c := folder.ShallowCopy()

	if c.Children[0] != folder.Children[0] {
		t.Error("ShallowCopy() should share the children")
	}
	c.Children = c.Children[:1]
	if len(folder.Children) != 2 {
		t.Error("ShallowCopy() should not share the child slice")
	}
}

func TestChild(t *testing.T) {
	folder := sampleFolder()

	if got := folder.Child("sub"); got == nil || got.ID != "sub" {
		t.Errorf("Child(sub) = %v, want sub", got)
	}
	if got := folder.Child("b.txt"); got != nil {
		t.Error("Child() should only look at direct children")
	}
}

// ============== SyncStatus Tests ==============

func TestSyncStatusValid(t *testing.T) {
	for _, s := range []SyncStatus{StatusPending, StatusSyncing, StatusSynced, StatusError, StatusHidden} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if SyncStatus("unknown").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestSyncStatusTransition(t *testing.T) {
	tests := []struct {
		from, to SyncStatus
		allowed  bool
	}{
		{StatusPending, StatusSyncing, true},
		{StatusPending, StatusSynced, false},
		{StatusSyncing, StatusSynced, true},
		{StatusSyncing, StatusError, true},
		{StatusSynced, StatusSyncing, false},
		{StatusSynced, StatusPending, true},
		{StatusError, StatusPending, true},
		{StatusHidden, StatusSynced, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition() = %v, want %v", got, tt.allowed)
			}
		})
	}
}

// ============== Conflict Tests ==============

func TestConflictResolution(t *testing.T) {
	tests := []struct {
		resolution ConflictResolution
		valid      bool
	}{
		{ResolveReplace, true},
		{ResolveRename, true},
		{ResolveSkip, true},
		{"merge", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.resolution), func(t *testing.T) {
			if got := tt.resolution.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestConflictResolve(t *testing.T) {
	conflict := &ConflictItem{
		Incoming:   &FileSystemItem{Name: "a.txt"},
		Existing:   &FileSystemItem{Name: "a.txt"},
		TargetPath: "/docs",
		Operation:  OpMove,
	}

	if conflict.IsResolved() {
		t.Error("Conflict should not be resolved initially")
	}

	conflict.Resolve(ResolveRename, true)

	if !conflict.IsResolved() {
		t.Error("Conflict should be resolved after Resolve()")
	}
	if conflict.Resolution != ResolveRename {
		t.Errorf("Resolution = %s, want rename", conflict.Resolution)
	}
	if !conflict.ApplyToAll {
		t.Error("ApplyToAll should be set")
	}
}

func TestConflictError(t *testing.T) {
	one := &ConflictItem{Incoming: &FileSystemItem{Name: "a.txt"}, TargetPath: "/docs"}
	two := &ConflictItem{Incoming: &FileSystemItem{Name: "b.txt"}, TargetPath: "/docs"}

	t.Run("Single", func(t *testing.T) {
		err := &ConflictError{Conflicts: []*ConflictItem{one}}
		if got := err.Error(); got != `"a.txt" already exists in /docs` {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("Several", func(t *testing.T) {
		err := &ConflictError{Conflicts: []*ConflictItem{one, two}}
		if got := err.Error(); got != "2 items already exist at the destination" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := fmt.Errorf("paste failed: %w", &ConflictError{Conflicts: []*ConflictItem{one}})
		if !errors.Is(err, ErrNameConflict) {
			t.Error("wrapped ConflictError should match ErrNameConflict")
		}
		ce, ok := AsConflict(err)
		if !ok || len(ce.Conflicts) != 1 {
			t.Errorf("AsConflict() = %v, %v", ce, ok)
		}
	})

	t.Run("NotAConflict", func(t *testing.T) {
		if _, ok := AsConflict(ErrNotFound); ok {
			t.Error("AsConflict(ErrNotFound) should be false")
		}
	})
}

// ============== Clipboard Tests ==============

func TestClipboardIDs(t *testing.T) {
	clip := &ClipboardItem{
		Items:      []*FileSystemItem{{ID: "x"}, {ID: "y"}},
		SourcePath: "/A",
		Operation:  ClipboardCut,
	}
	if got := clip.IDs(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("IDs() = %v, want [x y]", got)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "backend.type",
		Message: "must be 'memory', 'remote' or 'local'",
	}

	expected := "backend.type: must be 'memory', 'remote' or 'local'"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}
