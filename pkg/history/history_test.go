package history

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

func testEnv() mutate.Env {
	n := 0
	return mutate.Env{
		Now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		CopyID: func(old string) string {
			n++
			return fmt.Sprintf("%s-copy-%d", old, n)
		},
	}
}

func file(id, p string) *models.FileSystemItem {
	return &models.FileSystemItem{ID: id, Name: tree.Base(p), Path: p, Type: models.TypeFile, SyncStatus: models.StatusSynced}
}

func folder(id, p string, children ...*models.FileSystemItem) *models.FileSystemItem {
	if children == nil {
		children = []*models.FileSystemItem{}
	}
	return &models.FileSystemItem{ID: id, Name: tree.Base(p), Path: p, Type: models.TypeFolder, Children: children, SyncStatus: models.StatusSynced}
}

func sampleTree() *models.FileSystemItem {
	return folder("root", "/",
		folder("A", "/A",
			file("x", "/A/x.txt"),
			file("w", "/A/w.txt"),
		),
		folder("docs", "/docs",
			file("report", "/docs/report.pdf"),
		),
		folder("archive", "/archive",
			file("old", "/archive/report.pdf"),
		),
	)
}

// roundTrip undoes and redoes cmd and checks both snapshots
func roundTrip(t *testing.T, log *Log, before, after *models.FileSystemItem) {
	t.Helper()
	undone, cmd, err := log.Undo(after)
	if err != nil || cmd == nil {
		t.Fatalf("Undo() = %v, %v", cmd, err)
	}
	if !reflect.DeepEqual(undone, before) {
		t.Errorf("undo of %s did not restore the previous tree", cmd.Describe())
	}
	if err := mutate.ValidateTree(undone); err != nil {
		t.Errorf("tree invalid after undo: %v", err)
	}
	redone, _, err := log.Redo(undone)
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if !reflect.DeepEqual(redone, after) {
		t.Errorf("redo of %s did not restore the post-operation tree", cmd.Describe())
	}
}

func TestCreateFolderUndoRedo(t *testing.T) {
	before := sampleTree()
	after, created, err := mutate.CreateItem(before, "/", "new", models.TypeFolder, testEnv())
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	log := NewLog(DefaultLimit)
	log.Push(NewCreate(after, created))

	undone, cmd, err := log.Undo(after)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if cmd.Kind() != models.OpCreateFolder {
		t.Errorf("Kind() = %s, want CREATE_FOLDER", cmd.Kind())
	}
	if tree.FindByPath(undone, "/new") != nil {
		t.Error("/new should be gone after undo")
	}

	redone, _, err := log.Redo(undone)
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	restored := tree.FindByPath(redone, "/new")
	if restored == nil || restored.ID != created.ID {
		t.Fatalf("/new should come back with id %s, got %+v", created.ID, restored)
	}
	if !reflect.DeepEqual(redone, after) {
		t.Error("redo should reproduce the post-operation tree")
	}
}

func TestCommandsRoundTrip(t *testing.T) {
	t.Run("Delete", func(t *testing.T) {
		before := sampleTree()
		after, removed := mutate.Remove(before, []string{"w", "report"})
		log := NewLog(0)
		log.Push(NewDelete(removed))
		roundTrip(t, log, before, after)
	})

	t.Run("Rename", func(t *testing.T) {
		before := sampleTree()
		after, renamed, err := mutate.Rename(before, "A", "B", testEnv())
		if err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		cmd := NewRename(mutate.PlacementsOf(before, []string{"A"}), mutate.PlacementsOf(after, []string{renamed.ID}))
		if cmd.OldName != "A" || cmd.NewName != "B" {
			t.Errorf("names = %s -> %s", cmd.OldName, cmd.NewName)
		}
		log := NewLog(0)
		log.Push(cmd)
		roundTrip(t, log, before, after)
	})

	t.Run("Move", func(t *testing.T) {
		before := sampleTree()
		after, res, err := mutate.Move(before, []string{"w", "x"}, "/docs", mutate.Options{}, testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		log := NewLog(0)
		log.Push(NewMove(res.Sources, nil, mutate.PlacementsOf(after, []string{"x", "w"}), "/docs"))
		roundTrip(t, log, before, after)
	})

	t.Run("MoveWithReplace", func(t *testing.T) {
		before := sampleTree()
		cleared, replaced := mutate.Remove(before, []string{"old"})
		after, res, err := mutate.Move(cleared, []string{"report"}, "/archive", mutate.Options{}, testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		log := NewLog(0)
		log.Push(NewMove(res.Sources, replaced, mutate.PlacementsOf(after, []string{"report"}), "/archive"))
		roundTrip(t, log, before, after)
	})

	t.Run("Copy", func(t *testing.T) {
		before := sampleTree()
		after, clones, err := mutate.Copy(before, []string{"A"}, "/archive", mutate.Options{}, testEnv())
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		log := NewLog(0)
		log.Push(NewCopy(nil, mutate.PlacementsOf(after, []string{clones[0].ID}), "/archive"))
		roundTrip(t, log, before, after)
	})

	t.Run("Upload", func(t *testing.T) {
		before := sampleTree()
		upload := file("up", "/data.csv")
		upload.Size = 42
		after, added, err := mutate.AddItem(before, "/docs", upload, models.OpUpload)
		if err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
		cmd := NewUpload(nil, mutate.PlacementsOf(after, []string{added.ID}))
		if cmd.Describe() != "upload data.csv" {
			t.Errorf("Describe() = %q", cmd.Describe())
		}
		log := NewLog(0)
		log.Push(cmd)
		roundTrip(t, log, before, after)
	})
}

func TestLog(t *testing.T) {
	root := sampleTree()
	env := testEnv()

	t.Run("EmptyIsNoop", func(t *testing.T) {
		log := NewLog(0)
		got, cmd, err := log.Undo(root)
		if got != root || cmd != nil || err != nil {
			t.Error("Undo() on an empty log should be a no-op")
		}
		got, cmd, err = log.Redo(root)
		if got != root || cmd != nil || err != nil {
			t.Error("Redo() on an empty log should be a no-op")
		}
	})

	t.Run("PushClearsRedo", func(t *testing.T) {
		log := NewLog(0)
		r1, c1, _ := mutate.CreateItem(root, "/", "one", models.TypeFolder, env)
		log.Push(NewCreate(r1, c1))
		r0, _, _ := log.Undo(r1)
		if !log.CanRedo() {
			t.Fatal("CanRedo() should be true after undo")
		}
		r2, c2, _ := mutate.CreateItem(r0, "/", "two", models.TypeFolder, env)
		log.Push(NewCreate(r2, c2))
		if log.CanRedo() {
			t.Error("a new command must clear the redo stack")
		}
		if undo, redo := log.Len(); undo != 1 || redo != 0 {
			t.Errorf("Len() = %d, %d, want 1, 0", undo, redo)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		log := NewLog(2)
		current := root
		for i := 0; i < 3; i++ {
			next, created, err := mutate.CreateItem(current, "/", fmt.Sprintf("f%d", i), models.TypeFile, env)
			if err != nil {
				t.Fatalf("CreateItem() error = %v", err)
			}
			log.Push(NewCreate(next, created))
			current = next
		}
		entries := log.Entries()
		if len(entries) != 2 {
			t.Fatalf("len(Entries()) = %d, want 2", len(entries))
		}
		if entries[0].Describe() != "create file /f1" {
			t.Errorf("oldest entry = %q, want create file /f1", entries[0].Describe())
		}
	})

	t.Run("FailedUndoKeepsStacks", func(t *testing.T) {
		log := NewLog(0)
		after, created, _ := mutate.CreateItem(root, "/", "gone", models.TypeFolder, env)
		cmd := NewCreate(after, created)
		log.Push(cmd)
		// the parent of the recorded placement no longer exists
		cmd.After[0].ParentPath = "/missing"
		cmd.Before = []mutate.Placement{{Item: file("z", "/missing/z"), ParentPath: "/missing"}}
		if _, _, err := log.Undo(after); err == nil {
			t.Fatal("Undo() should fail when the parent is missing")
		}
		if undo, _ := log.Len(); undo != 1 {
			t.Error("a failed undo must keep the command on the stack")
		}
	})

	t.Run("Discard", func(t *testing.T) {
		log := NewLog(0)
		r1, c1, _ := mutate.CreateItem(root, "/", "one", models.TypeFolder, env)
		first := NewCreate(r1, c1)
		log.Push(first)
		r2, c2, _ := mutate.CreateItem(r1, "/", "two", models.TypeFolder, env)
		second := NewCreate(r2, c2)
		log.Push(second)

		if log.Discard(first) {
			t.Error("Discard() must only drop the top of a stack")
		}
		if !log.Discard(second) {
			t.Fatal("Discard() should drop the latest command")
		}
		if _, cmd, _ := log.Undo(r1); cmd != first {
			t.Fatal("Undo() should reach the remaining command")
		}
		if !log.Discard(first) {
			t.Error("Discard() should drop an undone command from the redo stack")
		}
		if undo, redo := log.Len(); undo != 0 || redo != 0 {
			t.Errorf("Len() = %d, %d, want 0, 0", undo, redo)
		}
	})
}

func TestTransitionGone(t *testing.T) {
	root := sampleTree()
	_, removed := mutate.Remove(root, []string{"A"})
	gone := NewDelete(removed).Gone()
	want := map[string]bool{"A": true, "x": true, "w": true}
	if len(gone) != len(want) {
		t.Fatalf("Gone() = %v, want A, x, w", gone)
	}
	for _, id := range gone {
		if !want[id] {
			t.Errorf("unexpected id %s in Gone()", id)
		}
	}
}

func TestKeys(t *testing.T) {
	bindings := DefaultBindings()
	tests := []struct {
		key   string
		input bool
		want  Action
	}{
		{"ctrl+z", false, ActionUndo},
		{"cmd+z", false, ActionUndo},
		{"Meta+Z", false, ActionUndo},
		{"ctrl+y", false, ActionRedo},
		{"cmd+y", false, ActionRedo},
		{"ctrl+shift+z", false, ActionRedo},
		{"cmd+shift+z", false, ActionRedo},
		{"ctrl+z", true, ActionNone},
		{"z", false, ActionNone},
		{"ctrl+alt+z", false, ActionNone},
		{"ctrl+x", false, ActionNone},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/input=%v", tt.key, tt.input), func(t *testing.T) {
			k, err := ParseKey(tt.key)
			if err != nil {
				t.Fatalf("ParseKey(%q) error = %v", tt.key, err)
			}
			if got := bindings.Resolve(k, tt.input); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", k, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "ctrl+", "hyper+z"} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) should fail", bad)
		}
	}
}
