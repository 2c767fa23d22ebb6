package mutate

import (
	"testing"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

func TestUniqueName(t *testing.T) {
	takenSet := func(names ...string) func(string) bool {
		set := make(map[string]bool)
		for _, n := range names {
			set[n] = true
		}
		return func(n string) bool { return set[n] }
	}

	tests := []struct {
		name     string
		input    string
		isFolder bool
		taken    []string
		want     string
	}{
		{"Free", "a.txt", false, nil, "a.txt"},
		{"FirstCopy", "a.txt", false, []string{"a.txt"}, "a (copy).txt"},
		{"SecondCopy", "a.txt", false, []string{"a.txt", "a (copy).txt"}, "a copy 2.txt"},
		{"ThirdCopy", "a.txt", false, []string{"a.txt", "a (copy).txt", "a copy 2.txt"}, "a copy 3.txt"},
		{"NoExtension", "Makefile", false, []string{"Makefile"}, "Makefile (copy)"},
		{"DotFile", ".env", false, []string{".env"}, ".env (copy)"},
		{"FolderKeepsDots", "v1.2", true, []string{"v1.2"}, "v1.2 (copy)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueName(tt.input, tt.isFolder, takenSet(tt.taken...)); got != tt.want {
				t.Errorf("UniqueName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	root := folder("root", "/",
		folder("src", "/src",
			file("a", "/src/a.txt", 1),
			file("b", "/src/b.txt", 1),
		),
		folder("dst", "/dst",
			file("a2", "/dst/a.txt", 2),
			file("b2", "/dst/b.txt", 2),
		),
	)
	incoming := []*models.FileSystemItem{tree.FindByID(root, "a"), tree.FindByID(root, "b")}

	t.Run("PerItem", func(t *testing.T) {
		conflicts := DetectConflicts(root, "/dst", incoming, models.OpCopy)
		if len(conflicts) != 2 {
			t.Fatalf("len(conflicts) = %d, want 2", len(conflicts))
		}
		conflicts[0].Resolve(models.ResolveReplace, false)
		conflicts[1].Resolve(models.ResolveSkip, false)

		plan := Resolve(root, conflicts)
		if len(plan.Replace) != 1 || plan.Replace[0] != "a2" {
			t.Errorf("Replace = %v, want [a2]", plan.Replace)
		}
		if !plan.Skipped("b") || plan.Skipped("a") {
			t.Errorf("Skip = %v, want [b]", plan.Skip)
		}
		if kept := plan.Keep([]string{"a", "b"}); len(kept) != 1 || kept[0] != "a" {
			t.Errorf("Keep = %v, want [a]", kept)
		}
	})

	t.Run("ApplyToAll", func(t *testing.T) {
		conflicts := DetectConflicts(root, "/dst", incoming, models.OpMove)
		conflicts[0].Resolve(models.ResolveRename, true)

		plan := Resolve(root, conflicts)
		if plan.Names["a"] != "a (copy).txt" || plan.Names["b"] != "b (copy).txt" {
			t.Errorf("Names = %v", plan.Names)
		}
		if len(plan.Skip) != 0 || len(plan.Replace) != 0 {
			t.Error("apply-to-all rename should neither skip nor replace")
		}

		moved, _, err := Move(root, []string{"a", "b"}, "/dst", plan.Options(), testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		mustValid(t, moved)
		if n := len(tree.FindByPath(moved, "/dst").Children); n != 4 {
			t.Errorf("dst has %d children, want 4", n)
		}
	})

	t.Run("ReplaceThenMove", func(t *testing.T) {
		conflicts := DetectConflicts(root, "/dst", incoming, models.OpMove)
		conflicts[0].Resolve(models.ResolveReplace, true)
		plan := Resolve(root, conflicts)

		cleared, _ := Remove(root, plan.Replace)
		moved, _, err := Move(cleared, plan.Keep([]string{"a", "b"}), "/dst", plan.Options(), testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		mustValid(t, moved)
		dst := tree.FindByPath(moved, "/dst")
		if len(dst.Children) != 2 || dst.Child("a.txt").ID != "a" || dst.Child("b.txt").ID != "b" {
			t.Errorf("dst children = %+v", dst.Children)
		}
	})

	t.Run("ReplaceSelfOnCopy", func(t *testing.T) {
		_, _, err := Copy(root, []string{"a"}, "/src", Options{}, testEnv())
		ce, ok := models.AsConflict(err)
		if !ok || len(ce.Conflicts) != 1 || ce.Conflicts[0].Existing.ID != "a" {
			t.Fatalf("Copy() error = %v, want a conflict with itself", err)
		}
		ce.Conflicts[0].Resolve(models.ResolveReplace, false)

		plan := Resolve(root, ce.Conflicts)
		if len(plan.Replace) != 0 {
			t.Errorf("Replace = %v, an item must not replace itself", plan.Replace)
		}
		if !plan.Skipped("a") {
			t.Errorf("Skip = %v, want [a]", plan.Skip)
		}
	})

	t.Run("UnresolvedIsSkipped", func(t *testing.T) {
		conflicts := DetectConflicts(root, "/dst", incoming[:1], models.OpCopy)
		plan := Resolve(root, conflicts)
		if !plan.Skipped("a") {
			t.Error("an unresolved conflict should be skipped")
		}
	})
}

func TestResolveWithinBatch(t *testing.T) {
	root := folder("root", "/",
		folder("one", "/one", file("x1", "/one/x.txt", 1)),
		folder("two", "/two", file("x2", "/two/x.txt", 2)),
		folder("dst", "/dst"),
	)

	conflictsFor := func(t *testing.T, res models.ConflictResolution) []*models.ConflictItem {
		t.Helper()
		_, _, err := Move(root, []string{"x1", "x2"}, "/dst", Options{}, testEnv())
		ce, ok := models.AsConflict(err)
		if !ok || len(ce.Conflicts) != 1 {
			t.Fatalf("Move() error = %v, want one conflict", err)
		}
		if ce.Conflicts[0].Existing.ID != "x1" {
			t.Fatalf("Existing = %s, want the other incoming item", ce.Conflicts[0].Existing.ID)
		}
		ce.Conflicts[0].Resolve(res, false)
		return ce.Conflicts
	}

	t.Run("Replace", func(t *testing.T) {
		plan := Resolve(root, conflictsFor(t, models.ResolveReplace))
		if len(plan.Replace) != 0 {
			t.Errorf("Replace = %v, an incoming item must not be deleted", plan.Replace)
		}
		moved, _, err := Move(root, plan.Keep([]string{"x1", "x2"}), "/dst", plan.Options(), testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		mustValid(t, moved)
		if got := tree.FindByPath(moved, "/dst/x.txt"); got == nil || got.ID != "x1" {
			t.Error("the first item should be moved")
		}
		if tree.FindByPath(moved, "/two/x.txt") == nil {
			t.Error("the skipped item should stay where it was")
		}
	})

	t.Run("Rename", func(t *testing.T) {
		plan := Resolve(root, conflictsFor(t, models.ResolveRename))
		if plan.Names["x2"] != "x (copy).txt" {
			t.Fatalf("Names = %v, want x2 -> x (copy).txt", plan.Names)
		}
		moved, _, err := Move(root, []string{"x1", "x2"}, "/dst", plan.Options(), testEnv())
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		mustValid(t, moved)
		if n := len(tree.FindByPath(moved, "/dst").Children); n != 2 {
			t.Errorf("dst has %d children, want 2", n)
		}
	})
}
