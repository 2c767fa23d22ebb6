package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// newTestLocal creates a Local backend over a temp dir holding files
func newTestLocal(t *testing.T, files map[string]string) (*Local, string) {
	t.Helper()
	tempDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("failed to create dir: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	local, err := NewLocal(tempDir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	t.Cleanup(func() { local.Close() })
	return local, tempDir
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		if local == nil {
			t.Fatal("NewLocal() returned nil")
		}
		defer local.Close()
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		tempFile, err := os.CreateTemp("", "syftui-file-*")
		if err != nil {
			t.Fatalf("failed to create temp file: %v", err)
		}
		tempFile.Close()
		defer os.Remove(tempFile.Name())

		_, err = NewLocal(tempFile.Name())
		if err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})
}

// TestLocalList tests the List method
func TestLocalList(t *testing.T) {
	local, _ := newTestLocal(t, map[string]string{
		"file1.txt":               "content1",
		"file2.txt":               "content2",
		"subdir/file3.txt":        "content3",
		"subdir/deeper/file4.txt": "content4",
		"empty/":                  "",
	})
	ctx := context.Background()

	t.Run("ListAll", func(t *testing.T) {
		root, err := local.List(ctx, "/", -1)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if err := mutate.ValidateTree(root); err != nil {
			t.Fatalf("listed tree is invalid: %v", err)
		}
		if n := tree.CountNodes(root); n != 8 {
			t.Errorf("CountNodes() = %d, want 8", n)
		}
		f4 := tree.FindByPath(root, "/subdir/deeper/file4.txt")
		if f4 == nil || f4.Size != int64(len("content4")) {
			t.Errorf("file4 = %+v", f4)
		}
		if f4.ID != PathID("/subdir/deeper/file4.txt") {
			t.Error("ids should be derived from paths")
		}
	})

	t.Run("Depth", func(t *testing.T) {
		root, err := local.List(ctx, "/", 1)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		sub := tree.FindByPath(root, "/subdir")
		if sub == nil || len(sub.Children) != 0 {
			t.Errorf("depth 1 should not list the content of /subdir, got %+v", sub)
		}
	})

	t.Run("ListSubdir", func(t *testing.T) {
		sub, err := local.List(ctx, "/subdir", -1)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if sub.Path != "/subdir" || len(sub.Children) != 2 {
			t.Errorf("List(/subdir) = %s with %d children", sub.Path, len(sub.Children))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := local.List(ctx, "/missing", -1)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("List() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := local.List(ctx, "/", -1)
		if err == nil {
			t.Error("List() should return error on cancelled context")
		}
	})
}

// TestLocalCreate tests the Create method
func TestLocalCreate(t *testing.T) {
	local, tempDir := newTestLocal(t, map[string]string{"exists.txt": "x"})
	ctx := context.Background()

	t.Run("Folder", func(t *testing.T) {
		item, err := local.Create(ctx, "/new", models.TypeFolder)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !item.IsFolder() {
			t.Error("created item should be a folder")
		}
		if info, err := os.Stat(filepath.Join(tempDir, "new")); err != nil || !info.IsDir() {
			t.Error("directory should exist on disk")
		}
	})

	t.Run("File", func(t *testing.T) {
		if _, err := local.Create(ctx, "/new/empty.txt", models.TypeFile); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if info, err := os.Stat(filepath.Join(tempDir, "new", "empty.txt")); err != nil || info.Size() != 0 {
			t.Error("empty file should exist on disk")
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		_, err := local.Create(ctx, "/exists.txt", models.TypeFile)
		if !errors.Is(err, models.ErrNameConflict) {
			t.Errorf("Create() error = %v, want ErrNameConflict", err)
		}
	})

	t.Run("MissingParent", func(t *testing.T) {
		_, err := local.Create(ctx, "/nope/file.txt", models.TypeFile)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Create() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("StaysInsideRoot", func(t *testing.T) {
		if _, err := local.Create(ctx, "/../../escape", models.TypeFolder); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(tempDir, "escape")); err != nil {
			t.Error("path should be resolved inside the root")
		}
	})
}

// TestLocalWrite tests the Write method
func TestLocalWrite(t *testing.T) {
	local, tempDir := newTestLocal(t, nil)
	ctx := context.Background()

	t.Run("WriteNewFile", func(t *testing.T) {
		content := []byte("new file content")

		item, err := local.Write(ctx, "/new.txt", bytes.NewReader(content), int64(len(content)), Options{})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if item.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", item.Size, len(content))
		}

		data, err := os.ReadFile(filepath.Join(tempDir, "new.txt"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("File content = %s, want %s", string(data), string(content))
		}
	})

	t.Run("OverwriteFile", func(t *testing.T) {
		content1 := []byte("initial content")
		if _, err := local.Write(ctx, "/overwrite.txt", bytes.NewReader(content1), int64(len(content1)), Options{}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		content2 := []byte("new content")
		_, err := local.Write(ctx, "/overwrite.txt", bytes.NewReader(content2), int64(len(content2)), Options{})
		if !errors.Is(err, models.ErrNameConflict) {
			t.Fatalf("Write() without overwrite error = %v, want ErrNameConflict", err)
		}
		if _, err := local.Write(ctx, "/overwrite.txt", bytes.NewReader(content2), int64(len(content2)), Options{Overwrite: true}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		data, err := os.ReadFile(filepath.Join(tempDir, "overwrite.txt"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !bytes.Equal(data, content2) {
			t.Errorf("File content = %s, want %s", string(data), string(content2))
		}
	})

	t.Run("IncompleteWrite", func(t *testing.T) {
		_, err := local.Write(ctx, "/short.txt", bytes.NewReader([]byte("abc")), 10, Options{})
		if err == nil {
			t.Error("Write() should fail when fewer bytes than announced arrive")
		}
	})
}

// TestLocalDelete tests the Delete method
func TestLocalDelete(t *testing.T) {
	local, tempDir := newTestLocal(t, map[string]string{
		"delete.txt":          "content",
		"delete_dir/file.txt": "content",
	})
	ctx := context.Background()

	if err := local.Delete(ctx, []string{"/delete.txt", "/delete_dir"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	for _, name := range []string{"delete.txt", "delete_dir"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should be deleted", name)
		}
	}

	if err := local.Delete(ctx, []string{"/nonexistent.txt"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if err := local.Delete(ctx, []string{"/"}); err == nil {
		t.Error("Delete() must refuse the root")
	}
}

// TestLocalMoveCopy tests Move and Copy
func TestLocalMoveCopy(t *testing.T) {
	local, tempDir := newTestLocal(t, map[string]string{
		"A/x.txt":     "x",
		"A/sub/y.txt": "yy",
		"B/":          "",
		"taken.txt":   "t",
	})
	ctx := context.Background()

	t.Run("Rename", func(t *testing.T) {
		item, err := local.Move(ctx, "/A", "/C", Options{})
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if tree.FindByID(item, PathID("/C/sub/y.txt")) == nil {
			t.Error("descendants should follow the rename")
		}
	})

	t.Run("IntoDescendant", func(t *testing.T) {
		_, err := local.Move(ctx, "/C", "/C/sub/C", Options{})
		if !errors.Is(err, models.ErrInvalidMove) {
			t.Errorf("Move() error = %v, want ErrInvalidMove", err)
		}
	})

	t.Run("CopyTree", func(t *testing.T) {
		modTime := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
		if err := os.Chtimes(filepath.Join(tempDir, "C", "x.txt"), modTime, modTime); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
		if _, err := local.Copy(ctx, "/C", "/B/C", Options{}); err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(tempDir, "B", "C", "sub", "y.txt"))
		if err != nil || string(data) != "yy" {
			t.Errorf("copied content = %q, %v", data, err)
		}
		info, err := os.Stat(filepath.Join(tempDir, "B", "C", "x.txt"))
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if !info.ModTime().Truncate(time.Second).Equal(modTime) {
			t.Errorf("ModTime = %v, want %v", info.ModTime(), modTime)
		}
		if _, err := os.Stat(filepath.Join(tempDir, "C", "x.txt")); err != nil {
			t.Error("the source must survive a copy")
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		_, err := local.Move(ctx, "/C/x.txt", "/taken.txt", Options{})
		if !errors.Is(err, models.ErrNameConflict) {
			t.Fatalf("Move() error = %v, want ErrNameConflict", err)
		}
		if _, err := local.Move(ctx, "/C/x.txt", "/taken.txt", Options{Overwrite: true}); err != nil {
			t.Fatalf("Move() with overwrite error = %v", err)
		}
		data, _ := os.ReadFile(filepath.Join(tempDir, "taken.txt"))
		if string(data) != "x" {
			t.Errorf("taken.txt = %q, want x", data)
		}
	})
}

func TestLocalWatch(t *testing.T) {
	local, tempDir := newTestLocal(t, map[string]string{"dir/": ""})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := local.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(tempDir, "dir", "outside.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case change := <-changes:
			if change.Path == "/dir/outside.txt" {
				cancel()
				for range changes {
				}
				return
			}
		case <-timeout:
			t.Fatal("no change reported for /dir/outside.txt")
		}
	}
}

// TestLocalRestore tests the trash round trip
func TestLocalRestore(t *testing.T) {
	local, tempDir := newTestLocal(t, map[string]string{
		"docs/a.txt":     "alpha",
		"docs/sub/b.txt": "beta",
		"keep.txt":       "keep",
	})
	ctx := context.Background()

	before, err := local.List(ctx, "/docs", -1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if err := local.Delete(ctx, []string{"/docs"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(local.Trash()) != 1 {
		t.Fatalf("Trash() = %d entries, want 1", len(local.Trash()))
	}

	root, err := local.List(ctx, "/", 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if root.Child(trashDir) != nil {
		t.Error("the trash must not be listed")
	}

	t.Run("FromTrash", func(t *testing.T) {
		item, err := Restore(ctx, local, "/", before, Options{})
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if tree.FindByPath(item, "/docs/sub/b.txt") == nil {
			t.Error("restored folder lost its content")
		}
		data, err := os.ReadFile(filepath.Join(tempDir, "docs", "sub", "b.txt"))
		if err != nil || string(data) != "beta" {
			t.Errorf("content = %q, %v; want beta", data, err)
		}
		if len(local.Trash()) != 0 {
			t.Error("restored entry should leave the trash")
		}
	})

	t.Run("Recreate", func(t *testing.T) {
		ghost := &models.FileSystemItem{
			Name: "ghost",
			Type: models.TypeFolder,
			Children: []*models.FileSystemItem{
				{Name: "empty.txt", Type: models.TypeFile},
			},
		}
		if _, err := Restore(ctx, local, "/", ghost, Options{}); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		info, err := os.Stat(filepath.Join(tempDir, "ghost", "empty.txt"))
		if err != nil {
			t.Fatalf("recreated file missing: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("recreated file size = %d, want 0", info.Size())
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		keep := &models.FileSystemItem{Name: "keep.txt", Type: models.TypeFile}
		if _, err := Restore(ctx, local, "/", keep, Options{}); !errors.Is(err, models.ErrNameConflict) {
			t.Errorf("Restore() error = %v, want ErrNameConflict", err)
		}
	})

	t.Run("ReservedName", func(t *testing.T) {
		if _, err := local.Create(ctx, "/"+trashDir, models.TypeFolder); err == nil {
			t.Error("Create() must refuse the trash directory")
		}
	})

	t.Run("CloseEmptiesTrash", func(t *testing.T) {
		if err := local.Delete(ctx, []string{"/keep.txt"}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := local.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(tempDir, trashDir)); !os.IsNotExist(err) {
			t.Error("Close() should remove the trash directory")
		}
	})
}
