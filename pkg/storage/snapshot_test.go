package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		snap, err := LoadSnapshot(filepath.Join(dir, "missing.json"))
		if err != nil || snap != nil {
			t.Errorf("LoadSnapshot() = %v, %v, want nil, nil", snap, err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "snap.json")
		root := SeedTree(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		if err := SaveSnapshot(path, root); err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Error("temp file should be renamed away")
		}
		snap, err := LoadSnapshot(path)
		if err != nil {
			t.Fatalf("LoadSnapshot() error = %v", err)
		}
		if snap.Version != snapshotVersion {
			t.Errorf("Version = %d, want %d", snap.Version, snapshotVersion)
		}
		if !reflect.DeepEqual(snap.Root, root) {
			t.Error("loaded tree differs from the saved one")
		}
	})

	t.Run("NewerVersion", func(t *testing.T) {
		path := filepath.Join(dir, "future.json")
		os.WriteFile(path, []byte(`{"version": 99, "root": null}`), 0644)
		if _, err := LoadSnapshot(path); err == nil {
			t.Error("LoadSnapshot() should reject newer versions")
		}
	})

	t.Run("Corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		os.WriteFile(path, []byte(`{not json`), 0644)
		if _, err := LoadSnapshot(path); err == nil {
			t.Error("LoadSnapshot() should reject invalid JSON")
		}
	})

	t.Run("InvalidTree", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		os.WriteFile(path, []byte(`{"version": 1, "root": {"id": "r", "path": "/x", "type": "folder"}}`), 0644)
		if _, err := LoadSnapshot(path); err == nil {
			t.Error("LoadSnapshot() should reject a tree whose root is not /")
		}
	})
}
