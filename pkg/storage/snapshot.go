package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

const snapshotVersion = 1

// Snapshot is the on-disk form of a memory backend
type Snapshot struct {
	// Version for snapshot file format compatibility
	Version int `json:"version"`

	// SavedAt is when the snapshot was written
	SavedAt time.Time `json:"saved_at"`

	Root *models.FileSystemItem `json:"root"`
}

// LoadSnapshot reads a snapshot file. It returns nil and no error when
// the file does not exist.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	// Check version compatibility
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot file version %d is newer than supported version %d", snap.Version, snapshotVersion)
	}

	if err := mutate.ValidateTree(snap.Root); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	// Empty folders are stored without a children list
	tree.Walk(snap.Root, func(node *models.FileSystemItem) bool {
		if node.IsFolder() && node.Children == nil {
			node.Children = []*models.FileSystemItem{}
		}
		return true
	})

	return &snap, nil
}

// SaveSnapshot writes root to path atomically
func SaveSnapshot(path string, root *models.FileSystemItem) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(Snapshot{Version: snapshotVersion, SavedAt: time.Now(), Root: root}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Write atomically using temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return fmt.Errorf("failed to finalize snapshot file: %w", err)
	}

	return nil
}
