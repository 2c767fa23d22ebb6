package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// MemoryConfig configures the in-memory backend
type MemoryConfig struct {
	// Snapshot is a JSON file loaded at start and rewritten after every
	// change; "" keeps the tree in memory only
	Snapshot string

	// Latency is added to every call to mimic a remote service
	Latency time.Duration

	// Root replaces the seed tree when set
	Root *models.FileSystemItem
}

// Memory is a mock backend holding the workspace tree in memory
type Memory struct {
	mu       sync.Mutex
	root     *models.FileSystemItem
	snapshot string
	latency  time.Duration
	env      mutate.Env
}

// NewMemory creates a memory backend, restoring the snapshot if present
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	m := &Memory{
		snapshot: cfg.Snapshot,
		latency:  cfg.Latency,
		env:      mutate.DefaultEnv(),
	}

	switch {
	case cfg.Root != nil:
		if err := mutate.ValidateTree(cfg.Root); err != nil {
			return nil, fmt.Errorf("invalid initial tree: %w", err)
		}
		m.root = cfg.Root.Clone()
	case cfg.Snapshot != "":
		snap, err := LoadSnapshot(cfg.Snapshot)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			m.root = snap.Root
		}
	}
	if m.root == nil {
		m.root = SeedTree(time.Now())
	}
	return m, nil
}

// List returns the subtree at path
func (m *Memory) List(ctx context.Context, path string, depth int) (*models.FileSystemItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	item := tree.FindByPath(m.root, path)
	if item == nil {
		return nil, fmt.Errorf("list %s: %w", path, models.ErrNotFound)
	}
	return Trim(item, depth, true), nil
}

// Create makes an empty file or folder
func (m *Memory) Create(ctx context.Context, path string, typ models.ItemType) (*models.FileSystemItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	path = tree.Normalize(path)
	root, created, err := mutate.CreateItem(m.root, tree.Parent(path), tree.Base(path), typ, m.env)
	if err != nil {
		return nil, err
	}
	return m.commit(root, created)
}

// Write stores a file; only the size of the content is kept
func (m *Memory) Write(ctx context.Context, path string, r io.Reader, size int64, opts Options) (*models.FileSystemItem, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if size >= 0 && n != size {
		return nil, fmt.Errorf("incomplete write: expected %d bytes, got %d", size, n)
	}
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	path = tree.Normalize(path)
	root, err := m.clearLocked(m.root, path, opts)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	item := &models.FileSystemItem{
		ID:         m.env.NewID(),
		Name:       tree.Base(path),
		Type:       models.TypeFile,
		Size:       n,
		CreatedAt:  now,
		ModifiedAt: now,
		SyncStatus: models.StatusSynced,
	}
	root, added, err := mutate.AddItem(root, tree.Parent(path), item, models.OpUpload)
	if err != nil {
		return nil, err
	}
	return m.commit(root, added)
}

// Delete removes items; unknown paths fail with ErrNotFound
func (m *Memory) Delete(ctx context.Context, paths []string) error {
	if err := sleep(ctx, m.latency); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		item := tree.FindByPath(m.root, p)
		if item == nil {
			return fmt.Errorf("delete %s: %w", p, models.ErrNotFound)
		}
		if item == m.root {
			return &models.ValidationError{Field: "path", Message: "the root cannot be deleted"}
		}
		ids = append(ids, item.ID)
	}
	root, _ := mutate.Remove(m.root, ids)
	_, err := m.commit(root, nil)
	return err
}

// Move relocates or renames src
func (m *Memory) Move(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	item, root, err := m.prepareLocked(src, dst, opts)
	if err != nil {
		return nil, err
	}
	if tree.Normalize(src) == tree.Normalize(dst) {
		return Trim(item, -1, true), nil
	}
	dst = tree.Normalize(dst)
	names := mutate.Options{Names: map[string]string{item.ID: tree.Base(dst)}}
	root, res, err := mutate.Move(root, []string{item.ID}, tree.Parent(dst), names, m.env)
	if err != nil {
		return nil, err
	}
	moved := item
	if len(res.Moved) > 0 {
		moved = res.Moved[0]
	}
	return m.commit(root, moved)
}

// Copy duplicates src with fresh ids
func (m *Memory) Copy(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if tree.Normalize(src) == tree.Normalize(dst) {
		return nil, fmt.Errorf("copy %s onto itself: %w", src, models.ErrNameConflict)
	}
	item, root, err := m.prepareLocked(src, dst, opts)
	if err != nil {
		return nil, err
	}
	dst = tree.Normalize(dst)
	names := mutate.Options{Names: map[string]string{item.ID: tree.Base(dst)}}
	root, clones, err := mutate.Copy(root, []string{item.ID}, tree.Parent(dst), names, m.env)
	if err != nil {
		return nil, err
	}
	return m.commit(root, clones[0])
}

// Root returns a copy of the whole tree
func (m *Memory) Root() *models.FileSystemItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root.Clone()
}

// Close persists the snapshot
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == "" {
		return nil
	}
	return SaveSnapshot(m.snapshot, m.root)
}

// prepareLocked resolves src and makes room at dst
func (m *Memory) prepareLocked(src, dst string, opts Options) (*models.FileSystemItem, *models.FileSystemItem, error) {
	item := tree.FindByPath(m.root, src)
	if item == nil {
		return nil, nil, fmt.Errorf("%s: %w", src, models.ErrNotFound)
	}
	if item == m.root {
		return nil, nil, &models.ValidationError{Field: "path", Message: "the root cannot be moved or copied"}
	}
	if tree.Normalize(src) == tree.Normalize(dst) {
		return item, m.root, nil
	}
	root, err := m.clearLocked(m.root, dst, opts)
	if err != nil {
		return nil, nil, err
	}
	return item, root, nil
}

// clearLocked removes the item at p when overwriting is allowed
func (m *Memory) clearLocked(root *models.FileSystemItem, p string, opts Options) (*models.FileSystemItem, error) {
	existing := tree.FindByPath(root, p)
	if existing == nil {
		return root, nil
	}
	if !opts.Overwrite || existing == root {
		return nil, fmt.Errorf("%s: %w", p, models.ErrNameConflict)
	}
	root, _ = mutate.Remove(root, []string{existing.ID})
	return root, nil
}

// commit swaps in the new tree and persists it
func (m *Memory) commit(root, result *models.FileSystemItem) (*models.FileSystemItem, error) {
	if m.snapshot != "" {
		if err := SaveSnapshot(m.snapshot, root); err != nil {
			return nil, err
		}
	}
	m.root = root
	if result == nil {
		return nil, nil
	}
	return Trim(result, -1, true), nil
}
