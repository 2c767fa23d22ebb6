package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// Restorer is implemented by backends that can bring back a subtree
// removed earlier (undo of a delete, redo of a create) with its content
type Restorer interface {
	Restore(ctx context.Context, parentPath string, item *models.FileSystemItem, opts Options) (*models.FileSystemItem, error)
}

// Restore puts item back under parentPath. Backends without Restorer get
// the folder structure and empty files.
func Restore(ctx context.Context, b Backend, parentPath string, item *models.FileSystemItem, opts Options) (*models.FileSystemItem, error) {
	if r, ok := b.(Restorer); ok {
		return r.Restore(ctx, parentPath, item, opts)
	}
	return recreate(ctx, b, parentPath, item, opts)
}

func recreate(ctx context.Context, b Backend, parentPath string, item *models.FileSystemItem, opts Options) (*models.FileSystemItem, error) {
	p := tree.Join(parentPath, item.Name)
	if opts.Overwrite {
		if err := b.Delete(ctx, []string{p}); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	created, err := b.Create(ctx, p, item.Type)
	if err != nil {
		return nil, err
	}
	for _, child := range item.Children {
		if _, err := recreate(ctx, b, p, child, Options{}); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// Restore reinserts the subtree as is. Ids already used by the backend
// tree are replaced.
func (m *Memory) Restore(ctx context.Context, parentPath string, item *models.FileSystemItem, opts Options) (*models.FileSystemItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	root, err := m.clearLocked(m.root, tree.Join(parentPath, item.Name), opts)
	if err != nil {
		return nil, err
	}
	restored := item.Clone()
	tree.Walk(restored, func(n *models.FileSystemItem) bool {
		if tree.FindByID(root, n.ID) != nil {
			n.ID = m.env.NewID()
		}
		n.SyncStatus = models.StatusSynced
		return true
	})
	root, added, err := mutate.AddItem(root, parentPath, restored, models.OpUpload)
	if err != nil {
		return nil, err
	}
	return m.commit(root, added)
}

// trashDir holds deleted entries of the local backend until Close
const trashDir = ".syftui-trash"

// TrashItem is a deleted entry kept for undo
type TrashItem struct {
	ID           string    `json:"id"`
	OriginalPath string    `json:"originalPath"`
	StoragePath  string    `json:"-"`
	IsDir        bool      `json:"isDir"`
	DeletedAt    time.Time `json:"deletedAt"`
}

type trash struct {
	mu    sync.Mutex
	items []TrashItem
}

// moveToTrash takes p out of the workspace
func (l *Local) moveToTrash(p string) error {
	info, err := os.Lstat(l.full(p))
	if err != nil {
		return wrapPathError("delete", p, err)
	}
	dir := filepath.Join(l.rootPath, trashDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create trash: %w", err)
	}

	item := TrashItem{
		ID:           uuid.NewString(),
		OriginalPath: p,
		IsDir:        info.IsDir(),
		DeletedAt:    time.Now(),
	}
	item.StoragePath = filepath.Join(dir, item.ID)
	if err := os.Rename(l.full(p), item.StoragePath); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	l.trash.mu.Lock()
	l.trash.items = append(l.trash.items, item)
	l.trash.mu.Unlock()
	return nil
}

// Trash lists the deleted entries, oldest first
func (l *Local) Trash() []TrashItem {
	l.trash.mu.Lock()
	defer l.trash.mu.Unlock()
	return append([]TrashItem(nil), l.trash.items...)
}

// Restore moves the most recent trash entry deleted from the same path
// back in place, or recreates the structure if there is none
func (l *Local) Restore(ctx context.Context, parentPath string, item *models.FileSystemItem, opts Options) (*models.FileSystemItem, error) {
	p := tree.Join(parentPath, item.Name)
	if err := l.checkParent(p); err != nil {
		return nil, err
	}

	l.trash.mu.Lock()
	idx := -1
	for i := len(l.trash.items) - 1; i >= 0; i-- {
		if l.trash.items[i].OriginalPath == p && l.trash.items[i].IsDir == item.IsFolder() {
			idx = i
			break
		}
	}
	var entry TrashItem
	if idx >= 0 {
		entry = l.trash.items[idx]
		l.trash.items = append(l.trash.items[:idx], l.trash.items[idx+1:]...)
	}
	l.trash.mu.Unlock()

	if idx < 0 {
		return recreate(ctx, l, parentPath, item, opts)
	}
	if err := l.makeRoom(p, opts); err != nil {
		return nil, err
	}
	if err := os.Rename(entry.StoragePath, l.full(p)); err != nil {
		return nil, fmt.Errorf("failed to restore %s: %w", p, err)
	}
	return l.List(ctx, p, -1)
}

// emptyTrash removes every trashed entry
func (l *Local) emptyTrash() error {
	l.trash.mu.Lock()
	l.trash.items = nil
	l.trash.mu.Unlock()
	return os.RemoveAll(filepath.Join(l.rootPath, trashDir))
}
