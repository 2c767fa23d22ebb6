package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// Options tune write operations
type Options struct {
	// Overwrite replaces an item already present at the destination
	Overwrite bool `json:"overwrite,omitempty"`
}

// Backend persists the workspace tree. Paths are absolute slash paths
// rooted at "/". Implementations include an in-memory mock, the REST
// companion service, and a local directory.
type Backend interface {
	// List returns the item at path with its descendants down to depth
	// levels; a negative depth returns the whole subtree
	List(ctx context.Context, path string, depth int) (*models.FileSystemItem, error)

	// Create makes an empty file or folder at path
	Create(ctx context.Context, path string, typ models.ItemType) (*models.FileSystemItem, error)

	// Write stores the content of a file at path
	Write(ctx context.Context, path string, r io.Reader, size int64, opts Options) (*models.FileSystemItem, error)

	// Delete removes files or folders (recursively)
	Delete(ctx context.Context, paths []string) error

	// Move relocates or renames src to the full destination path dst
	Move(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error)

	// Copy duplicates src to the full destination path dst
	Copy(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error)

	// Close releases any resources held by the backend
	Close() error
}

// ChangeOp is the kind of an external change
type ChangeOp string

const (
	ChangeCreate ChangeOp = "create"
	ChangeWrite  ChangeOp = "write"
	ChangeRemove ChangeOp = "remove"
	ChangeRename ChangeOp = "rename"
)

// Change is a modification made outside of the store
type Change struct {
	Path string
	Op   ChangeOp
}

// Watcher is implemented by backends that can report external changes
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Kind selects a backend implementation
type Kind string

const (
	KindMemory Kind = "memory"
	KindRemote Kind = "remote"
	KindLocal  Kind = "local"
)

// Config selects and configures a backend
type Config struct {
	Type Kind

	// Root is the directory mapped by the local backend
	Root string

	// Snapshot is the JSON file the memory backend persists to ("" = none)
	Snapshot string

	// Latency is an artificial delay added to every memory backend call
	Latency time.Duration

	Remote RemoteConfig
}

// New builds the backend selected by cfg.Type
func New(cfg Config) (Backend, error) {
	switch cfg.Type {
	case KindMemory, "":
		return NewMemory(MemoryConfig{Snapshot: cfg.Snapshot, Latency: cfg.Latency})
	case KindRemote:
		return NewRemote(cfg.Remote)
	case KindLocal:
		return NewLocal(cfg.Root)
	}
	return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
}

// PathID derives a stable id from a workspace path, for backends that do
// not store ids of their own
func PathID(p string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("syftui:"+tree.Normalize(p))).String()
}

// Trim returns a copy of item limited to depth levels of children. When
// settle is set, in-flight statuses are reported as synced.
func Trim(item *models.FileSystemItem, depth int, settle bool) *models.FileSystemItem {
	c := *item
	if settle && (c.SyncStatus == models.StatusPending || c.SyncStatus == models.StatusSyncing || c.SyncStatus == "") {
		c.SyncStatus = models.StatusSynced
	}
	if c.Permissions != nil {
		c.Permissions = append([]models.Permission(nil), item.Permissions...)
	}
	if item.Children == nil {
		return &c
	}
	c.Children = []*models.FileSystemItem{}
	if depth == 0 {
		return &c
	}
	for _, child := range item.Children {
		c.Children = append(c.Children, Trim(child, depth-1, settle))
	}
	return &c
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
