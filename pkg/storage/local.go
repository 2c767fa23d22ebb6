package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// Local maps the workspace onto a directory of the local filesystem.
// Deleted entries go to a trash directory below the root so that they
// can be restored; the trash is emptied on Close.
type Local struct {
	rootPath string
	trash    trash
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// RootPath returns the mapped directory
func (l *Local) RootPath() string {
	return l.rootPath
}

// full converts a workspace path to a filesystem path. Normalize resolves
// ".." so the result never leaves the root.
func (l *Local) full(p string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(tree.Normalize(p)))
}

// inTrash reports whether the workspace path points into the trash
func inTrash(p string) bool {
	return tree.IsAncestor("/"+trashDir, p)
}

// List returns the directory at path down to depth levels
func (l *Local) List(ctx context.Context, path string, depth int) (*models.FileSystemItem, error) {
	path = tree.Normalize(path)
	info, err := os.Stat(l.full(path))
	if err != nil {
		return nil, wrapPathError("list", path, err)
	}
	return l.build(ctx, path, info, depth)
}

func (l *Local) build(ctx context.Context, p string, info fs.FileInfo, depth int) (*models.FileSystemItem, error) {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	item := &models.FileSystemItem{
		ID:         PathID(p),
		Name:       tree.Base(p),
		Path:       p,
		Type:       models.TypeFile,
		Size:       info.Size(),
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		SyncStatus: models.StatusSynced,
	}
	if !info.IsDir() {
		return item, nil
	}

	item.Type = models.TypeFolder
	item.Size = 0
	item.Children = []*models.FileSystemItem{}
	if depth == 0 {
		return item, nil
	}

	entries, err := os.ReadDir(l.full(p))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	for _, entry := range entries {
		childInfo, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !childInfo.Mode().IsRegular() && !childInfo.IsDir() {
			continue
		}
		if p == tree.Root && entry.Name() == trashDir {
			continue
		}
		child, err := l.build(ctx, tree.Join(p, entry.Name()), childInfo, depth-1)
		if err != nil {
			return nil, err
		}
		item.Children = append(item.Children, child)
	}
	return item, nil
}

// Create makes an empty file or folder
func (l *Local) Create(ctx context.Context, path string, typ models.ItemType) (*models.FileSystemItem, error) {
	path = tree.Normalize(path)
	if err := l.checkParent(path); err != nil {
		return nil, err
	}
	fullPath := l.full(path)

	switch typ {
	case models.TypeFolder:
		if err := os.Mkdir(fullPath, 0755); err != nil {
			return nil, wrapPathError("create", path, err)
		}
	case models.TypeFile:
		file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return nil, wrapPathError("create", path, err)
		}
		file.Close()
	default:
		return nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown item type %q", typ)}
	}
	return l.List(ctx, path, 0)
}

// Write creates or overwrites a file
func (l *Local) Write(ctx context.Context, path string, reader io.Reader, size int64, opts Options) (*models.FileSystemItem, error) {
	path = tree.Normalize(path)
	if err := l.checkParent(path); err != nil {
		return nil, err
	}
	fullPath := l.full(path)
	if err := l.makeRoom(path, opts); err != nil {
		return nil, err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if size >= 0 && written != size {
		return nil, fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}

	return l.List(ctx, path, 0)
}

// Delete moves files or directories to the trash
func (l *Local) Delete(ctx context.Context, paths []string) error {
	for _, p := range paths {
		p = tree.Normalize(p)
		if p == tree.Root {
			return &models.ValidationError{Field: "path", Message: "the root cannot be deleted"}
		}
		if err := l.moveToTrash(p); err != nil {
			return err
		}
	}
	return nil
}

// Move renames src to dst
func (l *Local) Move(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	src, dst = tree.Normalize(src), tree.Normalize(dst)
	if err := l.checkTransfer(src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return l.List(ctx, dst, -1)
	}
	if err := l.makeRoom(dst, opts); err != nil {
		return nil, err
	}
	if err := os.Rename(l.full(src), l.full(dst)); err != nil {
		return nil, fmt.Errorf("failed to move: %w", err)
	}
	return l.List(ctx, dst, -1)
}

// Copy duplicates src to dst, preserving modification times
func (l *Local) Copy(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	src, dst = tree.Normalize(src), tree.Normalize(dst)
	if err := l.checkTransfer(src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return nil, fmt.Errorf("copy %s onto itself: %w", src, models.ErrNameConflict)
	}
	if err := l.makeRoom(dst, opts); err != nil {
		return nil, err
	}

	srcRoot := l.full(src)
	dstRoot := l.full(dst)
	err := filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dstRoot, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(p, target, info)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to copy: %w", err)
	}
	return l.List(ctx, dst, -1)
}

// Close empties the trash
func (l *Local) Close() error {
	return l.emptyTrash()
}

func (l *Local) checkParent(p string) error {
	if p == tree.Root {
		return &models.ValidationError{Field: "path", Message: "the root already exists"}
	}
	if inTrash(p) {
		return &models.ValidationError{Field: "path", Message: trashDir + " is reserved"}
	}
	info, err := os.Stat(l.full(tree.Parent(p)))
	if err != nil {
		return wrapPathError("parent of", p, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", tree.Parent(p), models.ErrNotFolder)
	}
	return nil
}

func (l *Local) checkTransfer(src, dst string) error {
	if src == tree.Root {
		return &models.ValidationError{Field: "path", Message: "the root cannot be moved or copied"}
	}
	info, err := os.Stat(l.full(src))
	if err != nil {
		return wrapPathError("source", src, err)
	}
	if info.IsDir() && src != dst && tree.IsAncestor(src, dst) {
		return fmt.Errorf("%s to %s: %w", src, dst, models.ErrInvalidMove)
	}
	return l.checkParent(dst)
}

// makeRoom fails on an existing destination unless overwriting
func (l *Local) makeRoom(p string, opts Options) error {
	if _, err := os.Lstat(l.full(p)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if !opts.Overwrite {
		return fmt.Errorf("%s: %w", p, models.ErrNameConflict)
	}
	return l.moveToTrash(p)
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Preserve modification time
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}
	return nil
}

func wrapPathError(op, p string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w", op, p, models.ErrNotFound)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s %s: %w", op, p, models.ErrNameConflict)
	}
	return fmt.Errorf("%s %s: %w", op, p, err)
}
