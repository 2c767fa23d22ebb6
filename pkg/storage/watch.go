package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes made to the directory by other programs. The
// channel is closed when ctx is done.
func (l *Local) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := l.addTree(watcher, l.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan Change, 64)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := l.translate(watcher, event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return changes, nil
}

// addTree watches dir and every directory below it
func (l *Local) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == trashDir && filepath.Dir(p) == l.rootPath {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (l *Local) translate(watcher *fsnotify.Watcher, event fsnotify.Event) (Change, bool) {
	rel, err := filepath.Rel(l.rootPath, event.Name)
	if err != nil {
		return Change{}, false
	}
	change := Change{Path: "/" + filepath.ToSlash(rel)}
	if rel == "." {
		change.Path = "/"
	}
	if inTrash(change.Path) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Create):
		change.Op = ChangeCreate
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			l.addTree(watcher, event.Name)
		}
	case event.Has(fsnotify.Write):
		change.Op = ChangeWrite
	case event.Has(fsnotify.Remove):
		change.Op = ChangeRemove
	case event.Has(fsnotify.Rename):
		change.Op = ChangeRename
	default:
		return Change{}, false
	}
	return change, true
}
