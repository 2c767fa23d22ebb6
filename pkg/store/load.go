package store

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// watchDebounce groups bursts of external changes into one refresh
const watchDebounce = 200 * time.Millisecond

// Load replaces the tree with the backend content and clears the undo
// history
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	fresh, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.history.Clear()
	s.installFetchedLocked(fresh)
	s.logger.Info(ctx, "Workspace loaded", logging.Fields{"items": s.index.Len()})
	return nil
}

// Refresh reloads the tree from the backend. Items keep their ids when
// the backend still has them at the same path, so selection, clipboard
// and history survive a refresh.
func (s *Store) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.refresh(ctx)
}

// refresh must be called with opMu held
func (s *Store) refresh(ctx context.Context) error {
	fresh, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.root != nil {
		adoptIDs(s.root, fresh, s.env)
	}
	s.installFetchedLocked(fresh)
	return nil
}

func (s *Store) fetch(ctx context.Context) (*models.FileSystemItem, error) {
	start := time.Now()
	var fresh *models.FileSystemItem
	err := s.timed(ctx, "list", func(ctx context.Context) error {
		var err error
		fresh, err = s.backend.List(ctx, tree.Root, -1)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to list workspace", err, nil)
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	if err := mutate.ValidateTree(fresh); err != nil {
		return nil, fmt.Errorf("backend returned an invalid tree: %w", err)
	}
	metrics.RecordRefresh(time.Since(start))
	return fresh, nil
}

// installFetchedLocked swaps in a tree read from the backend and drops
// every reference to items that disappeared
func (s *Store) installFetchedLocked(fresh *models.FileSystemItem) {
	var gone []string
	if s.root != nil {
		ids := make(map[string]bool)
		tree.Walk(fresh, func(n *models.FileSystemItem) bool {
			ids[n.ID] = true
			return true
		})
		tree.Walk(s.root, func(n *models.FileSystemItem) bool {
			if !ids[n.ID] {
				gone = append(gone, n.ID)
			}
			return true
		})
	}

	s.root = fresh
	s.index.Rebuild(fresh)
	s.forgetLocked(gone)
	s.nav.Prune(s.folderExistsLocked)
	metrics.SetTreeSize(s.index.Len())
	s.publish(Change{Kind: ChangeTree, IDs: gone})
}

// adoptIDs gives nodes of fresh the id of the node of current found at
// the same path with the same type. Pending and syncing statuses are
// carried over. Nodes left with an id used by an adopted node get a new
// one so ids stay unique.
func adoptIDs(current, fresh *models.FileSystemItem, env mutate.Env) {
	byPath := make(map[string]*models.FileSystemItem)
	tree.Walk(current, func(n *models.FileSystemItem) bool {
		byPath[n.Path] = n
		return true
	})

	adopted := make(map[*models.FileSystemItem]bool)
	used := make(map[string]bool)
	tree.Walk(fresh, func(n *models.FileSystemItem) bool {
		old, ok := byPath[n.Path]
		if !ok || old.Type != n.Type {
			return true
		}
		n.ID = old.ID
		if old.SyncStatus == models.StatusPending || old.SyncStatus == models.StatusSyncing {
			n.SyncStatus = old.SyncStatus
		}
		adopted[n] = true
		used[n.ID] = true
		return true
	})

	seen := make(map[string]bool)
	tree.Walk(fresh, func(n *models.FileSystemItem) bool {
		if !adopted[n] && (used[n.ID] || seen[n.ID]) {
			n.ID = env.NewID()
		}
		seen[n.ID] = true
		return true
	})
}

func (s *Store) folderExistsLocked(p string) bool {
	item, ok := s.index.LookupPath(p)
	return ok && item.IsFolder()
}

// forgetLocked drops ids from the selection, the clipboard and the sync
// notifier
func (s *Store) forgetLocked(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.selection.Remove(ids...)
	s.clipboard.Drop(ids...)
	s.notifier.Forget(ids...)
}

// Watch refreshes the tree whenever the backend reports an external
// change. It blocks until ctx is done. Backends that cannot watch
// return immediately with a nil error.
func (s *Store) Watch(ctx context.Context) error {
	w, ok := s.backend.(storage.Watcher)
	if !ok {
		return nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch backend: %w", err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			s.logger.Debug(ctx, "External change", logging.Fields{"path": change.Path, "op": string(change.Op)})
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			}
		case <-fire:
			timer, fire = nil, nil
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error(ctx, "Refresh after external change failed", err, nil)
			}
		}
	}
}
