package store

import (
	"context"
	"fmt"

	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// editFunc computes a new tree from root and the command recording it.
// A nil command means there is nothing to do.
type editFunc func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error)

// edit applies fn to the current tree, installs the result and records
// the command. Callers hold opMu.
func (s *Store) edit(fn editFunc) (history.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.root == nil {
		return nil, ErrNotLoaded
	}
	root, cmd, err := fn(s.root)
	if err != nil || cmd == nil {
		return nil, err
	}
	s.history.Push(cmd)
	s.installLocked(root, cmd.Changes(), cmd.Kind())
	return cmd, nil
}

// installLocked swaps in root, produced from the previous tree by the
// applied transition
func (s *Store) installLocked(root *models.FileSystemItem, applied history.Transition, op models.OperationKind) {
	s.root = root
	s.index.Rebuild(root)
	s.forgetLocked(applied.Gone())

	prev := make(map[string]string, len(applied.Before))
	for _, p := range applied.Before {
		prev[p.Item.ID] = p.Item.Path
	}
	for _, p := range applied.After {
		now := tree.Join(p.ParentPath, p.Item.Name)
		if old, ok := prev[p.Item.ID]; ok && old != now && p.Item.IsFolder() {
			s.nav.Rebase(old, now)
			s.rebaseFavorites(old, now)
		}
	}
	s.nav.Prune(s.folderExistsLocked)

	var track []string
	for _, p := range applied.After {
		tree.Walk(p.Item, func(n *models.FileSystemItem) bool {
			if n.SyncStatus == models.StatusPending {
				track = append(track, n.ID)
			}
			return true
		})
	}
	if len(track) > 0 {
		s.notifier.Track(track...)
	}
	if counter, ok := s.notifier.(interface{ Active() int }); ok {
		metrics.SetSyncTracked(counter.Active())
	}
	metrics.SetTreeSize(s.index.Len())
	s.publish(Change{Kind: ChangeTree, Op: op, IDs: mutate.IDs(applied.After)})
}

// invert returns the transition undoing t
func invert(t history.Transition) history.Transition {
	return history.Transition{Before: t.After, After: t.Before}
}

// rollback handles a backend failure after cmd was applied locally in
// the applied direction: the command leaves the history, the local edit
// is reverted, the user is notified and the tree is reloaded.
func (s *Store) rollback(ctx context.Context, cmd history.Command, applied history.Transition, cause error) {
	s.history.Discard(cmd)
	s.logger.Error(ctx, "Backend rejected change", cause, logging.Fields{
		"operation": string(cmd.Kind()),
		"change":    cmd.Describe(),
	})

	revert := invert(applied)
	s.mu.Lock()
	if s.root != nil && !s.closed {
		if root, err := revert.Apply(s.root); err == nil {
			s.installLocked(root, revert, cmd.Kind())
		}
	}
	s.mu.Unlock()

	s.notify(LevelError, fmt.Sprintf("Could not %s: %v", cmd.Describe(), cause))
	if err := s.refresh(ctx); err != nil {
		s.logger.Error(ctx, "Refresh after backend failure failed", err, nil)
	}
}

// mirror replays an applied transition on the backend. Items that left
// the tree are deleted, items whose path changed are moved and new items
// are restored.
func (s *Store) mirror(ctx context.Context, applied history.Transition) error {
	staying := make(map[string]bool, len(applied.After))
	for _, p := range applied.After {
		staying[p.Item.ID] = true
	}
	prev := make(map[string]string, len(applied.Before))
	var doomed []string
	for _, p := range applied.Before {
		prev[p.Item.ID] = p.Item.Path
		if !staying[p.Item.ID] {
			doomed = append(doomed, p.Item.Path)
		}
	}
	if len(doomed) > 0 {
		err := s.timed(ctx, "delete", func(ctx context.Context) error {
			return s.backend.Delete(ctx, doomed)
		})
		if err != nil {
			return err
		}
	}

	for _, p := range applied.After {
		target := tree.Join(p.ParentPath, p.Item.Name)
		old, ok := prev[p.Item.ID]
		if ok && old == target {
			continue
		}
		var err error
		if ok {
			err = s.timed(ctx, "move", func(ctx context.Context) error {
				_, err := s.backend.Move(ctx, old, target, storage.Options{})
				return err
			})
		} else {
			item := p.Item
			err = s.timed(ctx, "restore", func(ctx context.Context) error {
				_, err := storage.Restore(ctx, s.backend, p.ParentPath, item, storage.Options{})
				return err
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// finish records metrics and logs the outcome of an operation
func (s *Store) finish(ctx context.Context, op models.OperationKind, err error, fields logging.Fields) {
	metrics.RecordOperation(string(op), err)
	if fields == nil {
		fields = logging.Fields{}
	}
	fields["operation"] = string(op)
	if err != nil {
		if _, conflict := models.AsConflict(err); conflict {
			s.logger.Info(ctx, "Operation needs conflict resolution", fields)
			return
		}
		fields["error"] = err.Error()
		s.logger.Warn(ctx, "Operation failed", fields)
		return
	}
	s.logger.Info(ctx, "Operation applied", fields)
}
