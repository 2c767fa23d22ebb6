package store

import (
	"context"

	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
)

// Undo reverts the most recent operation, locally and on the backend. It
// returns the undone command, or nil when there was nothing to undo.
func (s *Store) Undo(ctx context.Context) (history.Command, error) {
	return s.step(ctx, "undo")
}

// Redo re-applies the most recently undone operation
func (s *Store) Redo(ctx context.Context) (history.Command, error) {
	return s.step(ctx, "redo")
}

func (s *Store) step(ctx context.Context, action string) (history.Command, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.root == nil {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	var (
		root    = s.root
		cmd     history.Command
		err     error
		applied history.Transition
	)
	if action == "undo" {
		root, cmd, err = s.history.Undo(s.root)
		if cmd != nil {
			applied = invert(cmd.Changes())
		}
	} else {
		root, cmd, err = s.history.Redo(s.root)
		if cmd != nil {
			applied = cmd.Changes()
		}
	}
	if err != nil || cmd == nil {
		s.mu.Unlock()
		if err != nil {
			s.logger.Error(ctx, "History step failed", err, logging.Fields{"action": action})
			s.notify(LevelError, "Could not "+action+": "+err.Error())
		}
		return nil, err
	}
	s.installLocked(root, applied, cmd.Kind())
	s.mu.Unlock()

	metrics.RecordHistory(action)
	if err := s.mirror(ctx, applied); err != nil {
		s.rollback(ctx, cmd, applied, err)
		return nil, err
	}
	s.logger.Info(ctx, "History step applied", logging.Fields{
		"action":    action,
		"operation": string(cmd.Kind()),
		"change":    cmd.Describe(),
	})
	return cmd, nil
}

// HandleKey runs the history action bound to key. Shortcuts are ignored
// while focus is in a text input.
func (s *Store) HandleKey(ctx context.Context, key history.Key, inTextInput bool) (history.Action, error) {
	action := s.bindings.Resolve(key, inTextInput)
	var err error
	switch action {
	case history.ActionUndo:
		_, err = s.Undo(ctx)
	case history.ActionRedo:
		_, err = s.Redo(ctx)
	}
	return action, err
}
