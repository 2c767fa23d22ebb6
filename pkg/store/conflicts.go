package store

import (
	"context"
	"fmt"

	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
)

// batch is an operation waiting for its naming conflicts to be resolved
type batch struct {
	op        models.OperationKind
	ids       []string
	dest      string
	upload    *uploadRequest
	conflicts []*models.ConflictItem

	// cut is the clipboard slot to consume once the move is applied
	cut *models.ClipboardItem
}

func (b *batch) next() *models.ConflictItem {
	for _, c := range b.conflicts {
		if !c.IsResolved() {
			return c
		}
	}
	return nil
}

// PendingConflicts returns a copy of the conflicts waiting for a decision
func (s *Store) PendingConflicts() []models.ConflictItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return nil
	}
	out := make([]models.ConflictItem, len(s.pending.conflicts))
	for i, c := range s.pending.conflicts {
		out[i] = *c
	}
	return out
}

// ResolveConflicts settles the next unresolved conflict of the pending
// batch with res. With applyToAll the resolution covers every conflict of
// the batch. Once nothing is left unresolved the held operation runs and
// done is true.
func (s *Store) ResolveConflicts(ctx context.Context, res models.ConflictResolution, applyToAll bool) (done bool, err error) {
	if !res.Valid() {
		return false, &models.ValidationError{Field: "resolution", Message: fmt.Sprintf("unknown resolution %q", res)}
	}

	s.mu.Lock()
	b := s.pending
	if b == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("no pending conflict: %w", models.ErrNotFound)
	}
	if c := b.next(); c != nil {
		c.Resolve(res, applyToAll)
	}
	if !applyToAll && b.next() != nil {
		s.publish(Change{Kind: ChangeConflict, Op: b.op, IDs: conflictIDs(b.conflicts)})
		s.mu.Unlock()
		return false, nil
	}
	s.pending = nil
	plan := mutate.Resolve(s.root, b.conflicts)
	s.publish(Change{Kind: ChangeConflict, Op: b.op})
	s.mu.Unlock()

	for _, c := range b.conflicts {
		r := c.Resolution
		if applyToAll {
			r = res
		}
		metrics.RecordConflict(string(r))
	}

	if b.upload != nil {
		_, err = s.upload(ctx, b.upload, &plan)
	} else {
		_, err = s.transfer(ctx, b.op, b.ids, b.dest, &plan)
	}
	if err == nil && b.cut != nil {
		s.consumeCut(*b.cut)
	}
	return true, err
}

// CancelConflicts drops the pending batch; nothing of it is applied and a
// pasted cut stays on the clipboard
func (s *Store) CancelConflicts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return
	}
	op := s.pending.op
	s.pending = nil
	s.publish(Change{Kind: ChangeConflict, Op: op})
}

func conflictIDs(conflicts []*models.ConflictItem) []string {
	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.Incoming.ID)
	}
	return ids
}
