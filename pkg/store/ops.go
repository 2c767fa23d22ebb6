package store

import (
	"context"
	"fmt"

	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// CreateFolder makes an empty folder named name in parentPath, or in the
// current folder when parentPath is empty. A name already in use yields a
// ConflictError and nothing changes.
func (s *Store) CreateFolder(ctx context.Context, parentPath, name string) (*models.FileSystemItem, error) {
	return s.create(ctx, parentPath, name, models.TypeFolder)
}

// CreateFile makes an empty file, see CreateFolder
func (s *Store) CreateFile(ctx context.Context, parentPath, name string) (*models.FileSystemItem, error) {
	return s.create(ctx, parentPath, name, models.TypeFile)
}

func (s *Store) create(ctx context.Context, parentPath, name string, typ models.ItemType) (*models.FileSystemItem, error) {
	op := models.OpCreateFile
	if typ == models.TypeFolder {
		op = models.OpCreateFolder
	}
	if parentPath == "" {
		parentPath = s.nav.Current()
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	var created *models.FileSystemItem
	cmd, err := s.edit(func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error) {
		newRoot, item, err := mutate.CreateItem(root, parentPath, name, typ, s.env)
		if err != nil {
			return nil, nil, err
		}
		created = item
		return newRoot, history.NewCreate(newRoot, item), nil
	})
	if err != nil {
		s.finish(ctx, op, err, logging.Fields{"parent": parentPath, "name": name})
		return nil, err
	}

	err = s.timed(ctx, "create", func(ctx context.Context) error {
		_, err := s.backend.Create(ctx, created.Path, typ)
		return err
	})
	s.finish(ctx, op, err, logging.Fields{"path": created.Path})
	if err != nil {
		s.rollback(ctx, cmd, cmd.Changes(), err)
		return nil, err
	}
	return created, nil
}

// Delete removes the items ids with their descendants
func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cmd, err := s.edit(func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error) {
		for _, id := range ids {
			if id == root.ID {
				return nil, nil, &models.ValidationError{Field: "id", Message: "the root cannot be deleted"}
			}
		}
		newRoot, removed := mutate.Remove(root, ids)
		if len(removed) == 0 {
			return nil, nil, fmt.Errorf("delete: %w", models.ErrNotFound)
		}
		return newRoot, history.NewDelete(removed), nil
	})
	if err != nil {
		s.finish(ctx, models.OpDelete, err, logging.Fields{"ids": len(ids)})
		return err
	}

	err = s.mirror(ctx, cmd.Changes())
	s.finish(ctx, models.OpDelete, err, logging.Fields{"items": len(cmd.Changes().Before)})
	if err != nil {
		s.rollback(ctx, cmd, cmd.Changes(), err)
	}
	return err
}

// DeleteSelection deletes the selected items
func (s *Store) DeleteSelection(ctx context.Context) error {
	ids := s.selection.IDs()
	if len(ids) == 0 {
		return nil
	}
	return s.Delete(ctx, ids)
}

// Rename gives the item id a new name. Descendant paths follow.
func (s *Store) Rename(ctx context.Context, id, newName string) (*models.FileSystemItem, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var renamed *models.FileSystemItem
	cmd, err := s.edit(func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error) {
		before := mutate.PlacementsOf(root, []string{id})
		newRoot, item, err := mutate.Rename(root, id, newName, s.env)
		if err != nil {
			return nil, nil, err
		}
		renamed = item
		if newRoot == root {
			return nil, nil, nil
		}
		return newRoot, history.NewRename(before, mutate.PlacementsOf(newRoot, []string{id})), nil
	})
	if err != nil {
		s.finish(ctx, models.OpRename, err, logging.Fields{"id": id, "name": newName})
		return nil, err
	}
	if cmd == nil {
		return renamed, nil
	}

	err = s.mirror(ctx, cmd.Changes())
	s.finish(ctx, models.OpRename, err, logging.Fields{"path": renamed.Path})
	if err != nil {
		s.rollback(ctx, cmd, cmd.Changes(), err)
		return nil, err
	}
	return renamed, nil
}

// Move relocates ids into the folder destPath. When names collide the
// operation is held as a pending conflict batch and a ConflictError is
// returned; see ResolveConflicts.
func (s *Store) Move(ctx context.Context, ids []string, destPath string) ([]*models.FileSystemItem, error) {
	return s.transfer(ctx, models.OpMove, ids, destPath, nil)
}

// Copy clones ids into the folder destPath, see Move
func (s *Store) Copy(ctx context.Context, ids []string, destPath string) ([]*models.FileSystemItem, error) {
	return s.transfer(ctx, models.OpCopy, ids, destPath, nil)
}

// transfer moves or copies ids. Without a plan, naming conflicts are
// parked as the pending batch.
func (s *Store) transfer(ctx context.Context, op models.OperationKind, ids []string, destPath string, plan *mutate.Plan) ([]*models.FileSystemItem, error) {
	destPath = tree.Normalize(destPath)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	var result []*models.FileSystemItem
	var sources []mutate.Placement
	replacedPaths := make(map[string]bool)
	cmd, err := s.edit(func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error) {
		work, opts := root, mutate.Options{}
		var replaced []mutate.Placement
		if plan != nil {
			ids = plan.Keep(ids)
			opts = plan.Options()
			work, replaced = mutate.Remove(root, plan.Replace)
			for _, p := range replaced {
				replacedPaths[p.Item.Path] = true
			}
		}
		sources = mutate.PlacementsOf(work, ids)

		switch op {
		case models.OpMove:
			newRoot, res, err := mutate.Move(work, ids, destPath, opts, s.env)
			if err != nil {
				return nil, nil, s.park(err, op, ids, destPath)
			}
			if len(res.Moved) == 0 && len(replaced) == 0 {
				return nil, nil, nil
			}
			result = res.Moved
			moved := mutate.PlacementsOf(newRoot, itemIDs(res.Moved))
			return newRoot, history.NewMove(res.Sources, replaced, moved, destPath), nil
		default:
			newRoot, clones, err := mutate.Copy(work, ids, destPath, opts, s.env)
			if err != nil {
				return nil, nil, s.park(err, op, ids, destPath)
			}
			if len(clones) == 0 && len(replaced) == 0 {
				return nil, nil, nil
			}
			result = clones
			placed := mutate.PlacementsOf(newRoot, itemIDs(clones))
			return newRoot, history.NewCopy(replaced, placed, destPath), nil
		}
	})
	if err != nil || cmd == nil {
		s.finish(ctx, op, err, logging.Fields{"dest": destPath, "items": len(ids)})
		return nil, err
	}

	if op == models.OpMove {
		err = s.mirror(ctx, cmd.Changes())
	} else {
		err = s.copyOnBackend(ctx, sources, result, replacedPaths)
	}
	s.finish(ctx, op, err, logging.Fields{"dest": destPath, "items": len(result)})
	if err != nil {
		s.rollback(ctx, cmd, cmd.Changes(), err)
		return nil, err
	}
	return result, nil
}

// copyOnBackend copies each source to the path of its clone. Sources and
// clones are in the same order.
func (s *Store) copyOnBackend(ctx context.Context, sources []mutate.Placement, clones []*models.FileSystemItem, replaced map[string]bool) error {
	for i, clone := range clones {
		if i >= len(sources) {
			break
		}
		src := sources[i].Item.Path
		opts := storage.Options{Overwrite: replaced[clone.Path]}
		err := s.timed(ctx, "copy", func(ctx context.Context) error {
			_, err := s.backend.Copy(ctx, src, clone.Path, opts)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// park turns a naming conflict into the pending batch. Other errors pass
// through unchanged.
func (s *Store) park(err error, op models.OperationKind, ids []string, destPath string) error {
	ce, ok := models.AsConflict(err)
	if !ok {
		return err
	}
	s.pending = &batch{
		op:        op,
		ids:       append([]string(nil), ids...),
		dest:      destPath,
		conflicts: ce.Conflicts,
	}
	s.publish(Change{Kind: ChangeConflict, Op: op, IDs: conflictIDs(ce.Conflicts)})
	return err
}

func itemIDs(items []*models.FileSystemItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
