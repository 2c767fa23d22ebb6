package mutate

import (
	"fmt"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// Options tune Move and Copy
type Options struct {
	// Names overrides the target name of individual items, keyed by id
	Names map[string]string
}

func (o Options) nameFor(item *models.FileSystemItem) string {
	if name, ok := o.Names[item.ID]; ok && name != "" {
		return name
	}
	return item.Name
}

// MoveResult describes a completed move
type MoveResult struct {
	// Sources are the items as they were before the move
	Sources []Placement
	// Moved are the items at their new location
	Moved []*models.FileSystemItem
}

// CreateItem adds an empty file or folder named name under parentPath.
// An existing sibling with the same name yields a ConflictError and the
// tree is left untouched.
func CreateItem(root *models.FileSystemItem, parentPath, name string, typ models.ItemType, env Env) (*models.FileSystemItem, *models.FileSystemItem, error) {
	if err := ValidateName(name); err != nil {
		return nil, nil, err
	}
	if !typ.Valid() {
		return nil, nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown item type %q", typ)}
	}

	now := env.now()
	created := &models.FileSystemItem{
		ID:         env.newID(),
		Name:       name,
		Type:       typ,
		CreatedAt:  now,
		ModifiedAt: now,
		SyncStatus: models.StatusPending,
	}
	if typ == models.TypeFolder {
		created.Children = []*models.FileSystemItem{}
	}

	newRoot, err := updateFolder(root, parentPath, func(folder *models.FileSystemItem) error {
		if existing := folder.Child(name); existing != nil {
			op := models.OpCreateFile
			if typ == models.TypeFolder {
				op = models.OpCreateFolder
			}
			return conflictErr(created, existing, folder.Path, op)
		}
		created.Path = tree.Join(folder.Path, name)
		folder.Children = append(folder.Children, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, created, nil
}

// AddItem inserts a prepared node (for instance an uploaded file) at the
// end of parentPath. The node keeps its id; its paths are recomputed.
func AddItem(root *models.FileSystemItem, parentPath string, item *models.FileSystemItem, op models.OperationKind) (*models.FileSystemItem, *models.FileSystemItem, error) {
	if err := ValidateName(item.Name); err != nil {
		return nil, nil, err
	}
	added := item.Clone()
	newRoot, err := updateFolder(root, parentPath, func(folder *models.FileSystemItem) error {
		if existing := folder.Child(added.Name); existing != nil {
			return conflictErr(added, existing, folder.Path, op)
		}
		setPaths(added, tree.Join(folder.Path, added.Name))
		folder.Children = append(folder.Children, added)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, added, nil
}

// Rename changes the name of the item id. The paths of all descendants
// are recomputed, ModifiedAt is bumped and the item goes back to pending.
func Rename(root *models.FileSystemItem, id, newName string, env Env) (*models.FileSystemItem, *models.FileSystemItem, error) {
	if err := ValidateName(newName); err != nil {
		return nil, nil, err
	}
	node := tree.FindByID(root, id)
	if node == nil {
		return nil, nil, fmt.Errorf("rename %s: %w", id, models.ErrNotFound)
	}
	if node == root {
		return nil, nil, &models.ValidationError{Field: "id", Message: "the root cannot be renamed"}
	}
	if node.Name == newName {
		return root, node, nil
	}

	parentPath := tree.Parent(node.Path)
	var renamed *models.FileSystemItem
	newRoot, err := updateFolder(root, parentPath, func(folder *models.FileSystemItem) error {
		if existing := folder.Child(newName); existing != nil {
			incoming := node.Clone()
			incoming.Name = newName
			return conflictErr(incoming, existing, folder.Path, models.OpRename)
		}
		i := indexOf(folder, id)
		renamed = node.Clone()
		renamed.Name = newName
		renamed.ModifiedAt = env.now()
		renamed.SyncStatus = models.StatusPending
		setPaths(renamed, tree.Join(folder.Path, newName))
		folder.Children[i] = renamed
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, renamed, nil
}

// Move relocates the items ids into the folder destPath, appending them to
// its children. Items already in destPath are left alone. Moving a folder
// into itself or a descendant fails with ErrInvalidMove.
func Move(root *models.FileSystemItem, ids []string, destPath string, opts Options, env Env) (*models.FileSystemItem, MoveResult, error) {
	destPath = tree.Normalize(destPath)
	dest := tree.FindByPath(root, destPath)
	if dest == nil {
		return nil, MoveResult{}, fmt.Errorf("move to %s: %w", destPath, models.ErrNotFound)
	}
	if !dest.IsFolder() {
		return nil, MoveResult{}, fmt.Errorf("move to %s: %w", destPath, models.ErrNotFolder)
	}

	var sources []Placement
	for _, p := range PlacementsOf(root, ids) {
		if p.ParentPath == destPath && opts.nameFor(p.Item) == p.Item.Name {
			continue
		}
		if p.Item.IsFolder() && tree.IsAncestor(p.Item.Path, destPath) {
			return nil, MoveResult{}, fmt.Errorf("move %s to %s: %w", p.Item.Path, destPath, models.ErrInvalidMove)
		}
		sources = append(sources, p)
	}
	if len(sources) == 0 {
		return root, MoveResult{}, nil
	}

	if err := checkNames(dest, sources, opts, models.OpMove); err != nil {
		return nil, MoveResult{}, err
	}

	newRoot, _ := Remove(root, IDs(sources))
	now := env.now()
	moved := make([]*models.FileSystemItem, 0, len(sources))
	newRoot, err := updateFolder(newRoot, destPath, func(folder *models.FileSystemItem) error {
		for _, src := range sources {
			item := src.Item.Clone()
			item.Name = opts.nameFor(src.Item)
			item.ModifiedAt = now
			item.SyncStatus = models.StatusPending
			setPaths(item, tree.Join(folder.Path, item.Name))
			folder.Children = append(folder.Children, item)
			moved = append(moved, item)
		}
		return nil
	})
	if err != nil {
		return nil, MoveResult{}, err
	}
	return newRoot, MoveResult{Sources: sources, Moved: moved}, nil
}

// Copy deep-clones the items ids into destPath. Every cloned node gets a
// fresh id; the originals are untouched.
func Copy(root *models.FileSystemItem, ids []string, destPath string, opts Options, env Env) (*models.FileSystemItem, []*models.FileSystemItem, error) {
	destPath = tree.Normalize(destPath)
	dest := tree.FindByPath(root, destPath)
	if dest == nil {
		return nil, nil, fmt.Errorf("copy to %s: %w", destPath, models.ErrNotFound)
	}
	if !dest.IsFolder() {
		return nil, nil, fmt.Errorf("copy to %s: %w", destPath, models.ErrNotFolder)
	}

	sources := PlacementsOf(root, ids)
	if len(sources) == 0 {
		return root, nil, nil
	}
	if err := checkNames(dest, sources, opts, models.OpCopy); err != nil {
		return nil, nil, err
	}

	now := env.now()
	clones := make([]*models.FileSystemItem, 0, len(sources))
	newRoot, err := updateFolder(root, destPath, func(folder *models.FileSystemItem) error {
		for _, src := range sources {
			clone := cloneWithNewIDs(src.Item, env, now)
			clone.Name = opts.nameFor(src.Item)
			setPaths(clone, tree.Join(folder.Path, clone.Name))
			folder.Children = append(folder.Children, clone)
			clones = append(clones, clone)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, clones, nil
}

func cloneWithNewIDs(item *models.FileSystemItem, env Env, now time.Time) *models.FileSystemItem {
	c := item.Clone()
	var assign func(n *models.FileSystemItem)
	assign = func(n *models.FileSystemItem) {
		n.ID = env.copyID(n.ID)
		n.CreatedAt = now
		n.ModifiedAt = now
		n.SyncStatus = models.StatusPending
		for _, child := range n.Children {
			assign(child)
		}
	}
	assign(c)
	return c
}

// checkNames rejects a batch that would leave two children with the same
// name in dest, either against existing children or within the batch.
func checkNames(dest *models.FileSystemItem, sources []Placement, opts Options, op models.OperationKind) error {
	moving := make(map[string]bool, len(sources))
	for _, src := range sources {
		if op == models.OpMove {
			moving[src.Item.ID] = true
		}
	}
	taken := make(map[string]*models.FileSystemItem)
	for _, child := range dest.Children {
		if !moving[child.ID] {
			taken[child.Name] = child
		}
	}

	var conflicts []*models.ConflictItem
	for _, src := range sources {
		name := opts.nameFor(src.Item)
		if existing, ok := taken[name]; ok {
			incoming := src.Item.Clone()
			incoming.Name = name
			conflicts = append(conflicts, newConflict(incoming, existing, dest.Path, op))
			continue
		}
		taken[name] = src.Item
	}
	if len(conflicts) > 0 {
		return &models.ConflictError{Conflicts: conflicts}
	}
	return nil
}

func newConflict(incoming, existing *models.FileSystemItem, target string, op models.OperationKind) *models.ConflictItem {
	return &models.ConflictItem{
		Incoming:   incoming,
		Existing:   existing,
		TargetPath: target,
		Operation:  op,
		DetectedAt: time.Now(),
	}
}

func conflictErr(incoming, existing *models.FileSystemItem, target string, op models.OperationKind) error {
	return &models.ConflictError{Conflicts: []*models.ConflictItem{newConflict(incoming, existing, target, op)}}
}
