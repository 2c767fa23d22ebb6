package mutate

import (
	"fmt"
	"sort"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// Placement records where a subtree sits: its parent folder and its
// position among the parent's children.
type Placement struct {
	Item       *models.FileSystemItem `json:"item"`
	ParentPath string                 `json:"parentPath"`
	Index      int                    `json:"index"`
}

// PlacementsOf returns the placements of ids in root, in tree order.
// Unknown ids are ignored, and so are items nested inside another
// requested folder since they travel with it.
func PlacementsOf(root *models.FileSystemItem, ids []string) []Placement {
	var out []Placement
	matches := tree.FindAllByIDs(root, ids)
	var folders []string
	for _, match := range matches {
		for _, item := range match.Items {
			if item.IsFolder() {
				folders = append(folders, item.Path)
			}
		}
	}
	for _, match := range matches {
		if coveredBy(match.Path, folders) {
			continue
		}
		parent := tree.FindByPath(root, match.Path)
		for _, item := range match.Items {
			out = append(out, Placement{
				Item:       item.Clone(),
				ParentPath: match.Path,
				Index:      indexOf(parent, item.ID),
			})
		}
	}
	return out
}

func coveredBy(p string, folders []string) bool {
	for _, f := range folders {
		if tree.IsAncestor(f, p) {
			return true
		}
	}
	return false
}

// IDs returns the ids of the placed items
func IDs(placements []Placement) []string {
	ids := make([]string, len(placements))
	for i, p := range placements {
		ids[i] = p.Item.ID
	}
	return ids
}

// Remove deletes every node whose id is in ids, wherever it sits. It
// returns the removed subtrees with their original placements so they can
// be restored with Insert.
func Remove(root *models.FileSystemItem, ids []string) (*models.FileSystemItem, []Placement) {
	removed := PlacementsOf(root, ids)
	if len(removed) == 0 {
		return root, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return prune(root, wanted), removed
}

func prune(node *models.FileSystemItem, wanted map[string]bool) *models.FileSystemItem {
	if !node.IsFolder() || len(node.Children) == 0 {
		return node
	}
	changed := false
	kept := make([]*models.FileSystemItem, 0, len(node.Children))
	for _, child := range node.Children {
		if wanted[child.ID] {
			changed = true
			continue
		}
		pruned := prune(child, wanted)
		if pruned != child {
			changed = true
		}
		kept = append(kept, pruned)
	}
	if !changed {
		return node
	}
	c := *node
	c.Children = kept
	return &c
}

// Insert places subtrees back into the tree. Placements are applied per
// parent in ascending index order so that restoring the result of Remove
// reproduces the original ordering. Paths of inserted subtrees are
// recomputed from their new parent.
func Insert(root *models.FileSystemItem, placements []Placement) (*models.FileSystemItem, error) {
	ordered := append([]Placement(nil), placements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ParentPath != ordered[j].ParentPath {
			return ordered[i].ParentPath < ordered[j].ParentPath
		}
		return ordered[i].Index < ordered[j].Index
	})

	var err error
	for _, p := range ordered {
		item := p.Item.Clone()
		index := p.Index
		root, err = updateFolder(root, p.ParentPath, func(folder *models.FileSystemItem) error {
			if existing := folder.Child(item.Name); existing != nil && existing.ID != item.ID {
				return conflictErr(item, existing, folder.Path, "")
			}
			setPaths(item, tree.Join(folder.Path, item.Name))
			if index < 0 || index > len(folder.Children) {
				index = len(folder.Children)
			}
			folder.Children = append(folder.Children, nil)
			copy(folder.Children[index+1:], folder.Children[index:])
			folder.Children[index] = item
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

// updateFolder copies the nodes on the path to folderPath and lets fn edit
// a private copy of the folder. fn may change the folder's children slice
// but must replace, not modify, the children themselves.
func updateFolder(root *models.FileSystemItem, folderPath string, fn func(folder *models.FileSystemItem) error) (*models.FileSystemItem, error) {
	return updateAt(root, tree.Split(folderPath), folderPath, fn)
}

func updateAt(node *models.FileSystemItem, segments []string, full string, fn func(*models.FileSystemItem) error) (*models.FileSystemItem, error) {
	if len(segments) == 0 {
		if !node.IsFolder() {
			return nil, fmt.Errorf("%s: %w", full, models.ErrNotFolder)
		}
		c := node.ShallowCopy()
		if c.Children == nil {
			c.Children = []*models.FileSystemItem{}
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		return c, nil
	}
	for i, child := range node.Children {
		if child.Name != segments[0] {
			continue
		}
		updated, err := updateAt(child, segments[1:], full, fn)
		if err != nil {
			return nil, err
		}
		c := node.ShallowCopy()
		c.Children[i] = updated
		return c, nil
	}
	return nil, fmt.Errorf("%s: %w", full, models.ErrNotFound)
}

// updateNode replaces the node with the given id by fn(copy of node)
func updateNode(root *models.FileSystemItem, id string, fn func(node *models.FileSystemItem)) (*models.FileSystemItem, bool) {
	if root.ID == id {
		c := *root
		fn(&c)
		return &c, true
	}
	for i, child := range root.Children {
		updated, ok := updateNode(child, id, fn)
		if !ok {
			continue
		}
		c := root.ShallowCopy()
		c.Children[i] = updated
		return c, true
	}
	return root, false
}

// SetStatus returns a tree in which the item id carries status. ok is
// false when the id is not in the tree.
func SetStatus(root *models.FileSystemItem, id string, status models.SyncStatus) (*models.FileSystemItem, bool) {
	return updateNode(root, id, func(node *models.FileSystemItem) {
		node.SyncStatus = status
	})
}

// setPaths rewrites the path of node and all its descendants in place.
// node must be a private copy.
func setPaths(node *models.FileSystemItem, p string) {
	node.Path = p
	for _, child := range node.Children {
		setPaths(child, tree.Join(p, child.Name))
	}
}

func indexOf(folder *models.FileSystemItem, id string) int {
	if folder == nil {
		return -1
	}
	for i, child := range folder.Children {
		if child.ID == id {
			return i
		}
	}
	return -1
}
