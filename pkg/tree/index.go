package tree

import (
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// Index is a flat lookup table over a tree. The nested tree stays the
// owner of the nodes; the index must be rebuilt after every mutation.
type Index struct {
	byID   map[string]*models.FileSystemItem
	byPath map[string]*models.FileSystemItem
	parent map[string]string
}

// NewIndex builds an index for root
func NewIndex(root *models.FileSystemItem) *Index {
	idx := &Index{}
	idx.Rebuild(root)
	return idx
}

// Rebuild replaces the content of the index with the nodes of root
func (idx *Index) Rebuild(root *models.FileSystemItem) {
	idx.byID = make(map[string]*models.FileSystemItem)
	idx.byPath = make(map[string]*models.FileSystemItem)
	idx.parent = make(map[string]string)
	if root == nil {
		return
	}
	idx.add(root, "")
}

// Update re-indexes the subtree rooted at node, whose parent is parentPath.
// Entries that belonged to a previous version of the subtree are dropped.
func (idx *Index) Update(node *models.FileSystemItem, parentPath string) {
	if old, ok := idx.byID[node.ID]; ok {
		idx.Remove(old)
	}
	idx.add(node, parentPath)
}

// Remove drops node and its descendants from the index
func (idx *Index) Remove(node *models.FileSystemItem) {
	Walk(node, func(n *models.FileSystemItem) bool {
		if cur, ok := idx.byPath[n.Path]; ok && cur.ID == n.ID {
			delete(idx.byPath, n.Path)
		}
		delete(idx.byID, n.ID)
		delete(idx.parent, n.ID)
		return true
	})
}

func (idx *Index) add(node *models.FileSystemItem, parentPath string) {
	idx.byID[node.ID] = node
	idx.byPath[node.Path] = node
	if parentPath != "" {
		idx.parent[node.ID] = parentPath
	}
	for _, child := range node.Children {
		idx.add(child, node.Path)
	}
}

// Lookup returns the node with the given id
func (idx *Index) Lookup(id string) (*models.FileSystemItem, bool) {
	node, ok := idx.byID[id]
	return node, ok
}

// LookupPath returns the node at the given path
func (idx *Index) LookupPath(p string) (*models.FileSystemItem, bool) {
	node, ok := idx.byPath[Normalize(p)]
	return node, ok
}

// ParentPath returns the path of the folder containing id
func (idx *Index) ParentPath(id string) (string, bool) {
	p, ok := idx.parent[id]
	return p, ok
}

// Contains reports whether id is indexed
func (idx *Index) Contains(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

// Len returns the number of indexed nodes
func (idx *Index) Len() int {
	return len(idx.byID)
}
