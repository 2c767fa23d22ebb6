// Package tree locates items inside the nested workspace tree.
package tree

import (
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// Match groups items found under the same parent folder
type Match struct {
	Items []*models.FileSystemItem
	Path  string
}

// FindByID finds a node by its ID (recursive, depth first)
func FindByID(root *models.FileSystemItem, id string) *models.FileSystemItem {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// FindByPath resolves a path by walking the segments from the root
func FindByPath(root *models.FileSystemItem, p string) *models.FileSystemItem {
	if root == nil {
		return nil
	}
	node := root
	for _, segment := range Split(p) {
		node = node.Child(segment)
		if node == nil {
			return nil
		}
	}
	return node
}

// FindAllByIDs returns the matching items grouped by parent path, in
// tree order. Unknown ids are ignored.
func FindAllByIDs(root *models.FileSystemItem, ids []string) []Match {
	if root == nil || len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var matches []Match
	var visit func(folder *models.FileSystemItem)
	visit = func(folder *models.FileSystemItem) {
		var found []*models.FileSystemItem
		for _, child := range folder.Children {
			if wanted[child.ID] {
				found = append(found, child)
			}
		}
		if len(found) > 0 {
			matches = append(matches, Match{Items: found, Path: folder.Path})
		}
		for _, child := range folder.Children {
			if child.IsFolder() {
				visit(child)
			}
		}
	}
	visit(root)
	return matches
}

// FindParent returns the folder that directly contains id
func FindParent(root *models.FileSystemItem, id string) *models.FileSystemItem {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child.ID == id {
			return root
		}
		if found := FindParent(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func Walk(root *models.FileSystemItem, fn func(node *models.FileSystemItem) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Children {
		Walk(child, fn)
	}
}

// CountNodes counts all nodes in a tree
func CountNodes(root *models.FileSystemItem) int {
	count := 0
	Walk(root, func(*models.FileSystemItem) bool {
		count++
		return true
	})
	return count
}

// Flatten returns all nodes keyed by path
func Flatten(root *models.FileSystemItem) map[string]*models.FileSystemItem {
	result := make(map[string]*models.FileSystemItem)
	Walk(root, func(node *models.FileSystemItem) bool {
		result[node.Path] = node
		return true
	})
	return result
}
