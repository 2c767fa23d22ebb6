package mutate

import (
	"fmt"
	"path"
	"strings"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// DetectConflicts lists the incoming items whose name is already used in
// destPath by a different item.
func DetectConflicts(root *models.FileSystemItem, destPath string, incoming []*models.FileSystemItem, op models.OperationKind) []*models.ConflictItem {
	dest := tree.FindByPath(root, destPath)
	if dest == nil {
		return nil
	}
	var conflicts []*models.ConflictItem
	for _, item := range incoming {
		if existing := dest.Child(item.Name); existing != nil && existing.ID != item.ID {
			conflicts = append(conflicts, newConflict(item.Clone(), existing, dest.Path, op))
		}
	}
	return conflicts
}

// UniqueName derives a name not accepted by taken: "name (copy).ext",
// then "name copy 2.ext", "name copy 3.ext" and so on. Folders keep any
// dot in their name as part of the stem.
func UniqueName(name string, isFolder bool, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	stem, ext := name, ""
	if !isFolder {
		ext = path.Ext(name)
		if ext == name {
			ext = ""
		}
		stem = strings.TrimSuffix(name, ext)
	}
	candidate := fmt.Sprintf("%s (copy)%s", stem, ext)
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s copy %d%s", stem, n, ext)
	}
	return candidate
}

// Plan is the outcome of applying resolutions to a batch of conflicts
type Plan struct {
	// Replace lists the ids of existing items to delete first
	Replace []string
	// Skip lists the ids of incoming items that are dropped
	Skip []string
	// Names maps incoming ids to the non-colliding name they take
	Names map[string]string
}

// Skipped reports whether id was dropped by the plan
func (p Plan) Skipped(id string) bool {
	for _, s := range p.Skip {
		if s == id {
			return true
		}
	}
	return false
}

// Keep filters ids down to the ones not skipped
func (p Plan) Keep(ids []string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !p.Skipped(id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// Options converts the plan into Move/Copy options
func (p Plan) Options() Options {
	return Options{Names: p.Names}
}

// Resolve builds a plan for the conflicts. Each conflict uses its own
// Resolution; a resolved conflict flagged ApplyToAll forces its resolution
// on every conflict of the batch. Unresolved conflicts are skipped.
//
// Replace only deletes an item that sits in the target folder and is not
// itself part of the batch. Otherwise, as when an item is copied onto
// itself or two incoming items share a name, the incoming item is skipped.
func Resolve(root *models.FileSystemItem, conflicts []*models.ConflictItem) Plan {
	plan := Plan{Names: make(map[string]string)}

	incoming := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		incoming[c.Incoming.ID] = true
	}

	var forced models.ConflictResolution
	for _, c := range conflicts {
		if c.IsResolved() && c.ApplyToAll {
			forced = c.Resolution
			break
		}
	}

	names := make(map[string]map[string]bool)
	takenIn := func(target string) map[string]bool {
		if set, ok := names[target]; ok {
			return set
		}
		set := make(map[string]bool)
		if dest := tree.FindByPath(root, target); dest != nil {
			for _, child := range dest.Children {
				set[child.Name] = true
			}
		}
		names[target] = set
		return set
	}

	for _, c := range conflicts {
		resolution := c.Resolution
		if forced != "" {
			resolution = forced
		}
		switch resolution {
		case models.ResolveReplace:
			if incoming[c.Existing.ID] || !inFolder(root, c.TargetPath, c.Existing) {
				plan.Skip = append(plan.Skip, c.Incoming.ID)
				continue
			}
			plan.Replace = append(plan.Replace, c.Existing.ID)
		case models.ResolveRename:
			set := takenIn(c.TargetPath)
			set[c.Existing.Name] = true
			name := UniqueName(c.Incoming.Name, c.Incoming.IsFolder(), func(n string) bool { return set[n] })
			set[name] = true
			plan.Names[c.Incoming.ID] = name
		default:
			plan.Skip = append(plan.Skip, c.Incoming.ID)
		}
	}
	return plan
}

// inFolder reports whether item is a direct child of the folder at p
func inFolder(root *models.FileSystemItem, p string, item *models.FileSystemItem) bool {
	dest := tree.FindByPath(root, p)
	if dest == nil {
		return false
	}
	child := dest.Child(item.Name)
	return child != nil && child.ID == item.ID
}

// ValidateTree checks the structural invariants of the workspace tree:
// unique ids, children only on folders, and every path equal to the
// parent's path joined with the node's name.
func ValidateTree(root *models.FileSystemItem) error {
	if root == nil {
		return &models.ValidationError{Field: "root", Message: "tree is empty"}
	}
	if root.Path != tree.Root || !root.IsFolder() {
		return &models.ValidationError{Field: "root", Message: "root must be the folder /"}
	}
	seen := make(map[string]bool)
	var check func(node *models.FileSystemItem, expected string) error
	check = func(node *models.FileSystemItem, expected string) error {
		if seen[node.ID] {
			return &models.ValidationError{Field: node.Path, Message: fmt.Sprintf("duplicate id %s", node.ID)}
		}
		seen[node.ID] = true
		if node.Path != expected {
			return &models.ValidationError{Field: node.Path, Message: fmt.Sprintf("path should be %s", expected)}
		}
		if !node.SyncStatus.Valid() && node.SyncStatus != "" {
			return &models.ValidationError{Field: node.Path, Message: fmt.Sprintf("invalid sync status %q", node.SyncStatus)}
		}
		if !node.IsFolder() && len(node.Children) > 0 {
			return &models.ValidationError{Field: node.Path, Message: "file carries children"}
		}
		names := make(map[string]bool, len(node.Children))
		for _, child := range node.Children {
			if names[child.Name] {
				return &models.ValidationError{Field: node.Path, Message: fmt.Sprintf("duplicate name %q", child.Name)}
			}
			names[child.Name] = true
			if err := check(child, tree.Join(node.Path, child.Name)); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root, tree.Root)
}
