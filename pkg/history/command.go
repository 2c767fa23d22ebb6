// Package history records reversible workspace operations for undo/redo.
//
// Every command captures the subtrees it replaces (Before) and the
// subtrees it produces (After) together with their placement. Applying a
// command removes the Before items and inserts the After items; inverting
// it does the opposite. Since ids and positions are captured, a redo after
// an undo reproduces the exact tree of the original operation.
package history

import (
	"fmt"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
)

// Command is one reversible operation
type Command interface {
	Kind() models.OperationKind
	Apply(root *models.FileSystemItem) (*models.FileSystemItem, error)
	Invert(root *models.FileSystemItem) (*models.FileSystemItem, error)
	Describe() string
	Changes() Transition
}

// Transition is the pair of tree states a command switches between
type Transition struct {
	Before []mutate.Placement `json:"before,omitempty"`
	After  []mutate.Placement `json:"after,omitempty"`
}

// Apply switches from the Before state to the After state
func (t Transition) Apply(root *models.FileSystemItem) (*models.FileSystemItem, error) {
	return swap(root, t.Before, t.After)
}

// Invert switches from the After state back to the Before state
func (t Transition) Invert(root *models.FileSystemItem) (*models.FileSystemItem, error) {
	return swap(root, t.After, t.Before)
}

// Changes returns the transition itself
func (t Transition) Changes() Transition {
	return t
}

// Gone returns the ids present before but not after
func (t Transition) Gone() []string {
	after := make(map[string]bool)
	for _, p := range t.After {
		collect(p.Item, after)
	}
	before := make(map[string]bool)
	for _, p := range t.Before {
		collect(p.Item, before)
	}
	var gone []string
	for id := range before {
		if !after[id] {
			gone = append(gone, id)
		}
	}
	return gone
}

func collect(item *models.FileSystemItem, set map[string]bool) {
	set[item.ID] = true
	for _, child := range item.Children {
		collect(child, set)
	}
}

func swap(root *models.FileSystemItem, out, in []mutate.Placement) (*models.FileSystemItem, error) {
	root, _ = mutate.Remove(root, mutate.IDs(out))
	root, err := mutate.Insert(root, in)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return root, nil
}

// CreateCommand records a new file or folder
type CreateCommand struct {
	Transition
	Item *models.FileSystemItem
}

// NewCreate records the creation of item; root is the tree that contains it
func NewCreate(root *models.FileSystemItem, item *models.FileSystemItem) *CreateCommand {
	return &CreateCommand{
		Transition: Transition{After: mutate.PlacementsOf(root, []string{item.ID})},
		Item:       item.Clone(),
	}
}

// Kind is CREATE_FOLDER or CREATE_FILE depending on the item
func (c *CreateCommand) Kind() models.OperationKind {
	if c.Item.IsFolder() {
		return models.OpCreateFolder
	}
	return models.OpCreateFile
}

// Describe names the created item
func (c *CreateCommand) Describe() string {
	return fmt.Sprintf("create %s %s", c.Item.Type, c.Item.Path)
}

// DeleteCommand records removed subtrees
type DeleteCommand struct {
	Transition
}

// NewDelete records the placements returned by mutate.Remove
func NewDelete(removed []mutate.Placement) *DeleteCommand {
	return &DeleteCommand{Transition: Transition{Before: removed}}
}

// Kind returns OpDelete
func (c *DeleteCommand) Kind() models.OperationKind { return models.OpDelete }

// Describe names the deleted path, or the count for several items
func (c *DeleteCommand) Describe() string {
	if len(c.Before) == 1 {
		return "delete " + c.Before[0].Item.Path
	}
	return fmt.Sprintf("delete %d items", len(c.Before))
}

// RenameCommand records a rename
type RenameCommand struct {
	Transition
	OldName string
	NewName string
}

// NewRename records renaming the subtree before into after. before must be
// captured from the tree prior to the rename, after from the tree that
// results from it.
func NewRename(before, after []mutate.Placement) *RenameCommand {
	c := &RenameCommand{Transition: Transition{Before: before, After: after}}
	if len(before) > 0 && len(after) > 0 {
		c.OldName = before[0].Item.Name
		c.NewName = after[0].Item.Name
	}
	return c
}

// Kind returns OpRename
func (c *RenameCommand) Kind() models.OperationKind { return models.OpRename }

// Describe gives the old and new name
func (c *RenameCommand) Describe() string {
	return fmt.Sprintf("rename %s to %s", c.OldName, c.NewName)
}

// MoveCommand records a move, including any items it replaced
type MoveCommand struct {
	Transition
	Target string
}

// NewMove records moving sources into target. replaced lists the items
// deleted at the target to make room.
func NewMove(sources, replaced, moved []mutate.Placement, target string) *MoveCommand {
	before := append(append([]mutate.Placement(nil), sources...), replaced...)
	return &MoveCommand{Transition: Transition{Before: before, After: moved}, Target: target}
}

// Kind returns OpMove
func (c *MoveCommand) Kind() models.OperationKind { return models.OpMove }

// Describe gives the item count and the target folder
func (c *MoveCommand) Describe() string {
	return fmt.Sprintf("move %d items to %s", len(c.After), c.Target)
}

// CopyCommand records the clones created by a paste or copy
type CopyCommand struct {
	Transition
	Target string
}

// NewCopy records clones placed in target. replaced lists the items
// deleted at the target to make room.
func NewCopy(replaced, clones []mutate.Placement, target string) *CopyCommand {
	return &CopyCommand{Transition: Transition{Before: replaced, After: clones}, Target: target}
}

// Kind returns OpCopy
func (c *CopyCommand) Kind() models.OperationKind { return models.OpCopy }

// Describe gives the clone count and the target folder
func (c *CopyCommand) Describe() string {
	return fmt.Sprintf("copy %d items to %s", len(c.After), c.Target)
}

// UploadCommand records an uploaded file
type UploadCommand struct {
	Transition
	Name string
}

// NewUpload records the uploaded items and any items they replaced
func NewUpload(replaced, uploaded []mutate.Placement) *UploadCommand {
	c := &UploadCommand{Transition: Transition{Before: replaced, After: uploaded}}
	if len(uploaded) > 0 {
		c.Name = uploaded[0].Item.Name
	}
	return c
}

// Kind returns OpUpload
func (c *UploadCommand) Kind() models.OperationKind { return models.OpUpload }

// Describe names the uploaded file
func (c *UploadCommand) Describe() string {
	return "upload " + c.Name
}
