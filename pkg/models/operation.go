package models

import (
	"errors"
)

// OperationKind tags an entry of the undo/redo history
type OperationKind string

const (
	OpCreateFolder OperationKind = "CREATE_FOLDER"
	OpCreateFile   OperationKind = "CREATE_FILE"
	OpDelete       OperationKind = "DELETE"
	OpRename       OperationKind = "RENAME"
	OpMove         OperationKind = "MOVE"
	OpCopy         OperationKind = "COPY"
	OpUpload       OperationKind = "UPLOAD"
)

// ClipboardOp is the operation recorded with a clipboard snapshot
type ClipboardOp string

const (
	// ClipboardCut moves the items on paste and clears the clipboard
	ClipboardCut ClipboardOp = "cut"
	// ClipboardCopy clones the items on paste and keeps the clipboard
	ClipboardCopy ClipboardOp = "copy"
)

// ClipboardItem is the content of the single clipboard slot
type ClipboardItem struct {
	Items      []*FileSystemItem `json:"items"`
	SourcePath string            `json:"sourcePath"`
	Operation  ClipboardOp       `json:"operation"`
}

// IDs returns the ids of the clipboard items in order
func (c *ClipboardItem) IDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ID
	}
	return ids
}

var (
	// ErrNotFound is returned when an id or path does not resolve
	ErrNotFound = errors.New("item not found")
	// ErrNameConflict is returned when the target name is already taken
	ErrNameConflict = errors.New("an item with the same name already exists")
	// ErrInvalidMove is returned when a folder would be moved into itself
	ErrInvalidMove = errors.New("cannot move a folder into itself or one of its descendants")
	// ErrNotFolder is returned when a folder was required
	ErrNotFolder = errors.New("target is not a folder")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
