package models

import (
	"errors"
	"fmt"
	"time"
)

// ConflictResolution defines how a naming conflict is settled
type ConflictResolution string

const (
	// ResolveReplace deletes the existing item, then performs the operation
	ResolveReplace ConflictResolution = "replace"
	// ResolveRename derives a non-colliding name and retries
	ResolveRename ConflictResolution = "rename"
	// ResolveSkip drops the operation for that item only
	ResolveSkip ConflictResolution = "skip"
)

// Valid reports whether r is a known resolution
func (r ConflictResolution) Valid() bool {
	switch r {
	case ResolveReplace, ResolveRename, ResolveSkip:
		return true
	}
	return false
}

// ConflictItem pairs an incoming item with the one occupying its name
type ConflictItem struct {
	// Incoming is the item being created, pasted or uploaded
	Incoming *FileSystemItem `json:"incoming"`

	// Existing is the node already present at the target
	Existing *FileSystemItem `json:"existing"`

	// TargetPath is the folder the incoming item was headed to
	TargetPath string `json:"targetPath"`

	// Operation is the kind of operation that produced the conflict
	Operation OperationKind `json:"operation"`

	// Resolution is set once the user decided
	Resolution ConflictResolution `json:"resolution,omitempty"`

	// ApplyToAll propagates the resolution to every conflict of the batch
	ApplyToAll bool `json:"applyToAll,omitempty"`

	DetectedAt time.Time  `json:"detectedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// IsResolved returns true if the conflict has been resolved
func (c *ConflictItem) IsResolved() bool {
	return c.ResolvedAt != nil
}

// Resolve marks the conflict as resolved
func (c *ConflictItem) Resolve(resolution ConflictResolution, applyToAll bool) {
	c.Resolution = resolution
	c.ApplyToAll = applyToAll
	now := time.Now()
	c.ResolvedAt = &now
}

// ConflictError carries the naming conflicts detected by an operation.
// It unwraps to ErrNameConflict.
type ConflictError struct {
	Conflicts []*ConflictItem
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("%q already exists in %s", c.Incoming.Name, c.TargetPath)
	}
	return fmt.Sprintf("%d items already exist at the destination", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrNameConflict
}

// AsConflict extracts a ConflictError from an error chain
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
