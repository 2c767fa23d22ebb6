package models

import (
	"strings"
	"time"
)

// ItemType distinguishes files from folders
type ItemType string

const (
	// TypeFile is a leaf node
	TypeFile ItemType = "file"
	// TypeFolder is a node that may carry children
	TypeFolder ItemType = "folder"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == TypeFile || t == TypeFolder
}

// SyncStatus is the per-item synchronization state shown to the user
type SyncStatus string

const (
	// StatusPending indicates a local edit that has not started syncing
	StatusPending SyncStatus = "pending"
	// StatusSyncing indicates the item is being synchronized
	StatusSyncing SyncStatus = "syncing"
	// StatusSynced indicates the item is up to date
	StatusSynced SyncStatus = "synced"
	// StatusError indicates synchronization failed
	StatusError SyncStatus = "error"
	// StatusHidden marks items excluded from synchronization
	StatusHidden SyncStatus = "hidden"
)

// Valid reports whether s belongs to the status enum
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSyncing, StatusSynced, StatusError, StatusHidden:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
// Any status may be reset to pending by a new mutation.
func (s SyncStatus) CanTransition(next SyncStatus) bool {
	if next == StatusPending {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusSyncing
	case StatusSyncing:
		return next == StatusSynced || next == StatusError
	}
	return false
}

// PermissionType is the access level granted to a user
type PermissionType string

const (
	PermissionRead  PermissionType = "read"
	PermissionWrite PermissionType = "write"
	PermissionAdmin PermissionType = "admin"
)

// Permission grants a user access to an item
type Permission struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Type  PermissionType `json:"type"`
}

// FileSystemItem is a node of the virtual workspace tree
type FileSystemItem struct {
	// ID is unique across the whole tree and stable across renames and moves
	ID string `json:"id"`

	// Name is the last path segment ("" for the root)
	Name string `json:"name"`

	// Type is file or folder
	Type ItemType `json:"type"`

	// Path is the absolute slash-separated path of the node
	Path string `json:"path"`

	// Size in bytes; for folders see TotalSize
	Size int64 `json:"size,omitempty"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`

	// SyncStatus is the status displayed for the item
	SyncStatus SyncStatus `json:"syncStatus"`

	// Children is ordered and only set on folders
	Children []*FileSystemItem `json:"children,omitempty"`

	// Permissions is optional sharing metadata
	Permissions []Permission `json:"permissions,omitempty"`
}

// IsFolder returns true for folder nodes
func (i *FileSystemItem) IsFolder() bool {
	return i.Type == TypeFolder
}

// Segments returns the path as an ordered list of names
func (i *FileSystemItem) Segments() []string {
	trimmed := strings.Trim(i.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// TotalSize returns the size of a file or the recursive sum for a folder
func (i *FileSystemItem) TotalSize() int64 {
	if !i.IsFolder() {
		return i.Size
	}
	var total int64
	for _, child := range i.Children {
		total += child.TotalSize()
	}
	return total
}

// Clone returns a deep copy of the subtree, ids included
func (i *FileSystemItem) Clone() *FileSystemItem {
	if i == nil {
		return nil
	}
	c := *i
	if i.Permissions != nil {
		c.Permissions = append([]Permission(nil), i.Permissions...)
	}
	if i.Children != nil {
		c.Children = make([]*FileSystemItem, len(i.Children))
		for n, child := range i.Children {
			c.Children[n] = child.Clone()
		}
	}
	return &c
}

// ShallowCopy copies the node and its child slice but shares the children
func (i *FileSystemItem) ShallowCopy() *FileSystemItem {
	c := *i
	if i.Children != nil {
		c.Children = append([]*FileSystemItem(nil), i.Children...)
	}
	return &c
}

// Child returns the direct child with the given name, or nil
func (i *FileSystemItem) Child(name string) *FileSystemItem {
	for _, child := range i.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// UploadStatus is the state of an in-flight upload
type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadError     UploadStatus = "error"
)

// UploadItem tracks one upload; it is removed shortly after completion
type UploadItem struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Progress int          `json:"progress"`
	Status   UploadStatus `json:"status"`
}
