package store

import (
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// ChangeKind tells subscribers which part of the state changed
type ChangeKind string

const (
	ChangeTree         ChangeKind = "tree"
	ChangeStatus       ChangeKind = "status"
	ChangeNavigation   ChangeKind = "navigation"
	ChangeSelection    ChangeKind = "selection"
	ChangeClipboard    ChangeKind = "clipboard"
	ChangeUpload       ChangeKind = "upload"
	ChangeConflict     ChangeKind = "conflict"
	ChangeNotification ChangeKind = "notification"
	ChangeView         ChangeKind = "view"
)

// Change is published after every state update
type Change struct {
	Kind ChangeKind `json:"kind"`

	// Op is set for tree changes caused by an operation or its undo
	Op models.OperationKind `json:"op,omitempty"`

	// IDs lists the items concerned, when known
	IDs []string `json:"ids,omitempty"`

	// Path is the current folder at the time of the change
	Path string `json:"path"`

	At time.Time `json:"at"`
}

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a toast message shown to the user
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
