package history

import (
	"sync"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// DefaultLimit is the number of undoable commands kept by default
const DefaultLimit = 100

// Log holds the undo and redo stacks
type Log struct {
	mu    sync.Mutex
	undo  []Command
	redo  []Command
	limit int
}

// NewLog returns a log keeping at most limit commands; 0 means unbounded
func NewLog(limit int) *Log {
	if limit < 0 {
		limit = 0
	}
	return &Log{limit: limit}
}

// Push records a new command and discards the redo stack
func (l *Log) Push(cmd Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = append(l.undo, cmd)
	if l.limit > 0 && len(l.undo) > l.limit {
		l.undo = append([]Command(nil), l.undo[len(l.undo)-l.limit:]...)
	}
	l.redo = nil
}

// Undo inverts the most recent command. With nothing to undo it returns
// root and a nil command. On error the stacks are left untouched.
func (l *Log) Undo(root *models.FileSystemItem) (*models.FileSystemItem, Command, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.undo) == 0 {
		return root, nil, nil
	}
	cmd := l.undo[len(l.undo)-1]
	newRoot, err := cmd.Invert(root)
	if err != nil {
		return root, nil, err
	}
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, cmd)
	return newRoot, cmd, nil
}

// Redo re-applies the most recently undone command
func (l *Log) Redo(root *models.FileSystemItem) (*models.FileSystemItem, Command, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.redo) == 0 {
		return root, nil, nil
	}
	cmd := l.redo[len(l.redo)-1]
	newRoot, err := cmd.Apply(root)
	if err != nil {
		return root, nil, err
	}
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, cmd)
	return newRoot, cmd, nil
}

// CanUndo reports whether Undo would do anything
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo) > 0
}

// CanRedo reports whether Redo would do anything
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo) > 0
}

// Len returns the sizes of the undo and redo stacks
func (l *Log) Len() (undo, redo int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo), len(l.redo)
}

// Limit returns the configured bound
func (l *Log) Limit() int {
	return l.limit
}

// Entries returns the undo stack, oldest first
func (l *Log) Entries() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Command(nil), l.undo...)
}

// Clear drops both stacks, e.g. after a reload from the backend
func (l *Log) Clear() {
	l.mu.Lock()
	l.undo, l.redo = nil, nil
	l.mu.Unlock()
}

// Discard removes cmd when it sits on top of either stack. It is used
// when the backend rejects an operation that was already recorded.
func (l *Log) Discard(cmd Command) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.undo); n > 0 && l.undo[n-1] == cmd {
		l.undo = l.undo[:n-1]
		return true
	}
	if n := len(l.redo); n > 0 && l.redo[n-1] == cmd {
		l.redo = l.redo[:n-1]
		return true
	}
	return false
}
