// Package mutate implements the pure edit operations of the workspace tree.
//
// Every function takes the current root and returns a new root; the nodes
// on the path from the root to the edit are copied, the input tree is never
// modified, and untouched subtrees are shared between the two versions.
package mutate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// Env supplies the clock and id generators used by mutations
type Env struct {
	Now    func() time.Time
	NewID  func() string
	CopyID func(oldID string) string
}

// DefaultEnv uses the wall clock and random UUIDs
func DefaultEnv() Env {
	return Env{
		Now:    time.Now,
		NewID:  uuid.NewString,
		CopyID: CopyID,
	}
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e Env) copyID(oldID string) string {
	if e.CopyID == nil {
		return CopyID(oldID)
	}
	return e.CopyID(oldID)
}

// CopyID derives the id of a cloned node: <oldId>-copy-<unix millis>-<random>
func CopyID(oldID string) string {
	return fmt.Sprintf("%s-copy-%d-%s", oldID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// ValidateName rejects names that cannot be used as a path segment
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &models.ValidationError{Field: "name", Message: "must not be empty"}
	case name == "." || name == "..":
		return &models.ValidationError{Field: "name", Message: "must not be . or .."}
	case strings.Contains(name, "/"):
		return &models.ValidationError{Field: "name", Message: "must not contain /"}
	}
	return nil
}
