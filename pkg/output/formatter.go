package output

import (
	"fmt"
	"io"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// List prints the displayed children of the folder dir
	List(w io.Writer, dir string, items []*models.FileSystemItem) error

	// Tree prints root and its descendants down to depth levels (-1 = all)
	Tree(w io.Writer, root *models.FileSystemItem, depth int) error

	// Item prints the details of one item
	Item(w io.Writer, item *models.FileSystemItem) error

	// Conflicts prints the naming conflicts waiting for a decision
	Conflicts(w io.Writer, conflicts []models.ConflictItem) error

	// Uploads prints the upload list
	Uploads(w io.Writer, uploads []models.UploadItem) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for format: "human" or "json"
func New(format string) (Formatter, error) {
	switch format {
	case "human", "":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format: %s (use: human, json)", format)
}
