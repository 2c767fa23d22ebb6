package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct{}

// JSONListing is the document printed by List
type JSONListing struct {
	Path  string          `json:"path"`
	Count int             `json:"count"`
	Items []JSONEntryData `json:"items"`
}

// JSONEntryData represents one listed item without its subtree
type JSONEntryData struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       models.ItemType   `json:"type"`
	Path       string            `json:"path"`
	Size       int64             `json:"size"`
	ModifiedAt time.Time         `json:"modified_at"`
	SyncStatus models.SyncStatus `json:"sync_status"`
	Children   int               `json:"children,omitempty"`
}

// JSONConflictData represents a naming conflict
type JSONConflictData struct {
	Operation  models.OperationKind      `json:"operation"`
	Name       string                    `json:"name"`
	TargetPath string                    `json:"target_path"`
	ExistingID string                    `json:"existing_id"`
	Resolution models.ConflictResolution `json:"resolution,omitempty"`
	ApplyToAll bool                      `json:"apply_to_all,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// List writes a JSONListing
func (f *JSONFormatter) List(w io.Writer, dir string, items []*models.FileSystemItem) error {
	listing := JSONListing{Path: dir, Count: len(items), Items: make([]JSONEntryData, 0, len(items))}
	for _, item := range items {
		entry := JSONEntryData{
			ID:         item.ID,
			Name:       item.Name,
			Type:       item.Type,
			Path:       item.Path,
			Size:       item.TotalSize(),
			ModifiedAt: item.ModifiedAt,
			SyncStatus: item.SyncStatus,
		}
		if item.IsFolder() {
			entry.Children = len(item.Children)
		}
		listing.Items = append(listing.Items, entry)
	}
	return encode(w, listing)
}

// Tree writes the nested items down to depth levels
func (f *JSONFormatter) Tree(w io.Writer, root *models.FileSystemItem, depth int) error {
	return encode(w, storage.Trim(root, depth, false))
}

// Item writes one item with its subtree
func (f *JSONFormatter) Item(w io.Writer, item *models.FileSystemItem) error {
	return encode(w, item)
}

// Conflicts writes the pending conflicts
func (f *JSONFormatter) Conflicts(w io.Writer, conflicts []models.ConflictItem) error {
	out := make([]JSONConflictData, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, JSONConflictData{
			Operation:  c.Operation,
			Name:       c.Incoming.Name,
			TargetPath: c.TargetPath,
			ExistingID: c.Existing.ID,
			Resolution: c.Resolution,
			ApplyToAll: c.ApplyToAll,
		})
	}
	return encode(w, out)
}

// Uploads writes the upload list
func (f *JSONFormatter) Uploads(w io.Writer, uploads []models.UploadItem) error {
	if uploads == nil {
		uploads = []models.UploadItem{}
	}
	return encode(w, uploads)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
