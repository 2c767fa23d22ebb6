package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

const timeLayout = "2006-01-02 15:04"

// HumanFormatter formats output in human-readable format
type HumanFormatter struct{}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// List prints one aligned line per item
func (f *HumanFormatter) List(w io.Writer, dir string, items []*models.FileSystemItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintf(w, "%s is empty\n", dir)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			typeMarker(item),
			sizeColumn(item),
			formatTime(item.ModifiedAt),
			item.SyncStatus,
			displayName(item))
	}
	return tw.Flush()
}

// Tree draws the hierarchy with box-drawing connectors
func (f *HumanFormatter) Tree(w io.Writer, root *models.FileSystemItem, depth int) error {
	if root == nil {
		return nil
	}
	label := root.Path
	if root.Path != "/" {
		label = displayName(root)
	}
	if _, err := fmt.Fprintln(w, label); err != nil {
		return err
	}
	return drawChildren(w, root, "", depth)
}

func drawChildren(w io.Writer, node *models.FileSystemItem, prefix string, depth int) error {
	if depth == 0 {
		return nil
	}
	for i, child := range node.Children {
		connector, indent := "├── ", "│   "
		if i == len(node.Children)-1 {
			connector, indent = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, connector, displayName(child)); err != nil {
			return err
		}
		if err := drawChildren(w, child, prefix+indent, depth-1); err != nil {
			return err
		}
	}
	return nil
}

// Item prints the details panel of one item
func (f *HumanFormatter) Item(w io.Writer, item *models.FileSystemItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", item.Name)
	fmt.Fprintf(tw, "Path:\t%s\n", item.Path)
	fmt.Fprintf(tw, "ID:\t%s\n", item.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", item.Type)
	fmt.Fprintf(tw, "Size:\t%s\n", formatBytes(item.TotalSize()))
	if item.IsFolder() {
		fmt.Fprintf(tw, "Items:\t%d\n", len(item.Children))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(item.CreatedAt))
	fmt.Fprintf(tw, "Modified:\t%s\n", formatTime(item.ModifiedAt))
	fmt.Fprintf(tw, "Sync:\t%s\n", item.SyncStatus)
	for _, p := range item.Permissions {
		fmt.Fprintf(tw, "Shared:\t%s <%s> (%s)\n", p.Name, p.Email, p.Type)
	}
	return tw.Flush()
}

// Conflicts prints each conflict with the item it collides with
func (f *HumanFormatter) Conflicts(w io.Writer, conflicts []models.ConflictItem) error {
	if len(conflicts) == 0 {
		_, err := fmt.Fprintln(w, "No pending conflicts")
		return err
	}
	fmt.Fprintf(w, "%d naming conflict(s):\n", len(conflicts))
	for i, c := range conflicts {
		state := "unresolved"
		if c.IsResolved() {
			state = string(c.Resolution)
		}
		fmt.Fprintf(w, "  [%d] %s %q into %s: %s already exists (%s)\n",
			i+1, strings.ToLower(string(c.Operation)), c.Incoming.Name, c.TargetPath, c.Existing.Type, state)
	}
	return nil
}

// Uploads prints the upload list with progress
func (f *HumanFormatter) Uploads(w io.Writer, uploads []models.UploadItem) error {
	if len(uploads) == 0 {
		_, err := fmt.Fprintln(w, "No uploads")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, u := range uploads {
		fmt.Fprintf(tw, "%s\t%s\t%3d%%\t%s\n", u.Name, formatBytes(u.Size), u.Progress, u.Status)
	}
	return tw.Flush()
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func typeMarker(item *models.FileSystemItem) string {
	if item.IsFolder() {
		return "d"
	}
	return "-"
}

func sizeColumn(item *models.FileSystemItem) string {
	if item.IsFolder() {
		return fmt.Sprintf("%d items", len(item.Children))
	}
	return formatBytes(item.Size)
}

func displayName(item *models.FileSystemItem) string {
	if item.IsFolder() {
		return item.Name + "/"
	}
	return item.Name
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}
