package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/output"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// ListFlags holds ls command flags
type ListFlags struct {
	All   bool
	Sort  string
	Order string
}

var listFlags ListFlags

// NewListCommand creates the ls command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withSession(runList),
	}
	cmd.Flags().BoolVarP(&listFlags.All, "all", "a", false, "show hidden and excluded items")
	cmd.Flags().StringVar(&listFlags.Sort, "sort", "", "sort key: name, size, modified, type")
	cmd.Flags().StringVar(&listFlags.Order, "order", "", "sort order: asc, desc")
	return cmd
}

func runList(cmd *cobra.Command, s *session, args []string) error {
	p := ""
	if len(args) == 1 {
		p = args[0]
	}
	item, err := s.resolve(p)
	if err != nil {
		return err
	}
	if !item.IsFolder() {
		return s.formatter.List(s.out, tree.Parent(item.Path), []*models.FileSystemItem{item})
	}

	view, err := listView(s.store.View())
	if err != nil {
		return err
	}
	return s.formatter.List(s.out, item.Path, view.Display(item.Children))
}

// listView applies the ls flags to v without saving them
func listView(v navigation.View) (navigation.View, error) {
	if listFlags.All {
		v.ShowHidden = true
		v.Exclude = nil
	}
	if listFlags.Sort != "" {
		key, err := navigation.ParseSortKey(listFlags.Sort)
		if err != nil {
			return v, err
		}
		v.Sort = key
	}
	if listFlags.Order != "" {
		order, err := navigation.ParseSortOrder(listFlags.Order)
		if err != nil {
			return v, err
		}
		v.Order = order
	}
	return v, nil
}

// NewTreeCommand creates the tree command
func NewTreeCommand() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Show the folder hierarchy",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p := ""
			if len(args) == 1 {
				p = args[0]
			}
			item, err := s.resolve(p)
			if err != nil {
				return err
			}
			return s.formatter.Tree(s.out, item, depth)
		}),
	}
	cmd.Flags().IntVarP(&depth, "depth", "L", -1, "levels to descend (-1 = all)")
	return cmd
}

// NewStatCommand creates the stat command
func NewStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the details of an item",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			item, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			return s.formatter.Item(s.out, item)
		}),
	}
}

// NewMkdirCommand creates the mkdir command
func NewMkdirCommand() *cobra.Command {
	return newCreateCommand("mkdir", "Create folders", models.TypeFolder)
}

// NewTouchCommand creates the touch command
func NewTouchCommand() *cobra.Command {
	return newCreateCommand("touch", "Create empty files", models.TypeFile)
}

func newCreateCommand(use, short string, typ models.ItemType) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ctx := commandContext(cmd)
			for _, arg := range args {
				p := s.abs(arg)
				var (
					item *models.FileSystemItem
					err  error
				)
				if typ == models.TypeFolder {
					item, err = s.store.CreateFolder(ctx, tree.Parent(p), tree.Base(p))
				} else {
					item, err = s.store.CreateFile(ctx, tree.Parent(p), tree.Base(p))
				}
				if err != nil {
					return err
				}
				s.printf("Created %s\n", item.Path)
			}
			return nil
		}),
	}
}

// NewRemoveCommand creates the rm command
func NewRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Delete items and their contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ids, err := s.resolveIDs(args)
			if err != nil {
				return err
			}
			if err := s.store.Delete(commandContext(cmd), ids); err != nil {
				return err
			}
			s.printf("Deleted %d item(s)\n", len(ids))
			return nil
		}),
	}
}

// NewMoveCommand creates the mv command
func NewMoveCommand() *cobra.Command {
	return newTransferCommand("mv", "Move items into a folder", models.OpMove)
}

// NewCopyCommand creates the cp command
func NewCopyCommand() *cobra.Command {
	return newTransferCommand("cp", "Copy items into a folder", models.OpCopy)
}

func newTransferCommand(use, short string, op models.OperationKind) *cobra.Command {
	var onConflict string
	cmd := &cobra.Command{
		Use:   use + " <path>... <folder>",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ctx := commandContext(cmd)
			ids, err := s.resolveIDs(args[:len(args)-1])
			if err != nil {
				return err
			}
			dest := s.abs(args[len(args)-1])

			var items []*models.FileSystemItem
			if op == models.OpMove {
				items, err = s.store.Move(ctx, ids, dest)
			} else {
				items, err = s.store.Copy(ctx, ids, dest)
			}
			if _, conflict := models.AsConflict(err); conflict {
				return s.settle(ctx, err, onConflict)
			}
			if err != nil {
				return err
			}
			for _, item := range items {
				s.printf("%s\n", item.Path)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&onConflict, "on-conflict", "", "resolve name clashes: replace, rename, skip")
	return cmd
}

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename an item",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			item, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			renamed, err := s.store.Rename(commandContext(cmd), item.ID, args[1])
			if err != nil {
				return err
			}
			s.printf("%s -> %s\n", item.Path, renamed.Path)
			return nil
		}),
	}
}

// UploadFlags holds upload command flags
type UploadFlags struct {
	Name       string
	OnConflict string
}

var uploadFlags UploadFlags

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file> [folder]",
		Short: "Upload a local file into the workspace",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ctx := commandContext(cmd)
			dest := ""
			if len(args) == 2 {
				dest = s.abs(args[1])
			}
			f, name, size, err := openUpload(args[0], uploadFlags.Name)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = s.upload(ctx, f, dest, name, size)
			if _, conflict := models.AsConflict(err); conflict {
				return s.settle(ctx, err, uploadFlags.OnConflict)
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&uploadFlags.Name, "name", "", "name in the workspace (default: the file name)")
	cmd.Flags().StringVar(&uploadFlags.OnConflict, "on-conflict", "", "resolve name clashes: replace, rename, skip")
	return cmd
}

// openUpload opens a host file and returns it with its workspace name
// and size
func openUpload(hostPath, name string) (*os.File, string, int64, error) {
	f, err := os.Open(hostPath)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to open %s: %w", hostPath, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, "", 0, fmt.Errorf("%s is a directory", hostPath)
	}
	if name == "" {
		name = filepath.Base(hostPath)
	}
	if err := mutate.ValidateName(name); err != nil {
		f.Close()
		return nil, "", 0, err
	}
	return f, name, info.Size(), nil
}

// upload streams r into dest, drawing a progress bar on a terminal
func (s *session) upload(ctx context.Context, r io.Reader, dest, name string, size int64) (*models.FileSystemItem, error) {
	bar := output.NewUploadBar(os.Stderr, name, size, s.cfg.Output.Progress)
	defer bar.Finish()

	item, err := s.store.Upload(ctx, dest, name, bar.Wrap(r), size)
	if err != nil {
		return nil, err
	}
	if item != nil {
		s.printf("Uploaded %s (%s)\n", item.Path, humanize.IBytes(uint64(item.Size)))
	}
	return item, nil
}

// NewFsckCommand creates the fsck command
func NewFsckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fsck",
		Short: "Check the workspace tree for structural errors",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			root := s.store.Tree()
			if err := mutate.ValidateTree(root); err != nil {
				return fmt.Errorf("workspace is inconsistent: %w", err)
			}
			s.printf("OK: %d items\n", tree.CountNodes(root))
			return nil
		}),
	}
}

// withSession opens the workspace around fn
func withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		runErr := fn(cmd, s, args)
		if err := s.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to close workspace: %w", err)
		}
		return runErr
	}
}
