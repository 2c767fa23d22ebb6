package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

var errExit = errors.New("exit")

type shellCommand struct {
	usage string
	help  string
	run   func(ctx context.Context, sh *shell, args []string) error
}

// shell is an interactive session over one store
type shell struct {
	*session
	cmd      *cobra.Command
	commands map[string]shellCommand
	shown    map[string]bool
	held     []io.Closer
}

// NewShellCommand creates the shell command
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit the workspace interactively",
		Long: `Start an interactive session: navigate with cd/back/forward, select
items, cut/copy/paste, undo/redo and resolve naming conflicts. Type "help"
for the command list.`,
		Args: cobra.NoArgs,
		RunE: withSession(runShell),
	}
}

func runShell(cmd *cobra.Command, s *session, args []string) error {
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	if s.cfg.Metrics.Enabled {
		srv := serveMetrics(ctx, s.cfg.Metrics.Addr, s.logger)
		defer srv.Close()
	}
	go func() {
		if err := s.store.Watch(ctx); err != nil {
			s.logger.Error(ctx, "Workspace watcher stopped", err, nil)
		}
	}()

	sh := &shell{session: s, cmd: cmd, shown: make(map[string]bool)}
	sh.commands = shellCommands()
	defer func() {
		for _, c := range sh.held {
			c.Close()
		}
	}()
	return sh.loop(ctx, cmd.InOrStdin())
}

func (sh *shell) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(sh.out, "syftui:%s> ", sh.store.CurrentPath())
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		err := sh.exec(ctx, fields[0], fields[1:])
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(sh.cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		sh.flushNotifications()
	}
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	c, ok := sh.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	return c.run(ctx, sh, args)
}

// flushNotifications prints the toasts not shown yet
func (sh *shell) flushNotifications() {
	for _, n := range sh.store.Notifications() {
		if sh.shown[n.ID] {
			continue
		}
		sh.shown[n.ID] = true
		fmt.Fprintf(sh.cmd.ErrOrStderr(), "[%s] %s\n", n.Level, n.Message)
	}
}

// ids resolves names relative to the current folder
func (sh *shell) ids(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("missing item names")
	}
	return sh.resolveIDs(args)
}

func (sh *shell) reportConflict(err error) error {
	if _, ok := models.AsConflict(err); !ok {
		return err
	}
	sh.formatter.Conflicts(sh.out, sh.store.PendingConflicts())
	fmt.Fprintln(sh.out, "Resolve with: resolve replace|rename|skip [all]")
	return nil
}

func shellCommands() map[string]shellCommand {
	cmds := map[string]shellCommand{
		"ls": {"ls [path]", "list the current folder", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 {
				return sh.formatter.List(sh.out, sh.store.CurrentPath(), sh.store.Items())
			}
			item, err := sh.resolve(args[0])
			if err != nil {
				return err
			}
			return sh.formatter.List(sh.out, item.Path, sh.store.View().Display(item.Children))
		}},
		"tree": {"tree [path]", "show the hierarchy", func(ctx context.Context, sh *shell, args []string) error {
			p := ""
			if len(args) > 0 {
				p = args[0]
			}
			item, err := sh.resolve(p)
			if err != nil {
				return err
			}
			return sh.formatter.Tree(sh.out, item, -1)
		}},
		"stat": {"stat <name>", "show item details", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: stat <name>")
			}
			item, err := sh.resolve(args[0])
			if err != nil {
				return err
			}
			return sh.formatter.Item(sh.out, item)
		}},
		"cd": {"cd <path>", "open a folder", func(ctx context.Context, sh *shell, args []string) error {
			target := "/"
			if len(args) > 0 {
				target = args[0]
			}
			if target == ".." {
				target = tree.Parent(sh.store.CurrentPath())
			}
			return sh.store.NavigateTo(sh.abs(target))
		}},
		"back": {"back", "go to the previous folder", func(ctx context.Context, sh *shell, args []string) error {
			if _, ok := sh.store.GoBack(); !ok {
				return errors.New("no previous folder")
			}
			return nil
		}},
		"forward": {"forward", "go to the next folder", func(ctx context.Context, sh *shell, args []string) error {
			if _, ok := sh.store.GoForward(); !ok {
				return errors.New("no next folder")
			}
			return nil
		}},
		"select": {"select <name>...", "replace the selection", func(ctx context.Context, sh *shell, args []string) error {
			ids, err := sh.ids(args)
			if err != nil {
				return err
			}
			sh.store.Select(ids[0])
			for _, id := range ids[1:] {
				sh.store.ToggleSelect(id)
			}
			return nil
		}},
		"toggle": {"toggle <name>", "add or remove one item", func(ctx context.Context, sh *shell, args []string) error {
			ids, err := sh.ids(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				sh.store.ToggleSelect(id)
			}
			return nil
		}},
		"range": {"range <name>", "select from the last clicked item to name", func(ctx context.Context, sh *shell, args []string) error {
			ids, err := sh.ids(args)
			if err != nil {
				return err
			}
			sh.store.SelectRange(ids[0])
			return nil
		}},
		"selection": {"selection", "print the selected items", func(ctx context.Context, sh *shell, args []string) error {
			for _, id := range sh.store.Selection() {
				if item, ok := sh.store.Item(id); ok {
					fmt.Fprintln(sh.out, item.Path)
				}
			}
			return nil
		}},
		"clear": {"clear", "deselect everything", func(ctx context.Context, sh *shell, args []string) error {
			sh.store.ClearSelection()
			return nil
		}},
		"cut": {"cut [name]...", "cut the named or selected items", func(ctx context.Context, sh *shell, args []string) error {
			return sh.clip(args, sh.store.Cut)
		}},
		"copy": {"copy [name]...", "copy the named or selected items", func(ctx context.Context, sh *shell, args []string) error {
			return sh.clip(args, sh.store.CopyToClipboard)
		}},
		"paste": {"paste", "paste the clipboard into the current folder", func(ctx context.Context, sh *shell, args []string) error {
			items, err := sh.store.Paste(ctx)
			if err != nil {
				return sh.reportConflict(err)
			}
			if items == nil {
				fmt.Fprintln(sh.out, "Nothing pasted")
			}
			return nil
		}},
		"mkdir": {"mkdir <name>", "create a folder", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: mkdir <name>")
			}
			_, err := sh.store.CreateFolder(ctx, "", args[0])
			return err
		}},
		"touch": {"touch <name>", "create an empty file", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: touch <name>")
			}
			_, err := sh.store.CreateFile(ctx, "", args[0])
			return err
		}},
		"rm": {"rm [name]...", "delete the named or selected items", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 {
				return sh.store.DeleteSelection(ctx)
			}
			ids, err := sh.ids(args)
			if err != nil {
				return err
			}
			return sh.store.Delete(ctx, ids)
		}},
		"rename": {"rename <name> <new-name>", "rename an item", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 2 {
				return errors.New("usage: rename <name> <new-name>")
			}
			item, err := sh.resolve(args[0])
			if err != nil {
				return err
			}
			_, err = sh.store.Rename(ctx, item.ID, args[1])
			return err
		}},
		"mv": {"mv <name>... <folder>", "move items", func(ctx context.Context, sh *shell, args []string) error {
			return sh.transfer(ctx, args, sh.store.Move)
		}},
		"cp": {"cp <name>... <folder>", "copy items", func(ctx context.Context, sh *shell, args []string) error {
			return sh.transfer(ctx, args, sh.store.Copy)
		}},
		"upload": {"upload <file> [name]", "upload a host file into the current folder", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 || len(args) > 2 {
				return errors.New("usage: upload <file> [name]")
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			f, name, size, err := openUpload(args[0], name)
			if err != nil {
				return err
			}
			_, err = sh.upload(ctx, f, "", name, size)
			if isConflict(err) {
				// the pending upload reads f once resolved
				sh.held = append(sh.held, f)
				return sh.reportConflict(err)
			}
			f.Close()
			return err
		}},
		"uploads": {"uploads", "list uploads", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 1 && args[0] == "clear" {
				sh.store.ClearUploads()
				return nil
			}
			return sh.formatter.Uploads(sh.out, sh.store.Uploads())
		}},
		"conflicts": {"conflicts", "list pending conflicts", func(ctx context.Context, sh *shell, args []string) error {
			return sh.formatter.Conflicts(sh.out, sh.store.PendingConflicts())
		}},
		"resolve": {"resolve replace|rename|skip [all]", "settle the next conflict", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 {
				return errors.New("usage: resolve replace|rename|skip [all]")
			}
			all := len(args) > 1 && args[1] == "all"
			done, err := sh.store.ResolveConflicts(ctx, models.ConflictResolution(args[0]), all)
			if err != nil {
				return err
			}
			if !done {
				return sh.formatter.Conflicts(sh.out, sh.store.PendingConflicts())
			}
			return nil
		}},
		"cancel": {"cancel", "drop the pending conflicts", func(ctx context.Context, sh *shell, args []string) error {
			sh.store.CancelConflicts()
			return nil
		}},
		"undo": {"undo", "revert the last operation", func(ctx context.Context, sh *shell, args []string) error {
			cmd, err := sh.store.Undo(ctx)
			if err == nil && cmd != nil {
				fmt.Fprintf(sh.out, "Undid %s\n", cmd.Describe())
			}
			return err
		}},
		"redo": {"redo", "re-apply the last undone operation", func(ctx context.Context, sh *shell, args []string) error {
			cmd, err := sh.store.Redo(ctx)
			if err == nil && cmd != nil {
				fmt.Fprintf(sh.out, "Redid %s\n", cmd.Describe())
			}
			return err
		}},
		"key": {"key <chord>", "press a shortcut such as ctrl+z", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: key <chord>")
			}
			key, err := history.ParseKey(args[0])
			if err != nil {
				return err
			}
			action, err := sh.store.HandleKey(ctx, key, false)
			if action == history.ActionNone {
				fmt.Fprintf(sh.out, "%s is not bound\n", key)
			}
			return err
		}},
		"history": {"history", "list undoable operations", func(ctx context.Context, sh *shell, args []string) error {
			entries := sh.store.History().Entries()
			if len(entries) == 0 {
				fmt.Fprintln(sh.out, "Nothing to undo")
			}
			for i := len(entries) - 1; i >= 0; i-- {
				fmt.Fprintf(sh.out, "  %s\n", entries[i].Describe())
			}
			return nil
		}},
		"refresh": {"refresh", "reload the tree from the backend", func(ctx context.Context, sh *shell, args []string) error {
			return sh.store.Refresh(ctx)
		}},
		"sort": {"sort <key> [asc|desc]", "change the listing order", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 {
				return errors.New("usage: sort <key> [asc|desc]")
			}
			v := sh.store.View()
			key, err := navigation.ParseSortKey(args[0])
			if err != nil {
				return err
			}
			v.Sort = key
			if len(args) > 1 {
				if v.Order, err = navigation.ParseSortOrder(args[1]); err != nil {
					return err
				}
			}
			return sh.store.SetView(ctx, v)
		}},
		"hidden": {"hidden on|off", "show or hide dot files", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: hidden on|off")
			}
			v := sh.store.View()
			v.ShowHidden = args[0] == "on"
			return sh.store.SetView(ctx, v)
		}},
		"fav": {"fav [add|rm <path>]", "list or edit favorite folders", func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 2 {
				switch args[0] {
				case "add":
					return sh.store.AddFavorite(sh.abs(args[1]))
				case "rm":
					return sh.store.RemoveFavorite(sh.abs(args[1]))
				}
				return errors.New("usage: fav [add|rm <path>]")
			}
			favorites, err := sh.store.Favorites()
			if err != nil {
				return err
			}
			for _, p := range favorites {
				fmt.Fprintln(sh.out, p)
			}
			return nil
		}},
		"exit": {"exit", "leave the shell", func(ctx context.Context, sh *shell, args []string) error {
			return errExit
		}},
	}
	cmds["quit"] = cmds["exit"]
	cmds["help"] = shellCommand{"help", "list commands", func(ctx context.Context, sh *shell, args []string) error {
		names := make([]string, 0, len(sh.commands))
		for name := range sh.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := sh.commands[name]
			fmt.Fprintf(sh.out, "  %-36s %s\n", c.usage, c.help)
		}
		return nil
	}}
	return cmds
}

// clip puts the named items, or the selection, on the clipboard
func (sh *shell) clip(args []string, put func(ids []string) int) error {
	ids := sh.store.Selection()
	if len(args) > 0 {
		var err error
		if ids, err = sh.resolveIDs(args); err != nil {
			return err
		}
	}
	if put(ids) == 0 {
		return errors.New("nothing selected")
	}
	return nil
}

func (sh *shell) transfer(ctx context.Context, args []string, fn func(context.Context, []string, string) ([]*models.FileSystemItem, error)) error {
	if len(args) < 2 {
		return errors.New("usage: <name>... <folder>")
	}
	ids, err := sh.resolveIDs(args[:len(args)-1])
	if err != nil {
		return err
	}
	_, err = fn(ctx, ids, sh.abs(args[len(args)-1]))
	return sh.reportConflict(err)
}

func isConflict(err error) bool {
	_, ok := models.AsConflict(err)
	return ok
}

// serveMetrics exposes the prometheus registry until ctx is done
func serveMetrics(ctx context.Context, addr string, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "Serving metrics", logging.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Metrics server failed", err, nil)
		}
	}()
	return srv
}
