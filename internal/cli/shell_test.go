package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/config"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/output"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/store"
	"github.com/OpenMined/SyftUI-sub000/pkg/syncsim"
)

func testTree() *models.FileSystemItem {
	return &models.FileSystemItem{
		ID: "root", Path: "/", Type: models.TypeFolder,
		Children: []*models.FileSystemItem{
			{
				ID: "A", Name: "A", Path: "/A", Type: models.TypeFolder,
				Children: []*models.FileSystemItem{
					{ID: "x", Name: "x.txt", Path: "/A/x.txt", Type: models.TypeFile, Size: 10},
				},
			},
			{
				ID: "archive", Name: "archive", Path: "/archive", Type: models.TypeFolder,
				Children: []*models.FileSystemItem{
					{ID: "old", Name: "x.txt", Path: "/archive/x.txt", Type: models.TypeFile, Size: 5},
				},
			},
		},
	}
}

// newTestShell builds a shell over an in-memory workspace
func newTestShell(t *testing.T) (*shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	mem, err := storage.NewMemory(storage.MemoryConfig{Root: testTree()})
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	st, err := store.New(store.Options{
		Backend:  mem,
		Notifier: func(syncsim.StatusSink) syncsim.Notifier { return syncsim.Nop{} },
	})
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := config.Default()
	cfg.Output.Progress = false

	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&stderr)

	sh := &shell{
		session: &session{
			cfg:       cfg,
			logger:    logging.NewNullLogger(),
			store:     st,
			formatter: output.NewHumanFormatter(),
			out:       &stdout,
		},
		cmd:   cmd,
		shown: make(map[string]bool),
	}
	sh.commands = shellCommands()
	return sh, &stdout, &stderr
}

func runScript(t *testing.T, sh *shell, lines ...string) {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := sh.loop(context.Background(), in); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
}

func TestShellNavigateAndCreate(t *testing.T) {
	sh, stdout, stderr := newTestShell(t)

	runScript(t, sh, "mkdir projects", "cd projects", "touch notes.txt", "ls")

	if stderr.Len() != 0 {
		t.Fatalf("unexpected errors: %s", stderr.String())
	}
	if _, ok := sh.store.ItemAt("/projects/notes.txt"); !ok {
		t.Error("notes.txt should exist in /projects")
	}
	if sh.store.CurrentPath() != "/projects" {
		t.Errorf("CurrentPath() = %s, want /projects", sh.store.CurrentPath())
	}
	out := stdout.String()
	if !strings.Contains(out, "syftui:/projects> ") {
		t.Errorf("prompt should show the current folder:\n%s", out)
	}
	if !strings.Contains(out, "notes.txt") {
		t.Errorf("ls should list notes.txt:\n%s", out)
	}
}

func TestShellUndoRedo(t *testing.T) {
	sh, stdout, _ := newTestShell(t)

	runScript(t, sh, "cd A", "rename x.txt y.txt", "undo")
	if _, ok := sh.store.ItemAt("/A/x.txt"); !ok {
		t.Error("undo should restore x.txt")
	}
	if !strings.Contains(stdout.String(), "Undid ") {
		t.Errorf("undo should report the operation:\n%s", stdout.String())
	}

	runScript(t, sh, "key ctrl+y")
	if _, ok := sh.store.ItemAt("/A/y.txt"); !ok {
		t.Error("ctrl+y should redo the rename")
	}
}

func TestShellConflict(t *testing.T) {
	sh, stdout, stderr := newTestShell(t)

	runScript(t, sh, "cp /A/x.txt /archive")
	if len(sh.store.PendingConflicts()) != 1 {
		t.Fatalf("PendingConflicts() = %d, want 1", len(sh.store.PendingConflicts()))
	}
	if !strings.Contains(stdout.String(), "Resolve with:") {
		t.Errorf("conflict should be reported:\n%s", stdout.String())
	}

	runScript(t, sh, "resolve rename")
	if stderr.Len() != 0 {
		t.Fatalf("unexpected errors: %s", stderr.String())
	}
	if _, ok := sh.store.ItemAt("/archive/x (copy).txt"); !ok {
		t.Error("rename should place the copy under a new name")
	}
	if got, _ := sh.store.ItemAt("/archive/x.txt"); got == nil || got.ID != "old" {
		t.Error("the existing file should be untouched")
	}
}

func TestShellErrors(t *testing.T) {
	sh, _, stderr := newTestShell(t)

	runScript(t, sh, "frobnicate", "rm missing.txt", "exit", "mkdir never")

	errs := stderr.String()
	if !strings.Contains(errs, `unknown command "frobnicate"`) {
		t.Errorf("missing unknown command error:\n%s", errs)
	}
	if !strings.Contains(errs, models.ErrNotFound.Error()) {
		t.Errorf("missing not found error:\n%s", errs)
	}
	if _, ok := sh.store.ItemAt("/never"); ok {
		t.Error("commands after exit must not run")
	}
}

func TestListView(t *testing.T) {
	defer func() { listFlags = ListFlags{} }()

	base := navigation.DefaultView()
	base.Exclude = []string{"*.tmp"}

	listFlags = ListFlags{All: true, Sort: "size", Order: "desc"}
	v, err := listView(base)
	if err != nil {
		t.Fatalf("listView() error = %v", err)
	}
	if !v.ShowHidden || v.Exclude != nil {
		t.Error("--all should show hidden and excluded items")
	}
	if v.Sort != navigation.SortBySize || v.Order != navigation.Descending {
		t.Errorf("sort = %s %s, want size desc", v.Sort, v.Order)
	}

	listFlags = ListFlags{Sort: "colour"}
	if _, err := listView(base); err == nil {
		t.Error("an unknown sort key should fail")
	}
}

func TestApplyFlagsToConfig(t *testing.T) {
	defer func() { globalFlags = GlobalFlags{} }()

	globalFlags = GlobalFlags{Verbose: true, Quiet: true, Output: "json"}
	cfg := config.Default()
	if err := applyFlagsToConfig(cfg); err != nil {
		t.Fatalf("applyFlagsToConfig() error = %v", err)
	}
	if !cfg.Logging.Enabled || cfg.Logging.Level != "debug" {
		t.Error("--verbose should enable debug logging")
	}
	if !cfg.Output.Quiet || cfg.Output.Progress {
		t.Error("--quiet should silence output and progress")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %s, want json", cfg.Output.Format)
	}

	globalFlags = GlobalFlags{Backend: "ftp"}
	if err := applyFlagsToConfig(config.Default()); err == nil {
		t.Error("an unknown backend should fail validation")
	}
}
