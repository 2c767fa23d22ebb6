package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/syftui/prefs.db", filepath.Join(home, "syftui", "prefs.db")},
		{"/tmp/a/../b", filepath.Clean("/tmp/b")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			if err != nil {
				t.Fatalf("ExpandPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error = %v", err)
	}
	if dir != filepath.Join("/xdg", AppName) {
		t.Errorf("DataDir() = %q", dir)
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err == nil {
		t.Error("empty path should be rejected")
	}
	if err := ValidatePath(t.TempDir()); err != nil {
		t.Errorf("ValidatePath() error = %v", err)
	}
}
