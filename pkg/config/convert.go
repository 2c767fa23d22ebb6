package config

import (
	"path/filepath"

	"github.com/OpenMined/SyftUI-sub000/internal/platform"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/prefs"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/syncsim"
)

// StorageConfig returns the backend settings with "~" expanded
func (c *Config) StorageConfig() (storage.Config, error) {
	root, err := platform.ExpandPath(c.Backend.Root)
	if err != nil {
		return storage.Config{}, err
	}
	snapshot, err := platform.ExpandPath(c.Backend.Snapshot)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Type:     c.Backend.Type,
		Root:     root,
		Snapshot: snapshot,
		Latency:  c.Backend.Latency,
		Remote: storage.RemoteConfig{
			URL:     c.Remote.URL,
			Token:   c.Remote.Token,
			Timeout: c.Remote.Timeout,
		},
	}, nil
}

// SimulatorConfig returns the sync status delays
func (c *Config) SimulatorConfig() syncsim.Config {
	return syncsim.Config{
		PendingDelay: c.Sync.PendingDelay,
		SyncingDelay: c.Sync.SyncingDelay,
	}
}

// ViewDefaults returns the listing defaults
func (c *Config) ViewDefaults() navigation.View {
	return navigation.View{
		Mode:       c.View.Mode,
		Sort:       c.View.Sort,
		Order:      c.View.Order,
		ShowHidden: c.View.ShowHidden,
		Exclude:    append([]string(nil), c.View.Exclude...),
	}
}

// LoggerConfig returns the logger settings
func (c *Config) LoggerConfig() (logging.Config, error) {
	file, err := platform.ExpandPath(c.Logging.File)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		Enabled:    c.Logging.Enabled,
		Format:     logging.Format(c.Logging.Format),
		Level:      logging.ParseLevel(c.Logging.Level),
		File:       file,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}, nil
}

// PreferencesPath returns the preferences database, in memory when unset
func (c *Config) PreferencesPath() (string, error) {
	if c.Preferences.Path == "" {
		return prefs.MemoryPath, nil
	}
	return platform.ExpandPath(c.Preferences.Path)
}

// Persistent fills the empty snapshot and preferences paths with files
// under the data directory
func (c *Config) Persistent() error {
	dir, err := platform.DataDir()
	if err != nil {
		return err
	}
	if c.Backend.Snapshot == "" {
		c.Backend.Snapshot = filepath.Join(dir, "workspace.json")
	}
	if c.Preferences.Path == "" {
		c.Preferences.Path = filepath.Join(dir, "preferences.db")
	}
	return nil
}
