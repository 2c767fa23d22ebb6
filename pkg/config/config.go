package config

import (
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
)

// Config represents the application configuration
type Config struct {
	Backend     BackendConfig     `yaml:"backend"`
	Remote      RemoteConfig      `yaml:"remote"`
	Sync        SyncConfig        `yaml:"sync"`
	History     HistoryConfig     `yaml:"history"`
	Upload      UploadConfig      `yaml:"upload"`
	View        ViewConfig        `yaml:"view"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// BackendConfig selects where the workspace tree lives
type BackendConfig struct {
	Type     storage.Kind  `yaml:"type"`     // "memory", "remote" or "local"
	Root     string        `yaml:"root"`     // directory for the local backend
	Snapshot string        `yaml:"snapshot"` // JSON snapshot for the memory backend (empty = not persisted)
	Latency  time.Duration `yaml:"latency"`  // artificial delay of the memory backend
}

// RemoteConfig holds the companion service settings
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// SyncConfig holds the delays of the sync status simulation
type SyncConfig struct {
	PendingDelay time.Duration `yaml:"pending_delay"`
	SyncingDelay time.Duration `yaml:"syncing_delay"`
}

// HistoryConfig bounds the undo stack
type HistoryConfig struct {
	Limit int `yaml:"limit"` // 0 = unbounded
}

// UploadConfig holds upload settings
type UploadConfig struct {
	Grace          time.Duration `yaml:"grace"`           // how long finished uploads stay listed
	BandwidthLimit int64         `yaml:"bandwidth_limit"` // bytes per second, 0 = unlimited
}

// ViewConfig holds the default listing preferences
type ViewConfig struct {
	Mode       navigation.ViewMode  `yaml:"mode"`
	Sort       navigation.SortKey   `yaml:"sort"`
	Order      navigation.SortOrder `yaml:"order"`
	ShowHidden bool                 `yaml:"show_hidden"`
	Exclude    []string             `yaml:"exclude"`
}

// PreferencesConfig locates the preference database
type PreferencesConfig struct {
	Path string `yaml:"path"` // empty = in memory
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json", "text" or "console"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// MetricsConfig enables the Prometheus endpoint of the shell
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Type:    storage.KindMemory,
			Latency: 0,
		},
		Remote: RemoteConfig{
			URL:     "http://127.0.0.1:7938",
			Timeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			PendingDelay: time.Second,
			SyncingDelay: 2 * time.Second,
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Upload: UploadConfig{
			Grace: 2 * time.Second,
		},
		View: ViewConfig{
			Mode:  navigation.ViewGrid,
			Sort:  navigation.SortByName,
			Order: navigation.Ascending,
			Exclude: []string{
				"*.tmp",
				".git/",
			},
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "console",
			Level:   "info",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9108",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend.Type {
	case storage.KindMemory, storage.KindRemote, storage.KindLocal:
	default:
		return &models.ValidationError{
			Field:   "backend.type",
			Message: "must be 'memory', 'remote' or 'local'",
		}
	}
	if c.Backend.Type == storage.KindLocal && c.Backend.Root == "" {
		return &models.ValidationError{
			Field:   "backend.root",
			Message: "is required for the local backend",
		}
	}
	if c.Backend.Type == storage.KindRemote && c.Remote.URL == "" {
		return &models.ValidationError{
			Field:   "remote.url",
			Message: "is required for the remote backend",
		}
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"backend.latency", c.Backend.Latency},
		{"remote.timeout", c.Remote.Timeout},
		{"sync.pending_delay", c.Sync.PendingDelay},
		{"sync.syncing_delay", c.Sync.SyncingDelay},
		{"upload.grace", c.Upload.Grace},
	}
	for _, d := range durations {
		if d.value < 0 {
			return &models.ValidationError{Field: d.field, Message: "must not be negative"}
		}
	}

	if c.History.Limit < 0 {
		return &models.ValidationError{
			Field:   "history.limit",
			Message: "must be 0 (unbounded) or positive",
		}
	}
	if c.Upload.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "upload.bandwidth_limit",
			Message: "must be 0 (unlimited) or positive",
		}
	}

	if c.View.Mode != navigation.ViewGrid && c.View.Mode != navigation.ViewList {
		return &models.ValidationError{
			Field:   "view.mode",
			Message: "must be 'grid' or 'list'",
		}
	}
	if _, err := navigation.ParseSortKey(string(c.View.Sort)); err != nil {
		return &models.ValidationError{Field: "view.sort", Message: err.Error()}
	}
	if _, err := navigation.ParseSortOrder(string(c.View.Order)); err != nil {
		return &models.ValidationError{Field: "view.order", Message: err.Error()}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json', 'text' or 'console'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return &models.ValidationError{
			Field:   "metrics.addr",
			Message: "is required when metrics are enabled",
		}
	}

	return nil
}
