package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/config"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/output"
	"github.com/OpenMined/SyftUI-sub000/pkg/prefs"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/store"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// session is one loaded workspace with everything a command needs
type session struct {
	cfg       *config.Config
	logger    logging.Logger
	prefs     *prefs.Store
	store     *store.Store
	formatter output.Formatter
	out       io.Writer
}

// loadConfig reads the --config file, or the default location
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	if globalFlags.Backend != "" {
		cfg.Backend.Type = storage.Kind(globalFlags.Backend)
	}
	if globalFlags.Output != "" {
		cfg.Output.Format = globalFlags.Output
	}
	if globalFlags.Quiet {
		cfg.Output.Quiet = true
		cfg.Output.Progress = false
	}
	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	logCfg, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	logCfg.Output = os.Stderr
	return logging.New(logCfg)
}

// openSession loads the configuration, connects the backend and loads the
// workspace tree
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	formatter, err := output.New(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	storageCfg, err := cfg.StorageConfig()
	if err != nil {
		logger.Close()
		return nil, err
	}
	backend, err := storage.New(storageCfg)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	s := &session{
		cfg:       cfg,
		logger:    logger,
		formatter: formatter,
		out:       cmd.OutOrStdout(),
	}

	prefsPath, err := cfg.PreferencesPath()
	if err != nil {
		backend.Close()
		logger.Close()
		return nil, err
	}
	s.prefs, err = prefs.Open(prefsPath)
	if err != nil {
		backend.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	s.store, err = store.New(store.Options{
		Backend:        backend,
		BackendName:    string(storageCfg.Type),
		Logger:         logger,
		Sync:           cfg.SimulatorConfig(),
		HistoryLimit:   cfg.History.Limit,
		UploadGrace:    cfg.Upload.Grace,
		BandwidthLimit: cfg.Upload.BandwidthLimit,
		View:           cfg.ViewDefaults(),
		Prefs:          s.prefs,
	})
	if err != nil {
		backend.Close()
		s.prefs.Close()
		logger.Close()
		return nil, err
	}

	if err := s.store.Load(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	return s, nil
}

// Close releases the store, the preferences and the logger
func (s *session) Close() error {
	err := s.store.Close()
	if perr := s.prefs.Close(); err == nil {
		err = perr
	}
	s.logger.Close()
	return err
}

// printf writes unless --quiet is set
func (s *session) printf(format string, args ...any) {
	if s.cfg.Output.Quiet {
		return
	}
	fmt.Fprintf(s.out, format, args...)
}

// resolve returns the item at p, relative to the current folder unless
// absolute
func (s *session) resolve(p string) (*models.FileSystemItem, error) {
	abs := s.abs(p)
	item, ok := s.store.ItemAt(abs)
	if !ok {
		return nil, fmt.Errorf("%s: %w", abs, models.ErrNotFound)
	}
	return item, nil
}

func (s *session) abs(p string) string {
	if p == "" {
		return s.store.CurrentPath()
	}
	if p[0] == '/' {
		return tree.Normalize(p)
	}
	return tree.Join(s.store.CurrentPath(), p)
}

// resolveIDs maps paths to item ids
func (s *session) resolveIDs(paths []string) ([]string, error) {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		item, err := s.resolve(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// settle resolves a naming conflict with the --on-conflict policy. Without
// a policy the conflict is reported as an error.
func (s *session) settle(ctx context.Context, err error, policy string) error {
	ce, ok := models.AsConflict(err)
	if !ok {
		return err
	}
	if policy == "" {
		s.formatter.Conflicts(os.Stderr, s.store.PendingConflicts())
		return fmt.Errorf("%w (use --on-conflict replace|rename|skip)", ce)
	}
	res := models.ConflictResolution(policy)
	if !res.Valid() {
		s.store.CancelConflicts()
		return fmt.Errorf("unknown conflict policy: %s (use: replace, rename, skip)", policy)
	}
	_, err = s.store.ResolveConflicts(ctx, res, true)
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
