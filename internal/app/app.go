package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/leadconsole/internal/config"
	"github.com/five82/leadconsole/internal/dataset"
	"github.com/five82/leadconsole/internal/prefs"
	"github.com/five82/leadconsole/internal/simulate"
	"github.com/five82/leadconsole/internal/state"
	"github.com/five82/leadconsole/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath string
	PrefsPath  string // overrides prefs_path from the config when set
	EnvFile    string // empty uses .env in the working directory
}

// Runtime is the wired console: settings, logger, preference slot and the
// lead store.
type Runtime struct {
	Config config.Config
	Logger *slog.Logger
	Prefs  prefs.Backend
	Store  *state.Store

	closers []func() error
}

// Build loads configuration and wires every component. Callers must Close the
// returned Runtime.
func Build(opts Options) (*Runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	slot, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	rt, err := wire(cfg, logger, slot)
	if err != nil {
		_ = slot.Close()
		_ = closeLog()
		return nil, err
	}
	rt.closers = []func() error{slot.Close, closeLog}
	return rt, nil
}

// loadConfig applies the .env file, the config file and the command line
// overrides in that order.
func loadConfig(opts Options) (config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(opts.PrefsPath) != "" {
		cfg.PrefsPath = opts.PrefsPath
	}
	return cfg, nil
}

func wire(cfg config.Config, logger *slog.Logger, slot prefs.Backend) (*Runtime, error) {
	seed, err := dataset.LoadSeed(cfg.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	leads, err := dataset.Expand(seed, cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("expand dataset: %w", err)
	}

	loader, err := simulate.New(cfg.LoadDelay, cfg.LoadFailureRate, nil)
	if err != nil {
		return nil, fmt.Errorf("load simulator: %w", err)
	}
	saver, err := simulate.New(cfg.SaveDelay, cfg.SaveFailureRate, nil)
	if err != nil {
		return nil, fmt.Errorf("save simulator: %w", err)
	}

	store := state.New(state.Options{
		Dataset:  leads,
		Loader:   loader,
		Saver:    saver,
		Prefs:    slot,
		Observer: state.NewLogObserver(logger),
	})

	seedSource := cfg.SeedPath
	if seedSource == "" {
		seedSource = "embedded"
	}
	logger.Info("console ready",
		"seed", seedSource,
		"seed_leads", len(seed),
		"leads", len(leads),
		"prefs", slot.Path(),
	)

	return &Runtime{Config: cfg, Logger: logger, Prefs: slot, Store: store}, nil
}

// openLogger writes slog text records to the configured log file. The
// terminal is owned by the UI, so nothing is logged to stderr.
func openLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	if strings.TrimSpace(cfg.LogFile) == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler), f.Close, nil
}

// Close releases the preference slot and the log file.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Run boots the console TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := Build(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = ui.Run(ui.Options{
		Context: ctx,
		Store:   rt.Store,
		Prefs:   rt.Prefs,
		LogPath: rt.Config.LogFile,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
