package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the console settings.
type Config struct {
	SeedPath        string
	Target          int
	LoadDelay       time.Duration
	SaveDelay       time.Duration
	LoadFailureRate float64
	SaveFailureRate float64
	PrefsPath       string
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/leadconsole/config.toml"
	defaultPrefsPath       = "~/.config/leadconsole/prefs.toml"
	defaultLogFile         = "~/.local/state/leadconsole/leadconsole.log"
	defaultTarget          = 100
	defaultLoadDelay       = 600 * time.Millisecond
	defaultSaveDelay       = 600 * time.Millisecond
	defaultLoadFailureRate = 0.15
	defaultSaveFailureRate = 0.18
	defaultLogLevel        = "info"

	envPrefix = "LEADCONSOLE_"
)

// Default returns the configuration used when no file or overrides exist.
// Paths are expanded.
func Default() Config {
	return Config{
		Target:          defaultTarget,
		LoadDelay:       defaultLoadDelay,
		SaveDelay:       defaultSaveDelay,
		LoadFailureRate: defaultLoadFailureRate,
		SaveFailureRate: defaultSaveFailureRate,
		PrefsPath:       mustExpand(defaultPrefsPath),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

type fileConfig struct {
	SeedPath        *string  `toml:"seed_path"`
	Target          *int     `toml:"target"`
	LoadDelayMS     *int     `toml:"load_delay_ms"`
	SaveDelayMS     *int     `toml:"save_delay_ms"`
	LoadFailureRate *float64 `toml:"load_failure_rate"`
	SaveFailureRate *float64 `toml:"save_failure_rate"`
	PrefsPath       *string  `toml:"prefs_path"`
	LogFile         *string  `toml:"log_file"`
	LogLevel        *string  `toml:"log_level"`
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already set win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads the config file at path (or the default location), then applies
// LEADCONSOLE_* environment overrides and validates the result. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if err := raw.apply(&cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fileConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func (raw fileConfig) apply(cfg *Config) error {
	if raw.SeedPath != nil {
		cfg.SeedPath = strings.TrimSpace(*raw.SeedPath)
	}
	if raw.Target != nil {
		cfg.Target = *raw.Target
	}
	if raw.LoadDelayMS != nil {
		cfg.LoadDelay = time.Duration(*raw.LoadDelayMS) * time.Millisecond
	}
	if raw.SaveDelayMS != nil {
		cfg.SaveDelay = time.Duration(*raw.SaveDelayMS) * time.Millisecond
	}
	if raw.LoadFailureRate != nil {
		cfg.LoadFailureRate = *raw.LoadFailureRate
	}
	if raw.SaveFailureRate != nil {
		cfg.SaveFailureRate = *raw.SaveFailureRate
	}
	if raw.PrefsPath != nil && strings.TrimSpace(*raw.PrefsPath) != "" {
		cfg.PrefsPath = *raw.PrefsPath
	}
	if raw.LogFile != nil && strings.TrimSpace(*raw.LogFile) != "" {
		cfg.LogFile = *raw.LogFile
	}
	if raw.LogLevel != nil && strings.TrimSpace(*raw.LogLevel) != "" {
		cfg.LogLevel = *raw.LogLevel
	}
	return cfg.expandPaths()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("SEED"); ok {
		cfg.SeedPath = v
	}
	if v, ok := get("TARGET"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sTARGET: %w", envPrefix, err)
		}
		cfg.Target = n
	}
	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"LOAD_DELAY_MS", &cfg.LoadDelay},
		{"SAVE_DELAY_MS", &cfg.SaveDelay},
	} {
		if v, ok := get(d.name); ok {
			ms, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", envPrefix, d.name, err)
			}
			*d.dst = time.Duration(ms) * time.Millisecond
		}
	}
	for _, r := range []struct {
		name string
		dst  *float64
	}{
		{"LOAD_FAILURE_RATE", &cfg.LoadFailureRate},
		{"SAVE_FAILURE_RATE", &cfg.SaveFailureRate},
	} {
		if v, ok := get(r.name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", envPrefix, r.name, err)
			}
			*r.dst = f
		}
	}
	if v, ok := get("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return cfg.expandPaths()
}

// Validate reports settings the console cannot run with.
func (c Config) Validate() error {
	if c.Target < 0 {
		return fmt.Errorf("target must not be negative, got %d", c.Target)
	}
	if c.LoadDelay < 0 || c.SaveDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if !validRate(c.LoadFailureRate) {
		return fmt.Errorf("load_failure_rate %v outside [0,1)", c.LoadFailureRate)
	}
	if !validRate(c.SaveFailureRate) {
		return fmt.Errorf("save_failure_rate %v outside [0,1)", c.SaveFailureRate)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// validRate reports whether r is a usable failure probability in [0,1).
func validRate(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r < 1
}

// SlogLevel returns the configured log level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", value)
	}
	return level, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.SeedPath, &c.PrefsPath, &c.LogFile} {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
