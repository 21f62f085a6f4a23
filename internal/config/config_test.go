package config

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SEED", "TARGET", "LOAD_DELAY_MS", "SAVE_DELAY_MS",
		"LOAD_FAILURE_RATE", "SAVE_FAILURE_RATE", "LOG_FILE", "LOG_LEVEL",
	} {
		t.Setenv(envPrefix+name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Target != defaultTarget {
		t.Fatalf("Target = %d, want %d", cfg.Target, defaultTarget)
	}
	if cfg.LoadDelay != 600*time.Millisecond || cfg.SaveDelay != 600*time.Millisecond {
		t.Fatalf("delays = %v/%v, want 600ms", cfg.LoadDelay, cfg.SaveDelay)
	}
	if cfg.LoadFailureRate != 0.15 || cfg.SaveFailureRate != 0.18 {
		t.Fatalf("rates = %v/%v, want 0.15/0.18", cfg.LoadFailureRate, cfg.SaveFailureRate)
	}
	if cfg.SeedPath != "" {
		t.Fatalf("SeedPath = %q, want embedded seed", cfg.SeedPath)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if !strings.HasPrefix(cfg.PrefsPath, home) {
		t.Fatalf("PrefsPath = %q, want it under HOME %q", cfg.PrefsPath, home)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_ParsesAndExpandsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
seed_path = "  ~/seed.json  "
target = 40
load_delay_ms = 10
save_delay_ms = 0
load_failure_rate = 0.0
save_failure_rate = 0.5
log_file = "~/logs/console.log"
log_level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SeedPath != filepath.Join(home, "seed.json") {
		t.Fatalf("SeedPath = %q, want under HOME", cfg.SeedPath)
	}
	if cfg.Target != 40 {
		t.Fatalf("Target = %d, want 40", cfg.Target)
	}
	if cfg.LoadDelay != 10*time.Millisecond || cfg.SaveDelay != 0 {
		t.Fatalf("delays = %v/%v, want 10ms/0", cfg.LoadDelay, cfg.SaveDelay)
	}
	if cfg.LoadFailureRate != 0 || cfg.SaveFailureRate != 0.5 {
		t.Fatalf("rates = %v/%v, want 0/0.5", cfg.LoadFailureRate, cfg.SaveFailureRate)
	}
	if cfg.LogFile != filepath.Join(home, "logs", "console.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_EmptyPathsUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cfg, err := Load(writeConfig(t, `
prefs_path = "   "
log_file = ""
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.PrefsPath != want.PrefsPath || cfg.LogFile != want.LogFile {
		t.Fatalf("paths = %q/%q, want %q/%q", cfg.PrefsPath, cfg.LogFile, want.PrefsPath, want.LogFile)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)
	t.Setenv("LEADCONSOLE_TARGET", "12")
	t.Setenv("LEADCONSOLE_SAVE_DELAY_MS", "5")
	t.Setenv("LEADCONSOLE_SAVE_FAILURE_RATE", "0")
	t.Setenv("LEADCONSOLE_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, `
target = 40
save_delay_ms = 900
save_failure_rate = 0.5
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Target != 12 {
		t.Fatalf("Target = %d, want 12", cfg.Target)
	}
	if cfg.SaveDelay != 5*time.Millisecond {
		t.Fatalf("SaveDelay = %v, want 5ms", cfg.SaveDelay)
	}
	if cfg.SaveFailureRate != 0 {
		t.Fatalf("SaveFailureRate = %v, want 0", cfg.SaveFailureRate)
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Fatalf("SlogLevel = %v, want warn", cfg.SlogLevel())
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "malformed toml", body: "target = [", want: "parse config"},
		{name: "rate of one", body: "load_failure_rate = 1.0", want: "load_failure_rate"},
		{name: "negative rate", body: "save_failure_rate = -0.1", want: "save_failure_rate"},
		{name: "nan rate", body: "load_failure_rate = nan", want: "load_failure_rate"},
		{name: "nan env rate", env: map[string]string{"LEADCONSOLE_SAVE_FAILURE_RATE": "NaN"}, want: "save_failure_rate"},
		{name: "negative target", body: "target = -1", want: "target"},
		{name: "bad level", body: `log_level = "loud"`, want: "log_level"},
		{name: "bad env int", env: map[string]string{"LEADCONSOLE_TARGET": "many"}, want: "LEADCONSOLE_TARGET"},
		{name: "bad env rate", env: map[string]string{"LEADCONSOLE_LOAD_FAILURE_RATE": "x"}, want: "LEADCONSOLE_LOAD_FAILURE_RATE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LEADCONSOLE_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("LEADCONSOLE_TEST_DOTENV", "")
	os.Unsetenv("LEADCONSOLE_TEST_DOTENV")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	if got := os.Getenv("LEADCONSOLE_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("env = %q, want from-file", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing env file returned error: %v", err)
	}
}

func TestExpandPath_Empty(t *testing.T) {
	if _, err := expandPath("  "); err == nil {
		t.Fatal("expandPath returned nil error for empty path")
	}
}

func TestValidate_Rates(t *testing.T) {
	cases := []struct {
		rate float64
		ok   bool
	}{
		{0, true},
		{0.1, true},
		{0.999, true},
		{1, false},
		{-0.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tc := range cases {
		cfg := Default()
		cfg.SaveFailureRate = tc.rate
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("Validate(save rate %v) = %v, want nil", tc.rate, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("Validate(save rate %v) = nil, want error", tc.rate)
		}
	}
}
