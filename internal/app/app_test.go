package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leadconsole/internal/config"
)

var envKeys = []string{
	"SEED", "TARGET", "LOAD_DELAY_MS", "SAVE_DELAY_MS",
	"LOAD_FAILURE_RATE", "SAVE_FAILURE_RATE", "LOG_FILE", "LOG_LEVEL",
}

type testPaths struct {
	config string
	prefs  string
	log    string
}

// writeConfig writes a config with no latency and no failures into a temp dir.
// extra is appended verbatim.
func writeConfig(t *testing.T, extra string) testPaths {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv("LEADCONSOLE_"+k, "")
	}

	dir := t.TempDir()
	p := testPaths{
		config: filepath.Join(dir, "config.toml"),
		prefs:  filepath.Join(dir, "prefs.toml"),
		log:    filepath.Join(dir, "logs", "leadconsole.log"),
	}
	content := fmt.Sprintf(`target = 12
load_delay_ms = 0
save_delay_ms = 0
load_failure_rate = 0.0
save_failure_rate = 0.0
prefs_path = %q
log_file = %q
%s
`, p.prefs, p.log, extra)
	require.NoError(t, os.WriteFile(p.config, []byte(content), 0o644))
	return p
}

func TestBuild_WiresStore(t *testing.T) {
	paths := writeConfig(t, "")

	rt, err := Build(Options{ConfigPath: paths.config})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 12, rt.Config.Target)
	assert.Equal(t, paths.prefs, rt.Prefs.Path())

	snap := rt.Store.Snapshot()
	assert.False(t, snap.Loaded, "Build does not load")
	assert.Empty(t, snap.Leads)

	rt.Store.Load(context.Background())
	snap = rt.Store.Snapshot()
	require.Len(t, snap.Leads, 12)
	assert.Empty(t, snap.LastError)

	require.NoError(t, rt.Close())
	data, err := os.ReadFile(paths.log)
	require.NoError(t, err)
	assert.Contains(t, string(data), "console ready")
	assert.Contains(t, string(data), "msg=store_op op=load")
}

func TestBuild_ExpandsToTarget(t *testing.T) {
	paths := writeConfig(t, "")
	t.Setenv("LEADCONSOLE_TARGET", "30")

	rt, err := Build(Options{ConfigPath: paths.config})
	require.NoError(t, err)
	defer rt.Close()

	rt.Store.Load(context.Background())
	snap := rt.Store.Snapshot()
	require.Len(t, snap.Leads, 30)
	_, ok := snap.Lead("lead-13")
	assert.True(t, ok)
}

func TestBuild_PrefsFlagOverridesConfig(t *testing.T) {
	paths := writeConfig(t, "")
	other := filepath.Join(t.TempDir(), "other.toml")

	rt, err := Build(Options{ConfigPath: paths.config, PrefsPath: other})
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, other, rt.Prefs.Path())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"failure rate out of range", "", "load config"},
		{"missing seed file", `seed_path = "/nonexistent/leads.json"`, "load seed"},
		{"malformed toml", "target = [", "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := writeConfig(t, tt.extra)
			if tt.extra == "" {
				t.Setenv("LEADCONSOLE_SAVE_FAILURE_RATE", "1")
			}
			rt, err := Build(Options{ConfigPath: paths.config})
			require.Error(t, err)
			assert.Nil(t, rt)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenLogger_EmptyPathDiscards(t *testing.T) {
	logger, closeLog, err := openLogger(config.Config{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("dropped")
	assert.NoError(t, closeLog())
}

func TestRuntimeClose_Idempotent(t *testing.T) {
	paths := writeConfig(t, "")
	rt, err := Build(Options{ConfigPath: paths.config})
	require.NoError(t, err)
	require.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())

	var nilRuntime *Runtime
	assert.NoError(t, nilRuntime.Close())
}
