package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	cfg := Load("")
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"tick_ms: 5\nmax_ticks: 50\ntrace_csv: trace.csv\nlog_level: debug\n",
	), 0o644))

	cfg := Load(path)
	assert.EqualValues(t, 5, cfg.TickMS)
	assert.Equal(t, 50, cfg.MaxTicks)
	assert.Equal(t, "trace.csv", cfg.TraceCSV)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"tick_ms: -3\nmax_ticks: 0\nlog_level: \"\"\n",
	), 0o644))

	cfg := Load(path)
	assert.EqualValues(t, 1, cfg.TickMS)
	assert.Equal(t, 10000, cfg.MaxTicks)
	assert.Equal(t, "info", cfg.LogLevel)
}
