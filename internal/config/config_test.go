package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestInitConfigOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
addr: 0.0.0.0:9000
workDir: /tmp/teddy
detector:
  backend: triton
stats:
  backend: file
  historyLimit: 20
`)
	conf, err := InitConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", conf.Addr)
	assert.Equal(t, DetectorBackendTriton, conf.Detector.Backend)
	assert.Equal(t, 20, conf.Stats.HistoryLimit)
	// untouched keys keep their defaults
	assert.Equal(t, "teddy bear", conf.Detector.Labels)
	assert.Equal(t, 640, conf.Detector.InputSize)
	assert.Equal(t, "/tmp/teddy/data/detection_stats.json", conf.StatsPath())
}

func TestInitConfigRejectsUnknownBackend(t *testing.T) {
	p := writeConfig(t, `
stats:
  backend: redis
`)
	_, err := InitConfig(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestInitConfigRequiresEnabledSinkFields(t *testing.T) {
	p := writeConfig(t, `
nsq:
  enabled: true
  topic: ""
`)
	_, err := InitConfig(p)
	require.Error(t, err)
}

func TestInitConfigMissingFile(t *testing.T) {
	_, err := InitConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestStatsPath(t *testing.T) {
	conf := DefaultConfig()
	conf.WorkDir = "/srv/teddy"

	conf.Stats.Backend = StatsBackendBadger
	assert.Equal(t, "/srv/teddy/data/stats", conf.StatsPath())

	conf.Stats.Backend = StatsBackendSQL
	assert.Empty(t, conf.StatsPath())

	conf.Stats.Path = "/elsewhere"
	assert.Equal(t, "/elsewhere", conf.StatsPath())
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}
