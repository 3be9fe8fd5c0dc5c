package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyDataDir, t.TempDir())
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, filepath.Join(cfg.DataDir, "agd.db"), cfg.StoragePath())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("AGD_API_URL", "https://agd.example.mil")
	t.Setenv("AGD_REQUEST_TIMEOUT", "5s")
	t.Setenv("AGD_PROFILE", "staging")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "https://agd.example.mil", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "staging", cfg.Profile)
}

func TestLoadConfigFile(t *testing.T) {
	v := newViper(t)
	dir := v.GetString(KeyDataDir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api_url: http://backend:8000\noutput: json\nmap_token: pk.test\n"), 0o600))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", cfg.APIURL)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, "pk.test", cfg.MapToken)
}

func TestValidate(t *testing.T) {
	base := Config{APIURL: "http://localhost:8000", Profile: "default", Output: OutputTable, LogLevel: "info", LogFormat: "text"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"scheme", func(c *Config) { c.APIURL = "ftp://x" }},
		{"no host", func(c *Config) { c.APIURL = "http://" }},
		{"output", func(c *Config) { c.Output = "xml" }},
		{"level", func(c *Config) { c.LogLevel = "chatty" }},
		{"format", func(c *Config) { c.LogFormat = "logfmt" }},
		{"profile", func(c *Config) { c.Profile = "" }},
		{"timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
