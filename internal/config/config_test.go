package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Site.Port)
	assert.Equal(t, "keyring", cfg.Session.Store)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	yml := `
api:
  base_url: https://api.example.test
  timeout: 5s
  rate_per_second: 2
site:
  port: "9000"
  github_repo: Zachkp/folio
  links:
    - label: GitHub
      url: https://github.com/Zachkp
session:
  store: memory
visits:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.0, cfg.API.RatePerSecond)
	assert.Equal(t, "9100", cfg.Site.Port)
	assert.Equal(t, "Zachkp/folio", cfg.Site.GitHubRepo)
	require.Len(t, cfg.Site.Links, 1)
	assert.Equal(t, "GitHub", cfg.Site.Links[0].Label)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.False(t, cfg.Visits.Enabled)
	assert.Equal(t, 365, cfg.Visits.RetentionDays, "unset keys keep their defaults")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FOLIO_API_URL=https://from-env.test\n"), 0o644))
	t.Setenv("FOLIO_API_URL", "")
	require.NoError(t, os.Unsetenv("FOLIO_API_URL"))

	cfg, err := Load("", envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.test", cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	env := map[string]string{"FOLIO_API_TIMEOUT": "soon"}
	err := cfg.ApplyEnv(func(k string) string { return env[k] })
	require.Error(t, err)

	env = map[string]string{"FOLIO_VISITS_ENABLED": "maybe"}
	require.Error(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative api url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"bad port", func(c *Config) { c.Site.Port = "http" }, "site.port"},
		{"bad repo", func(c *Config) { c.Site.GitHubRepo = "folio" }, "github_repo"},
		{"unknown store", func(c *Config) { c.Session.Store = "cookie" }, "session.store"},
		{"file store without path", func(c *Config) { c.Session.Store = "file"; c.Session.File = "" }, "session.file"},
		{"visits without db", func(c *Config) { c.Visits.DBPath = "" }, "visits.db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
