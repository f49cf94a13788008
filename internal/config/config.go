// Package config loads folio's settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Link is a footer social link.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Config struct {
	API struct {
		BaseURL       string        `yaml:"base_url"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerSecond float64       `yaml:"rate_per_second"`
		Burst         int           `yaml:"burst"`
	} `yaml:"api"`

	Site struct {
		Port       string `yaml:"port"`
		Name       string `yaml:"name"`
		GitHubRepo string `yaml:"github_repo"` // "owner/repo" shown in the hero
		Links      []Link `yaml:"links"`
	} `yaml:"site"`

	Session struct {
		Store string `yaml:"store"` // keyring, file or memory
		File  string `yaml:"file"`
	} `yaml:"session"`

	Visits struct {
		Enabled       bool   `yaml:"enabled"`
		DBPath        string `yaml:"db_path"`
		Salt          string `yaml:"salt"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"visits"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.API.BaseURL = "http://localhost:5000/api"
	c.API.Timeout = 15 * time.Second
	c.API.Burst = 1
	c.Site.Port = "8080"
	c.Site.Name = "Portfolio"
	c.Session.Store = "keyring"
	c.Session.File = defaultCredentialFile()
	c.Visits.Enabled = true
	c.Visits.DBPath = "visits.db"
	c.Visits.RetentionDays = 365
	return c
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".folio-credential"
	}
	return filepath.Join(dir, "folio", "credential")
}

// Load reads defaults, then the YAML file at path (if path is non-empty),
// then environment overrides, and validates the result. envFiles are loaded
// into the environment first with godotenv; missing env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return cfg, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("FOLIO_API_URL", &c.API.BaseURL)
	set("PORT", &c.Site.Port)
	set("FOLIO_SITE_NAME", &c.Site.Name)
	set("FOLIO_GITHUB_REPO", &c.Site.GitHubRepo)
	set("FOLIO_SESSION_STORE", &c.Session.Store)
	set("FOLIO_SESSION_FILE", &c.Session.File)
	set("FOLIO_VISITS_DB", &c.Visits.DBPath)
	set("FOLIO_VISITS_SALT", &c.Visits.Salt)

	if v := getenv("FOLIO_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: FOLIO_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v := getenv("FOLIO_VISITS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: FOLIO_VISITS_ENABLED: %w", err)
		}
		c.Visits.Enabled = b
	}
	return nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: 'api.base_url' must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config error: 'api.timeout' must be positive")
	}
	if c.API.RatePerSecond < 0 {
		return fmt.Errorf("config error: 'api.rate_per_second' must be non-negative")
	}
	if _, err := strconv.Atoi(c.Site.Port); err != nil {
		return fmt.Errorf("config error: 'site.port' must be a number, got %q", c.Site.Port)
	}
	if c.Site.GitHubRepo != "" && strings.Count(c.Site.GitHubRepo, "/") != 1 {
		return fmt.Errorf("config error: 'site.github_repo' must look like owner/repo")
	}
	switch c.Session.Store {
	case "keyring", "memory":
	case "file":
		if c.Session.File == "" {
			return fmt.Errorf("config error: 'session.file' is required for the file store")
		}
	default:
		return fmt.Errorf("config error: unknown 'session.store' %q", c.Session.Store)
	}
	if c.Visits.Enabled && c.Visits.DBPath == "" {
		return fmt.Errorf("config error: 'visits.db_path' is required when visits are enabled")
	}
	if c.Visits.RetentionDays < 0 {
		return fmt.Errorf("config error: 'visits.retention_days' must be non-negative")
	}
	return nil
}
