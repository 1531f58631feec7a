package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	appName = "guardiannews"

	// APIKeyEnv is consulted when the config file carries no key.
	APIKeyEnv = "GUARDIAN_API_KEY"

	// PublicAPIKey is the Guardian's shared developer key.
	PublicAPIKey = "test"

	SourceAPI = "api"
	SourceRSS = "rss"
)

// Option is a selectable value with a display label.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type APIConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	APIKey            string  `yaml:"api_key"`
	ShowFields        string  `yaml:"show_fields"`
	ShowTags          string  `yaml:"show_tags"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type Config struct {
	Source          string    `yaml:"source"`
	API             APIConfig `yaml:"api"`
	RSSBase         string    `yaml:"rss_base"`
	DefaultSections []string  `yaml:"default_sections"`
	Sections        []Option  `yaml:"sections"`
	PageSizes       []int     `yaml:"page_sizes"`
	OrderBy         []Option  `yaml:"order_by"`
	Browser         string    `yaml:"browser,omitempty"`
	LogLevel        string    `yaml:"log_level,omitempty"`
}

// APIKey returns the resolved API key: config, then environment, then the
// public test key.
func (c *Config) APIKey() string {
	if c.API.APIKey != "" {
		return c.API.APIKey
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key
	}
	return PublicAPIKey
}

func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// RequestsPerSecond defaults to one call per second, the free-tier limit.
func (c *Config) RequestsPerSecond() float64 {
	if c.API.RequestsPerSecond <= 0 {
		return 1
	}
	return c.API.RequestsPerSecond
}

// SectionLabel returns the display name for a section value, or the value
// itself when the section is not in the catalogue.
func (c *Config) SectionLabel(value string) string {
	return label(c.Sections, value)
}

func (c *Config) OrderLabel(value string) string {
	return label(c.OrderBy, value)
}

func (c *Config) SectionValues() []string {
	out := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = s.Value
	}
	return out
}

func label(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Name
		}
	}
	return value
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func PrefsPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "prefs.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, appName, "articles.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// LoadEnv reads .env files from the working directory and the config
// directory. Variables already set in the environment win.
func LoadEnv() error {
	candidates := []string{".env", filepath.Join(xdg.ConfigHome, appName, ".env")}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path. An empty path means the default location,
// which is seeded with the embedded defaults on first run. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return load(DefaultConfigPath(), true)
	}
	return load(path, false)
}

func load(path string, seed bool) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if seed && errors.Is(err, os.ErrNotExist) {
			if err := writeDefaults(path); err != nil {
				return nil, fmt.Errorf("writing default config: %w", err)
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaults(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeDefaults fills every field the user left unset.
func mergeDefaults(cfg, defaults *Config) {
	if cfg.Source == "" {
		cfg.Source = defaults.Source
	}
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = defaults.API.Endpoint
	}
	if cfg.API.ShowFields == "" {
		cfg.API.ShowFields = defaults.API.ShowFields
	}
	if cfg.API.ShowTags == "" {
		cfg.API.ShowTags = defaults.API.ShowTags
	}
	if cfg.API.Timeout == "" {
		cfg.API.Timeout = defaults.API.Timeout
	}
	if cfg.API.RequestsPerSecond == 0 {
		cfg.API.RequestsPerSecond = defaults.API.RequestsPerSecond
	}
	if cfg.RSSBase == "" {
		cfg.RSSBase = defaults.RSSBase
	}
	if len(cfg.DefaultSections) == 0 {
		cfg.DefaultSections = defaults.DefaultSections
	}
	if len(cfg.Sections) == 0 {
		cfg.Sections = defaults.Sections
	}
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = defaults.PageSizes
	}
	if len(cfg.OrderBy) == 0 {
		cfg.OrderBy = defaults.OrderBy
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.Source != SourceAPI && cfg.Source != SourceRSS {
		return fmt.Errorf("unknown source %q (valid: api, rss)", cfg.Source)
	}
	for name, raw := range map[string]string{"api.endpoint": cfg.API.Endpoint, "rss_base": cfg.RSSBase} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", name, u.Scheme)
		}
	}
	if len(cfg.DefaultSections) == 0 {
		return fmt.Errorf("default_sections must list at least one section")
	}
	for i, s := range cfg.Sections {
		if s.Value == "" {
			return fmt.Errorf("section %d: value is required", i)
		}
	}
	for _, n := range cfg.PageSizes {
		if n < 1 || n > 200 {
			return fmt.Errorf("page size %d out of range (1-200)", n)
		}
	}
	return nil
}
