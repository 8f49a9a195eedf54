package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/mytodo/internal/logger"
)

const (
	DefaultAPIURL  = "http://localhost:3000"
	DefaultTimeout = 15 * time.Second
	configFileName = "config.yaml"
)

type Config struct {
	APIURL       string        `yaml:"api_url"`
	RecipeAPIURL string        `yaml:"recipe_api_url"`
	Timeout      time.Duration `yaml:"timeout"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	Theme        string        `yaml:"theme"`

	// Not read from the YAML file.
	Home  string `yaml:"-"`
	Token string `yaml:"-"`
}

// Option overrides a value after every file and env source was read.
// Empty values are ignored.
type Option func(*Config)

func WithAPIURL(v string) Option  { return override(v, func(c *Config) { c.APIURL = v }) }
func WithLogFile(v string) Option { return override(v, func(c *Config) { c.LogFile = v }) }
func WithTheme(v string) Option   { return override(v, func(c *Config) { c.Theme = v }) }

func override(v string, fn func(*Config)) Option {
	return func(c *Config) {
		if strings.TrimSpace(v) != "" {
			fn(c)
		}
	}
}

// Load reads envFile (a missing file is fine), then $MYTODO_HOME/config.yaml,
// then the environment, then opts. Later sources win. Derived defaults
// (recipe_api_url, log_file) are filled last.
func Load(envFile string, opts ...Option) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	home, err := homeDir()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
		Theme:    "classic",
		Home:     home,
	}

	b, err := os.ReadFile(filepath.Join(home, configFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configFileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", configFileName, err)
	}

	if v := env("MYTODO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := env("MYTODO_RECIPE_API_URL"); v != "" {
		cfg.RecipeAPIURL = v
	}
	if v := env("MYTODO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("MYTODO_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := env("MYTODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("MYTODO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := env("MYTODO_THEME"); v != "" {
		cfg.Theme = v
	}
	cfg.Token = env("MYTODO_TOKEN")
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.RecipeAPIURL == "" {
		cfg.RecipeAPIURL = cfg.APIURL
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(home, "mytodo.log")
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would only fail later at request time.
func (c Config) Validate() error {
	for name, raw := range map[string]string{"api_url": c.APIURL, "recipe_api_url": c.RecipeAPIURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s: not an http(s) url: %q", name, raw)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func homeDir() (string, error) {
	if v := env("MYTODO_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".mytodo"), nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }
