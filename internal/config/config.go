// internal/config/config.go
//
// This package handles configuration and the .riskaudit directory structure.
// Every directory riskaudit runs in gets a .riskaudit/ folder holding the
// project config and the log files.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// RiskAuditDir is the name of the directory we create in each project
	RiskAuditDir = ".riskaudit"

	// StoreEnvVar overrides the record store path.
	StoreEnvVar = "RISKAUDIT_DB"

	defaultStorePath = "riskaudit.db"
	defaultLogLevel  = "info"
)

const defaultProjectConfigYAML = `# riskaudit project configuration
version: 1

# Record store. Relative paths are resolved against the project directory.
# The RISKAUDIT_DB environment variable and the --db flag take precedence.
store:
  path: riskaudit.db

# Optional stage catalog override (YAML). Leave empty to use the bundled one.
# catalog: catalogs/ru.yaml

log:
  level: info
`

// StoreConfig locates the record store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .riskaudit/config.yaml.
type ProjectConfig struct {
	Version int         `yaml:"version"`
	Store   StoreConfig `yaml:"store"`
	Catalog string      `yaml:"catalog,omitempty"`
	Log     LogConfig   `yaml:"log"`
}

// Config holds the runtime configuration for riskaudit.
type Config struct {
	// ProjectDir is the directory riskaudit was started in
	ProjectDir string

	// RiskAuditProjectDir is ProjectDir/.riskaudit
	RiskAuditProjectDir string

	Project ProjectConfig

	storeOverride string
}

// Option adjusts a Config after the project file has been read.
type Option func(*Config)

// WithStorePath forces the record store path, e.g. from a --db flag.
func WithStorePath(path string) Option {
	return func(c *Config) {
		c.storeOverride = strings.TrimSpace(path)
	}
}

// InitRiskAuditDir creates the .riskaudit directory structure in the given
// project directory.
//
// Structure created:
// .riskaudit/
// ├── config.yaml
// └── logs/        <- riskaudit.log (structured) and journey.log (activity)
func InitRiskAuditDir(projectDir string) error {
	dir := filepath.Join(projectDir, RiskAuditDir)
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string, opts ...Option) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:          abs,
		RiskAuditProjectDir: filepath.Join(abs, RiskAuditDir),
		Project:             defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.RiskAuditProjectDir, "logs")
}

// LogPath returns the structured log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "riskaudit.log")
}

// JourneyLogPath returns the human-readable activity log.
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.RiskAuditProjectDir, "config.yaml")
}

// StorePath resolves the record store path. Precedence: explicit option,
// RISKAUDIT_DB, config file, default.
func (c *Config) StorePath() string {
	if c.storeOverride != "" {
		return resolvePath(c.ProjectDir, c.storeOverride)
	}
	if env := strings.TrimSpace(os.Getenv(StoreEnvVar)); env != "" {
		return resolvePath(c.ProjectDir, env)
	}
	return c.Project.Store.Path
}

// CatalogPath returns the catalog override, or "" for the bundled catalog.
func (c *Config) CatalogPath() string {
	return c.Project.Catalog
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	return c.Project.Log.Level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Store:   StoreConfig{Path: defaultStorePath},
		Log:     LogConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Store.Path) == "" {
		pc.Store.Path = defaultStorePath
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Store.Path = resolvePath(base, pc.Store.Path)
	pc.Catalog = resolvePath(base, pc.Catalog)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
