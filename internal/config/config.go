// ABOUTME: Configuration loading and parsing for vault-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete vault-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Resources ResourcesConfig `yaml:"resources"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the HTTP listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StoreConfig holds defaults for reaching the vault store.
// Host and Port are used when a connect request omits them.
// Path, when set, points the bundled local store at a database file
// instead of dialing a remote store.
type StoreConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// AuthConfig holds session credential configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	SessionTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	SessionTTLRaw string `yaml:"session_ttl"`
}

// ResourcesConfig points at the TOML models file defining resource schemas
type ResourcesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultSessionTTL is used when auth.session_ttl is not configured.
const DefaultSessionTTL = 12 * time.Hour

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Resources.Path == "" {
		return fmt.Errorf("resources.path is required")
	}

	// A remote store address and a local store path are mutually exclusive
	if c.Store.Path != "" && c.Store.Host != "" {
		return fmt.Errorf("store.path and store.host are mutually exclusive")
	}
	if c.Store.Path == "" && c.Store.Host == "" {
		return fmt.Errorf("one of store.path or store.host is required")
	}
	if c.Store.Host != "" && c.Store.Port == 0 {
		return fmt.Errorf("store.port is required when store.host is set")
	}

	return nil
}

// DefaultStoreAddr returns the store address used when a connect request
// does not carry its own host and port.
func (c *Config) DefaultStoreAddr() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return fmt.Sprintf("%s:%d", c.Store.Host, c.Store.Port)
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Auth.SessionTTL = DefaultSessionTTL

	if cfg.Auth.SessionTTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
		cfg.Auth.SessionTTL = ttl
	}

	return nil
}
