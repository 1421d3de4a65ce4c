// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:17234"

store:
  host: "localhost"
  port: 8001

auth:
  jwt_secret: "test-secret"
  session_ttl: "2h"

resources:
  path: "./models.toml"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "localhost:17234" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "localhost:17234")
	}
	if cfg.Store.Host != "localhost" {
		t.Errorf("Store.Host = %q, want %q", cfg.Store.Host, "localhost")
	}
	if cfg.Store.Port != 8001 {
		t.Errorf("Store.Port = %d, want 8001", cfg.Store.Port)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, 2*time.Hour)
	}
	if cfg.Resources.Path != "./models.toml" {
		t.Errorf("Resources.Path = %q, want %q", cfg.Resources.Path, "./models.toml")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_DefaultSessionTTL(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:17234"
store:
  path: "./vault.db"
auth:
  jwt_secret: "test-secret"
resources:
  path: "./models.toml"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.SessionTTL != DefaultSessionTTL {
		t.Errorf("Auth.SessionTTL = %v, want default %v", cfg.Auth.SessionTTL, DefaultSessionTTL)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("VAULT_TEST_SECRET", "secret-from-env")

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:17234"
store:
  path: "./vault.db"
auth:
  jwt_secret: "${VAULT_TEST_SECRET}"
resources:
  path: "./models.toml"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:17234"
store:
  path: "./vault.db"
auth:
  jwt_secret: "test-secret"
  session_ttl: "not-a-duration"
resources:
  path: "./models.toml"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "session_ttl") {
		t.Errorf("error = %v, want mention of session_ttl", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:    ServerConfig{HTTPAddr: "localhost:17234"},
			Store:     StoreConfig{Host: "localhost", Port: 8001},
			Auth:      AuthConfig{JWTSecret: "s"},
			Resources: ResourcesConfig{Path: "models.toml"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid remote store",
			mutate: func(c *Config) {},
		},
		{
			name: "valid local store",
			mutate: func(c *Config) {
				c.Store = StoreConfig{Path: "./vault.db"}
			},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "http_addr",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "jwt_secret",
		},
		{
			name:    "missing resources path",
			mutate:  func(c *Config) { c.Resources.Path = "" },
			wantErr: "resources.path",
		},
		{
			name:    "no store at all",
			mutate:  func(c *Config) { c.Store = StoreConfig{} },
			wantErr: "store.path or store.host",
		},
		{
			name:    "both store path and host",
			mutate:  func(c *Config) { c.Store.Path = "./vault.db" },
			wantErr: "mutually exclusive",
		},
		{
			name:    "host without port",
			mutate:  func(c *Config) { c.Store.Port = 0 },
			wantErr: "store.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultStoreAddr(t *testing.T) {
	remote := &Config{Store: StoreConfig{Host: "vault.internal", Port: 8001}}
	if got := remote.DefaultStoreAddr(); got != "vault.internal:8001" {
		t.Errorf("DefaultStoreAddr() = %q, want %q", got, "vault.internal:8001")
	}

	local := &Config{Store: StoreConfig{Path: "/var/lib/vault/vault.db"}}
	if got := local.DefaultStoreAddr(); got != "/var/lib/vault/vault.db" {
		t.Errorf("DefaultStoreAddr() = %q, want %q", got, "/var/lib/vault/vault.db")
	}
}
