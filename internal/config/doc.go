// Package config handles configuration loading for vault-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${VAULT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "localhost:17234"
//
// Store defaults, used when a connect request omits host/port. Setting
// store.path instead serves the bundled local store from a database file:
//
//	store:
//	  host: "localhost"
//	  port: 8001
//
// Resource schemas (TOML models file, loaded once at startup):
//
//	resources:
//	  path: "/etc/vault-gateway/models.toml"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${VAULT_JWT_SECRET}"
//	  session_ttl: "12h"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/vault-gateway/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
