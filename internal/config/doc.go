// Package config handles configuration loading for the luxriel site server.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LUXRIEL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/luxriel/config.yaml
//  3. ~/.config/luxriel/config.yaml
//
// Files ending in .toml are decoded as TOML; anything else is YAML. Both
// formats use the same key names.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  session_secret: "${LUXRIEL_SESSION_SECRET}"
//	assistant:
//	  api_key: "${GEMINI_API_KEY}"
//
// Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  session_ttl: "24h"
//	content:
//	  console_idle_timeout: "30m"
//
// # Defaults
//
// Every field not present in the file keeps its value from Default. The
// editor and console credentials default to the built-in site values when
// left empty; see package auth.
//
// # Example
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "10s"
//
//	database:
//	  path: "/var/lib/luxriel/site.db"
//
//	auth:
//	  session_secret: "${LUXRIEL_SESSION_SECRET}"
//	  secure_cookies: true
//	  editor_password_hash: "$2a$10$..."
//
//	content:
//	  reject_stale_publish: true
//	  max_image_bytes: 5242880
//
//	assistant:
//	  enabled: true
//	  api_key: "${GEMINI_API_KEY}"
//	  model: "gemini-3-flash-preview"
//
//	logging:
//	  level: "info"
//	  format: "json"
package config
