// Package config loads the episodes tool configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/episodes/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply EPISODES_* environment overrides
//
// LoadEnvFile can be called first to populate the environment from a
// dotenv file; variables already set in the process win.
//
// # Default Values
//
//   - episodes_url: http://localhost:8000/episodes.json
//   - timeout: 5s
//   - list_policy: fail-fast
//   - poll_interval: 0 (load once)
//   - log_level: info
//   - cache.ttl: 1m (cache disabled unless cache.redis_addr is set)
//   - tracing.service_name: episodes (export disabled unless
//     tracing.otlp_endpoint is set)
//
// # TOML Format
//
//	episodes_url = "http://localhost:8000/episodes.json"
//	timeout = "5s"
//	list_policy = "skip-invalid"
//	poll_interval = "30s"
//
//	[cache]
//	redis_addr = "127.0.0.1:6379"
//	ttl = "2m"
//
//	[tracing]
//	otlp_endpoint = "localhost:4318"
//
// Durations accept Go duration strings or bare integers (seconds).
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, TOML
// syntax errors and invalid values. Missing config files are NOT an error.
package config
