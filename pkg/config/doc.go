// Package config provides configuration management for the loom workflow engine.
//
// # Overview
//
// The config package centralizes all configuration for the workflow engine,
// providing a pluggable, replaceable configuration system with validation,
// defaults, and environment variable support.
//
// # Features
//
//   - Centralized configuration: Single source of truth
//   - Type-safe: Strongly typed configuration options
//   - Validation: Automatic validation of configuration values
//   - Defaults: Sensible default values
//   - Environment variables: Runtime knobs read into a RuntimeEnv by LoadRuntimeEnv
//   - File-based: LoadFile merges a subset of the engine limits from a YAML file
//   - Presets: Default, Development, Production, and Testing
//
// A Config is a plain value; nothing reloads it after it has been built.
//
// # Configuration Structure
//
// The configuration is organized into logical sections:
//
//   - Execution limits: Timeouts and iteration limits
//   - HTTP settings: HTTP request configuration
//   - Security: Network access control and restrictions
//   - Cache settings: Cache TTL and size limits
//   - Resource limits: Memory and size constraints
//   - Retry settings: Retry and backoff configuration
//
// # Basic Usage
//
//import "github.com/loomrun/loom/pkg/config"
//
//// Create default configuration
//cfg := config.Default()
//
//// Bound the engine by the configured execution time
//eng := engine.New(reg, engine.WithDeadline(cfg.MaxExecutionTime))
//
// # Custom Configuration
//
//cfg := config.Default()
//cfg.MaxExecutionTime = 10 * time.Minute
//cfg.HTTPTimeout = 30 * time.Second
//if err := cfg.Validate(); err != nil {
//    // handle invalid values
//}
//
// # Default Configuration
//
// The default configuration provides secure, production-ready defaults:
//
//MaxExecutionTime: 5 minutes
//MaxNodeExecutionTime: 30 seconds
//MaxIterations: 10000
//HTTPTimeout: 30 seconds
//MaxHTTPRedirects: 10
//MaxResponseSize: 10MB
//AllowHTTP: false (HTTPS only)
//AllowPrivateIPs: false
//AllowLocalhost: false
//AllowLinkLocal: false
//AllowCloudMetadata: false
//DefaultCacheTTL: 1 hour
//MaxCacheSize: 1000
//MaxNodes: 1000
//MaxEdges: 5000
//DefaultMaxAttempts: 3
//DefaultBackoff: 1 second
//
// # Thread Safety
//
// Configuration objects are safe for concurrent read access.
package config
