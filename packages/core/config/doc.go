// Package config handles configuration loading and management for hitcheck.
//
// It provides functionality for:
//   - Loading configuration from .hitcheck.yaml, .hitcheck.yml or .hitcheck.json
//   - Default configuration values
//   - Merging file configuration with command line overrides
package config
