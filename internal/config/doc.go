// Package config loads, normalizes, and validates the TOML configuration for
// revoice. Defaults come first, a config file may override them, and provider
// API keys can be injected through the environment.
package config
