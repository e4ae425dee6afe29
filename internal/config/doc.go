// Package config loads, normalizes, and validates the TOML configuration
// that drives the vidforge daemon and CLI.
package config
