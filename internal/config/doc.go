// ABOUTME: Package documentation for swapchat configuration
// ABOUTME: Explains file format, env expansion and defaulting

// Package config loads the swapchat client configuration from a YAML
// file. Values in the ${VAR_NAME} form are expanded from the environment
// before parsing, duration fields accept Go duration strings, and
// omitted fields fall back to sensible defaults.
package config
