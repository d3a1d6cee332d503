// Package config loads, validates, and normalizes periksa configuration from
// TOML files.
package config
