// Package logging wires log/slog with periksa's console and JSON handlers and
// the shared attribute helpers.
package logging
