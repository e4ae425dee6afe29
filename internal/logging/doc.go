// Package logging wires slog with console and JSON handlers plus the shared
// attribute vocabulary used across vidforge components.
package logging
