// Package logging assembles the structured slog loggers used across taglift.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized attribute keys (question IDs,
// categories, strategies) so every component emits data with the same shape.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
