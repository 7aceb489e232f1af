// Package config loads, normalizes, and validates taglift configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// agent and CLI need: catalog and question-bank endpoints, the credential
// helper, cache location, concurrency limits, and circuit-breaker thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
