// Package config loads, normalizes, and validates pagebind configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and conversion pipeline need: temp and library directories, render
// tuning (speed mode, workers, success gate), the external extractor, and
// the history journal.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical merge-order/speed values, and clear validation
// errors.
package config
