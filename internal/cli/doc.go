// Package cli defines the Cobra command tree for the ctxloader CLI. Each file
// in this package registers one top-level command (load, features, validate,
// config, version) with the root command. Commands delegate to the internal
// packages and only handle flag parsing and output formatting.
package cli
