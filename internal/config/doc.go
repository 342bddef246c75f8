// Package config loads and validates the ctxloader.yaml file that lists the
// loaders to run, their discovery patterns and how failures are handled.
// Values can be overridden through CTXLOADER_* environment variables.
package config
