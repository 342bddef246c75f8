// Package logging builds the zap logger the CLI hands to every loader,
// builder and collaborator.
package logging
