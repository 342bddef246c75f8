// Package manifest is the default import collaborator. It reads artifact
// files (YAML or JSON, one or more documents per file), normalizes each
// document's export shape and resolves function references against a
// handlers.Table. It also validates artifact and feature files against the
// embedded JSON schemas.
package manifest
