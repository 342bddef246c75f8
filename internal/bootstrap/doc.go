// Package bootstrap turns a config.Config into a sequence of loaders and runs
// them in the listed order against one application context. Each loader gets
// the default discovery and import collaborators plus whatever wrappers the
// caller registered for it by name.
package bootstrap
