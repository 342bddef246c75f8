// Package compose wraps loaders with cross-cutting behavior without changing
// their shape. WithPlugins runs before/after hooks around a loader,
// WithMiddleware threads the context through transforms before it, and
// WithValidation gates it behind concurrently evaluated checks. Wrappers
// stack in any order and Chain applies several at once.
package compose
