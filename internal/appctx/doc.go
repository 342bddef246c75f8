// Package appctx holds the application context record that loaders read from
// and write their registries into.
//
// A Context is immutable: With returns a copy carrying the new key, so a
// failed loader can never leave a half-written context behind. Call sites that
// want to keep a single mutable reference use Ref, which swaps in the context
// a loader returns.
package appctx
