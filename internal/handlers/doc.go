// Package handlers maps the names artifact files use for functions (e.g.
// `handler: users.onCreated`) to compiled Go functions. Applications register
// their functions at startup; the importer swaps each reference for the
// function it names.
package handlers
