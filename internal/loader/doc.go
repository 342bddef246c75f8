// Package loader is the generic pipeline engine. A loader discovers module
// handles, imports them into artifacts, filters the artifacts through a
// validator, folds the survivors with a registry builder and returns a new
// context carrying the registry under its key.
//
// NewAsync builds the context-aware form (Func) that collaborators can block
// in; New builds the synchronous form (Sync). Both run the same steps. A
// failure in any step aborts the run and returns the caller's context
// untouched, so a key is either fully written or not written at all.
package loader
