package loader

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Func is a context-aware loader: it takes an application context and
// returns the next one. Wrappers in package compose take and return Funcs.
type Func func(ctx context.Context, c appctx.Context) (appctx.Context, error)

// Sync is a loader that runs without a cancellation context.
type Sync func(c appctx.Context) (appctx.Context, error)

// FindFunc discovers module handles for patterns. It returns an empty list,
// not an error, when nothing matches.
type FindFunc func(ctx context.Context, patterns []string, c appctx.Context) ([]artifact.Handle, error)

// ImportFunc resolves handles into a single artifact or a list of artifacts.
// Export shapes such as the legacy namespaced map are the importer's to
// flatten (see artifact.Normalize); the engine only wraps a non-list result
// into a one-element list.
type ImportFunc func(ctx context.Context, handles []artifact.Handle, c appctx.Context) (any, error)

// BuildFunc folds validated artifacts into a registry of type R.
type BuildFunc[R any] func(artifacts []any, c appctx.Context) (R, error)

// Options configures a loader.
type Options[R any] struct {
	// Patterns is handed to FindFiles untouched.
	Patterns []string

	// FindFiles discovers handles. Nil yields no handles.
	FindFiles FindFunc

	// Import resolves handles into artifacts. Nil yields no artifacts.
	Import ImportFunc

	// Validate filters imported artifacts. Defaults to
	// validate.IsValidArtifact.
	Validate func(any) bool

	// Build folds the valid artifacts into the registry. Required.
	Build BuildFunc[R]

	// ContextKey is the key the registry is written under. Defaults to the
	// loader name.
	ContextKey string

	// Logger receives debug output about dropped artifacts. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// Stage names a pipeline step.
type Stage string

// Pipeline steps, in execution order.
const (
	StageDiscover Stage = "discover"
	StageImport   Stage = "import"
	StageBuild    Stage = "build"
)

// ErrNoBuilder is the panic value New and NewAsync use when Options.Build is
// nil.
var ErrNoBuilder = errors.New("loader: registry builder is required")

// StageError reports which loader and step failed. It wraps the
// collaborator's error unchanged.
type StageError struct {
	Loader string
	Stage  Stage
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("loader %q: %s: %v", e.Loader, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is what Start delivers.
type Result struct {
	Context appctx.Context
	Err     error
}
