package manifest

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/handlers"
)

// DefaultFuncFields are the record keys whose string values name a function
// in the handler table.
var DefaultFuncFields = []string{"handler", "method", "resolve"}

var (
	// ErrUnsupportedFormat is returned for files that are not .yaml, .yml or
	// .json.
	ErrUnsupportedFormat = errors.New("unsupported artifact file format")

	// ErrUnresolvedHandler is returned when a function field names a handler
	// the table does not have.
	ErrUnresolvedHandler = errors.New("unresolved handler reference")
)

// Importer turns discovered handles into artifacts. The zero value reads
// from the OS filesystem and leaves function fields as strings.
type Importer struct {
	// Fs is the filesystem handles are read from. Nil means the OS
	// filesystem.
	Fs afero.Fs

	// Handlers resolves function references. Nil disables resolution.
	Handlers *handlers.Table

	// OnUnresolved decides what a reference missing from Handlers becomes.
	// Nil fails the file with ErrUnresolvedHandler.
	OnUnresolved func(field, name string) (any, error)

	// FuncFields overrides DefaultFuncFields.
	FuncFields []string

	// Raw keeps each document's records whole instead of classifying them.
	// Feature manifests are imported this way.
	Raw bool

	// ContinueOnError logs and skips files that fail to import. Otherwise
	// every failure is collected and returned together.
	ContinueOnError bool

	Logger *zap.Logger
}

// FileError is a failure to import one file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("importing %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
