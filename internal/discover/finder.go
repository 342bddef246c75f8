package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Source is a named root to search, e.g. the project directory or a shared
// config checkout.
type Source struct {
	Name     string // e.g., "local", "shared"
	BasePath string // root directory on the finder's filesystem
}

// Finder finds artifact files across sources.
type Finder struct {
	fs      afero.Fs
	sources []Source
	logger  *zap.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger used for skipped sources.
func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFinder returns a Finder over fs. A nil fs means the OS filesystem.
func NewFinder(fs afero.Fs, sources []Source, opts ...Option) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f := &Finder{
		fs:      fs,
		sources: sources,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sources returns the sources in search order.
func (f *Finder) Sources() []Source {
	return append([]Source(nil), f.sources...)
}

// Find returns handles for every file matching any pattern. Missing source
// roots are skipped; no match yields an empty list. A malformed pattern is an
// error.
func (f *Finder) Find(ctx context.Context, patterns []string, _ appctx.Context) ([]artifact.Handle, error) {
	handles := []artifact.Handle{}
	if len(patterns) == 0 {
		return handles, nil
	}
	seen := make(map[string]bool)
	for _, src := range f.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := f.walkSource(ctx, src, patterns)
		if err != nil {
			return nil, fmt.Errorf("walking source %s: %w", src.Name, err)
		}
		for _, h := range found {
			rel := h.rel
			if seen[rel] {
				continue
			}
			seen[rel] = true
			handles = append(handles, h.Handle)
		}
	}
	return handles, nil
}

type match struct {
	artifact.Handle
	rel string
}

// walkSource walks a single source root in lexical order and collects files
// matching any pattern.
func (f *Finder) walkSource(ctx context.Context, src Source, patterns []string) ([]match, error) {
	if _, err := f.fs.Stat(src.BasePath); err != nil {
		if os.IsNotExist(err) {
			f.logger.Debug("source root not found, skipping",
				zap.String("source", src.Name), zap.String("path", src.BasePath))
			return nil, nil
		}
		return nil, err
	}

	var result []match
	err := afero.Walk(f.fs, src.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src.BasePath, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		ok, err := matchesAny(patterns, rel)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		result = append(result, match{
			Handle: artifact.Handle{Path: path, Source: src.Name},
			rel:    rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// matchesAny reports whether rel matches one of the patterns. doublestar only
// reports a malformed pattern once matching reaches the bad component.
func matchesAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
