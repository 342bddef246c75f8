package bootstrap

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/compose"
	"github.com/agentx-labs/ctxloader/internal/config"
	"github.com/agentx-labs/ctxloader/internal/discover"
	"github.com/agentx-labs/ctxloader/internal/feature"
	"github.com/agentx-labs/ctxloader/internal/handlers"
	"github.com/agentx-labs/ctxloader/internal/loader"
	"github.com/agentx-labs/ctxloader/internal/manifest"
	"github.com/agentx-labs/ctxloader/internal/registry"
	"github.com/agentx-labs/ctxloader/internal/validate"
)

// Deps are the collaborators shared by every loader Run builds.
type Deps struct {
	// Fs is read by discovery and import. Nil means the OS filesystem.
	Fs afero.Fs

	// Handlers resolves function references in artifact files.
	Handlers *handlers.Table

	// OnUnresolved is handed to every importer. Nil makes a reference
	// missing from Handlers an import failure.
	OnUnresolved func(field, name string) (any, error)

	// Wrappers are applied, outermost first, to the loader with the
	// matching name.
	Wrappers map[string][]compose.Wrapper

	// Initial is the context the first loader receives.
	Initial appctx.Context

	Logger *zap.Logger
}

// LoaderReport describes one loader's run.
type LoaderReport struct {
	Name     string        `json:"name" yaml:"name"`
	Kind     config.Kind   `json:"kind" yaml:"kind"`
	Key      string        `json:"key" yaml:"key"`
	Entries  int           `json:"entries" yaml:"entries"`
	Skipped  bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report summarizes a Run.
type Report struct {
	Loaders    []LoaderReport      `json:"loaders" yaml:"loaders"`
	Duplicates []feature.Duplicate `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// Skipped returns the names of loaders that failed and were skipped.
func (r *Report) Skipped() []string {
	var names []string
	for _, l := range r.Loaders {
		if l.Skipped {
			names = append(names, l.Name)
		}
	}
	return names
}

type runner struct {
	cfg    *config.Config
	deps   Deps
	finder *discover.Finder
	logger *zap.Logger
	report *Report
}

// Run builds a loader for every entry in cfg.Loaders and threads the context
// through them in order. A failing loader aborts the run unless its entry
// sets skip_on_error, in which case the context passes through unchanged.
// On abort the context built so far is returned along with the error.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (appctx.Context, *Report, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sources := make([]discover.Source, 0, len(cfg.Sources)+1)
	for _, s := range cfg.SearchRoots() {
		sources = append(sources, discover.Source{Name: s.Name, BasePath: s.Path})
	}

	r := &runner{
		cfg:    cfg,
		deps:   deps,
		finder: discover.NewFinder(deps.Fs, sources, discover.WithLogger(logger)),
		logger: logger,
		report: &Report{Loaders: make([]LoaderReport, 0, len(cfg.Loaders))},
	}

	c := deps.Initial
	for _, lc := range cfg.Loaders {
		fn, err := r.loaderFor(lc)
		if err != nil {
			return c, r.report, err
		}
		fn = compose.Apply(fn, deps.Wrappers[lc.Name]...)

		entry := LoaderReport{Name: lc.Name, Kind: lc.Kind, Key: lc.Key()}
		start := time.Now()
		next, err := fn(ctx, c)
		entry.Duration = time.Since(start)

		if err != nil {
			entry.Error = err.Error()
			if !lc.SkipOnError || ctx.Err() != nil {
				r.report.Loaders = append(r.report.Loaders, entry)
				return c, r.report, err
			}
			entry.Skipped = true
			r.report.Loaders = append(r.report.Loaders, entry)
			logger.Warn("loader failed, skipping",
				zap.String("loader", lc.Name),
				zap.Error(err))
			continue
		}

		if reg, ok := next.Get(lc.Key()); ok {
			entry.Entries = size(reg)
		}
		r.report.Loaders = append(r.report.Loaders, entry)
		logger.Info("loaded",
			zap.String("loader", lc.Name),
			zap.String("kind", string(lc.Kind)),
			zap.String("key", lc.Key()),
			zap.Int("entries", entry.Entries),
			zap.Duration("duration", entry.Duration))
		c = next
	}
	return c, r.report, nil
}

// loaderFor picks the registry builder for the entry's kind.
func (r *runner) loaderFor(lc config.LoaderConfig) (loader.Func, error) {
	switch lc.Kind {
	case config.KindFlat:
		build := registry.ByName
		if lc.WarnDuplicates {
			build = registry.ByNameLogged(r.logger.With(zap.String("loader", lc.Name)))
		}
		return newLoader[registry.Flat](r, lc, build, nil), nil
	case config.KindNamespaced:
		return newLoader[registry.NamespacedRegistry](r, lc, registry.Namespaced, nil), nil
	case config.KindHierarchical:
		return newLoader[registry.Tree](r, lc, registry.Hierarchical, nil), nil
	case config.KindEvents:
		return newLoader[registry.Multimap](r, lc, registry.Events, nil), nil
	case config.KindFeatures:
		build := registry.FeaturesReported(
			r.logger.With(zap.String("loader", lc.Name)),
			func(d []feature.Duplicate) {
				r.report.Duplicates = append(r.report.Duplicates, d...)
			})
		return newLoader[feature.Set](r, lc, build, validate.IsRecord), nil
	default:
		return nil, fmt.Errorf("loader %q: %w %q", lc.Name, config.ErrUnknownKind, lc.Kind)
	}
}

func newLoader[R any](r *runner, lc config.LoaderConfig, build loader.BuildFunc[R], valid func(any) bool) loader.Func {
	im := &manifest.Importer{
		Fs:              r.deps.Fs,
		Handlers:        r.deps.Handlers,
		OnUnresolved:    r.deps.OnUnresolved,
		Raw:             lc.Kind == config.KindFeatures,
		ContinueOnError: r.cfg.ContinueOnError,
		Logger:          r.logger.With(zap.String("loader", lc.Name)),
	}
	return loader.NewAsync(lc.Name, loader.Options[R]{
		Patterns:   lc.Patterns,
		FindFiles:  r.finder.Find,
		Import:     im.Import,
		Validate:   valid,
		Build:      build,
		ContextKey: lc.Key(),
		Logger:     r.logger,
	})
}

// size counts a registry's top-level entries.
func size(reg any) int {
	if s, ok := reg.(feature.Set); ok {
		return s.Len()
	}
	rv := reflect.ValueOf(reg)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len()
	}
	return 0
}
