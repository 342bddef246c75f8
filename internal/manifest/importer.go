package manifest

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Import reads each handle in order and returns the artifacts as one list.
// It satisfies loader.ImportFunc.
func (im *Importer) Import(ctx context.Context, handles []artifact.Handle, _ appctx.Context) (any, error) {
	logger := im.logger()
	out := []any{}

	var errs error
	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := im.importFile(h)
		if err != nil {
			if im.ContinueOnError {
				logger.Warn("skipping artifact file",
					zap.String("path", h.Path),
					zap.String("source", h.Source),
					zap.Error(err))
				continue
			}
			errs = multierr.Append(errs, &FileError{Path: h.Path, Err: err})
			continue
		}
		out = append(out, items...)
	}
	if errs != nil {
		return nil, errs
	}

	logger.Debug("imported artifact files",
		zap.Int("files", len(handles)),
		zap.Int("artifacts", len(out)))
	return out, nil
}

func (im *Importer) importFile(h artifact.Handle) ([]any, error) {
	docs, err := ParseFile(im.Fs, h.Path)
	if err != nil {
		return nil, err
	}

	var items []any
	for _, doc := range docs {
		if im.Raw {
			items = append(items, artifact.AsList(doc)...)
		} else {
			items = append(items, artifact.Normalize(doc)...)
		}
	}

	if im.Handlers == nil {
		return items, nil
	}
	for i, item := range items {
		resolved, err := im.resolve(item)
		if err != nil {
			return nil, err
		}
		items[i] = resolved
	}
	return items, nil
}

// resolve replaces string values under function fields with the registered
// function, at any depth. Meta and options are carried through untouched.
func (im *Importer) resolve(v any) (any, error) {
	switch val := v.(type) {
	case artifact.Artifact:
		r, err := im.resolveRecord(val)
		if err != nil {
			return nil, err
		}
		return artifact.Artifact(r), nil
	case map[string]any:
		return im.resolveRecord(val)
	case []any:
		for i, item := range val {
			r, err := im.resolve(item)
			if err != nil {
				return nil, err
			}
			val[i] = r
		}
		return val, nil
	default:
		return v, nil
	}
}

func (im *Importer) resolveRecord(rec map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == artifact.KeyMeta || k == artifact.KeyOptions {
			continue
		}
		if name, ok := rec[k].(string); ok && im.isFuncField(k) {
			fn, found := im.Handlers.Lookup(name)
			if !found {
				if im.OnUnresolved == nil {
					return nil, fmt.Errorf("%w: %s %q", ErrUnresolvedHandler, k, name)
				}
				var err error
				if fn, err = im.OnUnresolved(k, name); err != nil {
					return nil, err
				}
			}
			rec[k] = fn
			continue
		}
		r, err := im.resolve(rec[k])
		if err != nil {
			return nil, err
		}
		rec[k] = r
	}
	return rec, nil
}

func (im *Importer) isFuncField(key string) bool {
	fields := im.FuncFields
	if fields == nil {
		fields = DefaultFuncFields
	}
	for _, f := range fields {
		if f == key {
			return true
		}
	}
	return false
}

func (im *Importer) logger() *zap.Logger {
	if im.Logger == nil {
		return zap.NewNop()
	}
	return im.Logger
}
