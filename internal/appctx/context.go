package appctx

import (
	"context"
	"sort"
	"sync"
)

// Context is an open, immutable key/value record shared by every loader in a
// bootstrap run. The zero value is an empty context.
type Context struct {
	values map[string]any
}

// New returns a context seeded with a copy of values.
func New(values map[string]any) Context {
	c := Context{values: make(map[string]any, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Get returns the value stored under key.
func (c Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is set.
func (c Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// With returns a new context equal to c with key set to value. c is unchanged.
func (c Context) With(key string, value any) Context {
	next := Context{values: make(map[string]any, len(c.values)+1)}
	for k, v := range c.values {
		next.values[k] = v
	}
	next.values[key] = value
	return next
}

// Merge returns a new context with every entry of values applied over c.
func (c Context) Merge(values map[string]any) Context {
	next := New(c.values)
	for k, v := range values {
		next.values[k] = v
	}
	return next
}

// Keys returns the context keys in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (c Context) Len() int { return len(c.values) }

// Map returns a copy of the underlying record.
func (c Context) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Lookup returns the value under key asserted to T.
func Lookup[T any](c Context, key string) (T, bool) {
	var zero T
	v, ok := c.values[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Ref is a mutable handle on a Context for call sites that thread one shared
// reference instead of return values. It is safe for concurrent use, but
// loaders writing the same key through one Ref still race on the result.
type Ref struct {
	mu  sync.RWMutex
	cur Context
}

// NewRef returns a Ref holding c.
func NewRef(c Context) *Ref {
	return &Ref{cur: c}
}

// Load returns the current context.
func (r *Ref) Load() Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

// Apply runs fn against the current context and, on success, copies the
// returned context back onto the reference. On error the reference keeps its
// previous value.
func (r *Ref) Apply(ctx context.Context, fn func(context.Context, Context) (Context, error)) error {
	next, err := fn(ctx, r.Load())
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cur = next
	r.mu.Unlock()
	return nil
}
