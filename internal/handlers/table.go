package handlers

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Table is a concurrency-safe name -> function map.
type Table struct {
	mu  sync.RWMutex
	fns map[string]any
}

// New returns an empty table.
func New() *Table {
	return &Table{fns: make(map[string]any)}
}

// Register adds fn under name. Registering a non-function or reusing a name
// is a programming error and panics.
func (t *Table) Register(name string, fn any) {
	if name == "" {
		panic("handlers: empty handler name")
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func || reflect.ValueOf(fn).IsNil() {
		panic(fmt.Sprintf("handlers: %q is not a function", name))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.fns[name]; exists {
		panic(fmt.Sprintf("handlers: %q already registered", name))
	}
	t.fns[name] = fn
}

// Lookup returns the function registered under name.
func (t *Table) Lookup(name string) (any, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.fns[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.fns))
	for name := range t.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.fns)
}
