package handlers

import (
	"errors"
	"fmt"
	"reflect"
)

// UnregisteredError is returned by a stub when it is called.
type UnregisteredError struct {
	Name string
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("handler %q is not registered", e.Name)
}

// StubFunc stands in for a referenced handler the table does not have.
type StubFunc func(args ...any) (any, error)

// Stub returns a placeholder for name that fails with *UnregisteredError
// whenever it is called.
func Stub(name string) StubFunc {
	return func(...any) (any, error) {
		return nil, &UnregisteredError{Name: name}
	}
}

// StubName returns the handler name a stub stands in for.
func StubName(fn any) (string, bool) {
	stub, ok := fn.(StubFunc)
	if !ok || stub == nil {
		return "", false
	}
	_, err := stub()
	var ue *UnregisteredError
	if errors.As(err, &ue) {
		return ue.Name, true
	}
	return "", false
}

// NameOf returns the name fn is registered under. Functions are compared by
// code pointer, so closures created from one literal share a name; the
// first in sorted order is returned.
func (t *Table) NameOf(fn any) (string, bool) {
	if t == nil || fn == nil {
		return "", false
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", false
	}
	ptr := v.Pointer()
	for _, name := range t.Names() {
		registered, _ := t.Lookup(name)
		if reflect.ValueOf(registered).Pointer() == ptr {
			return name, true
		}
	}
	return "", false
}

// Describe renders a function for display: its registered name, the name a
// stub stands in for, or "<func>".
func (t *Table) Describe(fn any) string {
	if name, ok := StubName(fn); ok {
		return name + " (unregistered)"
	}
	if name, ok := t.NameOf(fn); ok {
		return name
	}
	return "<func>"
}
