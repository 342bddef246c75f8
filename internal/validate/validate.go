package validate

import (
	"reflect"

	"github.com/agentx-labs/ctxloader/internal/artifact"
)

// Result partitions a list into the entries a predicate accepted and the ones
// it rejected, both in input order.
type Result struct {
	Valid   []any
	Invalid []any
}

// IsNonEmptyList reports whether v is a slice with at least one element.
// Arrays and strings are not lists.
func IsNonEmptyList(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.Len() > 0
}

// IsRecord reports whether v is a plain string-keyed map.
func IsRecord(v any) bool {
	_, ok := artifact.AsRecord(v)
	return ok
}

// IsValidArtifact reports whether v is a record whose own "name" key holds a
// string.
func IsValidArtifact(v any) bool {
	rec, ok := artifact.AsRecord(v)
	if !ok {
		return false
	}
	_, ok = rec[artifact.KeyName].(string)
	return ok
}

// HasRequiredKeys reports whether every key is present in record. A key
// holding nil still counts as present.
func HasRequiredKeys(keys []string, record any) bool {
	rec, ok := artifact.AsRecord(record)
	if !ok {
		return false
	}
	for _, k := range keys {
		if _, present := rec[k]; !present {
			return false
		}
	}
	return true
}

// IsCallable reports whether v is a non-nil function value.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// ValidateDetailed splits list into the entries pred accepts and the ones it
// rejects. Nothing is discarded.
func ValidateDetailed(list []any, pred func(any) bool) Result {
	res := Result{Valid: []any{}, Invalid: []any{}}
	for _, v := range list {
		if pred(v) {
			res.Valid = append(res.Valid, v)
		} else {
			res.Invalid = append(res.Invalid, v)
		}
	}
	return res
}

// All combines predicates; the result accepts a value only if every predicate
// does.
func All(preds ...func(any) bool) func(any) bool {
	return func(v any) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// RequireKeys returns a predicate that accepts records carrying every key.
func RequireKeys(keys ...string) func(any) bool {
	return func(v any) bool { return HasRequiredKeys(keys, v) }
}
