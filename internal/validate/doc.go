// Package validate holds the predicates every pipeline stage uses to classify
// values. They never panic and never return errors; they only answer yes or no.
package validate
