// Package feature merges feature manifests. Each feature module contributes up
// to four sub-registries (typeComposers, queries, mutations, resolvers); the
// merge deep-combines them in discovery order with the last manifest winning
// at the leaves, and separately reports keys that more than one feature
// defines.
package feature
