// Package registry holds the registry builders: pure functions that fold a
// validated artifact list into the registry a loader assigns onto the
// context. Each builder encodes its own key extraction and conflict policy:
//
//   - ByName: flat name -> artifact, last wins (ByNameLogged warns)
//   - Namespaced: namespace -> name -> method, last wins per pair
//   - Hierarchical: dot-path names deep-assigned into a tree, last wins at leaves
//   - Events: name -> handlers in discovery order, nothing is overwritten
//   - Features: feature manifests deep-merged into four sub-registries
//
// Builders skip nil and non-record entries; they never fail on noise.
package registry
