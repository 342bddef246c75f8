// Package discover is the default discovery collaborator. It walks one or more
// named source roots and returns a handle for every file whose slash-separated
// path, relative to its root, matches one of the loader's glob patterns
// (doublestar syntax, so "**" crosses directories).
//
// Sources are searched in order and a relative path found in an earlier
// source shadows the same path in later ones.
package discover
