// Package artifact defines the unit of configuration the loader pipeline moves
// around: discovered module handles, the artifacts they import into, and the
// normalization of the three export shapes (single record, list, legacy
// object-by-namespace map) into one flat artifact list.
package artifact
