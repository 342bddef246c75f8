package feature

import "fmt"

// Sub-registry names, in the order they are merged and reported.
const (
	TypeComposers = "typeComposers"
	Queries       = "queries"
	Mutations     = "mutations"
	Resolvers     = "resolvers"
)

// Registries lists every sub-registry name.
var Registries = []string{TypeComposers, Queries, Mutations, Resolvers}

// Manifest is one feature module's contribution.
type Manifest struct {
	// Feature names the contributing module; used in duplicate reports.
	Feature string `mapstructure:"feature"`
	// Name is accepted as a fallback for Feature.
	Name string `mapstructure:"name"`

	TypeComposers map[string]any `mapstructure:"typeComposers"`
	Queries       map[string]any `mapstructure:"queries"`
	Mutations     map[string]any `mapstructure:"mutations"`
	Resolvers     map[string]any `mapstructure:"resolvers"`
}

// Origin returns the label used for this manifest in reports.
func (m Manifest) Origin(index int) string {
	switch {
	case m.Feature != "":
		return m.Feature
	case m.Name != "":
		return m.Name
	default:
		return fmt.Sprintf("manifest[%d]", index)
	}
}

// Registry returns the named sub-registry, or nil for an unknown name.
func (m Manifest) Registry(name string) map[string]any {
	switch name {
	case TypeComposers:
		return m.TypeComposers
	case Queries:
		return m.Queries
	case Mutations:
		return m.Mutations
	case Resolvers:
		return m.Resolvers
	default:
		return nil
	}
}

// Set is the merged result. Every sub-registry is non-nil, even when empty.
type Set struct {
	TypeComposers map[string]any `json:"typeComposers" yaml:"typeComposers"`
	Queries       map[string]any `json:"queries" yaml:"queries"`
	Mutations     map[string]any `json:"mutations" yaml:"mutations"`
	Resolvers     map[string]any `json:"resolvers" yaml:"resolvers"`
}

// NewSet returns a Set with all four sub-registries allocated.
func NewSet() Set {
	return Set{
		TypeComposers: map[string]any{},
		Queries:       map[string]any{},
		Mutations:     map[string]any{},
		Resolvers:     map[string]any{},
	}
}

// Registry returns the named sub-registry of the set.
func (s Set) Registry(name string) map[string]any {
	switch name {
	case TypeComposers:
		return s.TypeComposers
	case Queries:
		return s.Queries
	case Mutations:
		return s.Mutations
	case Resolvers:
		return s.Resolvers
	default:
		return nil
	}
}

// Len returns the total number of top-level keys across sub-registries.
func (s Set) Len() int {
	return len(s.TypeComposers) + len(s.Queries) + len(s.Mutations) + len(s.Resolvers)
}

func (s *Set) set(name string, reg map[string]any) {
	switch name {
	case TypeComposers:
		s.TypeComposers = reg
	case Queries:
		s.Queries = reg
	case Mutations:
		s.Mutations = reg
	case Resolvers:
		s.Resolvers = reg
	}
}

// Duplicate is a key defined by more than one feature in the same
// sub-registry. Features lists the contributors in discovery order.
type Duplicate struct {
	Registry string   `json:"registry" yaml:"registry"`
	Key      string   `json:"key" yaml:"key"`
	Features []string `json:"features" yaml:"features"`
}
