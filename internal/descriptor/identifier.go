// Package descriptor holds the engine's immutable metadata: identifiers,
// data types, and the descriptors for contexts, models, treatments, and
// functions, plus the Collection registry that owns them for the engine's
// lifetime (spec.md §3, §4.1).
package descriptor

import "strings"

// Identifier is a fully qualified path (package, path segments, name) with
// a version. Equality is structural.
type Identifier struct {
	Package  string
	Path     []string
	Name     string
	Version  string
}

// NewIdentifier builds an Identifier from its parts.
func NewIdentifier(pkg string, path []string, name, version string) Identifier {
	return Identifier{
		Package: pkg,
		Path:    append([]string(nil), path...),
		Name:    name,
		Version: version,
	}
}

// String renders the canonical textual form "pkg/path/.../Name@version".
func (id Identifier) String() string {
	var b strings.Builder
	b.WriteString(id.Package)
	for _, segment := range id.Path {
		b.WriteString("/")
		b.WriteString(segment)
	}
	b.WriteString("/")
	b.WriteString(id.Name)
	if id.Version != "" {
		b.WriteString("@")
		b.WriteString(id.Version)
	}
	return b.String()
}

// Equal reports structural equality between two identifiers.
func (id Identifier) Equal(other Identifier) bool {
	if id.Package != other.Package || id.Name != other.Name || id.Version != other.Version {
		return false
	}
	if len(id.Path) != len(other.Path) {
		return false
	}
	for i := range id.Path {
		if id.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Key returns a value suitable for use as a map key, since Identifier
// itself contains a slice and cannot be compared with ==.
func (id Identifier) Key() string {
	return id.String()
}
