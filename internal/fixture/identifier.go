package fixture

import (
	"fmt"
	"strings"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

// ParseIdentifier parses the canonical "pkg/path/.../Name@version" textual
// form produced by descriptor.Identifier.String back into its parts.
func ParseIdentifier(s string) (descriptor.Identifier, error) {
	body, version, _ := strings.Cut(s, "@")

	segments := strings.Split(body, "/")
	segments = removeEmpty(segments)
	if len(segments) < 2 {
		return descriptor.Identifier{}, fmt.Errorf("identifier %q must have at least a package and a name", s)
	}

	pkg := segments[0]
	name := segments[len(segments)-1]
	path := segments[1 : len(segments)-1]

	return descriptor.NewIdentifier(pkg, path, name, version), nil
}

func removeEmpty(segments []string) []string {
	out := segments[:0]
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
