package wit

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// PackageName is a parsed `namespace:name[/path][@version]` reference.
type PackageName struct {
	Namespace string
	Name      string
	Path      []string
	Version   string
}

func ParsePackageName(s string) (PackageName, error) {
	var out PackageName

	rest := s
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		out.Version = rest[at+1:]
		rest = rest[:at]
		if out.Version == "" {
			return PackageName{}, errors.Errorf("package %q: empty version", s)
		}
	}

	ns, name, ok := strings.Cut(rest, ":")
	if !ok || ns == "" {
		return PackageName{}, errors.Errorf("package %q: missing namespace", s)
	}
	out.Namespace = ns

	parts := strings.Split(name, "/")
	if parts[0] == "" {
		return PackageName{}, errors.Errorf("package %q: missing name", s)
	}
	out.Name = parts[0]
	out.Path = parts[1:]

	return out, nil
}

func (p PackageName) String() string {
	var b strings.Builder
	b.WriteString(p.Namespace)
	b.WriteByte(':')
	b.WriteString(p.Name)
	for _, seg := range p.Path {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	if p.Version != "" {
		b.WriteByte('@')
		b.WriteString(p.Version)
	}
	return b.String()
}
