package version

import (
	"fmt"
	"strings"
)

// Op is a comparison operator in a dependency expression.
type Op string

// Supported operators. OpAny means "any version".
const (
	OpAny Op = ""
	OpEQ  Op = "="
	OpGE  Op = ">="
	OpLE  Op = "<="
	OpGT  Op = ">"
	OpLT  Op = "<"
)

// Dependency is a parsed dependency or provides expression such as
// "python>=3.11" or "libfoo.so=2-64".
type Dependency struct {
	Name    string
	Op      Op
	Version string
}

// ParseDependency parses a pacman dependency expression. Optional
// descriptions ("foo: for bar support") are discarded.
func ParseDependency(s string) (Dependency, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return Dependency{}, fmt.Errorf("empty dependency expression")
	}

	i := strings.IndexAny(s, "<>=")
	if i < 0 {
		return Dependency{Name: s}, nil
	}
	name, rest := s[:i], s[i:]
	if name == "" {
		return Dependency{}, fmt.Errorf("dependency %q has no package name", s)
	}

	var op Op
	for _, candidate := range []Op{OpGE, OpLE, OpEQ, OpGT, OpLT} {
		if strings.HasPrefix(rest, string(candidate)) {
			op = candidate
			break
		}
	}
	ver := strings.TrimSpace(rest[len(op):])
	if ver == "" || strings.ContainsAny(ver, "<>=") {
		return Dependency{}, fmt.Errorf("dependency %q has an invalid version", s)
	}
	return Dependency{Name: name, Op: op, Version: ver}, nil
}

// MustParse is ParseDependency for literals known to be valid.
func MustParse(s string) Dependency {
	d, err := ParseDependency(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDependencies parses every non-empty expression in list, skipping
// malformed entries.
func ParseDependencies(list []string) []Dependency {
	out := make([]Dependency, 0, len(list))
	for _, s := range list {
		if d, err := ParseDependency(s); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// String renders the dependency in pacman syntax.
func (d Dependency) String() string {
	if d.Op == OpAny {
		return d.Name
	}
	return d.Name + string(d.Op) + d.Version
}

// Constraint renders only the version part, e.g. ">=1.2".
func (d Dependency) Constraint() string {
	if d.Op == OpAny {
		return "*"
	}
	return string(d.Op) + d.Version
}

// Unversioned reports whether the dependency accepts any version.
func (d Dependency) Unversioned() bool { return d.Op == OpAny }

// SatisfiedBy reports whether version v meets the constraint.
func (d Dependency) SatisfiedBy(v string) bool {
	if d.Op == OpAny {
		return true
	}
	c := Compare(v, d.Version)
	switch d.Op {
	case OpEQ:
		return c == 0
	case OpGE:
		return c >= 0
	case OpLE:
		return c <= 0
	case OpGT:
		return c > 0
	case OpLT:
		return c < 0
	}
	return false
}

// Satisfies reports whether a package called name at version ver, which
// provides the given entries, satisfies dependency d.
//
// A provides entry without a version only satisfies unversioned
// dependencies, matching pacman.
func Satisfies(d Dependency, name, ver string, provides []Dependency) bool {
	if name == d.Name && d.SatisfiedBy(ver) {
		return true
	}
	for _, p := range provides {
		if p.Name != d.Name {
			continue
		}
		if d.Op == OpAny {
			return true
		}
		if p.Version != "" && d.SatisfiedBy(p.Version) {
			return true
		}
	}
	return false
}
