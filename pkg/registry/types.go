package registry

import (
	"slices"
	"time"
)

// Package is one installed package.
type Package struct {
	Name    string
	Version string
	Origin  string // "repo" or "aur"

	// Dependencies are the installed packages this one was installed to use,
	// exactly as resolved at install time (runtime and build).
	Dependencies []string
	// Provides are pacman provides expressions such as "sh" or "libfoo.so=2-64".
	Provides []string

	Explicit    bool // installed on request rather than as a dependency
	InstalledAt time.Time
}

// DependsOn reports whether name is among the recorded dependencies.
func (p *Package) DependsOn(name string) bool {
	return slices.Contains(p.Dependencies, name)
}
