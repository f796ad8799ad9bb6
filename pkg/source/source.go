// Package source locates package candidates across the AUR and the binary
// repositories.
//
// Each origin is reached through an [Adapter] that keeps origin-specific
// parsing in its own integration package. [Client] queries all adapters at
// once and merges what they return into a [LookupResult]. A failing origin
// does not fail the lookup while another origin answers; the failure is kept
// in [LookupResult.Unavailable] so callers can report it.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/aurorus/pkg/version"
)

// Origin identifies where a package comes from.
type Origin string

const (
	// OriginRepo is a prebuilt package from a pacman sync database.
	OriginRepo Origin = "repo"
	// OriginAUR is a build recipe from the Arch User Repository.
	OriginAUR Origin = "aur"
)

// ParseOrigin accepts "repo" or "aur".
func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(strings.ToLower(strings.TrimSpace(s))); o {
	case OriginRepo, OriginAUR:
		return o, nil
	}
	return "", fmt.Errorf("unknown origin %q (want repo or aur)", s)
}

func (o Origin) String() string { return string(o) }

// Record is the metadata of one package candidate. Records are not modified
// after they are returned by an adapter.
type Record struct {
	Name        string
	Version     string
	Origin      Origin
	Depends     []version.Dependency // runtime dependencies, in declared order
	MakeDepends []version.Dependency // build-only dependencies (AUR)
	Provides    []version.Dependency

	Base        string // AUR package base (clone target)
	Repository  string // sync database name (repo origin)
	Description string
	Votes       int
}

// ID is "origin/name", e.g. "aur/yay".
func (r *Record) ID() string { return string(r.Origin) + "/" + r.Name }

// Satisfies reports whether the record meets dependency d by name or by
// one of its provides.
func (r *Record) Satisfies(d version.Dependency) bool {
	return version.Satisfies(d, r.Name, r.Version, r.Provides)
}

// ExactName reports whether the record is named name rather than
// merely providing it.
func (r *Record) ExactName(name string) bool { return r.Name == name }

// Result is one search hit.
type Result struct {
	Name        string
	Version     string
	Origin      Origin
	Repository  string
	Description string
	Votes       int
	Installed   bool
	OutOfDate   bool
}

// Adapter is the per-origin lookup interface.
//
// Lookup returns no records and a nil error when the origin does not know
// name. Errors mean the origin could not be asked.
type Adapter interface {
	Origin() Origin
	Lookup(ctx context.Context, name string) ([]Record, error)
	Search(ctx context.Context, query string) ([]Result, error)
}
