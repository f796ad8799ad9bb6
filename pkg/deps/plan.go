package deps

import "strings"

// Satisfied records a dependency that needs no step because an installed
// package already meets it.
type Satisfied struct {
	Dependency string // requested expression, e.g. "sh" or "glibc>=2.38"
	Name       string // installed package that satisfies it
	Version    string // installed version
	From       string // package that declared the dependency
}

// Plan is the ordered list of packages to install for one request.
type Plan struct {
	// Steps lists every node to build or install, each after all of its
	// dependencies. The root is last.
	Steps     []*Node
	Satisfied []Satisfied
	// Warnings hold non-fatal origin failures met while resolving.
	Warnings []error
	Graph    *Graph
}

// Root returns the requested package node.
func (p *Plan) Root() *Node { return p.Graph.Root() }

// Names returns the step package names in order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.Steps))
	for i, n := range p.Steps {
		out[i] = n.Name()
	}
	return out
}

// String renders the step order as "a -> b -> c".
func (p *Plan) String() string { return strings.Join(p.Names(), " -> ") }
