package deps

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/matzehuels/aurorus/pkg/source"
)

// State is a node's traversal state.
type State int

const (
	Unvisited State = iota
	InProgress
	Resolved
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	}
	return "unvisited"
}

// Node is one package selected for installation. Nodes live in a [Graph]
// arena and refer to each other by index, so a package needed by several
// dependents is a single shared node.
type Node struct {
	ID       int
	Record   *source.Record
	State    State
	Children []int // arena indices of dependencies, in declared order

	// Constraints are the dependency expressions that selected this node,
	// each with the package that declared it.
	Constraints []Constraint
	// Installed names the already-installed packages that satisfy some of
	// this node's dependencies.
	Installed []string
	// BuildOnly names children and installed satisfiers needed only to build
	// an AUR recipe (makedepends that are not also runtime depends).
	BuildOnly []string

	Explicit bool // the requested root
	Pinned   bool // origin chosen by a pin rather than by preference
}

// Name is the selected package name.
func (n *Node) Name() string { return n.Record.Name }

// Origin is the selected origin.
func (n *Node) Origin() source.Origin { return n.Record.Origin }

// Version is the selected version.
func (n *Node) Version() string { return n.Record.Version }

// ResolvedDependencies are the names this node will be recorded as using
// once installed: its child nodes followed by installed satisfiers, minus
// build-only packages. Those are installed before the node but do not keep
// it from being removed or become orphans with it.
func (g *Graph) ResolvedDependencies(n *Node) []string {
	out := make([]string, 0, len(n.Children)+len(n.Installed))
	add := func(name string) {
		if !slices.Contains(out, name) && !slices.Contains(n.BuildOnly, name) {
			out = append(out, name)
		}
	}
	for _, c := range n.Children {
		add(g.nodes[c].Name())
	}
	for _, name := range n.Installed {
		add(name)
	}
	return out
}

// Constraint is a dependency expression and the package that declared it.
// From is empty for the root request.
type Constraint struct {
	Expr string
	From string
}

func (c Constraint) String() string {
	if c.From == "" {
		return c.Expr + " (requested)"
	}
	return c.Expr + " (from " + c.From + ")"
}

// Graph is the resolved dependency graph, an arena of nodes.
type Graph struct {
	nodes  []*Node
	byName map[string]int // package names and provides aliases
	root   int
}

func newGraph() *Graph {
	return &Graph{byName: make(map[string]int), root: -1}
}

func (g *Graph) add(rec *source.Record) *Node {
	n := &Node{ID: len(g.nodes), Record: rec}
	g.nodes = append(g.nodes, n)
	g.byName[rec.Name] = n.ID
	for _, p := range rec.Provides {
		if _, taken := g.byName[p.Name]; !taken {
			g.byName[p.Name] = n.ID
		}
	}
	return n
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns all nodes in arena order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node at index id.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Lookup finds the node selected for name or for a name it provides.
func (g *Graph) Lookup(name string) (*Node, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Root returns the requested package node.
func (g *Graph) Root() *Node { return g.Node(g.root) }

// Edges returns every dependency edge as (from, to) index pairs.
func (g *Graph) Edges() [][2]int {
	var out [][2]int
	for _, n := range g.nodes {
		for _, c := range n.Children {
			out = append(out, [2]int{n.ID, c})
		}
	}
	return out
}

// DOT renders the graph in Graphviz DOT format. Repo packages are drawn as
// plain boxes, AUR packages filled; the root has a bold outline. Installed
// packages that satisfied a dependency are drawn dashed.
func (g *Graph) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded\", fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range g.nodes {
		attrs := fmt.Sprintf("label=%q", n.Name()+"\n"+n.Version())
		if n.Origin() == source.OriginAUR {
			attrs += ", style=\"rounded,filled\", fillcolor=\"#e8f0fe\""
		}
		if n.Explicit {
			attrs += ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), attrs)
	}

	var installed []string
	for _, n := range g.nodes {
		for _, name := range n.Installed {
			if _, ok := g.byName[name]; !ok && !slices.Contains(installed, name) {
				installed = append(installed, name)
			}
		}
	}
	slices.Sort(installed)
	for _, name := range installed {
		fmt.Fprintf(&buf, "  %q [style=\"rounded,dashed\", fontcolor=grey40, color=grey40];\n", name)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", g.nodes[e[0]].Name(), g.nodes[e[1]].Name())
	}
	for _, n := range g.nodes {
		for _, name := range n.Installed {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey40];\n", n.Name(), name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
