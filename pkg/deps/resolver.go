package deps

import (
	"context"
	"fmt"
	"slices"
	"sort"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/version"
)

// Lookuper finds package candidates across origins.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (*source.LookupResult, error)
}

// Installed reports which installed package, if any, satisfies a dependency.
// It returns nil, nil when none does.
type Installed interface {
	Satisfier(ctx context.Context, dep version.Dependency) (*registry.Package, error)
}

// Resolver computes install plans. It only reads; nothing on the system
// changes during resolution.
type Resolver struct {
	src       Lookuper
	installed Installed
}

// NewResolver creates a Resolver. A nil installed treats nothing as installed.
func NewResolver(src Lookuper, installed Installed) *Resolver {
	return &Resolver{src: src, installed: installed}
}

// Resolve builds the dependency graph of root and returns the plan to
// install it. root is a package name, optionally with a version constraint
// ("foo>=2").
//
// Resolution fails with CYCLIC_DEPENDENCY, VERSION_CONFLICT, NOT_FOUND,
// SOURCE_UNAVAILABLE or LIMIT_EXCEEDED errors; on failure no plan is
// returned.
func (r *Resolver) Resolve(ctx context.Context, root string, opts Options) (*Plan, error) {
	dep, err := version.ParseDependency(root)
	if err != nil {
		return nil, aerr.Wrap(aerr.ErrCodeInvalidInput, err, "invalid package %q", root)
	}

	w := &walk{
		ctx:       ctx,
		r:         r,
		opts:      opts.WithDefaults(),
		graph:     newGraph(),
		required:  make(map[string][]version.Dependency),
		declared:  make(map[string][]Constraint),
		satisfied: make(map[string]bool),
	}

	id, _, err := w.visit(dep, "", 0)
	if err != nil {
		return nil, err
	}
	w.graph.root = id

	w.opts.Logger.Debug("resolved", "name", dep.Name, "steps", len(w.steps), "satisfied", len(w.plan.Satisfied))
	w.plan.Steps = w.steps
	w.plan.Graph = w.graph
	return &w.plan, nil
}

type walk struct {
	ctx  context.Context
	r    *Resolver
	opts Options

	graph *Graph
	stack []int
	steps []*Node
	plan  Plan

	// Every constraint seen for a dependency name, kept for conflict checks.
	required map[string][]version.Dependency
	declared map[string][]Constraint

	satisfied map[string]bool
}

// visit resolves dep. It returns the arena index of the selected node, or
// -1 and the name of the installed package that satisfies dep.
func (w *walk) visit(dep version.Dependency, from string, depth int) (int, string, error) {
	if err := w.ctx.Err(); err != nil {
		return -1, "", err
	}
	root := depth == 0

	if err := w.constrain(dep, from); err != nil {
		return -1, "", err
	}

	if n, ok := w.graph.Lookup(dep.Name); ok && (n.Name() == dep.Name || n.Record.Satisfies(dep)) {
		return w.reuse(n, dep, from)
	}

	if !root && w.r.installed != nil {
		pkg, err := w.r.installed.Satisfier(w.ctx, dep)
		if err != nil {
			return -1, "", fmt.Errorf("failed to check installed packages for %s: %w", dep, err)
		}
		if pkg != nil {
			w.noteSatisfied(dep, from, pkg)
			return -1, pkg.Name, nil
		}
	}

	if depth > w.opts.MaxDepth {
		return -1, "", aerr.New(aerr.ErrCodeLimitExceeded, "dependency depth limit (%d) exceeded at %s", w.opts.MaxDepth, dep.Name)
	}
	if w.graph.Len() >= w.opts.MaxNodes {
		return -1, "", aerr.New(aerr.ErrCodeLimitExceeded, "package limit (%d) exceeded at %s", w.opts.MaxNodes, dep.Name)
	}

	rec, pinned, err := w.choose(dep, root)
	if err != nil {
		code := aerr.GetCode(err)
		if root || code == "" {
			return -1, "", err
		}
		return -1, "", aerr.Wrap(code, err, "cannot resolve %s required by %s", dep, from)
	}

	// A provider that is already in the graph under its own name.
	if n, ok := w.graph.Lookup(rec.Name); ok && n.Name() == rec.Name {
		w.graph.byName[dep.Name] = n.ID
		return w.reuse(n, dep, from)
	}

	n := w.graph.add(rec)
	w.graph.byName[dep.Name] = n.ID
	n.Explicit = root
	n.Pinned = pinned
	n.Constraints = append(n.Constraints, Constraint{Expr: dep.String(), From: from})
	n.State = InProgress
	w.stack = append(w.stack, n.ID)

	children := rec.Depends
	if rec.Origin == source.OriginAUR {
		children = append(slices.Clip(children), rec.MakeDepends...)
	}
	var runtime, build []string
	for i, d := range children {
		cid, installed, err := w.visit(d, rec.Name, depth+1)
		if err != nil {
			return -1, "", err
		}
		name := installed
		switch {
		case cid >= 0:
			name = w.graph.nodes[cid].Name()
			if !slices.Contains(n.Children, cid) {
				n.Children = append(n.Children, cid)
			}
		case installed != "" && !slices.Contains(n.Installed, installed):
			n.Installed = append(n.Installed, installed)
		}
		if i < len(rec.Depends) {
			runtime = append(runtime, name)
		} else {
			build = append(build, name)
		}
	}
	for _, name := range build {
		if name != "" && !slices.Contains(runtime, name) && !slices.Contains(n.BuildOnly, name) {
			n.BuildOnly = append(n.BuildOnly, name)
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	n.State = Resolved
	w.steps = append(w.steps, n)
	w.opts.Logger.Debug("selected", "name", rec.Name, "origin", rec.Origin, "version", rec.Version, "pinned", pinned)
	return n.ID, "", nil
}

// reuse attaches dep to a node that is already selected.
func (w *walk) reuse(n *Node, dep version.Dependency, from string) (int, string, error) {
	if n.State == InProgress {
		return -1, "", &aerr.CycleError{Path: w.cyclePath(n.ID)}
	}
	if !n.Record.Satisfies(dep) {
		return -1, "", &aerr.ConflictError{
			Name:        dep.Name,
			Constraints: constraintStrings(w.declared[dep.Name]),
			Available:   n.Version(),
		}
	}
	n.Constraints = append(n.Constraints, Constraint{Expr: dep.String(), From: from})
	return n.ID, "", nil
}

// cyclePath lists the names from the first occurrence of id on the stack
// back to id itself.
func (w *walk) cyclePath(id int) []string {
	start := slices.Index(w.stack, id)
	if start < 0 {
		start = 0
	}
	path := make([]string, 0, len(w.stack)-start+1)
	for _, i := range w.stack[start:] {
		path = append(path, w.graph.nodes[i].Name())
	}
	return append(path, w.graph.nodes[id].Name())
}

// constrain records dep and fails when the constraints on its name can no
// longer be met together.
func (w *walk) constrain(dep version.Dependency, from string) error {
	w.declared[dep.Name] = append(w.declared[dep.Name], Constraint{Expr: dep.String(), From: from})
	if dep.Unversioned() {
		return nil
	}
	w.required[dep.Name] = append(w.required[dep.Name], dep)
	if version.Intersect(w.required[dep.Name]...).Empty() {
		return &aerr.ConflictError{
			Name:        dep.Name,
			Constraints: constraintStrings(w.declared[dep.Name]),
		}
	}
	return nil
}

// accepts reports whether rec meets every constraint seen for name.
func (w *walk) accepts(rec *source.Record, name string) bool {
	if !rec.Satisfies(version.Dependency{Name: name}) {
		return false
	}
	for _, d := range w.required[name] {
		if !rec.Satisfies(d) {
			return false
		}
	}
	return true
}

// choose applies the origin policy to the candidates for dep.
//
// A pin (the root origin or a per-name pin) restricts the choice to that
// origin. Otherwise the preferred origin is tried first and the other origin
// only when the preferred one has no acceptable record. Within an origin,
// exact-name records beat providers, then names sort.
func (w *walk) choose(dep version.Dependency, root bool) (*source.Record, bool, error) {
	res, err := w.r.src.Lookup(w.ctx, dep.Name)
	if res != nil {
		for _, u := range res.Unavailable {
			w.plan.Warnings = append(w.plan.Warnings, u)
		}
	}
	if err != nil {
		return nil, false, err
	}

	if pin, ok := w.opts.pin(dep.Name, root); ok {
		candidates := rank(res.ByOrigin(pin), dep.Name)
		if len(candidates) == 0 {
			for _, u := range res.Unavailable {
				if u.Origin == string(pin) {
					return nil, true, aerr.Wrap(aerr.ErrCodeSourceUnavailable, u, "cannot look up %s in %s", dep.Name, pin)
				}
			}
			return nil, true, aerr.New(aerr.ErrCodeNotFound, "package %s not found in %s", dep.Name, pin)
		}
		for _, rec := range candidates {
			if w.accepts(rec, dep.Name) {
				return rec, true, nil
			}
		}
		return nil, true, w.unavailable(dep.Name, candidates[0])
	}

	var first *source.Record
	for _, o := range w.originOrder() {
		candidates := rank(res.ByOrigin(o), dep.Name)
		for _, rec := range candidates {
			if w.accepts(rec, dep.Name) {
				return rec, false, nil
			}
		}
		if first == nil && len(candidates) > 0 {
			first = candidates[0]
		}
	}
	if first == nil {
		return nil, false, aerr.New(aerr.ErrCodeNotFound, "package %s not found", dep.Name)
	}
	return nil, false, w.unavailable(dep.Name, first)
}

func (w *walk) originOrder() []source.Origin {
	if w.opts.Prefer == source.OriginAUR {
		return []source.Origin{source.OriginAUR, source.OriginRepo}
	}
	return []source.Origin{source.OriginRepo, source.OriginAUR}
}

func (w *walk) unavailable(name string, best *source.Record) error {
	return &aerr.ConflictError{
		Name:        name,
		Constraints: constraintStrings(w.declared[name]),
		Available:   best.Version,
	}
}

func (w *walk) noteSatisfied(dep version.Dependency, from string, pkg *registry.Package) {
	key := dep.String() + "\x00" + pkg.Name
	if w.satisfied[key] {
		return
	}
	w.satisfied[key] = true
	w.plan.Satisfied = append(w.plan.Satisfied, Satisfied{
		Dependency: dep.String(),
		Name:       pkg.Name,
		Version:    pkg.Version,
		From:       from,
	})
}

// rank orders records: exact name matches first, then by name.
func rank(records []source.Record, name string) []*source.Record {
	out := make([]*source.Record, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].ExactName(name), out[j].ExactName(name)
		if ei != ej {
			return ei
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func constraintStrings(list []Constraint) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.String()
	}
	return out
}
