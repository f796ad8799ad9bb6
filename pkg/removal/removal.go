// Package removal plans the uninstallation of a package together with the
// dependencies that nothing else needs once it is gone.
//
// A plan always contains the target. It also contains:
//
//   - the "<name>-debug" companion, when installed and not needed elsewhere
//   - every orphan: an installed dependency that was not installed
//     explicitly and whose dependents are all in the plan
//
// Packages that depend on the target are never added. Without
// [Options.Force] they block the plan with an [errors.InUseError]; with it
// they are left installed and listed in [Plan.BlockedBy].
//
// [errors.InUseError]: github.com/matzehuels/aurorus/pkg/errors.InUseError
package removal

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"

	"github.com/charmbracelet/log"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/registry"
)

// DebugSuffix names the split debug package built next to a package.
const DebugSuffix = "-debug"

// Reason records why a package is part of a removal plan.
type Reason string

const (
	ReasonTarget    Reason = "target"
	ReasonCompanion Reason = "companion"
	ReasonOrphan    Reason = "orphan"
)

// Step is one package to remove.
type Step struct {
	Name   string
	Reason Reason
}

// Plan is an ordered removal: each package comes before the packages it
// depends on.
type Plan struct {
	Target    string
	Steps     []Step
	Forced    bool
	BlockedBy []string // dependents of Target left installed under force
}

// Names returns the step package names in order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Name
	}
	return out
}

// Options configures removal planning.
type Options struct {
	Force bool // remove the target even if installed packages depend on it
}

// Store is the registry view the planner reads.
type Store interface {
	Get(ctx context.Context, name string) (*registry.Package, error)
	Dependents(ctx context.Context, name string) ([]string, error)
}

// Planner computes removal plans. It never modifies the registry.
type Planner struct {
	store  Store
	logger *log.Logger
}

// NewPlanner creates a Planner. A nil logger discards output.
func NewPlanner(store Store, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Planner{store: store, logger: logger}
}

// Plan computes the removal of name.
//
// It fails with NOT_INSTALLED when name is not in the registry and with
// IN_USE when other installed packages depend on it and opts.Force is unset.
func (p *Planner) Plan(ctx context.Context, name string, opts Options) (*Plan, error) {
	target, err := p.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	members := map[string]*registry.Package{target.Name: target}
	reasons := map[string]Reason{target.Name: ReasonTarget}
	plan := &Plan{Target: target.Name}

	companion, err := p.companion(ctx, target.Name)
	if err != nil {
		return nil, err
	}
	if companion != nil {
		members[companion.Name] = companion
		reasons[companion.Name] = ReasonCompanion
	}

	dependents, err := p.store.Dependents(ctx, target.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependents for %s: %w", target.Name, err)
	}
	var blocking []string
	for _, d := range dependents {
		if _, ok := members[d]; !ok {
			blocking = append(blocking, d)
		}
	}
	if len(blocking) > 0 {
		if !opts.Force {
			return nil, &aerr.InUseError{Name: target.Name, Dependents: blocking}
		}
		plan.Forced = true
		plan.BlockedBy = blocking
		p.logger.Warn("removing package still in use", "name", target.Name, "dependents", blocking)
	}

	if err := p.collectOrphans(ctx, members, reasons); err != nil {
		return nil, err
	}

	for _, n := range order(members) {
		plan.Steps = append(plan.Steps, Step{Name: n, Reason: reasons[n]})
	}
	p.logger.Debug("removal planned", "name", target.Name, "steps", len(plan.Steps), "forced", plan.Forced)
	return plan, nil
}

// companion returns the installed debug package of name when nothing but
// name depends on it.
func (p *Planner) companion(ctx context.Context, name string) (*registry.Package, error) {
	pkg, err := p.store.Get(ctx, name+DebugSuffix)
	if aerr.Is(err, aerr.ErrCodeNotInstalled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dependents, err := p.store.Dependents(ctx, pkg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependents for %s: %w", pkg.Name, err)
	}
	for _, d := range dependents {
		if d != name {
			return nil, nil
		}
	}
	return pkg, nil
}

// collectOrphans grows members until no more dependencies qualify.
func (p *Planner) collectOrphans(ctx context.Context, members map[string]*registry.Package, reasons map[string]Reason) error {
	for changed := true; changed; {
		changed = false
		for _, name := range slices.Sorted(maps.Keys(members)) {
			for _, dep := range members[name].Dependencies {
				if _, ok := members[dep]; ok {
					continue
				}
				pkg, err := p.store.Get(ctx, dep)
				if aerr.Is(err, aerr.ErrCodeNotInstalled) {
					continue
				}
				if err != nil {
					return err
				}
				if pkg.Explicit {
					continue
				}
				dependents, err := p.store.Dependents(ctx, dep)
				if err != nil {
					return fmt.Errorf("failed to get dependents for %s: %w", dep, err)
				}
				if !allIn(dependents, members) {
					continue
				}
				members[dep] = pkg
				reasons[dep] = ReasonOrphan
				changed = true
			}
		}
	}
	return nil
}

// order sorts members so dependents precede their dependencies, breaking
// ties by name. Members caught in a dependency cycle come last, by name.
func order(members map[string]*registry.Package) []string {
	indegree := make(map[string]int, len(members))
	for name := range members {
		indegree[name] += 0
		for _, dep := range members[name].Dependencies {
			if _, ok := members[dep]; ok && dep != name {
				indegree[dep]++
			}
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(members))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		out = append(out, name)
		for _, dep := range members[name].Dependencies {
			if _, ok := members[dep]; !ok || dep == name {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				i, _ := slices.BinarySearch(ready, dep)
				ready = slices.Insert(ready, i, dep)
			}
		}
	}

	if len(out) < len(members) {
		var rest []string
		for name := range members {
			if !slices.Contains(out, name) {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		out = append(out, rest...)
	}
	return out
}

func allIn(names []string, set map[string]*registry.Package) bool {
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
