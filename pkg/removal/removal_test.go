package removal

import (
	"context"
	"errors"
	"slices"
	"testing"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/registry"
)

func pkg(name string, explicit bool, deps ...string) *registry.Package {
	return &registry.Package{Name: name, Version: "1-1", Origin: "aur", Explicit: explicit, Dependencies: deps}
}

func newTestPlanner(t *testing.T, pkgs ...*registry.Package) *Planner {
	t.Helper()
	reg, err := registry.Open(registry.MemoryPath)
	if err != nil {
		t.Fatalf("registry.Open() failed: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	for _, p := range pkgs {
		if err := reg.Put(context.Background(), p); err != nil {
			t.Fatalf("Put(%s) failed: %v", p.Name, err)
		}
	}
	return NewPlanner(reg, nil)
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		pkgs    []*registry.Package
		target  string
		opts    Options
		want    []string
		reasons []Reason
		blocked []string
	}{
		{
			name:    "target and orphaned dependency",
			pkgs:    []*registry.Package{pkg("foo", true, "bar"), pkg("bar", false)},
			target:  "foo",
			want:    []string{"foo", "bar"},
			reasons: []Reason{ReasonTarget, ReasonOrphan},
		},
		{
			name: "dependency shared with another package stays",
			pkgs: []*registry.Package{
				pkg("foo", true, "bar", "baz"),
				pkg("bar", false),
				pkg("baz", false),
				pkg("qux", true, "baz"),
			},
			target: "foo",
			want:   []string{"foo", "bar"},
		},
		{
			name:   "explicit dependency stays",
			pkgs:   []*registry.Package{pkg("foo", true, "bar"), pkg("bar", true)},
			target: "foo",
			want:   []string{"foo"},
		},
		{
			name: "orphans to a fixed point",
			pkgs: []*registry.Package{
				pkg("foo", true, "y", "z"),
				pkg("y", false, "z"),
				pkg("z", false, "w"),
				pkg("w", false),
			},
			target: "foo",
			want:   []string{"foo", "y", "z", "w"},
		},
		{
			name:    "debug companion",
			pkgs:    []*registry.Package{pkg("foo", true), pkg("foo-debug", false)},
			target:  "foo",
			want:    []string{"foo", "foo-debug"},
			reasons: []Reason{ReasonTarget, ReasonCompanion},
		},
		{
			name:    "debug companion depending on target",
			pkgs:    []*registry.Package{pkg("foo", true), pkg("foo-debug", false, "foo")},
			target:  "foo",
			want:    []string{"foo-debug", "foo"},
			reasons: []Reason{ReasonCompanion, ReasonTarget},
		},
		{
			name:   "debug package used elsewhere stays",
			pkgs:   []*registry.Package{pkg("foo", true), pkg("foo-debug", false), pkg("gdbtool", true, "foo-debug")},
			target: "foo",
			want:   []string{"foo"},
		},
		{
			name: "forced removal leaves dependents",
			pkgs: []*registry.Package{
				pkg("app", true, "lib", "util"),
				pkg("lib", false, "util"),
				pkg("util", false),
			},
			target:  "lib",
			opts:    Options{Force: true},
			want:    []string{"lib"},
			blocked: []string{"app"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t, tt.pkgs...)
			plan, err := p.Plan(context.Background(), tt.target, tt.opts)
			if err != nil {
				t.Fatalf("Plan() failed: %v", err)
			}
			if got := plan.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("steps = %v, want %v", got, tt.want)
			}
			if tt.reasons != nil {
				for i, r := range tt.reasons {
					if plan.Steps[i].Reason != r {
						t.Errorf("step %d reason = %s, want %s", i, plan.Steps[i].Reason, r)
					}
				}
			}
			if !slices.Equal(plan.BlockedBy, tt.blocked) {
				t.Errorf("blocked by = %v, want %v", plan.BlockedBy, tt.blocked)
			}
			if plan.Forced != (len(tt.blocked) > 0) {
				t.Errorf("forced = %v", plan.Forced)
			}
			if plan.Target != tt.target {
				t.Errorf("target = %s, want %s", plan.Target, tt.target)
			}
		})
	}
}

func TestPlanInUse(t *testing.T) {
	p := newTestPlanner(t, pkg("app", true, "lib"), pkg("tool", true, "lib"), pkg("lib", false))

	plan, err := p.Plan(context.Background(), "lib", Options{})
	if plan != nil {
		t.Error("expected no plan")
	}
	var inUse *aerr.InUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("Plan() error = %v, want InUseError", err)
	}
	if !slices.Equal(inUse.Dependents, []string{"app", "tool"}) {
		t.Errorf("dependents = %v, want [app tool]", inUse.Dependents)
	}
	if !aerr.Is(err, aerr.ErrCodeInUse) {
		t.Errorf("code = %s, want IN_USE", aerr.GetCode(err))
	}
}

func TestPlanNotInstalled(t *testing.T) {
	p := newTestPlanner(t)
	if _, err := p.Plan(context.Background(), "ghost", Options{}); !aerr.Is(err, aerr.ErrCodeNotInstalled) {
		t.Errorf("Plan() error = %v, want NOT_INSTALLED", err)
	}
}

func TestOrderCycle(t *testing.T) {
	members := map[string]*registry.Package{
		"a": pkg("a", true, "b"),
		"b": pkg("b", false, "c"),
		"c": pkg("c", false, "b"),
	}
	if got, want := order(members), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("order() = %v, want %v", got, want)
	}
}
