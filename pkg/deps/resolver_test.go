package deps

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/version"
)

// mockAdapter serves a fixed set of records for one origin.
type mockAdapter struct {
	origin  source.Origin
	records []source.Record
	err     error
	calls   map[string]int
}

func (m *mockAdapter) Origin() source.Origin { return m.origin }

func (m *mockAdapter) Lookup(_ context.Context, name string) ([]source.Record, error) {
	if m.calls != nil {
		m.calls[name]++
	}
	if m.err != nil {
		return nil, m.err
	}
	var out []source.Record
	for _, r := range m.records {
		if r.Name == name || slices.ContainsFunc(r.Provides, func(p version.Dependency) bool { return p.Name == name }) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAdapter) Search(context.Context, string) ([]source.Result, error) { return nil, nil }

func rec(origin source.Origin, name, ver string, depends ...string) source.Record {
	return source.Record{
		Name:    name,
		Version: ver,
		Origin:  origin,
		Depends: version.ParseDependencies(depends),
		Base:    name,
	}
}

func repo(name, ver string, depends ...string) source.Record {
	return rec(source.OriginRepo, name, ver, depends...)
}

func aur(name, ver string, depends ...string) source.Record {
	return rec(source.OriginAUR, name, ver, depends...)
}

func newTestResolver(t *testing.T, repoRecs, aurRecs []source.Record, installed ...*registry.Package) *Resolver {
	t.Helper()
	client := source.NewClient(nil,
		&mockAdapter{origin: source.OriginRepo, records: repoRecs},
		&mockAdapter{origin: source.OriginAUR, records: aurRecs},
	)
	reg, err := registry.Open(registry.MemoryPath)
	if err != nil {
		t.Fatalf("registry.Open() failed: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	for _, p := range installed {
		if err := reg.Put(context.Background(), p); err != nil {
			t.Fatalf("Put(%s) failed: %v", p.Name, err)
		}
	}
	return NewResolver(client, reg)
}

// assertTopological checks that every node comes after all of its children.
func assertTopological(t *testing.T, plan *Plan) {
	t.Helper()
	pos := make(map[int]int, len(plan.Steps))
	for i, n := range plan.Steps {
		if _, dup := pos[n.ID]; dup {
			t.Fatalf("node %s listed twice", n.Name())
		}
		pos[n.ID] = i
	}
	for _, n := range plan.Steps {
		for _, c := range n.Children {
			if pos[c] >= pos[n.ID] {
				t.Errorf("%s listed before its dependency %s", n.Name(), plan.Graph.Node(c).Name())
			}
		}
	}
}

func TestResolveOrder(t *testing.T) {
	r := newTestResolver(t, []source.Record{
		repo("foo", "1.0-1", "bar", "baz"),
		repo("bar", "1.0-1", "baz"),
		repo("baz", "1.0-1"),
	}, nil)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	assertTopological(t, plan)
	if got, want := plan.Names(), []string{"baz", "bar", "foo"}; !slices.Equal(got, want) {
		t.Errorf("steps = %v, want %v", got, want)
	}
	if root := plan.Root(); root.Name() != "foo" || !root.Explicit {
		t.Errorf("root = %s explicit=%v", root.Name(), root.Explicit)
	}
	for _, n := range plan.Steps[:2] {
		if n.Explicit {
			t.Errorf("%s should not be explicit", n.Name())
		}
	}
}

func TestResolveDiamond(t *testing.T) {
	r := newTestResolver(t, nil, []source.Record{
		aur("a", "1-1", "b", "c"),
		aur("b", "1-1", "d"),
		aur("c", "1-1", "d"),
		aur("d", "1-1"),
	})

	plan, err := r.Resolve(context.Background(), "a", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	assertTopological(t, plan)
	if got, want := plan.Names(), []string{"d", "b", "c", "a"}; !slices.Equal(got, want) {
		t.Errorf("steps = %v, want %v", got, want)
	}
	if plan.Graph.Len() != 4 {
		t.Errorf("graph has %d nodes, want 4", plan.Graph.Len())
	}
	d, _ := plan.Graph.Lookup("d")
	if len(d.Constraints) != 2 {
		t.Errorf("d constraints = %v, want one per dependent", d.Constraints)
	}
}

func TestResolveCycle(t *testing.T) {
	r := newTestResolver(t, nil, []source.Record{
		aur("a", "1-1", "b"),
		aur("b", "1-1", "a"),
	})

	plan, err := r.Resolve(context.Background(), "a", Options{})
	if plan != nil {
		t.Error("expected no plan on cycle")
	}
	var cycle *aerr.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Resolve() error = %v, want CycleError", err)
	}
	if !slices.Equal(cycle.Path, []string{"a", "b", "a"}) {
		t.Errorf("cycle path = %v, want [a b a]", cycle.Path)
	}
	if !aerr.Is(err, aerr.ErrCodeCyclicDependency) {
		t.Errorf("code = %s, want CYCLIC_DEPENDENCY", aerr.GetCode(err))
	}
}

func TestResolveConflict(t *testing.T) {
	tests := []struct {
		name      string
		records   []source.Record
		available string
	}{
		{
			name: "disjoint constraints",
			records: []source.Record{
				aur("a", "1-1", "b", "c"),
				aur("b", "1-1", "d>=2"),
				aur("c", "1-1", "d<2"),
				aur("d", "2.0-1"),
			},
		},
		{
			name: "selected version too old",
			records: []source.Record{
				aur("a", "1-1", "d>=3"),
				aur("d", "2.0-1"),
			},
			available: "2.0-1",
		},
		{
			name: "later constraint rejects selected version",
			records: []source.Record{
				aur("a", "1-1", "d", "c"),
				aur("c", "1-1", "d=1.0-1"),
				aur("d", "2.0-1"),
			},
			available: "2.0-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, nil, tt.records)
			plan, err := r.Resolve(context.Background(), "a", Options{})
			if plan != nil {
				t.Error("expected no plan on conflict")
			}
			var conflict *aerr.ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("Resolve() error = %v, want ConflictError", err)
			}
			if conflict.Name != "d" {
				t.Errorf("conflict name = %s, want d", conflict.Name)
			}
			if conflict.Available != tt.available {
				t.Errorf("available = %q, want %q", conflict.Available, tt.available)
			}
			if !aerr.Is(err, aerr.ErrCodeVersionConflict) {
				t.Errorf("code = %s, want VERSION_CONFLICT", aerr.GetCode(err))
			}
		})
	}
}

func TestResolveInstalledSatisfied(t *testing.T) {
	r := newTestResolver(t, nil,
		[]source.Record{aur("foo", "1.0-1", "bar")},
		&registry.Package{Name: "bar", Version: "2.0-1", Origin: "repo"},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"foo"}) {
		t.Errorf("steps = %v, want [foo]", got)
	}
	if len(plan.Satisfied) != 1 || plan.Satisfied[0].Name != "bar" || plan.Satisfied[0].From != "foo" {
		t.Errorf("satisfied = %+v", plan.Satisfied)
	}
	foo := plan.Root()
	if deps := plan.Graph.ResolvedDependencies(foo); !slices.Equal(deps, []string{"bar"}) {
		t.Errorf("resolved dependencies = %v, want [bar]", deps)
	}
}

func TestResolveInstalledTooOld(t *testing.T) {
	r := newTestResolver(t,
		[]source.Record{repo("bar", "3.0-1")},
		[]source.Record{aur("foo", "1.0-1", "bar>=3")},
		&registry.Package{Name: "bar", Version: "2.0-1", Origin: "repo"},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"bar", "foo"}) {
		t.Errorf("steps = %v, want [bar foo]", got)
	}
	if len(plan.Satisfied) != 0 {
		t.Errorf("satisfied = %+v, want none", plan.Satisfied)
	}
}

func TestResolveRootNeverSatisfied(t *testing.T) {
	r := newTestResolver(t, nil,
		[]source.Record{aur("foo", "1.0-1")},
		&registry.Package{Name: "foo", Version: "1.0-1", Origin: "aur"},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"foo"}) {
		t.Errorf("steps = %v, want [foo]", got)
	}
}

func TestResolveOriginPolicy(t *testing.T) {
	repoRecs := []source.Record{repo("foo", "1.0-1"), repo("lib", "1.0-1")}
	aurRecs := []source.Record{aur("foo", "1.1-1", "lib"), aur("lib", "1.1-1")}

	tests := []struct {
		name       string
		opts       Options
		wantOrigin source.Origin
		wantPinned bool
	}{
		{"repo preferred by default", Options{}, source.OriginRepo, false},
		{"prefer aur", Options{Prefer: source.OriginAUR}, source.OriginAUR, false},
		{"root pinned to aur", Options{RootOrigin: source.OriginAUR}, source.OriginAUR, true},
		{"name pin", Options{Pins: map[string]source.Origin{"foo": source.OriginAUR}}, source.OriginAUR, true},
		{"root pin beats prefer", Options{Prefer: source.OriginAUR, RootOrigin: source.OriginRepo}, source.OriginRepo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, repoRecs, aurRecs)
			for range 3 {
				plan, err := r.Resolve(context.Background(), "foo", tt.opts)
				if err != nil {
					t.Fatalf("Resolve() failed: %v", err)
				}
				root := plan.Root()
				if root.Origin() != tt.wantOrigin || root.Pinned != tt.wantPinned {
					t.Fatalf("root = %s pinned=%v, want %s pinned=%v", root.Record.ID(), root.Pinned, tt.wantOrigin, tt.wantPinned)
				}
			}
		})
	}
}

func TestResolveRootPinnedAURKeepsRepoDeps(t *testing.T) {
	r := newTestResolver(t,
		[]source.Record{repo("lib", "1.0-1")},
		[]source.Record{aur("foo", "1.1-1", "lib"), aur("lib", "1.1-1")},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{RootOrigin: source.OriginAUR})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	lib, _ := plan.Graph.Lookup("lib")
	if lib.Origin() != source.OriginRepo {
		t.Errorf("lib origin = %s, want repo", lib.Origin())
	}
}

func TestResolveFallsBackToOtherOrigin(t *testing.T) {
	r := newTestResolver(t,
		[]source.Record{repo("a", "1-1", "d>=2"), repo("d", "1.0-1")},
		[]source.Record{aur("d", "2.0-1")},
	)

	plan, err := r.Resolve(context.Background(), "a", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	d, _ := plan.Graph.Lookup("d")
	if d.Origin() != source.OriginAUR || d.Version() != "2.0-1" {
		t.Errorf("d = %s %s, want aur 2.0-1", d.Origin(), d.Version())
	}
}

func TestResolvePinnedNotFound(t *testing.T) {
	r := newTestResolver(t, []source.Record{repo("foo", "1.0-1")}, nil)

	_, err := r.Resolve(context.Background(), "foo", Options{RootOrigin: source.OriginAUR})
	if !aerr.Is(err, aerr.ErrCodeNotFound) {
		t.Errorf("Resolve() error = %v, want NOT_FOUND", err)
	}
}

func TestResolveProvides(t *testing.T) {
	bash := repo("bash", "5.2-1")
	bash.Provides = version.ParseDependencies([]string{"sh"})
	r := newTestResolver(t, []source.Record{
		repo("a", "1-1", "sh", "b"),
		repo("b", "1-1", "bash"),
		bash,
	}, nil)

	plan, err := r.Resolve(context.Background(), "a", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got, want := plan.Names(), []string{"bash", "b", "a"}; !slices.Equal(got, want) {
		t.Errorf("steps = %v, want %v", got, want)
	}
	if n, ok := plan.Graph.Lookup("sh"); !ok || n.Name() != "bash" {
		t.Error("sh should resolve to bash")
	}
}

func TestResolveMakeDepends(t *testing.T) {
	foo := aur("foo", "1-1")
	foo.MakeDepends = version.ParseDependencies([]string{"cmake"})
	bin := repo("bin", "1-1")
	bin.MakeDepends = version.ParseDependencies([]string{"gcc"})

	r := newTestResolver(t,
		[]source.Record{repo("cmake", "3.30-1"), bin},
		[]source.Record{foo},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"cmake", "foo"}) {
		t.Errorf("steps = %v, want [cmake foo]", got)
	}

	plan, err = r.Resolve(context.Background(), "bin", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"bin"}) {
		t.Errorf("steps = %v, want [bin], repo build deps are not needed", got)
	}
}

func TestResolveBuildOnlyNotRecorded(t *testing.T) {
	foo := aur("foo", "1-1", "zlib")
	foo.MakeDepends = version.ParseDependencies([]string{"cmake", "zlib", "git"})

	r := newTestResolver(t,
		[]source.Record{repo("cmake", "3.30-1"), repo("zlib", "1.3-1")},
		[]source.Record{foo},
		&registry.Package{Name: "git", Version: "2.46-1", Origin: "repo", Explicit: true},
	)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := plan.Names(); !slices.Equal(got, []string{"zlib", "cmake", "foo"}) {
		t.Errorf("steps = %v, want [zlib cmake foo]", got)
	}
	n, _ := plan.Graph.Lookup("foo")
	if !slices.Equal(n.BuildOnly, []string{"cmake", "git"}) {
		t.Errorf("BuildOnly = %v, want [cmake git]", n.BuildOnly)
	}
	if deps := plan.Graph.ResolvedDependencies(n); !slices.Equal(deps, []string{"zlib"}) {
		t.Errorf("ResolvedDependencies = %v, want [zlib], makedepends that are not runtime deps are not recorded", deps)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newTestResolver(t, nil, []source.Record{aur("foo", "1-1", "ghost")})

	_, err := r.Resolve(context.Background(), "missing", Options{})
	if !aerr.Is(err, aerr.ErrCodeNotFound) {
		t.Errorf("root error = %v, want NOT_FOUND", err)
	}

	_, err = r.Resolve(context.Background(), "foo", Options{})
	if !aerr.Is(err, aerr.ErrCodeNotFound) {
		t.Fatalf("dependency error = %v, want NOT_FOUND", err)
	}
	if msg := aerr.UserMessage(err); !strings.Contains(msg, "required by foo") {
		t.Errorf("message %q should name the dependent", msg)
	}
}

func TestResolvePartialLookup(t *testing.T) {
	client := source.NewClient(nil,
		&mockAdapter{origin: source.OriginRepo, records: []source.Record{repo("foo", "1-1")}},
		&mockAdapter{origin: source.OriginAUR, err: errors.New("connection refused")},
	)
	r := NewResolver(client, nil)

	plan, err := r.Resolve(context.Background(), "foo", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if len(plan.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", plan.Warnings)
	}
	var se *aerr.SourceError
	if !errors.As(plan.Warnings[0], &se) || se.Origin != "aur" {
		t.Errorf("warning = %v, want aur SourceError", plan.Warnings[0])
	}

	_, err = r.Resolve(context.Background(), "bar", Options{})
	if !aerr.Is(err, aerr.ErrCodeSourceUnavailable) {
		t.Errorf("missing with failed origin = %v, want SOURCE_UNAVAILABLE", err)
	}
}

func TestResolveLimits(t *testing.T) {
	r := newTestResolver(t, []source.Record{
		repo("a", "1-1", "b"),
		repo("b", "1-1", "c"),
		repo("c", "1-1", "d"),
		repo("d", "1-1"),
	}, nil)

	_, err := r.Resolve(context.Background(), "a", Options{MaxDepth: 2})
	if !aerr.Is(err, aerr.ErrCodeLimitExceeded) {
		t.Errorf("depth limit error = %v, want LIMIT_EXCEEDED", err)
	}
	_, err = r.Resolve(context.Background(), "a", Options{MaxNodes: 3})
	if !aerr.Is(err, aerr.ErrCodeLimitExceeded) {
		t.Errorf("node limit error = %v, want LIMIT_EXCEEDED", err)
	}
	if _, err := r.Resolve(context.Background(), "a", Options{MaxDepth: 3, MaxNodes: 4}); err != nil {
		t.Errorf("Resolve() within limits failed: %v", err)
	}
}

func TestResolveCancelled(t *testing.T) {
	r := newTestResolver(t, []source.Record{repo("a", "1-1")}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Resolve(ctx, "a", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestResolveInvalidRoot(t *testing.T) {
	r := newTestResolver(t, nil, nil)
	_, err := r.Resolve(context.Background(), ">=1", Options{})
	if !aerr.Is(err, aerr.ErrCodeInvalidInput) {
		t.Errorf("Resolve() error = %v, want INVALID_INPUT", err)
	}
}
