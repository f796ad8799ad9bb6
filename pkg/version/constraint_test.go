package version

import "testing"

func TestIntersect(t *testing.T) {
	tests := []struct {
		name      string
		deps      []string
		wantEmpty bool
		in        []string
		out       []string
	}{
		{"no constraints", []string{"foo"}, false, []string{"0.1", "99"}, nil},
		{"single lower", []string{"foo>=1.0"}, false, []string{"1.0", "2"}, []string{"0.9"}},
		{"window", []string{"foo>=1.0", "foo<2.0"}, false, []string{"1.5"}, []string{"2.0", "0.5"}},
		{"disjoint", []string{"foo>=2.0", "foo<1.0"}, true, nil, []string{"1.5"}},
		{"touching exclusive", []string{"foo>1.0", "foo<=1.0"}, true, nil, []string{"1.0"}},
		{"touching inclusive", []string{"foo>=1.0", "foo<=1.0"}, false, []string{"1.0"}, []string{"1.1"}},
		{"exact within", []string{"foo=1.5", "foo>=1.0"}, false, []string{"1.5"}, []string{"1.6"}},
		{"exact outside", []string{"foo=0.5", "foo>=1.0"}, true, nil, nil},
		{"two exacts", []string{"foo=1", "foo=2"}, true, nil, nil},
		{"tighter lower wins", []string{"foo>=1", "foo>1"}, false, []string{"1.1"}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Intersect(ParseDependencies(tt.deps)...)
			if r.Empty() != tt.wantEmpty {
				t.Fatalf("Empty() = %v, want %v", r.Empty(), tt.wantEmpty)
			}
			for _, v := range tt.in {
				if !r.Contains(v) {
					t.Errorf("Contains(%q) = false, want true", v)
				}
			}
			for _, v := range tt.out {
				if r.Contains(v) {
					t.Errorf("Contains(%q) = true, want false", v)
				}
			}
		})
	}
}
