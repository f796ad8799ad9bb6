package version

import "testing"

func TestParseDependency(t *testing.T) {
	tests := []struct {
		input   string
		want    Dependency
		wantErr bool
	}{
		{"glibc", Dependency{Name: "glibc"}, false},
		{"python>=3.11", Dependency{Name: "python", Op: OpGE, Version: "3.11"}, false},
		{"foo<=2", Dependency{Name: "foo", Op: OpLE, Version: "2"}, false},
		{"foo>1:2.0-1", Dependency{Name: "foo", Op: OpGT, Version: "1:2.0-1"}, false},
		{"foo<2", Dependency{Name: "foo", Op: OpLT, Version: "2"}, false},
		{"libfoo.so=2-64", Dependency{Name: "libfoo.so", Op: OpEQ, Version: "2-64"}, false},
		{"gtk3: for the GUI", Dependency{Name: "gtk3"}, false},
		{"  bar  ", Dependency{Name: "bar"}, false},

		{"", Dependency{}, true},
		{">=1.0", Dependency{}, true},
		{"foo>=", Dependency{}, true},
		{"foo>=<1", Dependency{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDependency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDependency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDependency(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDependencyString(t *testing.T) {
	d := MustParse("python>=3.11")
	if d.String() != "python>=3.11" {
		t.Errorf("String() = %q", d.String())
	}
	if d.Constraint() != ">=3.11" {
		t.Errorf("Constraint() = %q", d.Constraint())
	}
	if MustParse("foo").Constraint() != "*" {
		t.Errorf("unversioned Constraint() = %q", MustParse("foo").Constraint())
	}
}

func TestSatisfiedBy(t *testing.T) {
	tests := []struct {
		dep  string
		ver  string
		want bool
	}{
		{"foo", "0.1", true},
		{"foo>=1.2", "1.2-1", true},
		{"foo>=1.2", "1.1", false},
		{"foo>1.2", "1.2", false},
		{"foo<2", "1.9", true},
		{"foo<=2", "2-5", true},
		{"foo=1.0", "1.0-3", true},
		{"foo=1.0-2", "1.0-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.dep+"@"+tt.ver, func(t *testing.T) {
			if got := MustParse(tt.dep).SatisfiedBy(tt.ver); got != tt.want {
				t.Errorf("SatisfiedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	provides := ParseDependencies([]string{"libfoo.so=2-64", "foo-virtual"})

	tests := []struct {
		name string
		dep  string
		want bool
	}{
		{"by name", "pkg", true},
		{"by name with version", "pkg>=1.0", true},
		{"by name version too low", "pkg>=2.0", false},
		{"versioned provide", "libfoo.so>=2", true},
		{"versioned provide too low", "libfoo.so>=3", false},
		{"unversioned provide", "foo-virtual", true},
		{"unversioned provide cannot satisfy constraint", "foo-virtual>=1", false},
		{"unrelated", "bar", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Satisfies(MustParse(tt.dep), "pkg", "1.5-1", provides); got != tt.want {
				t.Errorf("Satisfies(%s) = %v, want %v", tt.dep, got, tt.want)
			}
		})
	}
}
