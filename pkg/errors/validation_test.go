package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "yay", false},
		{"valid with dash", "python-requests", false},
		{"valid with underscore", "lib32_foo", false},
		{"valid with dot", "qt5.15", false},
		{"valid with plus", "gtk+", false},
		{"valid with at", "foo@bar", false},
		{"valid debug companion", "foo-debug", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"leading dash", "-Syu", true},
		{"leading dot", ".hidden", true},
		{"uppercase", "Foo", true},
		{"slash", "foo/bar", true},
		{"path traversal", "foo..bar", true},
		{"null byte", "foo\x00bar", true},
		{"space", "foo bar", true},
		{"newline", "foo\nbar", true},
		{"shell metachar", "foo;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}
