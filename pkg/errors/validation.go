package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name before it reaches a URL, a git
// remote or a pacman/makepkg argument list.
//
// The rules follow the Arch package naming policy, kept conservative:
//   - No empty names, maximum length of 256 characters
//   - Only lowercase alphanumerics and @ . _ + -
//   - Must not start with a hyphen (would be parsed as a flag) or a dot
//   - No path traversal sequences
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
		if !validNameRune(r) {
			return New(ErrCodeInvalidPackage, "package name %q contains invalid character %q", name, r)
		}
	}

	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPackage, "package name %q must not start with %q", name, name[:1])
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", "..")
	}

	return nil
}

func validNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '@', r == '.', r == '_', r == '+', r == '-':
		return true
	}
	return false
}
