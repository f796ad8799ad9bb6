// Package version implements pacman's version model: comparison of
// [epoch:]pkgver[-pkgrel] strings, dependency expressions such as
// "glibc>=2.38" and intersection of version constraints.
//
// Compare follows libalpm's vercmp so that results agree with what pacman
// itself decides when it installs or upgrades a package.
package version

import "strings"

// Compare returns -1, 0 or 1 when a is older than, equal to or newer than b.
//
// Epochs are compared first, then pkgver. The pkgrel is only compared when
// both versions carry one, so "1.2" equals "1.2-3".
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	e1, v1, r1 := splitEVR(a)
	e2, v2, r2 := splitEVR(b)

	if c := segmentCompare(e1, e2); c != 0 {
		return c
	}
	if c := segmentCompare(v1, v2); c != 0 {
		return c
	}
	if r1 != "" && r2 != "" {
		return segmentCompare(r1, r2)
	}
	return 0
}

// Format builds the canonical "[epoch:]pkgver-pkgrel" string. A zero or
// empty epoch is omitted.
func Format(epoch, pkgver, pkgrel string) string {
	var b strings.Builder
	if epoch != "" && epoch != "0" {
		b.WriteString(epoch)
		b.WriteByte(':')
	}
	b.WriteString(pkgver)
	if pkgrel != "" {
		b.WriteByte('-')
		b.WriteString(pkgrel)
	}
	return b.String()
}

// splitEVR splits s into epoch, version and release.
func splitEVR(s string) (epoch, ver, rel string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	epoch, ver = "0", s
	if i < len(s) && s[i] == ':' {
		if i > 0 {
			epoch = s[:i]
		}
		ver = s[i+1:]
	}
	if j := strings.LastIndexByte(ver, '-'); j >= 0 {
		ver, rel = ver[:j], ver[j+1:]
	}
	return epoch, ver, rel
}

// segmentCompare is rpmvercmp: alternating runs of digits and letters are
// compared pairwise, separators only matter by their length.
func segmentCompare(a, b string) int {
	if a == b {
		return 0
	}
	one, two := a, b
	for one != "" && two != "" {
		s1 := leading(one, func(c byte) bool { return !isAlnum(c) })
		s2 := leading(two, func(c byte) bool { return !isAlnum(c) })
		one, two = one[s1:], two[s2:]
		if one == "" || two == "" {
			break
		}
		if s1 != s2 {
			if s1 < s2 {
				return -1
			}
			return 1
		}

		numeric := isDigit(one[0])
		class := isAlpha
		if numeric {
			class = isDigit
		}
		n1, n2 := leading(one, class), leading(two, class)
		seg1, seg2 := one[:n1], two[:n2]
		one, two = one[n1:], two[n2:]

		if n2 == 0 {
			// Segment types differ: numbers are newer than letters.
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			seg1 = strings.TrimLeft(seg1, "0")
			seg2 = strings.TrimLeft(seg2, "0")
			if len(seg1) != len(seg2) {
				if len(seg1) > len(seg2) {
					return 1
				}
				return -1
			}
		}
		if c := strings.Compare(seg1, seg2); c != 0 {
			return c
		}
	}

	if one == "" && two == "" {
		return 0
	}
	// A trailing alpha segment never beats an empty string ("1.0a" < "1.0").
	if (one == "" && !isAlpha(two[0])) || (one != "" && isAlpha(one[0])) {
		return -1
	}
	return 1
}

func leading(s string, pred func(byte) bool) int {
	n := 0
	for n < len(s) && pred(s[n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
