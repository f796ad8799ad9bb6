package aur

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/matzehuels/aurorus/pkg/version"
)

// SrcInfo is a parsed .SRCINFO file.
//
// It has one pkgbase section followed by one section per split package.
// Package sections may override base values; an empty value clears one.
type SrcInfo struct {
	Base   string
	Epoch  string
	PkgVer string
	PkgRel string

	base     fields
	packages []srcPackage
}

type fields map[string][]string

type srcPackage struct {
	name   string
	fields fields
}

// Split is the effective metadata of one package built from a pkgbase.
type Split struct {
	Name         string
	Description  string
	Depends      []string
	MakeDepends  []string
	CheckDepends []string
	Provides     []string
}

// ParseSrcInfo parses .SRCINFO text.
func ParseSrcInfo(text string) (*SrcInfo, error) {
	si := &SrcInfo{base: fields{}}
	var cur fields

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("srcinfo line %d: missing '='", lineNo)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "pkgbase":
			si.Base = value
			cur = si.base
			continue
		case "pkgname":
			if si.Base == "" {
				return nil, fmt.Errorf("srcinfo line %d: pkgname before pkgbase", lineNo)
			}
			p := srcPackage{name: value, fields: fields{}}
			si.packages = append(si.packages, p)
			cur = p.fields
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("srcinfo line %d: %s outside a section", lineNo, key)
		}
		if value == "" {
			if _, seen := cur[key]; !seen {
				cur[key] = nil
			}
			continue
		}
		cur[key] = append(cur[key], value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if si.Base == "" {
		return nil, fmt.Errorf("srcinfo: no pkgbase")
	}

	si.Epoch = first(si.base["epoch"])
	si.PkgVer = first(si.base["pkgver"])
	si.PkgRel = first(si.base["pkgrel"])
	if si.PkgVer == "" {
		return nil, fmt.Errorf("srcinfo %s: no pkgver", si.Base)
	}
	return si, nil
}

// Version returns the full "[epoch:]pkgver-pkgrel" version.
func (si *SrcInfo) Version() string {
	return version.Format(si.Epoch, si.PkgVer, si.PkgRel)
}

// Names lists the split packages in file order.
func (si *SrcInfo) Names() []string {
	names := make([]string, len(si.packages))
	for i, p := range si.packages {
		names[i] = p.name
	}
	return names
}

// Package returns the effective metadata of the split package name for the
// given architecture. Architecture-specific keys such as depends_x86_64 are
// merged after their generic counterpart.
func (si *SrcInfo) Package(name, arch string) (*Split, bool) {
	for _, p := range si.packages {
		if p.name != name {
			continue
		}
		get := func(key string, overridable bool) []string {
			out := si.lookup(p, key, overridable)
			if arch != "" {
				out = append(out, si.lookup(p, key+"_"+arch, overridable)...)
			}
			return out
		}
		return &Split{
			Name:         name,
			Description:  first(si.lookup(p, "pkgdesc", true)),
			Depends:      get("depends", true),
			MakeDepends:  get("makedepends", false),
			CheckDepends: get("checkdepends", false),
			Provides:     get("provides", true),
		}, true
	}
	return nil, false
}

func (si *SrcInfo) lookup(p srcPackage, key string, overridable bool) []string {
	if overridable {
		if v, ok := p.fields[key]; ok {
			return append([]string(nil), v...)
		}
	}
	return append([]string(nil), si.base[key]...)
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
