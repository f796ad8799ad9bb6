package pacman

import (
	"bufio"
	"strings"
)

// Package is one block of `pacman -Si` or `pacman -Qi` output.
type Package struct {
	Repository    string // sync databases only
	Name          string
	Version       string
	Description   string
	Provides      []string
	Depends       []string
	Conflicts     []string
	RequiredBy    []string // local database only
	InstallReason string   // local database only
}

// Explicit reports whether a local package was installed explicitly.
func (p *Package) Explicit() bool {
	return strings.HasPrefix(p.InstallReason, "Explicitly")
}

// SearchResult is one entry of `pacman -Ss` output.
type SearchResult struct {
	Repository  string
	Name        string
	Version     string
	Description string
	Installed   bool
}

// ParseInfo parses the "Key : value" blocks printed by -Si and -Qi.
// Continuation lines are joined to the previous key; "None" means empty.
func ParseInfo(text string) []Package {
	var out []Package
	block := map[string]string{}
	var lastKey string

	flush := func() {
		if block["Name"] != "" {
			out = append(out, fromBlock(block))
		}
		block = map[string]string{}
		lastKey = ""
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey != "" {
				block[lastKey] += "  " + strings.TrimSpace(line)
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		lastKey = strings.TrimSpace(key)
		block[lastKey] = strings.TrimSpace(value)
	}
	flush()
	return out
}

func fromBlock(b map[string]string) Package {
	return Package{
		Repository:    b["Repository"],
		Name:          b["Name"],
		Version:       b["Version"],
		Description:   noneEmpty(b["Description"]),
		Provides:      list(b["Provides"]),
		Depends:       list(b["Depends On"]),
		Conflicts:     list(b["Conflicts With"]),
		RequiredBy:    list(b["Required By"]),
		InstallReason: b["Install Reason"],
	}
}

// ParseSearch parses `pacman -Ss` output: a "repo/name version [flags]" line
// followed by an indented description.
func ParseSearch(text string) []SearchResult {
	var out []SearchResult
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if n := len(out); n > 0 && out[n-1].Description == "" {
				out[n-1].Description = strings.TrimSpace(line)
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		repo, name, ok := strings.Cut(fields[0], "/")
		if !ok {
			continue
		}
		out = append(out, SearchResult{
			Repository: repo,
			Name:       name,
			Version:    fields[1],
			Installed:  strings.Contains(line, "[installed"),
		})
	}
	return out
}

// ParseQuery parses "name version" lines printed by -Q and -Qm.
func ParseQuery(text string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
		case 1:
			out[fields[0]] = ""
		default:
			out[fields[0]] = fields[1]
		}
	}
	return out
}

func noneEmpty(s string) string {
	if s == "None" {
		return ""
	}
	return s
}

func list(s string) []string {
	s = noneEmpty(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
