package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/aurorus/pkg/command"
	"github.com/matzehuels/aurorus/pkg/source"
)

// MakepkgBuilder builds AUR recipes with git and makepkg.
type MakepkgBuilder struct {
	runner   command.Runner
	cloneURL func(base string) string
	Git      string // git binary (default "git")
	Makepkg  string // makepkg binary (default "makepkg")
}

// NewMakepkgBuilder creates a builder that clones package bases from the
// URLs cloneURL returns.
func NewMakepkgBuilder(runner command.Runner, cloneURL func(base string) string) *MakepkgBuilder {
	return &MakepkgBuilder{runner: runner, cloneURL: cloneURL, Git: "git", Makepkg: "makepkg"}
}

// Build clones rec's package base into workdir, builds it and returns the
// package file for rec.Name.
func (b *MakepkgBuilder) Build(ctx context.Context, rec *source.Record, workdir string) ([]string, error) {
	base := rec.Base
	if base == "" {
		base = rec.Name
	}
	dir := filepath.Join(workdir, base)

	if _, err := b.runner.Run(ctx, command.Cmd{
		Name: b.Git,
		Args: []string{"clone", "--depth", "1", b.cloneURL(base), dir},
	}); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", base, err)
	}

	list, err := b.runner.Run(ctx, command.Cmd{Name: b.Makepkg, Args: []string{"--packagelist"}, Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("failed to list packages of %s: %w", base, err)
	}
	artifact, ok := pickArtifact(string(list), rec.Name)
	if !ok {
		return nil, fmt.Errorf("%s does not build package %s", base, rec.Name)
	}

	if _, err := b.runner.Run(ctx, command.Cmd{
		Name: b.Makepkg,
		Args: []string{"-f", "--noconfirm"},
		Dir:  dir,
	}); err != nil {
		return nil, fmt.Errorf("makepkg failed for %s: %w", base, err)
	}

	if _, err := os.Stat(artifact); err != nil {
		return nil, fmt.Errorf("makepkg did not produce %s: %w", filepath.Base(artifact), err)
	}
	return []string{artifact}, nil
}

// pickArtifact finds the package file of name in makepkg --packagelist
// output. Files are named <name>-<pkgver>-<pkgrel>-<arch>.pkg.tar.*.
func pickArtifact(list, name string) (string, bool) {
	for _, line := range strings.Split(list, "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		if artifactName(filepath.Base(path)) == name {
			return path, true
		}
	}
	return "", false
}

func artifactName(file string) string {
	i := strings.Index(file, ".pkg.tar")
	if i < 0 {
		return ""
	}
	parts := strings.Split(file[:i], "-")
	if len(parts) < 4 {
		return ""
	}
	return strings.Join(parts[:len(parts)-3], "-")
}
