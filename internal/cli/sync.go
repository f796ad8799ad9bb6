package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/integrations/pacman"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/version"
)

func (c *CLI) syncCommand() *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import the system's installed packages into the registry",
		Long: `Read pacman's local database and record every installed package, with its
dependencies, install reason and provides, so packages installed outside aurorus
count as installed. Packages missing from all sync databases are recorded as AUR
packages.

With --prune, registry entries for packages no longer installed are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			prog := newProgress(c.Logger)
			local, err := e.pacman.Installed(ctx)
			if err != nil {
				return fmt.Errorf("read local database: %w", err)
			}
			foreign, err := e.pacman.Foreign(ctx)
			if err != nil {
				return fmt.Errorf("read foreign packages: %w", err)
			}

			stats, err := syncRegistry(ctx, e.registry, importLocal(local, foreign), prune)
			if err != nil {
				return err
			}
			prog.done("Synced", "packages", stats.imported, "pruned", stats.pruned)

			printSuccess("Registry synced")
			printKeyValue("imported", fmt.Sprint(stats.imported))
			printKeyValue("aur", fmt.Sprint(stats.aur))
			if prune {
				printKeyValue("pruned", fmt.Sprint(stats.pruned))
			}
			printKeyValue("registry", e.registry.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "drop registry entries for packages that are no longer installed")

	return cmd
}

type syncStats struct {
	imported int
	aur      int
	pruned   int
}

// syncStore is the registry surface sync writes to.
type syncStore interface {
	Lock(ctx context.Context) (func(), error)
	Put(ctx context.Context, pkg *registry.Package) error
	List(ctx context.Context) ([]*registry.Package, error)
	Delete(ctx context.Context, name string) error
}

func syncRegistry(ctx context.Context, store syncStore, pkgs []*registry.Package, prune bool) (syncStats, error) {
	var stats syncStats
	unlock, err := store.Lock(ctx)
	if err != nil {
		return stats, err
	}
	defer unlock()

	installed := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		if err := store.Put(ctx, p); err != nil {
			return stats, fmt.Errorf("record %s: %w", p.Name, err)
		}
		installed[p.Name] = true
		stats.imported++
		if p.Origin == string(source.OriginAUR) {
			stats.aur++
		}
	}

	if !prune {
		return stats, nil
	}
	recorded, err := store.List(ctx)
	if err != nil {
		return stats, err
	}
	for _, p := range recorded {
		if installed[p.Name] {
			continue
		}
		if err := store.Delete(ctx, p.Name); err != nil {
			return stats, fmt.Errorf("prune %s: %w", p.Name, err)
		}
		stats.pruned++
	}
	return stats, nil
}

// versionStore is the registry surface refreshVersions updates.
type versionStore interface {
	List(ctx context.Context) ([]*registry.Package, error)
	Put(ctx context.Context, pkg *registry.Package) error
}

// refreshVersions records the installed version of every registry package
// whose version pacman now reports differently, e.g. after pacman -Syu.
// Packages pacman no longer lists are left alone. The caller holds the lock.
func refreshVersions(ctx context.Context, store versionStore, local map[string]string) (int, error) {
	recorded, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, p := range recorded {
		v, ok := local[p.Name]
		if !ok || v == p.Version {
			continue
		}
		p.Version = v
		if err := store.Put(ctx, p); err != nil {
			return changed, fmt.Errorf("record %s %s: %w", p.Name, v, err)
		}
		changed++
	}
	return changed, nil
}

// importLocal converts pacman's local database into registry packages.
// Each dependency is recorded as the installed package satisfying it: the
// package of that name, else the first provider by name.
func importLocal(local []pacman.Package, foreign map[string]string) []*registry.Package {
	byName := make(map[string]*pacman.Package, len(local))
	providers := make(map[string][]*pacman.Package)
	for i := range local {
		p := &local[i]
		byName[p.Name] = p
		for _, d := range version.ParseDependencies(p.Provides) {
			providers[d.Name] = append(providers[d.Name], p)
		}
	}
	for name := range providers {
		slices.SortFunc(providers[name], func(a, b *pacman.Package) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	satisfier := func(d version.Dependency) string {
		if p, ok := byName[d.Name]; ok && d.SatisfiedBy(p.Version) {
			return p.Name
		}
		for _, p := range providers[d.Name] {
			if version.Satisfies(d, p.Name, p.Version, version.ParseDependencies(p.Provides)) {
				return p.Name
			}
		}
		return ""
	}

	out := make([]*registry.Package, 0, len(local))
	for _, p := range local {
		origin := source.OriginRepo
		if _, ok := foreign[p.Name]; ok {
			origin = source.OriginAUR
		}
		var depNames []string
		for _, d := range version.ParseDependencies(p.Depends) {
			if name := satisfier(d); name != "" && name != p.Name && !slices.Contains(depNames, name) {
				depNames = append(depNames, name)
			}
		}
		out = append(out, &registry.Package{
			Name:         p.Name,
			Version:      p.Version,
			Origin:       string(origin),
			Dependencies: depNames,
			Provides:     p.Provides,
			Explicit:     p.Explicit(),
		})
	}
	return out
}
