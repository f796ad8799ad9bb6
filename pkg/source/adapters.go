package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/aurorus/pkg/integrations"
	"github.com/matzehuels/aurorus/pkg/integrations/aur"
	"github.com/matzehuels/aurorus/pkg/integrations/pacman"
	"github.com/matzehuels/aurorus/pkg/version"
)

// AUR adapts an [aur.Client].
type AUR struct {
	client  *aur.Client
	refresh bool
}

// NewAUR creates the AUR adapter. refresh bypasses the metadata cache.
func NewAUR(client *aur.Client, refresh bool) *AUR {
	return &AUR{client: client, refresh: refresh}
}

// Origin returns OriginAUR.
func (a *AUR) Origin() Origin { return OriginAUR }

// Lookup finds name by package name or provider.
func (a *AUR) Lookup(ctx context.Context, name string) ([]Record, error) {
	pkg, err := a.client.Lookup(ctx, name, a.refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []Record{recordFromAUR(pkg)}, nil
}

// Search matches name and description.
func (a *AUR) Search(ctx context.Context, query string) ([]Result, error) {
	pkgs, err := a.client.Search(ctx, query, aur.ByNameDesc, a.refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, Result{
			Name:        p.Name,
			Version:     p.Version,
			Origin:      OriginAUR,
			Description: p.Description,
			Votes:       p.NumVotes,
			OutOfDate:   p.OutOfDate != nil,
		})
	}
	return out, nil
}

func recordFromAUR(p *aur.Package) Record {
	makeDeps := append(append([]string(nil), p.MakeDepends...), p.CheckDepends...)
	base := p.PackageBase
	if base == "" {
		base = p.Name
	}
	return Record{
		Name:        p.Name,
		Version:     p.Version,
		Origin:      OriginAUR,
		Depends:     version.ParseDependencies(p.Depends),
		MakeDepends: version.ParseDependencies(makeDeps),
		Provides:    version.ParseDependencies(p.Provides),
		Base:        base,
		Description: p.Description,
		Votes:       p.NumVotes,
	}
}

// Repo adapts a [pacman.Client] over the sync databases.
type Repo struct {
	client *pacman.Client
}

// NewRepo creates the binary repository adapter.
func NewRepo(client *pacman.Client) *Repo {
	return &Repo{client: client}
}

// Origin returns OriginRepo.
func (r *Repo) Origin() Origin { return OriginRepo }

// Lookup finds name by package name or provider.
func (r *Repo) Lookup(ctx context.Context, name string) ([]Record, error) {
	pkg, err := r.client.Info(ctx, name)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pacman: %w", err)
	}
	return []Record{{
		Name:        pkg.Name,
		Version:     pkg.Version,
		Origin:      OriginRepo,
		Depends:     version.ParseDependencies(pkg.Depends),
		Provides:    version.ParseDependencies(pkg.Provides),
		Repository:  pkg.Repository,
		Description: pkg.Description,
	}}, nil
}

// Search runs a sync database search.
func (r *Repo) Search(ctx context.Context, query string) ([]Result, error) {
	hits, err := r.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pacman: %w", err)
	}
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{
			Name:        h.Name,
			Version:     h.Version,
			Origin:      OriginRepo,
			Repository:  h.Repository,
			Description: h.Description,
			Installed:   h.Installed,
		})
	}
	return out, nil
}

var (
	_ Adapter = (*AUR)(nil)
	_ Adapter = (*Repo)(nil)
)
