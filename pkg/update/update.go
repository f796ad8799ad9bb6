// Package update finds AUR packages with newer versions than the ones
// recorded in the registry, and reinstalls them.
//
// Only packages recorded with the "aur" origin are checked; binary repo
// packages are upgraded by pacman itself.
package update

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/aurorus/pkg/deps"
	"github.com/matzehuels/aurorus/pkg/install"
	"github.com/matzehuels/aurorus/pkg/integrations/aur"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/version"
)

// DefaultConcurrency bounds parallel RPC info requests.
const DefaultConcurrency = 4

// InfoClient fetches bulk AUR metadata.
type InfoClient interface {
	Info(ctx context.Context, names []string, refresh bool) ([]aur.Package, error)
}

// Store lists installed packages.
type Store interface {
	List(ctx context.Context) ([]*registry.Package, error)
}

// Update is an installed AUR package with a newer version available.
type Update struct {
	Name      string
	Installed string
	Available string
	Explicit  bool
}

// Constraint returns the dependency expression that only a newer version
// satisfies, e.g. "foo>1.0-1".
func (u Update) Constraint() string { return u.Name + ">" + u.Installed }

func (u Update) String() string {
	return fmt.Sprintf("%s %s -> %s", u.Name, u.Installed, u.Available)
}

// Result is the outcome of a check.
type Result struct {
	Updates []Update
	// Missing lists AUR-origin packages the AUR no longer knows.
	Missing []string
	Checked int
}

// Checker compares the registry against the AUR.
type Checker struct {
	aur         InfoClient
	store       Store
	logger      *log.Logger
	concurrency int
}

// NewChecker creates a Checker. A nil logger discards output.
func NewChecker(client InfoClient, store Store, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Checker{aur: client, store: store, logger: logger, concurrency: DefaultConcurrency}
}

// Check returns the AUR-origin packages whose AUR version compares newer
// than the installed one, sorted by name. Names are queried in batches of
// [aur.MaxInfoArgs].
func (c *Checker) Check(ctx context.Context, refresh bool) (*Result, error) {
	pkgs, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}

	installed := make(map[string]*registry.Package)
	var names []string
	for _, p := range pkgs {
		if p.Origin == string(source.OriginAUR) {
			installed[p.Name] = p
			names = append(names, p.Name)
		}
	}
	res := &Result{Checked: len(names)}
	if len(names) == 0 {
		return res, nil
	}

	chunks := slices.Collect(slices.Chunk(names, aur.MaxInfoArgs))
	found := make([][]aur.Package, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			info, err := c.aur.Info(gctx, chunk, refresh)
			if err != nil {
				return fmt.Errorf("aur info for %s: %w", strings.Join(chunk, ", "), err)
			}
			found[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	for _, batch := range found {
		for _, p := range batch {
			local, ok := installed[p.Name]
			if !ok {
				continue
			}
			seen[p.Name] = true
			if version.Compare(p.Version, local.Version) > 0 {
				res.Updates = append(res.Updates, Update{
					Name:      p.Name,
					Installed: local.Version,
					Available: p.Version,
					Explicit:  local.Explicit,
				})
			}
		}
	}
	for _, n := range names {
		if !seen[n] {
			res.Missing = append(res.Missing, n)
			c.logger.Warn("installed package not in AUR", "name", n)
		}
	}

	slices.SortFunc(res.Updates, func(a, b Update) int { return strings.Compare(a.Name, b.Name) })
	c.logger.Debug("update check", "checked", res.Checked, "updates", len(res.Updates))
	return res, nil
}

// Resolver plans an install.
type Resolver interface {
	Resolve(ctx context.Context, root string, opts deps.Options) (*deps.Plan, error)
}

// Executor runs an install plan.
type Executor interface {
	Execute(ctx context.Context, plan *deps.Plan) (*install.Report, error)
}

// Apply reinstalls each update from the AUR, one plan per package, in
// order. Each root keeps the explicit flag it had. Apply stops at the first
// failing package and returns the reports produced so far.
func Apply(ctx context.Context, updates []Update, r Resolver, e Executor, opts deps.Options) ([]*install.Report, error) {
	opts.RootOrigin = source.OriginAUR
	var reports []*install.Report
	for _, u := range updates {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		plan, err := r.Resolve(ctx, u.Constraint(), opts)
		if err != nil {
			return reports, fmt.Errorf("cannot plan update of %s: %w", u.Name, err)
		}
		plan.Root().Explicit = u.Explicit

		report, err := e.Execute(ctx, plan)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}
