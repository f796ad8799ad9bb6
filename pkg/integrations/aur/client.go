// Package aur provides a client for the Arch User Repository.
//
// # Overview
//
// Package metadata comes from the AUR RPC interface (version 5). Dependency
// lists are taken from the package base's .SRCINFO, served by cgit, because
// only .SRCINFO carries architecture-specific entries for split packages.
//
// # Caching
//
// Responses are cached under the "aur:" namespace of the supplied
// [cache.Cache]. Pass refresh=true to bypass the cache.
//
// # Errors
//
// A package that exists neither by name nor as a provider yields an error
// wrapping [integrations.ErrNotFound]. Transport failures wrap
// [integrations.ErrNetwork] and are retried.
package aur

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/aurorus/pkg/cache"
	"github.com/matzehuels/aurorus/pkg/integrations"
)

// DefaultURL is the public AUR.
const DefaultURL = "https://aur.archlinux.org"

// MaxInfoArgs is the number of names the RPC accepts in one info request.
const MaxInfoArgs = 50

// Search fields understood by the RPC.
const (
	ByNameDesc = "name-desc"
	ByName     = "name"
	ByProvides = "provides"
)

// Package is an AUR package as returned by the RPC, with dependency lists
// filled from .SRCINFO by [Client.Lookup].
type Package struct {
	Name         string   `json:"Name"`
	PackageBase  string   `json:"PackageBase"`
	Version      string   `json:"Version"`
	Description  string   `json:"Description"`
	URL          string   `json:"URL"`
	NumVotes     int      `json:"NumVotes"`
	Popularity   float64  `json:"Popularity"`
	OutOfDate    *int64   `json:"OutOfDate"`
	Maintainer   string   `json:"Maintainer"`
	LastModified int64    `json:"LastModified"`
	Depends      []string `json:"Depends"`
	MakeDepends  []string `json:"MakeDepends"`
	CheckDepends []string `json:"CheckDepends"`
	Provides     []string `json:"Provides"`
}

// Orphaned reports whether the package has no maintainer.
func (p *Package) Orphaned() bool { return p.Maintainer == "" }

type rpcResponse struct {
	Version     int       `json:"version"`
	Type        string    `json:"type"`
	ResultCount int       `json:"resultcount"`
	Results     []Package `json:"results"`
	Error       string    `json:"error"`
}

// Client provides access to the AUR RPC and cgit endpoints.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	arch    string
}

// NewClient creates an AUR client rooted at baseURL (use [DefaultURL]).
// Architecture-specific .SRCINFO entries are resolved for arch.
func NewClient(backend cache.Cache, cacheTTL time.Duration, baseURL, arch string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "aur:", cacheTTL, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		arch:    arch,
	}
}

// BaseURL returns the AUR root URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CloneURL returns the git URL of a package base.
func (c *Client) CloneURL(base string) string {
	return c.baseURL + "/" + base + ".git"
}

// Info fetches RPC metadata for up to [MaxInfoArgs] names in one request.
// Unknown names are simply absent from the result.
func (c *Client) Info(ctx context.Context, names []string, refresh bool) ([]Package, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > MaxInfoArgs {
		return nil, fmt.Errorf("aur info: %d names exceeds limit of %d", len(names), MaxInfoArgs)
	}

	q := url.Values{"v": {"5"}, "type": {"info"}}
	for _, n := range names {
		q.Add("arg[]", n)
	}
	key := cache.Key("info", names...)

	var resp rpcResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.rpc(ctx, q, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Search queries the RPC. by is one of [ByNameDesc], [ByName] or
// [ByProvides]. Results are sorted by votes, most voted first, then name.
func (c *Client) Search(ctx context.Context, query, by string, refresh bool) ([]Package, error) {
	if by == "" {
		by = ByNameDesc
	}
	q := url.Values{"v": {"5"}, "type": {"search"}, "by": {by}, "arg": {query}}
	key := "search:" + by + ":" + query

	var resp rpcResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.rpc(ctx, q, &resp)
	})
	if err != nil {
		return nil, err
	}
	results := resp.Results
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].NumVotes != results[j].NumVotes {
			return results[i].NumVotes > results[j].NumVotes
		}
		return results[i].Name < results[j].Name
	})
	return results, nil
}

// SrcInfo fetches and parses the .SRCINFO of a package base.
func (c *Client) SrcInfo(ctx context.Context, base string, refresh bool) (*SrcInfo, error) {
	var text string
	err := c.Cached(ctx, "srcinfo:"+base, refresh, &text, func() error {
		u := c.baseURL + "/cgit/aur.git/plain/.SRCINFO?h=" + url.QueryEscape(base)
		var err error
		text, err = c.GetText(ctx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: srcinfo for %s", err, base)
		}
		return nil, err
	}
	return ParseSrcInfo(text)
}

// Lookup resolves name to a package. When no package has that exact name,
// the most voted package providing it is used (ties broken by name). The
// dependency lists of the result come from .SRCINFO for the configured
// architecture.
func (c *Client) Lookup(ctx context.Context, name string, refresh bool) (*Package, error) {
	pkgs, err := c.Info(ctx, []string{name}, refresh)
	if err != nil {
		return nil, err
	}
	pkg := findName(pkgs, name)
	if pkg == nil {
		pkg, err = c.provider(ctx, name, refresh)
		if err != nil {
			return nil, err
		}
	}
	if err := c.applySrcInfo(ctx, pkg, refresh); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (c *Client) provider(ctx context.Context, name string, refresh bool) (*Package, error) {
	candidates, err := c.Search(ctx, name, ByProvides, refresh)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: aur package %s", integrations.ErrNotFound, name)
		}
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: aur package %s", integrations.ErrNotFound, name)
	}
	// Search results are already ordered by votes then name. They lack
	// dependency data, so fetch full info for the winner.
	best := candidates[0].Name
	pkgs, err := c.Info(ctx, []string{best}, refresh)
	if err != nil {
		return nil, err
	}
	if pkg := findName(pkgs, best); pkg != nil {
		return pkg, nil
	}
	return nil, fmt.Errorf("%w: aur package %s", integrations.ErrNotFound, name)
}

// applySrcInfo replaces the RPC dependency lists with the ones from
// .SRCINFO. A missing .SRCINFO keeps the RPC data.
func (c *Client) applySrcInfo(ctx context.Context, pkg *Package, refresh bool) error {
	base := pkg.PackageBase
	if base == "" {
		base = pkg.Name
	}
	si, err := c.SrcInfo(ctx, base, refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	split, ok := si.Package(pkg.Name, c.arch)
	if !ok {
		return nil
	}
	pkg.PackageBase = si.Base
	pkg.Version = si.Version()
	pkg.Depends = split.Depends
	pkg.MakeDepends = split.MakeDepends
	pkg.CheckDepends = split.CheckDepends
	pkg.Provides = split.Provides
	if pkg.Description == "" {
		pkg.Description = split.Description
	}
	return nil
}

func (c *Client) rpc(ctx context.Context, q url.Values, resp *rpcResponse) error {
	if err := c.Get(ctx, c.baseURL+"/rpc/?"+q.Encode(), resp); err != nil {
		return err
	}
	if resp.Type == "error" {
		return fmt.Errorf("aur rpc: %s", resp.Error)
	}
	return nil
}

func findName(pkgs []Package, name string) *Package {
	for i := range pkgs {
		if pkgs[i].Name == name {
			p := pkgs[i]
			return &p
		}
	}
	return nil
}
